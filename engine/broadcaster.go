package engine

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce is the window within which successive change notifications
// coalesce into one dispatch. Per-keystroke form edits land well inside it.
const DefaultDebounce = 300 * time.Millisecond

// Notice is what observers receive: the union of sections changed inside the
// debounce window, the most recent source tag, and the document version at
// the last merge. Observers pull current values from the live document.
type Notice struct {
	Sections []string `json:"sections"`
	Source   string   `json:"source"`
	Version  int64    `json:"version"`
}

type observer struct {
	id       int
	sections map[string]struct{} // empty means all sections
	fn       func(Notice)
}

// Broadcaster fans merge completions out to registered observers. Dispatch
// order follows merge completion order; delivery is not synchronized with the
// slower persistence tiers.
type Broadcaster struct {
	mu        sync.Mutex
	delay     time.Duration
	nextID    int
	observers []*observer

	pending map[string]struct{}
	source  string
	version int64
	timer   *time.Timer
}

// NewBroadcaster creates a broadcaster with the given debounce window;
// non-positive means DefaultDebounce.
func NewBroadcaster(delay time.Duration) *Broadcaster {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Broadcaster{
		delay:   delay,
		pending: map[string]struct{}{},
	}
}

// Subscribe registers an observer for the given sections (nil or empty
// subscribes to everything) and returns its cancel function.
func (b *Broadcaster) Subscribe(sections []string, fn func(Notice)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	obs := &observer{id: b.nextID, fn: fn, sections: map[string]struct{}{}}
	for _, s := range sections {
		obs.sections[s] = struct{}{}
	}
	b.observers = append(b.observers, obs)

	id := obs.id
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, o := range b.observers {
			if o.id == id {
				b.observers = append(b.observers[:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// Notify records a completed merge. Notifications within the debounce window
// collapse into a single dispatch carrying the section union and the latest
// source and version.
func (b *Broadcaster) Notify(sections []string, source string, version int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range sections {
		b.pending[s] = struct{}{}
	}
	b.source = source
	b.version = version
	if b.timer == nil {
		b.timer = time.AfterFunc(b.delay, b.Flush)
	}
}

// Flush dispatches the pending notice immediately. The debounce timer calls
// it; tests and shutdown paths may call it directly.
func (b *Broadcaster) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	notice := Notice{
		Sections: make([]string, 0, len(b.pending)),
		Source:   b.source,
		Version:  b.version,
	}
	for s := range b.pending {
		notice.Sections = append(notice.Sections, s)
	}
	sort.Strings(notice.Sections)
	b.pending = map[string]struct{}{}
	targets := make([]*observer, len(b.observers))
	copy(targets, b.observers)
	b.mu.Unlock()

	zap.S().Debugw("broadcasting document change",
		"sections", notice.Sections,
		"source", notice.Source,
		"version", notice.Version,
	)
	for _, obs := range targets {
		if obs.wants(notice.Sections) {
			obs.fn(notice)
		}
	}
}

// Close stops the pending timer and delivers anything still buffered.
func (b *Broadcaster) Close() {
	b.Flush()
}

func (o *observer) wants(sections []string) bool {
	if len(o.sections) == 0 {
		return true
	}
	for _, s := range sections {
		if _, ok := o.sections[s]; ok {
			return true
		}
	}
	return false
}
