package engine

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/models"
)

// ErrStaleWrite marks a merge attempt whose base version predates the current
// document version. Stale writes are dropped, never partially applied.
var ErrStaleWrite = errors.New("stale write dropped")

// Persister is the storage contract the store depends on. The databases
// package provides the tiered implementation.
type Persister interface {
	Persist(ctx context.Context, doc models.CaseDocument) error
	Load(ctx context.Context) models.CaseDocument
}

// ApplyOptions qualify a single update.
type ApplyOptions struct {
	// BaseVersion is the document version the writer observed when it began;
	// zero applies unconditionally. An update based on an older version is
	// dropped as stale.
	BaseVersion int64
	// Manual marks operator-entered values, which drives the damage-date
	// precedence rule.
	Manual bool
}

// ApplyResult reports what one update did to the document.
type ApplyResult struct {
	Version  int64                    `json:"version"`
	Sections []string                 `json:"sections"`
	Accepted int                      `json:"accepted"`
	Rejected int                      `json:"rejected"`
	Alerts   []models.ProtectionAlert `json:"alerts,omitempty"`
}

// Store owns the canonical CaseDocument. Every mutation goes through Apply,
// which serializes merges behind one mutex so a second merge never observes a
// partially applied first one, then persists and broadcasts. No other
// component mutates document fields.
type Store struct {
	mu     sync.Mutex
	doc    models.CaseDocument
	guard  Guard
	merger Merger
	store  Persister
	bcast  *Broadcaster
}

// NewStore hydrates the canonical document from the persistence tiers and
// wires the mutation pipeline around it.
func NewStore(ctx context.Context, p Persister, b *Broadcaster, caseIDPrefix string) *Store {
	return &Store{
		doc:    p.Load(ctx),
		merger: Merger{CaseIDPrefix: caseIDPrefix},
		store:  p,
		bcast:  b,
	}
}

// Apply runs one authorized update through guard, merge, persist and
// broadcast. It returns ErrStaleWrite for outdated base versions, ErrMerge
// for malformed input, and a databases error when the primary tier write
// fails; in the last case the in-memory merge has already been applied and a
// later persist will carry it.
func (s *Store) Apply(ctx context.Context, update models.FieldSet, source string, opts ApplyOptions) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.doc.Version()
	if opts.BaseVersion > 0 && opts.BaseVersion < current {
		zap.S().Debugw("dropping stale write",
			"baseVersion", opts.BaseVersion,
			"currentVersion", current,
			"source", source,
		)
		return ApplyResult{Version: current}, ErrStaleWrite
	}

	auth := s.guard.Authorize(s.doc, update, source, opts.Manual)
	result := ApplyResult{
		Version:  current,
		Accepted: len(auth.Accepted),
		Rejected: len(auth.Rejected),
		Alerts:   auth.Alerts,
	}
	if len(auth.Accepted) == 0 && len(auth.Alerts) == 0 {
		return result, nil
	}

	version, err := s.merger.Merge(s.doc, auth.Accepted, source)
	if err != nil {
		return result, err
	}
	for _, alert := range auth.Alerts {
		s.doc.AppendAlert(alert)
	}
	result.Version = version
	result.Sections = changedSections(auth)

	if err := s.store.Persist(ctx, s.doc); err != nil {
		return result, err
	}
	s.bcast.Notify(result.Sections, source, version)
	return result, nil
}

// Document returns a deep-copied snapshot safe for concurrent readers.
func (s *Store) Document() models.CaseDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Snapshot()
}

// Version returns the current merge counter.
func (s *Store) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Version()
}

// Alerts returns the protection alert trail.
func (s *Store) Alerts() []models.ProtectionAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Alerts()
}

// Reconcile folds an externally written snapshot back into the in-memory
// document. Another writer on the same storage (a second instance, or a
// second browser tab in the original deployment) may have advanced the
// persisted copy; rather than blindly overwriting, the higher-version
// snapshot is re-merged through the same guard and merge rules.
func (s *Store) Reconcile(ctx context.Context) error {
	external := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	extVersion := external.Version()
	if extVersion <= s.doc.Version() {
		return nil
	}
	zap.S().Infow("reconciling externally written snapshot",
		"externalVersion", extVersion,
		"localVersion", s.doc.Version(),
	)

	auth := s.guard.Authorize(s.doc, external.Flatten(), "external_sync", false)
	version, err := s.merger.Merge(s.doc, auth.Accepted, "external_sync")
	if err != nil {
		return err
	}
	for _, alert := range auth.Alerts {
		s.doc.AppendAlert(alert)
	}
	// the external writer's counter wins when it is still ahead
	if extVersion > version {
		s.doc.Set(models.PathVersion, extVersion)
		version = extVersion
	}
	if err := s.store.Persist(ctx, s.doc); err != nil {
		return err
	}
	s.bcast.Notify(changedSections(auth), "external_sync", version)
	return nil
}

// Reset discards the in-memory document and rehydrates from storage.
func (s *Store) Reset(ctx context.Context) models.CaseDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = s.store.Load(ctx)
	s.bcast.Notify(allSections, "reset", s.doc.Version())
	return s.doc.Snapshot()
}

var allSections = []string{
	models.SectionMeta, models.SectionVehicle, models.SectionStakeholders,
	models.SectionCaseInfo, models.SectionDamage, models.SectionCalculations,
	models.SectionSystem,
}

func changedSections(auth Authorization) []string {
	sections := auth.Accepted.Sections()
	if len(auth.Alerts) > 0 {
		found := false
		for _, s := range sections {
			if s == models.SectionSystem {
				found = true
				break
			}
		}
		if !found {
			sections = append(sections, models.SectionSystem)
			sort.Strings(sections)
		}
	}
	return sections
}
