package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/engine"
)

// Watch pushes section-change notices to UI observers over a websocket
type Watch struct {
	Store       *engine.Store
	Broadcaster *engine.Broadcaster
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// watchSubscription is the client's first frame: which sections it wants.
// Empty means everything.
type watchSubscription struct {
	Sections []string `json:"sections"`
}

// WatchHandler upgrades the connection, registers the client as an observer
// and forwards debounced notices until the client goes away. Observers pull
// current values from GET /case; notices only say what changed.
func (wh Watch) WatchHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		zap.S().Errorw("failed to upgrade websocket", "error", err)
		return
	}
	defer conn.Close()

	var sub watchSubscription
	if err := conn.ReadJSON(&sub); err != nil {
		zap.S().Debugf("watch client sent no subscription frame: %v", err)
		return
	}

	// buffered so a slow client drops notices instead of blocking dispatch
	notices := make(chan engine.Notice, 16)
	cancel := wh.Broadcaster.Subscribe(sub.Sections, func(n engine.Notice) {
		select {
		case notices <- n:
		default:
			zap.S().Warnw("watch client too slow, dropping notice", "sections", n.Sections)
		}
	})
	defer cancel()

	zap.S().Infow("watch client subscribed", "sections", sub.Sections)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case n := <-notices:
			if err := conn.WriteJSON(n); err != nil {
				zap.S().Debugf("watch client write failed: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
