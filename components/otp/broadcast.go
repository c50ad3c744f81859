package otp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type subscriber struct {
	sessionID string
	ch        chan SessionEvent
}

// BroadcastHook fans session events out to in-process subscribers, each
// optionally scoped to a single session.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscriber
	next int
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]subscriber)}
}

// SessionUpdated implements UpdateHook. Slow subscribers miss events rather
// than block the session.
func (h *BroadcastHook) SessionUpdated(_ context.Context, event SessionEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.sessionID != "" && sub.sessionID != event.SessionID {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribers counts the subscribers that receive events for sessionID,
// including unscoped ones.
func (h *BroadcastHook) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, sub := range h.subs {
		if sub.sessionID == "" || sub.sessionID == sessionID {
			n++
		}
	}
	return n
}

// Subscribe returns a channel of events for sessionID (all sessions when
// empty) and a cancel func.
func (h *BroadcastHook) Subscribe(sessionID string) (<-chan SessionEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan SessionEvent, 16)
	h.subs[id] = subscriber{sessionID: sessionID, ch: ch}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.ch)
			}
		})
	}
	return ch, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams events for sessionID as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(sessionID)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams events for sessionID as Server-Sent Events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request, sessionID string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe(sessionID)
	defer cancel()

	flusher, _ := w.(http.Flusher)
	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := w.Write([]byte("event: " + event.Reason + "\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
