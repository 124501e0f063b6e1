// Package status fans recognition and speech events out to subscribers.
package status

import (
	"log/slog"
	"sync"
	"time"
)

// Event is one status update. Publishing is fire-and-forget; a failure to
// deliver never blocks the recognition loop.
type Event struct {
	Type       string    `json:"type"`
	State      string    `json:"state,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Text       string    `json:"text,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	QueueLen   int       `json:"queue_len"`
	Speaking   bool      `json:"speaking"`
	At         time.Time `json:"at"`
}

const subscriberBuffer = 16

// Hub delivers events to any number of subscribers. Slow subscribers have
// events dropped, never queued without bound.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
	last Event
	has  bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to release it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers evt to every subscriber without blocking.
func (h *Hub) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	h.mu.Lock()
	h.last = evt
	h.has = true
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
			slog.Debug("status subscriber lagging, dropping event", "type", evt.Type)
		}
	}
	h.mu.Unlock()
}

// Last returns the most recently published event.
func (h *Hub) Last() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.has
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
