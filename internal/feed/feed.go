// Package feed fans accepted submissions out to live subscribers so
// connected clients can update their recent list without polling.
package feed

import (
	"sync"

	"github.com/starsign-web/starsign/internal/submissions"
)

const subscriberBuffer = 16

// Hub tracks subscribers and delivers each published submission to all
// of them. Delivery never blocks the publisher; a subscriber that
// cannot keep up loses events instead of stalling the submit path.
type Hub struct {
	mu        sync.Mutex
	nextSubID int
	subs      map[int]chan submissions.Submission
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan submissions.Submission)}
}

// Subscribe registers a listener and returns its event channel plus a
// cancel func. Cancel closes the channel and is safe to call more than
// once.
func (h *Hub) Subscribe() (<-chan submissions.Submission, func()) {
	ch := make(chan submissions.Submission, subscriberBuffer)
	h.mu.Lock()
	h.nextSubID++
	id := h.nextSubID
	h.subs[id] = ch
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Publish delivers sub to every subscriber and reports how many
// deliveries were dropped because a subscriber buffer was full.
func (h *Hub) Publish(sub submissions.Submission) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	dropped := 0
	for _, ch := range h.subs {
		select {
		case ch <- sub:
		default:
			dropped++
		}
	}
	return dropped
}

// Count reports the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
