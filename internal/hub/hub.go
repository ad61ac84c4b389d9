package hub

import "sync"

const subscriberBuffer = 64

// IngestEvent announces that a new parse pass is available.
type IngestEvent struct {
	FileID   string `json:"file_id"`
	Name     string `json:"name"`
	Source   string `json:"source"`
	Lines    int    `json:"lines"`
	Requests int    `json:"requests"`
	Syncs    int    `json:"syncs"`
}

// Hub fans ingest events out to all subscribers. Slow subscribers drop
// events rather than block the ingest path.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan IngestEvent]struct{}
	dropped     int64
	closed      bool
}

func New() *Hub {
	return &Hub{subscribers: make(map[chan IngestEvent]struct{})}
}

// Subscribe returns a buffered channel receiving future ingest events. The
// caller must release it with Unsubscribe when done.
func (h *Hub) Subscribe() chan IngestEvent {
	ch := make(chan IngestEvent, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a channel obtained from Subscribe.
func (h *Hub) Unsubscribe(ch chan IngestEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// Publish delivers an event to every subscriber, dropping it for any
// subscriber whose buffer is full.
func (h *Hub) Publish(ev IngestEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
		}
	}
}

// Dropped returns the total number of events dropped for slow subscribers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close closes all subscriber channels. Publish after Close is a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan IngestEvent]struct{})
}
