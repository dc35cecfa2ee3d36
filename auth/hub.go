package auth

import "sync"

// Hub fans session changes out to the subscribers of a client.
type Hub struct {
	mu   sync.Mutex
	next uint64
	subs map[string]map[uint64]func(*Session) // client id => subscription id => callback
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]func(*Session)),
	}
}

// Subscribe registers fn for changes of the given client. The returned func is idempotent.
func (h *Hub) Subscribe(clientID string, fn func(*Session)) func() {

	h.mu.Lock()
	h.next++
	id := h.next
	if h.subs[clientID] == nil {
		h.subs[clientID] = make(map[uint64]func(*Session))
	}
	h.subs[clientID][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[clientID], id)
			if len(h.subs[clientID]) == 0 {
				delete(h.subs, clientID)
			}
		})
	}
}

// Publish calls the callbacks of the client. The lock is not held while calling them.
func (h *Hub) Publish(clientID string, session *Session) {

	h.mu.Lock()
	var callbacks = make([]func(*Session), 0, len(h.subs[clientID]))
	for _, fn := range h.subs[clientID] {
		callbacks = append(callbacks, fn)
	}
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(session)
	}
}

// Len returns the number of subscriptions of a client.
func (h *Hub) Len(clientID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[clientID])
}
