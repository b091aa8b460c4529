// Package push delivers server-side order notifications to the containers.
// One Channel exists per authenticated session; closing it releases every
// listener registration so handlers never leak across sessions.
package push

import (
	"sync"

	"shop-client/internal/domain"
)

type Handler func(evt domain.PushEvent)

// Channel is the subscription registry. Fan-out: every listener registered
// for an event kind gets each dispatched event, independently of the others.
type Channel struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]Handler
	closed bool
}

func NewChannel() *Channel {
	return &Channel{subs: make(map[string]map[int]Handler)}
}

// Subscribe registers a handler for one event kind and returns its
// unsubscribe func. Unsubscribing twice is a no-op.
func (c *Channel) Subscribe(kind string, h Handler) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return func() {}
	}
	if c.subs[kind] == nil {
		c.subs[kind] = make(map[int]Handler)
	}
	id := c.nextID
	c.nextID++
	c.subs[kind][id] = h

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if hs, ok := c.subs[kind]; ok {
			delete(hs, id)
		}
	}
}

// Dispatch delivers evt to every listener registered for its kind.
func (c *Channel) Dispatch(evt domain.PushEvent) {
	c.mu.Lock()
	handlers := make([]Handler, 0, len(c.subs[evt.Kind]))
	for _, h := range c.subs[evt.Kind] {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}

// Close drops every registration. Subscribes after Close are inert.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.subs = make(map[string]map[int]Handler)
}
