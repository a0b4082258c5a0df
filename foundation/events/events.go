// Package events provides fan-out of node activity messages to any
// goroutine that registers interest, such as websocket viewers.
package events

import (
	"fmt"
	"sync"
)

// Subscribers that can't keep up lose messages rather than block the
// node. The buffer gives a slow websocket write time to catch up.
const messageBuffer = 100

// Events maintains the set of subscriber channels keyed by a unique id.
type Events struct {
	m  map[string]chan string
	mu sync.RWMutex
}

// New constructs an Events value for registering and receiving messages.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes every channel handed out by Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire returns the channel registered under the specified id,
// creating it on first use.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.m[id]; exists {
		return ch
	}

	evt.m[id] = make(chan string, messageBuffer)
	return evt.m[id]
}

// Release closes and removes the channel registered under the
// specified id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send delivers a message to every registered channel without blocking
// on any receiver.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}
