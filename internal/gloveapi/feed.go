// Package gloveapi exposes the glove's readings over HTTP: a latest
// snapshot, the session configuration, and a live SSE stream.
package gloveapi

import (
	crand "crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/banshee-data/glove.report/internal/glove"
)

// Feed fans readings out from the single polling goroutine to any
// number of subscribers. Publishing never blocks: a subscriber that is
// not keeping up misses readings rather than stalling the poll loop.
type Feed struct {
	mu          sync.Mutex
	subscribers map[string]chan glove.Reading
	latest      glove.Reading
	hasLatest   bool
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		subscribers: make(map[string]chan glove.Reading),
	}
}

// randomID generates a random channel ID (8 byte random hex encoded
// value).
func randomID() string {
	b := make([]byte, 8)
	crand.Read(b)
	return hex.EncodeToString(b)
}

// Subscribe creates a channel receiving published readings. The
// returned ID identifies the channel when unsubscribing.
func (f *Feed) Subscribe() (string, chan glove.Reading) {
	id := randomID()
	ch := make(chan glove.Reading, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber channel.
func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch, ok := f.subscribers[id]; ok {
		close(ch)
		delete(f.subscribers, id)
	}
}

// Publish records r as the latest reading and offers it to every
// subscriber.
func (f *Feed) Publish(r glove.Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = r
	f.hasLatest = true
	for _, ch := range f.subscribers {
		select {
		case ch <- r:
		default:
			// skip slow subscribers so the poll loop never blocks
		}
	}
}

// Latest returns the most recently published reading, if any.
func (f *Feed) Latest() (glove.Reading, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latest, f.hasLatest
}

// Close closes all subscriber channels.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ch := range f.subscribers {
		close(ch)
		delete(f.subscribers, id)
	}
}
