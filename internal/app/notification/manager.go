// Package notification tells subscribers which observable fields of the
// session changed.
package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// DefaultSendTimeout bounds a single subscriber send.
const DefaultSendTimeout = 500 * time.Millisecond

// Stream receives notifications for one subscriber.
type Stream interface {
	Send(*Notification) error
}

// StreamFunc adapts a function to a Stream.
type StreamFunc func(*Notification) error

// Send calls f(n).
func (f StreamFunc) Send(n *Notification) error {
	return f(n)
}

// Manager fans notifications out to subscribers.
type Manager struct {
	mu          sync.Mutex
	streams     map[string]Stream
	lastSeq     uint64
	sendTimeout time.Duration
}

// NewManager creates a manager without subscribers.
func NewManager() *Manager {
	return &Manager{
		streams:     make(map[string]Stream),
		sendTimeout: DefaultSendTimeout,
	}
}

// Subscribe registers stream and returns its subscription ID.
func (m *Manager) Subscribe(stream Stream) string {
	id := uuid.NewString()

	m.mu.Lock()
	m.streams[id] = stream
	m.mu.Unlock()

	zlog.Debug().Msgf("notification: subscribed id=%s", id)
	return id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (m *Manager) Unsubscribe(id string) {
	m.mu.Lock()
	delete(m.streams, id)
	m.mu.Unlock()
}

// Broadcast assigns n the next sequence number and delivers a copy to every
// subscriber in parallel. It returns once each send finished or timed out.
func (m *Manager) Broadcast(n *Notification) {
	m.mu.Lock()
	m.lastSeq++
	n.SequenceNo = m.lastSeq
	targets := make(map[string]Stream, len(m.streams))
	for id, s := range m.streams {
		targets[id] = s
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for id, s := range targets {
		wg.Go(func() {
			m.deliver(id, s, n.copy())
		})
	}
	wg.Wait()
}

// deliver sends n to one stream. A stream that misses the timeout loses this
// notification but stays subscribed.
func (m *Manager) deliver(id string, s Stream, n *Notification) {
	done := make(chan error, 1)
	go func() {
		done <- s.Send(n)
	}()

	timer := time.NewTimer(m.sendTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			zlog.Warn().Msgf("notification: send failed id=%s seq=%d err=%v", id, n.SequenceNo, err)
		}
	case <-timer.C:
		zlog.Warn().Msgf("notification: send timed out id=%s seq=%d", id, n.SequenceNo)
	}
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.streams)
}

// Close drops every subscription.
func (m *Manager) Close() {
	m.mu.Lock()
	clear(m.streams)
	m.mu.Unlock()
}
