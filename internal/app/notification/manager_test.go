package notification

import (
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	got   []*Notification
	err   error
	block chan struct{}
}

func (r *recorder) Send(n *Notification) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recorder) received() []*Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Notification(nil), r.got...)
}

func TestManager_SubscribeBroadcast(t *testing.T) {
	m := NewManager()
	a, b := &recorder{}, &recorder{}

	idA := m.Subscribe(a)
	idB := m.Subscribe(b)
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, m.SubscriberCount())

	m.Broadcast(New(TypePlayback, FieldIsPlaying, FieldCurrentTrack))
	m.Broadcast(New(TypeSearch, FieldSearchTracks))

	for _, r := range []*recorder{a, b} {
		got := r.received()
		require.Len(t, got, 2)
		assert.Equal(t, uint64(1), got[0].SequenceNo)
		assert.Equal(t, TypePlayback, got[0].Type)
		assert.True(t, got[0].Has(FieldCurrentTrack))
		assert.False(t, got[0].Has(FieldSearchTracks))
		assert.Equal(t, uint64(2), got[1].SequenceNo)
	}

	// Each subscriber gets its own copy
	got := a.received()
	got[0].Fields[0] = "mutated"
	assert.Equal(t, FieldIsPlaying, b.received()[0].Fields[0])
}

func TestManager_Unsubscribe(t *testing.T) {
	m := NewManager()
	r := &recorder{}
	id := m.Subscribe(r)

	m.Unsubscribe(id)
	m.Unsubscribe("unknown")
	m.Broadcast(New(TypeError, FieldError))

	assert.Empty(t, r.received())
	assert.Equal(t, 0, m.SubscriberCount())
}

func TestManager_SlowAndFailingSubscribers(t *testing.T) {
	m := NewManager()
	m.sendTimeout = 20 * time.Millisecond

	slow := &recorder{block: make(chan struct{})}
	failing := &recorder{err: errors.New("closed")}
	fast := &recorder{}
	m.Subscribe(slow)
	m.Subscribe(failing)
	m.Subscribe(fast)

	start := time.Now()
	m.Broadcast(New(TypeCollection, FieldPlaylists))
	assert.Less(t, time.Since(start), time.Second, "a blocked subscriber must not stall the broadcast")

	assert.Len(t, fast.received(), 1)
	assert.Len(t, failing.received(), 1)
	close(slow.block)
}

func TestStreamFunc(t *testing.T) {
	var got *Notification
	m := NewManager()
	m.Subscribe(StreamFunc(func(n *Notification) error {
		got = n
		return nil
	}))
	m.Broadcast(New(TypeHome, FieldHomeSections))

	require.NotNil(t, got)
	assert.Equal(t, TypeHome, got.Type)

	m.Close()
	assert.Equal(t, 0, m.SubscriberCount())
}
