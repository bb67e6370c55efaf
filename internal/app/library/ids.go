package library

import (
	"sync"
	"time"
)

// IDSource issues strictly increasing, millisecond-based playlist ids.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource creates an IDSource that never returns ids at or below floor.
func NewIDSource(floor int64) *IDSource {
	return &IDSource{last: floor, now: time.Now}
}

// Next returns a new id.
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
