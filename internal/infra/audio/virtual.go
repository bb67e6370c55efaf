package audio

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// VirtualOpener opens silent outputs that only keep time.
type VirtualOpener struct{}

// NewVirtualOpener creates a new VirtualOpener.
func NewVirtualOpener() *VirtualOpener {
	return &VirtualOpener{}
}

// Open implements Opener.
func (o *VirtualOpener) Open(src string, length time.Duration) (Output, error) {
	if src == "" {
		return nil, ErrNoSource
	}
	if length <= 0 {
		length = DefaultLength
	}
	return &Virtual{
		src:    src,
		length: length,
		paused: true,
		done:   make(chan struct{}),
	}, nil
}

// Virtual is a silent output. It ends after its length of non-paused time.
type Virtual struct {
	mu sync.Mutex

	src       string
	length    time.Duration
	elapsed   time.Duration
	startedAt time.Time
	paused    bool
	timer     *time.Timer

	done     chan struct{}
	doneOnce sync.Once
}

// Source implements Output.
func (v *Virtual) Source() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.src
}

// Play implements Output.
func (v *Virtual) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.src == "" {
		return ErrNoSource
	}
	if !v.paused {
		return nil
	}

	remaining := v.length - v.elapsed
	if remaining <= 0 {
		v.finishLocked()
		return nil
	}

	v.paused = false
	v.startedAt = time.Now()
	v.timer = time.AfterFunc(remaining, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		zlog.Debug().Msgf("audio: virtual output ended: src=%s", v.src)
		v.elapsed = v.length
		v.paused = true
		v.finishLocked()
	})
	return nil
}

// Pause implements Output.
func (v *Virtual) Pause() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.paused {
		return nil
	}
	v.stopTimerLocked()
	v.elapsed += time.Since(v.startedAt)
	v.paused = true
	return nil
}

// Paused implements Output.
func (v *Virtual) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

// Clear implements Output.
func (v *Virtual) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stopTimerLocked()
	v.paused = true
	v.src = ""
	v.finishLocked()
	return nil
}

// Done implements Output.
func (v *Virtual) Done() <-chan struct{} {
	return v.done
}

// Elapsed returns the non-paused time played so far.
func (v *Virtual) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.paused {
		return v.elapsed
	}
	return v.elapsed + time.Since(v.startedAt)
}

func (v *Virtual) stopTimerLocked() {
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *Virtual) finishLocked() {
	v.doneOnce.Do(func() {
		close(v.done)
	})
}
