// Package queue computes next/previous tracks within a queue context.
package queue

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// RepeatMode represents the repeat policy.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota // Stop at the end of the queue on auto-advance
	RepeatAll                   // Wrap around on auto-advance
	RepeatOne                   // Replay the current track
)

// String returns the string representation of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "unknown"
	}
}

// Cycle returns the next mode in Off -> All -> One -> Off order.
func (m RepeatMode) Cycle() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode parses "off", "all" or "one".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "":
		return RepeatOff, nil
	case "all", "queue":
		return RepeatAll, nil
	case "one", "track":
		return RepeatOne, nil
	default:
		return RepeatOff, errors.Newf("unknown repeat mode: %q", s)
	}
}

// Policy is the navigation policy in effect.
type Policy struct {
	Shuffle bool
	Repeat  RepeatMode
}
