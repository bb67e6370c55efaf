package filter

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/previewbox/internal/domain/track"
)

// DurationLimitConfig bounds the full track length. A zero bound is not enforced.
type DurationLimitConfig struct {
	MinSeconds float64 `mapstructure:"min_seconds" default:"0" validate:"gte=0"`
	MaxSeconds float64 `mapstructure:"max_seconds" default:"0" validate:"gte=0"`
}

func (c DurationLimitConfig) min() time.Duration {
	return time.Duration(c.MinSeconds * float64(time.Second))
}

func (c DurationLimitConfig) max() time.Duration {
	return time.Duration(c.MaxSeconds * float64(time.Second))
}

// DurationLimitFilter rejects tracks whose full length is out of bounds.
// Tracks with an unknown length pass.
type DurationLimitFilter struct {
	config DurationLimitConfig
}

// NewDurationLimitFilter creates an unbounded duration filter.
func NewDurationLimitFilter() *DurationLimitFilter {
	return &DurationLimitFilter{}
}

func (f *DurationLimitFilter) Name() string {
	return "duration_limit_filter"
}

func (f *DurationLimitFilter) Description() string {
	return "Rejects tracks shorter or longer than the configured bounds"
}

func (f *DurationLimitFilter) ReturnCodes() []string {
	return []string{CodeTooShort, CodeTooLong}
}

func (f *DurationLimitFilter) ValidateConfig(settings map[string]any) error {
	var config DurationLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return errors.Wrap(err, "duration limit settings")
	}
	if config.MaxSeconds > 0 && config.MinSeconds > config.MaxSeconds {
		return errors.New("min_seconds cannot be greater than max_seconds")
	}
	f.config = config
	zlog.Debug().Msgf("filter: duration limit min=%s max=%s", config.min(), config.max())
	return nil
}

func (f *DurationLimitFilter) Check(ctx context.Context, t track.Track, accepted []track.Track) Result {
	d := t.Duration()
	if d <= 0 {
		return Accept()
	}
	if lo := f.config.min(); lo > 0 && d < lo {
		return Reject(CodeTooShort)
	}
	if hi := f.config.max(); hi > 0 && d > hi {
		return Reject(CodeTooLong)
	}
	return Accept()
}

func init() {
	Register("duration_limit_filter", func() Filter {
		return NewDurationLimitFilter()
	})
}
