// Package filter provides the filter chain applied to fetched tracks.
// Filters register themselves by config name in init.
package filter

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/previewbox/internal/domain/track"
)

// Rejection codes.
const (
	CodeNotPlayable = "not_playable"
	CodeDuplicate   = "duplicate_track"
	CodeTooShort    = "track_too_short"
	CodeTooLong     = "track_too_long"
)

// Result is the verdict of a filter on one track.
type Result struct {
	Accepted bool
	Code     string // set when rejected
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Code: code}
}

// Filter decides whether a fetched track is shown.
type Filter interface {
	// Name is the key the filter is configured under.
	Name() string
	Description() string
	ReturnCodes() []string
	// ValidateConfig decodes, validates and applies the filter settings.
	ValidateConfig(settings map[string]any) error
	// Check checks t against the tracks already accepted from the same list.
	Check(ctx context.Context, t track.Track, accepted []track.Track) Result
}

var registry = make(map[string]func() Filter)

// Register makes a filter available to configuration under name.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}

// RegisteredNames returns the registered filter names in order.
func RegisteredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeSettings decodes a free-form settings map into out, then applies
// defaults and validation.
func decodeSettings(settings map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := dec.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	return validator.New().Struct(out)
}
