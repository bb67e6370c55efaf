package filter

import (
	"context"
	"regexp"
	"strings"

	"github.com/osa030/previewbox/internal/domain/track"
)

// DuplicateTrackFilter drops repeated tracks within one result list.
// Detects:
// - Same track key
// - Remasters and edits (normalized track name + same artist)
// Covers by a different artist are kept.
type DuplicateTrackFilter struct{}

// NewDuplicateTrackFilter creates a new duplicate track filter.
func NewDuplicateTrackFilter() *DuplicateTrackFilter {
	return &DuplicateTrackFilter{}
}

func (f *DuplicateTrackFilter) Name() string {
	return "duplicate_track_filter"
}

func (f *DuplicateTrackFilter) Description() string {
	return "Drops tracks already listed, including remastered and edited versions. Covers are kept"
}

func (f *DuplicateTrackFilter) ReturnCodes() []string {
	return []string{CodeDuplicate}
}

func (f *DuplicateTrackFilter) ValidateConfig(settings map[string]any) error {
	// No configuration needed
	return nil
}

func (f *DuplicateTrackFilter) Check(ctx context.Context, t track.Track, accepted []track.Track) Result {
	name := normalizeTrackName(t.Name)
	for _, existing := range accepted {
		if existing.Key() == t.Key() {
			return Reject(CodeDuplicate)
		}
		if name != "" && normalizeTrackName(existing.Name) == name && isSameArtist(existing, t) {
			return Reject(CodeDuplicate)
		}
	}
	return Accept()
}

var (
	remasterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*-?\s*\d{4}\s+remaster(ed)?`),      // "- 2011 Remaster"
		regexp.MustCompile(`\s*\(remaster(ed)?\s*\d{0,4}\)`),     // "(Remastered 2023)"
		regexp.MustCompile(`\s*\[remaster(ed)?\s*\d{0,4}\]`),     // "[Remastered]"
		regexp.MustCompile(`\s*-?\s*remaster(ed)?(\s+version)?`), // "- Remastered"
		regexp.MustCompile(`\s*\(.*?remaster.*?\)`),
		regexp.MustCompile(`\s*\[.*?remaster.*?\]`),
	}
	versionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\s*\(.*?version\)`), // "(Single Version)"
		regexp.MustCompile(`\s*\(.*?edit\)`),    // "(Radio Edit)"
		regexp.MustCompile(`\s*-\s*live\b.*$`),  // "- Live at Wembley"
		regexp.MustCompile(`\s*\(live\b.*?\)`),  // "(Live)"
		regexp.MustCompile(`\s*-?\s*radio\s+edit`),
		regexp.MustCompile(`\s*-?\s*single\s+version`),
	}
	spaces = regexp.MustCompile(`\s+`)
)

// normalizeTrackName strips remaster and version markers.
func normalizeTrackName(name string) string {
	normalized := strings.ToLower(name)

	for _, pattern := range remasterPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}
	for _, pattern := range versionPatterns {
		normalized = pattern.ReplaceAllString(normalized, "")
	}

	normalized = spaces.ReplaceAllString(strings.TrimSpace(normalized), " ")
	return strings.TrimRight(normalized, " -")
}

// isSameArtist compares artist names case-insensitively.
func isSameArtist(a, b track.Track) bool {
	if a.ArtistName == "" || b.ArtistName == "" {
		return false
	}
	return strings.EqualFold(a.ArtistName, b.ArtistName)
}

func init() {
	Register("duplicate_track_filter", func() Filter {
		return NewDuplicateTrackFilter()
	})
}
