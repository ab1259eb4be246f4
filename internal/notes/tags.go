package notes

import (
	"sort"
	"strings"
)

// NormalizeTag trims and lowercases a tag label. Returns "" for labels that
// are empty after trimming.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes every tag and drops empties and duplicates while
// preserving insertion order. Always returns a non-nil slice so the tag set
// serializes as a JSON array, never null.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		normalized := NormalizeTag(tag)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// AllTags returns every distinct tag across the given notes, sorted
// lexicographically ascending. It is a pure function of the collection and
// recomputed on demand; collections are small enough that no incremental
// index is warranted.
func AllTags(notes []Note) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, note := range notes {
		for _, tag := range note.Tags {
			normalized := NormalizeTag(tag)
			if normalized == "" {
				continue
			}
			if _, dup := seen[normalized]; dup {
				continue
			}
			seen[normalized] = struct{}{}
			out = append(out, normalized)
		}
	}
	sort.Strings(out)
	return out
}
