package notes

import "strings"

// Filter returns the notes matching both the free-text query and the tag
// constraint. A note passes when the query is empty or appears
// case-insensitively in its title or content, AND the tag is empty or is
// exactly present in its tag set (tags are already normalized lowercase).
// Input ordering is preserved; this never re-sorts. With both constraints
// empty the input is returned unchanged.
func Filter(notes []Note, query, tag string) []Note {
	if query == "" && tag == "" {
		return notes
	}

	loweredQuery := strings.ToLower(query)
	out := make([]Note, 0, len(notes))
	for _, note := range notes {
		if !matchesQuery(note, loweredQuery) {
			continue
		}
		if tag != "" && !hasTag(note, tag) {
			continue
		}
		out = append(out, note)
	}
	return out
}

func matchesQuery(note Note, loweredQuery string) bool {
	if loweredQuery == "" {
		return true
	}
	return strings.Contains(strings.ToLower(note.Title), loweredQuery) ||
		strings.Contains(strings.ToLower(note.Content), loweredQuery)
}

func hasTag(note Note, tag string) bool {
	for _, t := range note.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
