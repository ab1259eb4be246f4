package notes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func sampleNotes() []Note {
	return []Note{
		{ID: "1", Title: "Meeting notes", Content: "quarterly planning", Tags: []string{"work"}},
		{ID: "2", Title: "Groceries", Content: "milk, eggs", Tags: []string{"home"}},
		{ID: "3", Title: "Ideas", Content: "team meeting agenda", Tags: []string{"work", "planning"}},
		{ID: "4", Title: "MEETING prep", Content: "slides", Tags: []string{}},
	}
}

func TestFilter_EmptyConstraintsIsIdentity(t *testing.T) {
	all := sampleNotes()
	got := Filter(all, "", "")
	assert.Equal(t, all, got)
}

func TestFilter_QueryIsCaseInsensitive(t *testing.T) {
	all := sampleNotes()

	// "meeting" matches in title ("Meeting notes", "MEETING prep") and in
	// content ("team meeting agenda").
	got := Filter(all, "meeting", "")
	ids := noteIDs(got)
	assert.Equal(t, []string{"1", "3", "4"}, ids)

	assert.Equal(t, ids, noteIDs(Filter(all, "MEETING", "")))
	assert.Equal(t, ids, noteIDs(Filter(all, "MeEtInG", "")))
}

func TestFilter_TagIsExactMatch(t *testing.T) {
	all := sampleNotes()

	assert.Equal(t, []string{"1", "3"}, noteIDs(Filter(all, "", "work")))
	// Substring of a tag does not match.
	assert.Empty(t, Filter(all, "", "wor"))
}

func TestFilter_QueryAndTagAreConjunctive(t *testing.T) {
	all := sampleNotes()

	got := Filter(all, "meeting", "work")
	assert.Equal(t, []string{"1", "3"}, noteIDs(got))

	got = Filter(all, "slides", "work")
	assert.Empty(t, got)
}

func testFilter_Properties(t *rapid.T) {
	noteGen := rapid.Custom(func(t *rapid.T) Note {
		return Note{
			ID:      rapid.StringMatching(`[a-z0-9]{4}`).Draw(t, "id"),
			Title:   rapid.StringN(0, 30, -1).Draw(t, "title"),
			Content: rapid.StringN(0, 80, -1).Draw(t, "content"),
			Tags:    rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,6}`), 0, 4).Draw(t, "tags"),
		}
	})
	all := rapid.SliceOfN(noteGen, 0, 15).Draw(t, "notes")
	query := rapid.StringN(0, 8, -1).Draw(t, "query")
	tag := rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "tag")

	got := Filter(all, query, tag)

	// Result is a subsequence of the input: order preserved, no invention.
	i := 0
	for _, note := range got {
		for i < len(all) && all[i].ID != note.ID {
			i++
		}
		if i == len(all) {
			t.Fatalf("result note %q out of order or absent from input", note.ID)
		}
		i++
	}

	// Every result satisfies both constraints; every excluded note fails
	// at least one.
	for _, note := range all {
		matches := matchesQuery(note, strings.ToLower(query))
		if tag != "" {
			matches = matches && hasTag(note, tag)
		}
		inResult := false
		for _, r := range got {
			if r.ID == note.ID {
				inResult = true
				break
			}
		}
		// Duplicate ids can make membership ambiguous; skip those draws.
		if countID(all, note.ID) > 1 {
			continue
		}
		if matches != inResult {
			t.Fatalf("note %q: matches=%v inResult=%v (query=%q tag=%q)", note.ID, matches, inResult, query, tag)
		}
	}
}

func TestFilter_Properties(t *testing.T) {
	rapid.Check(t, testFilter_Properties)
}

func FuzzFilter_Properties(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testFilter_Properties))
}

func noteIDs(all []Note) []string {
	out := make([]string, 0, len(all))
	for _, n := range all {
		out = append(out, n.ID)
	}
	return out
}

func countID(all []Note, id string) int {
	n := 0
	for _, note := range all {
		if note.ID == id {
			n++
		}
	}
	return n
}
