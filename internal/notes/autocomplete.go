package notes

import "strings"

// Key identifies a keyboard event handled by the tag picker.
type Key int

const (
	KeyEnter Key = iota
	KeyArrowDown
	KeyArrowUp
	KeyEscape
	KeyBackspace
)

// TagPicker tracks the tag-autocomplete widget state: the partial input,
// the tags already attached to the note being edited, whether the
// suggestion list is visible, and which suggestion the keyboard has
// focused (-1 = none). All operations run synchronously to completion.
type TagPicker struct {
	available []string
	selected  []string
	input     string
	open      bool
	focused   int
}

// NewTagPicker creates a picker over the given available tags (already
// sorted by the tag index) with the given pre-selected tags.
func NewTagPicker(available, selected []string) *TagPicker {
	return &TagPicker{
		available: append([]string(nil), available...),
		selected:  NormalizeTags(selected),
		focused:   -1,
	}
}

// Suggestions returns every available tag containing input
// case-insensitively, excluding tags already selected. Order follows the
// available list.
func Suggestions(available []string, input string, selected []string) []string {
	loweredInput := strings.ToLower(input)
	out := make([]string, 0, len(available))
	for _, tag := range available {
		if contains(selected, tag) {
			continue
		}
		if !strings.Contains(strings.ToLower(tag), loweredInput) {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// Suggestions returns the current suggestion list for the picker's input.
func (p *TagPicker) Suggestions() []string {
	return Suggestions(p.available, p.input, p.selected)
}

// SetAvailable replaces the available tag list, e.g. after the tag index
// was recomputed.
func (p *TagPicker) SetAvailable(available []string) {
	p.available = append([]string(nil), available...)
}

// SetInput updates the partial text. The suggestion list opens as soon as
// there is input and keyboard focus resets.
func (p *TagPicker) SetInput(value string) {
	p.input = value
	p.open = value != ""
	p.focused = -1
}

// Focus reopens the suggestion list when there is pending input, matching
// a click back into the text field.
func (p *TagPicker) Focus() {
	if p.input != "" {
		p.open = true
	}
}

// ClickOutside closes the suggestion list without committing the pending
// input.
func (p *TagPicker) ClickOutside() {
	p.open = false
	p.focused = -1
}

// AddTag normalizes the candidate and appends it to the selected tags.
// Empty and duplicate candidates are no-ops. A successful add clears the
// input and closes the suggestion list.
func (p *TagPicker) AddTag(candidate string) {
	normalized := NormalizeTag(candidate)
	if normalized == "" || contains(p.selected, normalized) {
		return
	}
	p.selected = append(p.selected, normalized)
	p.input = ""
	p.open = false
	p.focused = -1
}

// RemoveTag removes an exact match from the selected tags; absent tags are
// a no-op.
func (p *TagPicker) RemoveTag(tag string) {
	for i, t := range p.selected {
		if t == tag {
			p.selected = append(p.selected[:i:i], p.selected[i+1:]...)
			return
		}
	}
}

// HandleKey applies the keyboard contract:
//   - Enter commits the focused suggestion, or the raw input when nothing
//     is focused and the input is non-empty.
//   - ArrowDown/ArrowUp move the focus clamped to [-1, len(suggestions)-1].
//   - Escape closes the list and resets focus without touching tags.
//   - Backspace on empty input removes the most recently added tag.
func (p *TagPicker) HandleKey(key Key) {
	switch key {
	case KeyEnter:
		suggestions := p.Suggestions()
		if p.focused >= 0 && p.focused < len(suggestions) {
			p.AddTag(suggestions[p.focused])
		} else if strings.TrimSpace(p.input) != "" {
			p.AddTag(p.input)
		}
	case KeyArrowDown:
		if p.focused < len(p.Suggestions())-1 {
			p.focused++
		}
	case KeyArrowUp:
		if p.focused > 0 {
			p.focused--
		} else {
			p.focused = -1
		}
	case KeyEscape:
		p.open = false
		p.focused = -1
	case KeyBackspace:
		if p.input == "" && len(p.selected) > 0 {
			p.RemoveTag(p.selected[len(p.selected)-1])
		}
	}
}

// Input returns the current partial text.
func (p *TagPicker) Input() string { return p.input }

// Selected returns a copy of the selected tags in insertion order.
func (p *TagPicker) Selected() []string {
	return append([]string(nil), p.selected...)
}

// IsOpen reports whether the suggestion list is visible.
func (p *TagPicker) IsOpen() bool { return p.open }

// FocusedIndex returns the keyboard-highlighted suggestion index, -1 when
// none is focused.
func (p *TagPicker) FocusedIndex() int { return p.focused }

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
