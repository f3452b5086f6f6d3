// Copyright © 2016, The T Authors.

package attr

import "strconv"

// Well-known pane attribute names read by the document core (§6.4).
const (
	RenderWrapKey    = "render-wrap"
	ShiftLeftKey     = "shift-left"
	RenderVMarginKey = "render-vmargin"
	HeadingKey       = "heading"
	BackgroundKey    = "background"
	HideCursorKey    = "hide-cursor"
	LineFormatKey    = "line-format"
)

// RenderWrap reports whether render-wrap is "yes".
func (s *Set) RenderWrap() bool {
	v, _ := s.Lookup(RenderWrapKey)
	return v == "yes"
}

// ShiftLeft returns the pinned shift-left amount and whether it
// was set. A pinned shift-left disables horizontal auto-shift.
func (s *Set) ShiftLeft() (pixels int, ok bool) {
	v, present := s.Lookup(ShiftLeftKey)
	if !present {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// VMargin returns the configured scroll-off margin in pixels,
// or 0 if unset.
func (s *Set) VMargin() int {
	v, ok := s.Lookup(RenderVMarginKey)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Heading returns the sticky header line, if any.
func (s *Set) Heading() (string, bool) { return s.Lookup(HeadingKey) }

// Background returns the background-painter descriptor
// ("color:<css>", "image:<path>", or "call:<cmd>"), if any.
func (s *Set) Background() (string, bool) { return s.Lookup(BackgroundKey) }

// HideCursor reports whether hide-cursor is "yes".
func (s *Set) HideCursor() bool {
	v, _ := s.Lookup(HideCursorKey)
	return v == "yes"
}

// LineFormat returns the configured row format string, if any.
func (s *Set) LineFormat() (string, bool) { return s.Lookup(LineFormatKey) }
