// Copyright © 2016, The T Authors.

package render

import (
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// A RenderedLine is a measured rectangle of text: the product of
// render_line plus a font.Face pass over it. It corresponds to the
// "cell" of §4.4/§7's glossary.
type RenderedLine struct {
	// Text is the raw markup source render_line produced.
	Text string
	// Width and Height are the cell's pixel extent.
	Width, Height fixed.Int26_6
	// Ascent is the distance from the cell's top to the baseline.
	Ascent fixed.Int26_6
	// CursorOffset is the byte offset within Text the cursor sits
	// at, or -1 if the cursor is not on this line.
	CursorOffset int
	// CursorX is the pixel x-coordinate of CursorOffset, valid only
	// when CursorOffset >= 0.
	CursorX fixed.Int26_6
	// complete is false only while a \f mid-measurement has cut the
	// line short of a full face.Height line (see Measure).
	complete bool
}

// Complete reports whether the line ended on a hard newline or EOF
// rather than being cut short by a page marker.
func (l RenderedLine) Complete() bool { return l.complete }

// Measure renders raw (the markup source render_line returned) into
// a RenderedLine using face for glyph metrics, with cursorOffset
// set per render-line:measure's contract (-1 if not applicable).
// Tabs advance to the next multiple-of-8 column measured in the
// advance width of a space, matching §6.3's column rule; a `<fg:...>` open
// only affects color, never metrics, so it is skipped for width
// purposes. Grounded on the teacher's ui/text.Setter, which walks a
// font.Face the same way to lay out spans.
func Measure(face font.Face, raw string, cursorOffset int) RenderedLine {
	m := face.Metrics()
	l := RenderedLine{
		Text:         raw,
		Height:       m.Height,
		Ascent:       m.Ascent,
		CursorOffset: -1,
		complete:     true,
	}
	var x fixed.Int26_6
	var prev rune
	hasPrev := false
	tabStop := tabWidth(face)

	setCursor := func(offset int) {
		if cursorOffset >= 0 && l.CursorOffset < 0 && offset >= cursorOffset {
			l.CursorOffset = offset
			l.CursorX = x
		}
	}

	pos := 0
	for _, tok := range Tokenize(raw) {
		switch tok.Kind {
		case Text:
			for _, r := range tok.Text {
				if cursorOffset >= 0 && pos == cursorOffset && l.CursorOffset < 0 {
					l.CursorOffset = pos
					l.CursorX = x
				}
				if hasPrev {
					x += face.Kern(prev, r)
				}
				adv, ok := face.GlyphAdvance(r)
				if ok {
					x += adv
				}
				prev, hasPrev = r, true
				pos += len(string(r))
			}
		case Tab:
			col := x / tabStop
			x = (col + 1) * tabStop
			hasPrev = false
			pos++
		case Control:
			esc := controlEscape([]rune(tok.Text)[0])
			for _, r := range esc {
				if r == '<' || r == '>' || r == '/' {
					continue
				}
				adv, ok := face.GlyphAdvance(r)
				if ok {
					x += adv
				}
			}
			pos += len(esc)
			hasPrev = false
		case Newline:
			pos++
		case FormFeed:
			pos++
			l.complete = false
		case Open, Close:
			// Markup brackets affect only attributes, never layout.
		}
		setCursor(pos)
	}
	l.Width = x
	return l
}

// FindOffsetAtX returns the byte offset within raw whose glyph cell
// contains pixel x, measuring with face exactly as Measure does.
// Used by the Viewport's cursor-placement operation (set_cursor) to
// translate a click's x coordinate into a position within a
// rendered line. If x falls past the end of the line, the offset of
// its terminating newline or `\f` is returned, or the offset just
// past its last character if it has neither.
func FindOffsetAtX(face font.Face, raw string, x fixed.Int26_6) int {
	var cur fixed.Int26_6
	var prev rune
	hasPrev := false
	tabStop := tabWidth(face)
	pos := 0
	for _, tok := range Tokenize(raw) {
		switch tok.Kind {
		case Text:
			for _, r := range tok.Text {
				if hasPrev {
					cur += face.Kern(prev, r)
				}
				adv, ok := face.GlyphAdvance(r)
				if !ok {
					adv = 0
				}
				if x < cur+adv/2 {
					return pos
				}
				cur += adv
				prev, hasPrev = r, true
				pos += len(string(r))
			}
		case Tab:
			next := (cur/tabStop + 1) * tabStop
			if x < (cur+next)/2 {
				return pos
			}
			cur = next
			hasPrev = false
			pos++
		case Control:
			esc := controlEscape([]rune(tok.Text)[0])
			for _, r := range esc {
				if r == '<' || r == '>' || r == '/' {
					continue
				}
				adv, ok := face.GlyphAdvance(r)
				if ok {
					cur += adv
				}
			}
			if x < cur {
				return pos
			}
			pos += len(esc)
			hasPrev = false
		case Newline, FormFeed:
			return pos
		case Open, Close:
		}
	}
	return pos
}

func tabWidth(face font.Face) fixed.Int26_6 {
	adv, ok := face.GlyphAdvance(' ')
	if !ok || adv == 0 {
		return fixed.I(8)
	}
	return adv * 8
}
