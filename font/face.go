// Copyright © 2016, The T Authors.

package font

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// fix32To26_6 converts a Fix32 (24.8 fixed-point, as freetype
// reports it) to a fixed.Int26_6 (26.6 fixed-point, as
// golang.org/x/image/font reports it): both keep the integer part
// in the high bits, so the conversion is a pure bit-count adjustment,
// not a value rescale.
func fix32To26_6(f Fix32) fixed.Int26_6 {
	return fixed.Int26_6(int64(f) >> 2)
}

// face adapts a Font to golang.org/x/image/font.Face, so a TTF
// loaded with LoadTTF can back render.Measure and
// render.FindOffsetAtX directly. Only the metric methods
// (Metrics, Kern, GlyphAdvance) are implemented with real data;
// Glyph and GlyphBounds — which rasterize — are not needed by this
// module's line measurement and always report ok=false, since
// Font itself only measures, it does not rasterize to an
// x/image/font.Face's mask convention.
type face struct {
	f Font
}

// NewFace adapts f to golang.org/x/image/font.Face, for use as a
// viewport.Viewport's face (see viewport.Viewport.SetFace) or
// directly with render.Measure/FindOffsetAtX.
func NewFace(f Font) font.Face { return &face{f: f} }

func (a *face) Close() error { return nil }

func (a *face) Metrics() font.Metrics {
	h := fix32To26_6(a.f.Height())
	asc := fix32To26_6(a.f.Ascent())
	return font.Metrics{
		Height:  h,
		Ascent:  asc,
		Descent: h - asc,
	}
}

func (a *face) Kern(r0, r1 rune) fixed.Int26_6 {
	return fix32To26_6(a.f.Kerning(a.f.Glyph(r0), a.f.Glyph(r1)))
}

func (a *face) GlyphAdvance(r rune) (advance fixed.Int26_6, ok bool) {
	return fix32To26_6(a.f.Advance(a.f.Glyph(r))), true
}

func (a *face) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	return fixed.Rectangle26_6{}, 0, false
}

func (a *face) Glyph(dot fixed.Point26_6, r rune) (dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {
	return image.Rectangle{}, nil, image.Point{}, 0, false
}
