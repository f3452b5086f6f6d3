// Copyright © 2016, The T Authors.

package font_test

import (
	"testing"

	"github.com/neilbrown/edlib-sub004/font"
	"github.com/neilbrown/edlib-sub004/font/testfont"
)

func TestFaceMetricsAndAdvance(t *testing.T) {
	tf := &testfont.Font{
		A: 10 << 8,
		H: 14 << 8,
		Adv: map[font.Glyph]font.Fix32{
			testfont.Glyph('a'): 1 << 8,
		},
		Kern: map[[2]font.Glyph]font.Fix32{
			{testfont.Glyph('a'), testfont.Glyph('b')}: -0x80,
		},
	}
	face := font.NewFace(tf)
	defer face.Close()

	m := face.Metrics()
	if got, want := m.Ascent.Round(), 10; got != want {
		t.Errorf("Metrics().Ascent.Round() = %d, want %d", got, want)
	}
	if got, want := m.Height.Round(), 14; got != want {
		t.Errorf("Metrics().Height.Round() = %d, want %d", got, want)
	}

	if adv, ok := face.GlyphAdvance('a'); !ok || adv.Round() != 1 {
		t.Errorf("GlyphAdvance('a') = %v,%v, want 1,true", adv, ok)
	}
	if k := face.Kern('a', 'b'); k >= 0 {
		t.Errorf("Kern('a','b') = %v, want a negative offset", k)
	}
}
