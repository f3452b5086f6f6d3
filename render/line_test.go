// Copyright © 2016, The T Authors.

package render

import (
	"testing"

	"golang.org/x/image/font/basicfont"
)

func TestMeasureProducesPositiveExtent(t *testing.T) {
	face := basicfont.Face7x13
	l := Measure(face, "hello\n", -1)
	if l.Width <= 0 {
		t.Fatalf("Width = %v, want > 0", l.Width)
	}
	if l.Height <= 0 {
		t.Fatalf("Height = %v, want > 0", l.Height)
	}
	if !l.Complete() {
		t.Fatalf("Complete() = false, want true")
	}
}

func TestMeasureFormFeedIncomplete(t *testing.T) {
	face := basicfont.Face7x13
	l := Measure(face, "abc\fhidden", -1)
	if l.Complete() {
		t.Fatalf("Complete() = true, want false after \\f")
	}
}

func TestMeasureTabAdvancesColumn(t *testing.T) {
	face := basicfont.Face7x13
	noTab := Measure(face, "a", -1)
	withTab := Measure(face, "a\t", -1)
	if withTab.Width <= noTab.Width {
		t.Fatalf("tab did not advance width: %v vs %v", withTab.Width, noTab.Width)
	}
}
