// Copyright © 2016, The T Authors.

package render

import (
	"testing"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
)

func newOracle(t *testing.T, content string) (*doc.Text, *mark.Store, *DocOracle) {
	t.Helper()
	d := doc.NewTextString(content)
	s := mark.NewStore(d, nil)
	return d, s, NewDocOracle(s)
}

func TestRenderLineSplitsOnNewline(t *testing.T) {
	d, s, o := newOracle(t, "first\nsecond\nthird")
	defer d.Close()
	defer s.Close()

	v := s.NewView("test")
	m, _ := s.NewMark(v)

	line1, err := o.RenderLine(m, -1, nil)
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if line1 != "first\n" {
		t.Fatalf("line1 = %q, want %q", line1, "first\n")
	}

	line2, _ := o.RenderLine(m, -1, nil)
	if line2 != "second\n" {
		t.Fatalf("line2 = %q, want %q", line2, "second\n")
	}

	line3, _ := o.RenderLine(m, -1, nil)
	if line3 != "third" {
		t.Fatalf("line3 = %q, want %q", line3, "third")
	}
}

func TestRenderLinePrevFindsSOL(t *testing.T) {
	d, s, o := newOracle(t, "first\nsecond\nthird")
	defer d.Close()
	defer s.Close()

	v := s.NewView("test")
	m, _ := s.NewMark(v)
	for i := 0; i < 9; i++ { // step into "second"
		if _, err := s.MarkStep(m, true); err != nil {
			t.Fatalf("MarkStep: %v", err)
		}
	}

	if err := o.RenderLinePrev(m, false); err != nil {
		t.Fatalf("RenderLinePrev: %v", err)
	}
	if m.Ref().Index != 6 {
		t.Fatalf("m.Ref().Index = %d, want 6 (start of \"second\")", m.Ref().Index)
	}
}

func TestRenderLineRoundTripLaw(t *testing.T) {
	d, s, o := newOracle(t, "alpha\nbeta\ngamma")
	defer d.Close()
	defer s.Close()

	v := s.NewView("test")
	start, _ := s.NewMark(v)
	end, _ := s.NewMark(v)

	text, err := o.RenderLine(end, -1, nil)
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if text != "alpha\n" {
		t.Fatalf("text = %q", text)
	}
	if err := o.RenderLinePrev(end, true); err != nil {
		t.Fatalf("RenderLinePrev: %v", err)
	}
	if end.Ref() != start.Ref() {
		t.Fatalf("round-trip landed at %v, want %v", end.Ref(), start.Ref())
	}
}

func TestRenderLineStopsAtStopMark(t *testing.T) {
	d, s, o := newOracle(t, "0123456789\n")
	defer d.Close()
	defer s.Close()

	v := s.NewView("test")
	m, _ := s.NewMark(v)
	stop, _ := s.NewMark(v)
	for i := 0; i < 5; i++ {
		if _, err := s.MarkStep(stop, true); err != nil {
			t.Fatalf("MarkStep: %v", err)
		}
	}

	text, err := o.RenderLine(m, -1, stop)
	if err != nil {
		t.Fatalf("RenderLine: %v", err)
	}
	if text != "01234" {
		t.Fatalf("text = %q, want %q", text, "01234")
	}
}

func TestRenderLineEscapesControlChars(t *testing.T) {
	d, s, o := newOracle(t, "a\x01b\n")
	defer d.Close()
	defer s.Close()

	v := s.NewView("test")
	m, _ := s.NewMark(v)
	text, _ := o.RenderLine(m, -1, nil)
	if text != "a<fg:red>^A</>b\n" {
		t.Fatalf("text = %q", text)
	}
}
