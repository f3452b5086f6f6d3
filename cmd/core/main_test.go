// Copyright © 2016, The T Authors.

package main

import (
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/neilbrown/edlib-sub004/attr"
	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/linecounter"
	"github.com/neilbrown/edlib-sub004/mark"
	"github.com/neilbrown/edlib-sub004/render"
	"github.com/neilbrown/edlib-sub004/viewport"
)

func newTestCore(t *testing.T) (*doc.Text, *mark.Store, *mark.Mark, *viewport.Viewport, *linecounter.Counter) {
	t.Helper()
	d := doc.NewTextString("one\ntwo\nthree\n")
	store := mark.NewStore(d, nil)
	pt, err := store.NewPoint()
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}
	if err := store.MarkToEnd(pt, false); err != nil {
		t.Fatalf("MarkToEnd: %v", err)
	}

	oracle := render.NewDocOracle(store)
	vp := viewport.New(store, oracle, &attr.Set{}, fixed.I(640), fixed.I(400))
	if err := vp.Reposition(pt); err != nil {
		t.Fatalf("Reposition: %v", err)
	}
	counter := linecounter.New(store)
	return d, store, pt, vp, counter
}

func TestRunCommandInsertAndCount(t *testing.T) {
	d, store, pt, vp, counter := newTestCore(t)
	defer store.Close()
	defer vp.Close()
	defer counter.Close()
	defer d.Close()

	if !runCommand("ifour\n", d, store, pt, vp, counter) {
		t.Fatal("runCommand(i) should not quit")
	}
	lines, _, _, err := counter.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if lines != 3 {
		t.Fatalf("lines = %d, want 3", lines)
	}
}

func TestRunCommandQuit(t *testing.T) {
	d, store, pt, vp, counter := newTestCore(t)
	defer store.Close()
	defer vp.Close()
	defer counter.Close()
	defer d.Close()

	if runCommand("q", d, store, pt, vp, counter) {
		t.Fatal("runCommand(q) should signal quit")
	}
}

func TestRunCommandUnknown(t *testing.T) {
	d, store, pt, vp, counter := newTestCore(t)
	defer store.Close()
	defer vp.Close()
	defer counter.Close()
	defer d.Close()

	if !runCommand("z", d, store, pt, vp, counter) {
		t.Fatal("runCommand(unknown) should not quit")
	}
}
