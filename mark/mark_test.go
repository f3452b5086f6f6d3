// Copyright © 2016, The T Authors.

package mark

import (
	"errors"
	"testing"

	"github.com/neilbrown/edlib-sub004/core"
	"github.com/neilbrown/edlib-sub004/doc"
)

func newTestStore(t *testing.T) (*doc.Text, *Store) {
	t.Helper()
	d := doc.NewTextString("hello world")
	return d, NewStore(d, nil)
}

// TestOrderingInvariant covers Invariant 1: the all list and every
// live View's list iterate in strictly increasing seq, and a Point
// appears in every live View's list.
func TestOrderingInvariant(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v1 := s.NewView("pane1")
	v2 := s.NewView("pane2")

	for i := 0; i < 5; i++ {
		if _, err := s.NewMark(v1); err != nil {
			t.Fatalf("NewMark: %v", err)
		}
	}
	p, err := s.NewPoint()
	if err != nil {
		t.Fatalf("NewPoint: %v", err)
	}

	if errs := s.Check(); len(errs) != 0 {
		t.Fatalf("Check: %v", errs)
	}

	var prev *Mark
	for m := s.allHead; m != nil; m = m.allNext {
		if prev != nil && prev.seq >= m.seq {
			t.Fatalf("all list out of order: %v then %v", prev, m)
		}
		prev = m
	}

	found := false
	for e := v2.head.next; e != v2.tail; e = e.next {
		if e.mark == p {
			found = true
		}
	}
	if !found {
		t.Fatalf("point %v missing from view2's list", p)
	}
}

// TestMarkToMarkRefPropagation covers Invariant 2: after
// MarkToMark(m, t), m.Ref() == t.Ref() and m sits immediately
// beside t in its view with no intervening mark.
func TestMarkToMarkRefPropagation(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	a, _ := s.NewMark(v)
	b, _ := s.NewMark(v)
	c, _ := s.NewMark(v)

	a.ref = doc.Ref{Index: 1}
	b.ref = doc.Ref{Index: 5}
	c.ref = doc.Ref{Index: 9}

	if err := s.MarkToMark(a, c); err != nil {
		t.Fatalf("MarkToMark: %v", err)
	}
	if a.Ref() != c.Ref() {
		t.Fatalf("a.Ref() = %v, want %v", a.Ref(), c.Ref())
	}
	if VMarkNext(v, c) != a && VMarkPrev(v, c) != a {
		t.Fatalf("a is not adjacent to c in view list")
	}
	if errs := s.Check(); len(errs) != 0 {
		t.Fatalf("Check: %v", errs)
	}
}

// TestScenarioSeqGapExhaustion is Scenario C: forcing two adjacent
// marks to seq = k, k+1 and then duplicating one of them must
// trigger a reshuffle that leaves non-adjacent seqs around the
// insertion point, no negative seq, and the total order intact.
func TestScenarioSeqGapExhaustion(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	left, _ := s.NewMark(v)
	right, _ := s.NewMark(v)

	left.seq = 1000
	right.seq = 1001

	dup, err := s.MarkDupView(left)
	if err != nil {
		t.Fatalf("MarkDupView: %v", err)
	}

	var prev *Mark
	for m := s.allHead; m != nil; m = m.allNext {
		if m.seq < 0 {
			t.Fatalf("seq went negative: %v", m)
		}
		if prev != nil && prev.seq >= m.seq {
			t.Fatalf("total order violated: %v then %v", prev, m)
		}
		prev = m
	}

	if dup.seq-left.seq < 2 && left.seq-dup.seq < 2 {
		// dup must land strictly between left and right with room
		// to spare on at least one side after the spread.
	}
	gapLeft := dup.seq - left.seq
	if gapLeft < 0 {
		gapLeft = -gapLeft
	}
	gapRight := right.seq - dup.seq
	if gapRight < 0 {
		gapRight = -gapRight
	}
	if gapLeft <= 1 && gapRight <= 1 {
		t.Fatalf("reshuffle left no breathing room: left=%d dup=%d right=%d", left.seq, dup.seq, right.seq)
	}

	if errs := s.Check(); len(errs) != 0 {
		t.Fatalf("Check: %v", errs)
	}
}

func TestFreeInvalidatesMark(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	m, _ := s.NewMark(v)
	s.Free(m)
	if m.Valid() {
		t.Fatalf("m still valid after Free")
	}
	if errs := s.Check(); len(errs) != 0 {
		t.Fatalf("Check: %v", errs)
	}
}

func TestDelViewFreesGroupedMarksKeepsPoints(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	m, _ := s.NewMark(v)
	p, _ := s.NewPoint()

	if err := s.DelView(v); err != nil {
		t.Fatalf("DelView: %v", err)
	}
	if m.Valid() {
		t.Fatalf("grouped mark survived DelView")
	}
	if !p.Valid() {
		t.Fatalf("point was invalidated by DelView")
	}
}

func TestHandleReplacedRelocatesMarks(t *testing.T) {
	d := doc.NewTextString("0123456789")
	s := NewStore(d, nil)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	m, _ := s.NewMark(v)
	m.ref = doc.Ref{Index: 7}

	if _, err := d.Replace(doc.Ref{Index: 2}, doc.Ref{Index: 4}, "XX"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if m.Ref().Index != 7 {
		t.Fatalf("mark at 7 should be unaffected by a same-length replace at [2,4), got %v", m.Ref())
	}

	if _, err := d.Replace(doc.Ref{Index: 2}, doc.Ref{Index: 4}, "XXXX"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if m.Ref().Index != 9 {
		t.Fatalf("mark after a growing replace should shift by the size delta, got %v, want 9", m.Ref())
	}
}

// TestCheckReportsEveryViolation covers Check's "accumulate, don't
// stop at the first" contract: a seq-order break and an independent
// bad view entry, forced directly on unexported state, must both
// show up in one Check call, and the one-shot warning must latch
// (a second inconsistent Check does not log again).
func TestCheckReportsEveryViolation(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	a, _ := s.NewMark(v)
	b, _ := s.NewMark(v)

	// Break seq order along the all list.
	a.seq, b.seq = 100, 99

	// Break a View entry by pointing it at a freed mark directly,
	// without going through Free's own list bookkeeping.
	v.head.next.mark.flags &^= Valid

	errs := s.Check()
	kinds := make(map[string]bool, len(errs))
	for _, e := range errs {
		kinds[e.Kind] = true
	}
	if !kinds["seq-order"] || !kinds["bad-entry"] {
		t.Fatalf("Check() = %v, want both seq-order and bad-entry violations", errs)
	}

	if !s.warnedInconsistent {
		t.Fatalf("Check did not latch warnedInconsistent after finding violations")
	}
	s.logger = nil // the second call must not touch the logger.
	if errs2 := s.Check(); len(errs2) == 0 {
		t.Fatalf("second Check() found no violations, want the same ones to persist")
	}
}

// TestMarksShareKeyPool covers attr.KeyPool wiring: every Mark a
// Store creates, whether by NewMark, NewPoint, MarkDup, or
// MarkDupView, attaches the Store's single KeyPool to its attribute
// Set, so the same logical attribute key inserted on two different
// Marks interns to the same backing string.
func TestMarksShareKeyPool(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	v := s.NewView("pane")
	a, _ := s.NewMark(v)
	b, _ := s.NewMark(v)
	p, _ := s.NewPoint()
	dup, _ := s.MarkDup(a)
	dupView, _ := s.MarkDupView(b)

	for _, m := range []*Mark{a, b, p, dup, dupView} {
		if err := m.Attrs().Insert("lines", "1"); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if s.keyPool.Len() != 1 {
		t.Fatalf("keyPool.Len()=%d, want 1 (every mark inserted the same logical key)", s.keyPool.Len())
	}
	for _, m := range []*Mark{a, b, p, dup, dupView} {
		if got := m.Attrs().At(0).Key; got != "lines" {
			t.Fatalf("mark %v stored key %q, want \"lines\"", m, got)
		}
	}
}

// TestErrorsClassifyAsOutcomes covers the §7 taxonomy wiring: a
// caller can recover the core.Outcome behind any of this package's
// sentinel errors with errors.Is, without parsing messages.
func TestErrorsClassifyAsOutcomes(t *testing.T) {
	tests := []struct {
		err  error
		want core.Outcome
	}{
		{ErrNoView, core.NoArg},
		{ErrInvalidView, core.Invalid},
		{ErrNotAPoint, core.Invalid},
		{ErrDifferentDoc, core.Invalid},
		{ErrSeqExhausted, core.Fail},
	}
	for _, test := range tests {
		if !errors.Is(test.err, test.want) {
			t.Errorf("errors.Is(%v, %v) = false, want true", test.err, test.want)
		}
	}
}

// TestNewMarkNilViewIsNoArg covers the split between a missing View
// (core.NoArg) and a stale/out-of-range one (core.Invalid).
func TestNewMarkNilViewIsNoArg(t *testing.T) {
	d, s := newTestStore(t)
	defer d.Close()
	defer s.Close()

	if _, err := s.NewMark(nil); !errors.Is(err, core.NoArg) {
		t.Fatalf("NewMark(nil) = %v, want an error wrapping core.NoArg", err)
	}

	v := s.NewView("pane")
	s.DelView(v)
	if _, err := s.NewMark(v); !errors.Is(err, core.Invalid) {
		t.Fatalf("NewMark(stale view) = %v, want an error wrapping core.Invalid", err)
	}
}
