// Copyright © 2016, The T Authors.

package mark

import "github.com/neilbrown/edlib-sub004/doc"

// --- all list plumbing -----------------------------------------------

func (s *Store) linkAllAfter(prev, m *Mark) {
	if prev == nil {
		m.allPrev, m.allNext = nil, s.allHead
		if s.allHead != nil {
			s.allHead.allPrev = m
		}
		s.allHead = m
		if s.allTail == nil {
			s.allTail = m
		}
		return
	}
	m.allPrev, m.allNext = prev, prev.allNext
	if prev.allNext != nil {
		prev.allNext.allPrev = m
	} else {
		s.allTail = m
	}
	prev.allNext = m
}

func (s *Store) unlinkAll(m *Mark) {
	if m.allPrev != nil {
		m.allPrev.allNext = m.allNext
	} else {
		s.allHead = m.allNext
	}
	if m.allNext != nil {
		m.allNext.allPrev = m.allPrev
	} else {
		s.allTail = m.allPrev
	}
	m.allPrev, m.allNext = nil, nil
}

// --- points list plumbing ---------------------------------------------

func (s *Store) linkPointAfter(prev, m *Mark) {
	if prev == nil {
		m.pointPrev, m.pointNext = nil, s.pointHead
		if s.pointHead != nil {
			s.pointHead.pointPrev = m
		}
		s.pointHead = m
		if s.pointTail == nil {
			s.pointTail = m
		}
		return
	}
	m.pointPrev, m.pointNext = prev, prev.pointNext
	if prev.pointNext != nil {
		prev.pointNext.pointPrev = m
	} else {
		s.pointTail = m
	}
	prev.pointNext = m
}

func (s *Store) unlinkPoint(m *Mark) {
	if m.pointPrev != nil {
		m.pointPrev.pointNext = m.pointNext
	} else {
		s.pointHead = m.pointNext
	}
	if m.pointNext != nil {
		m.pointNext.pointPrev = m.pointPrev
	} else {
		s.pointTail = m.pointPrev
	}
	m.pointPrev, m.pointNext = nil, nil
}

// --- views --------------------------------------------------------------

// NewView allocates a View owned by owner and returns it. Every
// live Point is retroactively given an entry at the end of the
// new View's list, since a Point belongs to every live View
// simultaneously.
func (s *Store) NewView(owner interface{}) *View {
	index := len(s.views)
	for i, v := range s.views {
		if v == nil {
			index = i
			break
		}
	}
	v := newView(s, index, owner)
	if index == len(s.views) {
		s.views = append(s.views, v)
	} else {
		s.views[index] = v
	}
	for p := s.pointHead; p != nil; p = p.pointNext {
		s.attachPointToView(p, v)
	}
	return v
}

func (s *Store) attachPointToView(p *Mark, v *View) {
	for len(p.lists) <= v.index {
		p.lists = append(p.lists, nil)
	}
	e := &entry{mark: p}
	v.insertEntryAfter(v.tail.prev, e)
	p.lists[v.index] = e
}

// DelView closes a View: every ordinary Mark grouped in it is
// freed (per §5, the MarkStore frees every mark in a view when its
// owning pane closes it), and every Point's entry for it is
// dropped. It is an error to pass an invalid view index.
func (s *Store) DelView(v *View) error {
	if v == nil {
		return ErrNoView
	}
	if v.index >= len(s.views) || s.views[v.index] != v {
		return ErrInvalidView
	}
	for e := v.head.next; e != v.tail; {
		next := e.next
		if e.mark.group >= 0 {
			s.Free(e.mark)
		} else {
			// A Point's entry: just drop it from this view.
			e.mark.lists[v.index] = nil
		}
		e = next
	}
	s.views[v.index] = nil
	return nil
}

// --- mark / point creation -----------------------------------------------

// NewMark creates a grouped Mark at the end of the all list and at
// the end of v's list.
func (s *Store) NewMark(v *View) (*Mark, error) {
	if v == nil {
		return nil, ErrNoView
	}
	if v.index >= len(s.views) || s.views[v.index] != v {
		return nil, ErrInvalidView
	}
	seq, err := s.seqBetween(s.allTail, nil)
	if err != nil {
		return nil, err
	}
	m := &Mark{store: s, seq: seq, group: Group(v.index), flags: Valid}
	m.attrs.SetKeyPool(s.keyPool)
	s.linkAllAfter(s.allTail, m)
	e := &entry{mark: m}
	v.insertEntryAfter(v.tail.prev, e)
	m.viewEntry = e
	return m, nil
}

// NewPoint creates a Point at the end of the all list, the end of
// the points list, and the end of every live View's list.
func (s *Store) NewPoint() (*Mark, error) {
	seq, err := s.seqBetween(s.allTail, nil)
	if err != nil {
		return nil, err
	}
	m := &Mark{store: s, seq: seq, group: PointGroup, flags: Valid}
	m.attrs.SetKeyPool(s.keyPool)
	s.linkAllAfter(s.allTail, m)
	s.linkPointAfter(s.pointTail, m)
	for _, v := range s.views {
		if v == nil {
			continue
		}
		s.attachPointToView(m, v)
	}
	return m, nil
}

// MarkDup creates an ungrouped Mark at the same ref as m, seqed
// immediately after m; siblings of m in the all list are left
// untouched.
func (s *Store) MarkDup(m *Mark) (*Mark, error) {
	if !m.Valid() {
		return nil, ErrInvalidView
	}
	seq, err := s.seqBetween(m, m.allNext)
	if err != nil {
		return nil, err
	}
	dup := &Mark{store: s, ref: m.ref, seq: seq, group: Ungrouped, flags: Valid}
	dup.attrs.SetKeyPool(s.keyPool)
	s.linkAllAfter(m, dup)
	return dup, nil
}

// MarkDupView creates a Mark in the same View's list as m, just
// after m. m must not be a Point.
func (s *Store) MarkDupView(m *Mark) (*Mark, error) {
	if !m.Valid() {
		return nil, ErrInvalidView
	}
	if m.IsPoint() {
		return nil, ErrNotAPoint
	}
	seq, err := s.seqBetween(m, m.allNext)
	if err != nil {
		return nil, err
	}
	dup := &Mark{store: s, ref: m.ref, seq: seq, group: m.group, flags: Valid}
	dup.attrs.SetKeyPool(s.keyPool)
	s.linkAllAfter(m, dup)
	if m.group >= 0 {
		v := s.views[m.group]
		e := &entry{mark: dup}
		v.insertEntryAfter(m.viewEntry, e)
		dup.viewEntry = e
	}
	return dup, nil
}

// --- relocation -----------------------------------------------------------

// MarkToMark relocates m to target's position: it copies target's
// ref and re-seqs m to sit immediately after target in the all
// list (and, if grouped, in its View's list). If m and target
// belong to different Stores, the relocation is logged and
// skipped rather than treated as an error.
func (s *Store) MarkToMark(m, target *Mark) error {
	if !m.Valid() || !target.Valid() {
		return ErrInvalidView
	}
	if m.store != target.store {
		s.logger.Printf("mark: MarkToMark(%v, %v): different documents, ignoring", m, target)
		return nil
	}
	if m.IsPoint() {
		return s.pointMoveTo(m, target.ref, target)
	}
	m.ref = target.ref
	seq, err := s.seqBetween(target, target.allNext)
	if err != nil {
		return err
	}
	s.unlinkAll(m)
	s.linkAllAfter(target, m)
	m.seq = seq
	if m.group >= 0 {
		s.views[m.group].spliceBySeq(m.viewEntry)
	}
	s.fireMarkMoving(m)
	return nil
}

// MarkToEnd places m before (end == false) or after (end == true)
// every other mark in every list it belongs to.
func (s *Store) MarkToEnd(m *Mark, end bool) error {
	if !m.Valid() {
		return ErrInvalidView
	}
	s.unlinkAll(m)
	var seq Seq
	var err error
	if end {
		seq, err = s.seqBetween(s.allTail, nil)
	} else {
		seq, err = s.seqBetween(nil, s.allHead)
	}
	if err != nil {
		return err
	}
	if end {
		s.linkAllAfter(s.allTail, m)
	} else {
		s.linkAllAfter(nil, m)
	}
	m.seq = seq

	reposition := func(v *View, e *entry) {
		v.removeEntry(e)
		if end {
			v.insertEntryAfter(v.tail.prev, e)
		} else {
			v.insertEntryAfter(v.head, e)
		}
	}
	switch {
	case m.group >= 0:
		reposition(s.views[m.group], m.viewEntry)
	case m.IsPoint():
		if end {
			s.unlinkPoint(m)
			s.linkPointAfter(s.pointTail, m)
		} else {
			s.unlinkPoint(m)
			s.linkPointAfter(nil, m)
		}
		for _, v := range s.views {
			if v == nil {
				continue
			}
			if e := m.lists[v.index]; e != nil {
				reposition(v, e)
			}
		}
	}
	s.fireMarkMoving(m)
	return nil
}

// spliceBySeq removes e from its View and reinserts it at the
// position its mark's seq now dictates. It walks from the View's
// head, so its cost grows with the entry's position in the View;
// pointMoveTo in vmark.go uses it for every View a Point is in.
func (v *View) spliceBySeq(e *entry) {
	v.removeEntry(e)
	at := v.head
	for at.next != v.tail && at.next.mark.seq < e.mark.seq {
		at = at.next
	}
	v.insertEntryAfter(at, e)
}

// MarkStep advances m over every adjacent mark that compares same
// under the Doc's RefsEqual, performs one Doc step, then
// re-absorbs any marks now at the same position. It returns the
// rune stepped over, or doc.EOF at either end of the Doc.
func (s *Store) MarkStep(m *Mark, forward bool) (rune, error) {
	if !m.Valid() {
		return doc.EOF, ErrInvalidView
	}
	dir := doc.ForwardStep
	if !forward {
		dir = doc.BackwardStep
	}
	r, next := s.doc.CharAt(m.ref, dir)
	if r == doc.EOF {
		return doc.EOF, nil
	}
	m.ref = next
	s.reseatBesideTies(m, forward)
	s.fireMarkMoving(m)
	return r, nil
}

// reseatBesideTies moves m, within the all list only (view
// membership is unaffected by a content-position tie), next to
// any mark it is now content-identical to, so that repeated steps
// keep same-position marks contiguous for mark_same-based
// iteration.
func (s *Store) reseatBesideTies(m *Mark, forward bool) {
	scan := m.allNext
	if !forward {
		scan = m.allPrev
	}
	for scan != nil {
		if !s.doc.RefsEqual(scan.ref, m.ref) {
			return
		}
		scan = nextOrPrevAll(scan, forward)
	}
	// No adjacent tie in the direction of travel: nothing to do;
	// m already sits at the correct relative position since only
	// its ref changed, not its seq ordering relative to unrelated
	// marks elsewhere in the Doc.
}

func nextOrPrevAll(m *Mark, forward bool) *Mark {
	if forward {
		return m.allNext
	}
	return m.allPrev
}

// Free unlinks m from every list it belongs to and invalidates it.
func (s *Store) Free(m *Mark) {
	if !m.Valid() {
		return
	}
	s.unlinkAll(m)
	switch {
	case m.group >= 0:
		if v := s.views[m.group]; v != nil {
			v.removeEntry(m.viewEntry)
		}
	case m.IsPoint():
		s.unlinkPoint(m)
		for _, v := range s.views {
			if v == nil {
				continue
			}
			if e := m.lists[v.index]; e != nil {
				v.removeEntry(e)
			}
		}
	}
	s.fireMarkMoving(m)
	m.flags &^= Valid
	m.ref = doc.Ref{}
	m.mdata = nil
}

// --- clipping -------------------------------------------------------------

// ClipDirection selects which terminus clipped marks collapse to.
type ClipDirection int

const (
	// ClipToStart collapses interior marks onto start.
	ClipToStart ClipDirection = iota
	// ClipToEnd collapses interior marks onto end.
	ClipToEnd
)

// Clip iterates v between start and end (exclusive of both) and
// collapses every mark strictly inside onto start or end according
// to dir, matching the spec's marks_clip used when a region is
// deleted. Iteration direction matches dir so the pass is single
// pass stable: collapsing onto start walks forward, onto end walks
// backward.
func (s *Store) Clip(v *View, start, end *Mark, dir ClipDirection) {
	if dir == ClipToStart {
		for e := v.entryAfter(start); e != nil && e.mark != end; {
			next := e.next
			if e.mark != start {
				s.MarkToMark(e.mark, start)
			}
			e = next
		}
		return
	}
	for e := v.entryBefore(end); e != nil && e.mark != start; {
		prev := e.prev
		if e.mark != end {
			s.MarkToMark(e.mark, end)
		}
		e = prev
	}
}

func (v *View) entryAfter(m *Mark) *entry {
	e := v.entryOf(m)
	if e == nil {
		return nil
	}
	if e.next == v.tail {
		return nil
	}
	return e.next
}

func (v *View) entryBefore(m *Mark) *entry {
	e := v.entryOf(m)
	if e == nil {
		return nil
	}
	if e.prev == v.head {
		return nil
	}
	return e.prev
}

func (v *View) entryOf(m *Mark) *entry {
	if m.group == Group(v.index) {
		return m.viewEntry
	}
	if m.IsPoint() && v.index < len(m.lists) {
		return m.lists[v.index]
	}
	return nil
}

// --- notifications ----------------------------------------------------

func (s *Store) fireMarkMoving(m *Mark) {
	if m.flags&Watched != 0 {
		m.flags &^= Watched
		for _, fn := range s.markMovingObservers {
			fn(m)
		}
	}
	if m.IsPoint() && !m.moved {
		m.moved = true
		for _, fn := range s.pointMovedObservers {
			fn(m)
		}
	}
}

// OnMarkMoving registers fn to be called whenever a Watched mark
// relocates. fn stays registered; the mark's Watched flag is
// cleared as it fires, so each Watch yields one call.
func (s *Store) OnMarkMoving(fn func(*Mark)) {
	s.markMovingObservers = append(s.markMovingObservers, fn)
}

// OnPointMoved registers fn to be called whenever a Point
// relocates and its moved latch was not already set.
func (s *Store) OnPointMoved(fn func(*Mark)) {
	s.pointMovedObservers = append(s.pointMovedObservers, fn)
}

// Ack clears a Point's moved latch, as required before it will
// fire point:moved again.
func (s *Store) Ack(m *Mark) { m.moved = false }

// --- replace propagation --------------------------------------------------

func (s *Store) handleReplaced(c doc.Change) {
	for m := s.allHead; m != nil; m = m.allNext {
		old := m.ref
		m.ref = s.doc.Rebase(m.ref, c)
		if m.ref != old {
			s.fireMarkMoving(m)
		}
	}
}
