// Copyright © 2016, The T Authors.

package mark

import "github.com/neilbrown/edlib-sub004/doc"

// pointMoveTo relocates Point m to ref, seqed immediately after
// target in the all list. Because a Point's entries in every live
// View are ordered by the same global seq as the all list (a Point
// has exactly one seq, shared across every View it belongs to),
// repositioning each View's entry is the same spliceBySeq used for
// ordinary marks; only the fan-out across every live View differs
// from the single-View MarkToMark case.
func (s *Store) pointMoveTo(m *Mark, ref doc.Ref, target *Mark) error {
	seq, err := s.seqBetween(target, target.allNext)
	if err != nil {
		return err
	}
	m.ref = ref
	s.unlinkAll(m)
	s.linkAllAfter(target, m)
	m.seq = seq
	for _, v := range s.views {
		if v == nil {
			continue
		}
		if e := m.lists[v.index]; e != nil {
			v.spliceBySeq(e)
		}
	}
	s.fireMarkMoving(m)
	return nil
}

// VMarkFirst returns the first Mark in v, or nil if v is empty.
func VMarkFirst(v *View) *Mark {
	if v.head.next == v.tail {
		return nil
	}
	return v.head.next.mark
}

// VMarkLast returns the last Mark in v, or nil if v is empty.
func VMarkLast(v *View) *Mark {
	if v.tail.prev == v.head {
		return nil
	}
	return v.tail.prev.mark
}

// VMarkNext returns the Mark immediately after m in v, or nil if m
// is v's last entry. m must belong to v (directly, if grouped
// there, or via its per-view Point entry).
func VMarkNext(v *View, m *Mark) *Mark {
	e := v.entryOf(m)
	if e == nil || e.next == v.tail {
		return nil
	}
	return e.next.mark
}

// VMarkPrev returns the Mark immediately before m in v, or nil if
// m is v's first entry.
func VMarkPrev(v *View, m *Mark) *Mark {
	e := v.entryOf(m)
	if e == nil || e.prev == v.head {
		return nil
	}
	return e.prev.mark
}

// VMarkAtOrBefore returns the last Mark in v whose Ref does not
// come after ref, per d's total order within the page, or nil if
// every Mark in v comes after ref. It walks from the head, so its
// cost grows with the number of Marks before ref; callers needing
// logarithmic search should
// maintain their own index (the document core does not assume
// Views are large enough to need one, per §4.2).
func VMarkAtOrBefore(v *View, d doc.Doc, ref doc.Ref) *Mark {
	var found *Mark
	for e := v.head.next; e != v.tail; e = e.next {
		if !e.mark.ref.Before(ref) && !d.RefsEqual(e.mark.ref, ref) {
			break
		}
		found = e.mark
	}
	return found
}

// VMarkMatching returns the first Mark in v at or after start
// whose attributes satisfy pred, or nil if none does.
func VMarkMatching(v *View, start *Mark, pred func(*Mark) bool) *Mark {
	var e *entry
	if start == nil {
		e = v.head.next
	} else {
		e = v.entryOf(start)
		if e == nil {
			return nil
		}
	}
	for ; e != v.tail; e = e.next {
		if pred(e.mark) {
			return e.mark
		}
	}
	return nil
}

// Check walks every list a Store maintains and reports every
// consistency violation found: breaks in seq ordering along the all
// list, View entries whose Mark is nil or freed, and Points missing
// an entry in a live View. It is intended for use in tests and debug
// tooling (§8's invariants 1-2), not the hot path.
//
// The first time Check finds any violation, it logs a one-shot
// "WARNING: marks inconsistent" diagnostic through the Store's
// logger (§7); later calls that also find violations do not log
// again, so a pane that polls Check periodically cannot spam the
// log.
func (s *Store) Check() []Inconsistency {
	var errs []Inconsistency

	var prev *Mark
	count := 0
	for m := s.allHead; m != nil; m = m.allNext {
		if prev != nil && prev.seq >= m.seq {
			errs = append(errs, seqOrderInconsistency(prev, m))
		}
		prev = m
		count++
		if count > 1<<24 {
			errs = append(errs, seqExhaustedInconsistency())
			break
		}
	}
	for _, v := range s.views {
		if v == nil {
			continue
		}
		for e := v.head.next; e != v.tail; e = e.next {
			if e.mark == nil || !e.mark.Valid() {
				errs = append(errs, badEntryInconsistency(v))
			}
		}
	}
	for p := s.pointHead; p != nil; p = p.pointNext {
		for _, v := range s.views {
			if v == nil {
				continue
			}
			if v.index >= len(p.lists) || p.lists[v.index] == nil {
				errs = append(errs, missingPointEntryInconsistency(p, v))
			}
		}
	}

	if len(errs) > 0 && !s.warnedInconsistent {
		s.warnedInconsistent = true
		s.logger.Printf("WARNING: marks inconsistent: %d violation(s), first: %s", len(errs), errs[0].Message)
	}
	return errs
}
