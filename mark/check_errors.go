// Copyright © 2016, The T Authors.

package mark

import "fmt"

// An Inconsistency describes a single violation found by
// Store.Check: a break in seq ordering along the all list, a View
// entry pointing at an invalid or nil Mark, or a Point missing an
// entry in a live View.
type Inconsistency struct {
	// Kind names the category of violation, stable across
	// releases for callers that want to filter or count by kind
	// (e.g. the debug server's /marks/check route).
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (i Inconsistency) Error() string { return i.Message }

func seqOrderInconsistency(prev, m *Mark) Inconsistency {
	return Inconsistency{
		Kind:    "seq-order",
		Message: fmt.Sprintf("mark: seq order violated: %v not before %v", prev, m),
	}
}

func seqExhaustedInconsistency() Inconsistency {
	return Inconsistency{Kind: "seq-exhausted", Message: ErrSeqExhausted.Error()}
}

func badEntryInconsistency(v *View) Inconsistency {
	return Inconsistency{
		Kind:    "bad-entry",
		Message: fmt.Sprintf("mark: view %d holds an entry for an invalid or nil mark", v.index),
	}
}

func missingPointEntryInconsistency(p *Mark, v *View) Inconsistency {
	return Inconsistency{
		Kind:    "missing-point-entry",
		Message: fmt.Sprintf("mark: point %v missing entry in view %d", p, v.index),
	}
}
