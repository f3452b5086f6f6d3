// Copyright © 2016, The T Authors.

// Package doc defines the contract a document implementation must
// satisfy to host marks, points, and a viewport: a step/char
// oracle over opaque content references, and a change-notification
// bus. Package doc names no file, no keystroke, and no glyph; it is
// the thinnest possible interface the rest of the document core
// needs from whatever owns the actual text.
package doc

// A Ref is an opaque positional reference into a Doc's content,
// meaningful only to the Doc that produced it. It corresponds to
// the (PageId, IndexInPage) pair of §3: Page identifies a storage
// page and Index a position within it. A Doc's own Ref values are
// never synthesised by any other package; they are only copied.
type Ref struct {
	Page  int32
	Index int64
}

// Before reports whether r precedes o within the same page. Refs
// from different pages are not ordered by Before; only the owning
// Doc's CharAt/RefsEqual define their relationship.
func (r Ref) Before(o Ref) bool { return r.Page == o.Page && r.Index < o.Index }

// A Direction selects how CharAt reads relative to a Ref.
type Direction int

const (
	// ForwardPeek returns the rune at ref without moving.
	ForwardPeek Direction = iota
	// ForwardStep returns the rune at ref and the Ref just after it.
	ForwardStep
	// BackwardPeek returns the rune just before ref without moving.
	BackwardPeek
	// BackwardStep returns the rune just before ref and that Ref.
	BackwardStep
)

// EOF is the end-of-stream sentinel codepoint CharAt returns when
// there is no rune in the requested direction.
const EOF rune = -1

// A Terminus names one end of a Doc's content.
type Terminus int

const (
	// ToStart is the beginning of the Doc.
	ToStart Terminus = iota
	// ToEnd is the end of the Doc.
	ToEnd
)

// An Event names a change a Doc may report to subscribers.
type Event int

const (
	// Replaced fires whenever a span of content is replaced.
	Replaced Event = iota
	// ReplacedAttr fires whenever document-level (object) metadata changes.
	ReplacedAttr
	// MarkMoving fires once for a watched mark immediately before it moves.
	MarkMoving
)

func (e Event) String() string {
	switch e {
	case Replaced:
		return "replaced"
	case ReplacedAttr:
		return "replaced-attr"
	case MarkMoving:
		return "mark-moving"
	default:
		return "event(?)"
	}
}

// A Change describes a content replacement: the half-open span
// [From, To) that was replaced, and NewEnd, the Ref immediately
// following the newly inserted text. Subscribers of Replaced use
// this to relocate the stable references they maintain into the
// Doc (chiefly mark.Store, via its Doc adapter).
type Change struct {
	From, To Ref
	NewEnd   Ref
}

// An Observer is called with an event-specific payload: a Change
// for Replaced, a Ref for ReplacedAttr and MarkMoving.
type Observer func(payload interface{})

// A Doc exposes content through a minimal step/char oracle and a
// change-notification bus. It is implemented by whatever owns the
// actual text (a file buffer, a directory listing, a generated
// document); the document core never assumes more than this.
type Doc interface {
	// CharAt reads one rune relative to ref in the given
	// Direction, returning the rune (or EOF) and the Ref the
	// read moved to (equal to ref for the Peek directions).
	CharAt(ref Ref, dir Direction) (r rune, next Ref)

	// Terminus returns the Ref at one end of the Doc's content.
	Terminus(which Terminus) Ref

	// RefsEqual reports content-identity: whether a and b name
	// the same logical position, even if their representations
	// differ (e.g. one at the end of a page, one at the start
	// of the next).
	RefsEqual(a, b Ref) bool

	// Subscribe registers observer for event, returning a
	// function that cancels the subscription. Observers are
	// called in registration order, synchronously, before the
	// mutating call returns (§5).
	Subscribe(event Event, observer Observer) (cancel func())

	// Rebase reports where ref moves to when c is applied,
	// without mutating ref or the Doc. It is how a Doc lets
	// mark.Store relocate marks across a Replaced event while
	// keeping Ref fully opaque to mark.Store: a ref inside the
	// replaced span collapses to the end of the new content
	// (mirroring the "dot becomes empty after the change" rule
	// a text-editing Span update applies), and a ref beyond the
	// replaced span shifts by the change in size.
	Rebase(ref Ref, c Change) Ref
}
