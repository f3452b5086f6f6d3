// Copyright © 2016, The T Authors.

package doc

import (
	"fmt"
	"sync"

	"github.com/neilbrown/edlib-sub004/core"
	"github.com/neilbrown/edlib-sub004/runes"
)

// Text is a minimal, in-memory Doc backed by an unbounded rune
// buffer. It is not itself part of the document core's module
// budget (§4.3): the core treats Doc as an external contract, and
// Text exists only so the mark, render, and viewport packages have
// a concrete, adapted-from-the-teacher implementation to test
// against, grounded on runes.Buffer's Size/Rune/Insert/Delete
// shape.
//
// A Text's Ref values always carry Page == 0; Index is a rune
// offset into the buffer. That satisfies the opaque-Ref contract
// without requiring callers outside this package to interpret it.
type Text struct {
	mu        sync.Mutex
	buf       *runes.Buffer
	observers map[Event][]*subscription
	nextID    int
}

type subscription struct {
	id  int
	obs Observer
}

// NewText returns a new, empty Text document.
func NewText() *Text {
	return &Text{
		buf:       runes.NewBuffer(1 << 12),
		observers: make(map[Event][]*subscription),
	}
}

// NewTextString returns a new Text document initialized to s.
func NewTextString(s string) *Text {
	t := NewText()
	if err := t.buf.Insert([]rune(s), 0); err != nil {
		panic(err) // an empty buffer insert cannot fail.
	}
	return t
}

// Close releases the Text's resources.
func (t *Text) Close() error { return t.buf.Close() }

// Size returns the number of runes in the document.
func (t *Text) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Size()
}

// String returns the full content of the document.
func (t *Text) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	rs, err := t.buf.Read(int(t.buf.Size()), 0)
	if err != nil {
		panic(err)
	}
	return string(rs)
}

func (t *Text) Terminus(which Terminus) Ref {
	t.mu.Lock()
	defer t.mu.Unlock()
	if which == ToStart {
		return Ref{}
	}
	return Ref{Index: t.buf.Size()}
}

func (t *Text) RefsEqual(a, b Ref) bool { return a == b }

func (t *Text) CharAt(ref Ref, dir Direction) (rune, Ref) {
	t.mu.Lock()
	defer t.mu.Unlock()
	size := t.buf.Size()
	switch dir {
	case ForwardPeek, ForwardStep:
		if ref.Index >= size {
			return EOF, ref
		}
		r, err := t.buf.Rune(ref.Index)
		if err != nil {
			return EOF, ref
		}
		if dir == ForwardStep {
			return r, Ref{Index: ref.Index + 1}
		}
		return r, ref
	default: // BackwardPeek, BackwardStep
		if ref.Index <= 0 {
			return EOF, ref
		}
		r, err := t.buf.Rune(ref.Index - 1)
		if err != nil {
			return EOF, ref
		}
		if dir == BackwardStep {
			return r, Ref{Index: ref.Index - 1}
		}
		return r, ref
	}
}

// Subscribe registers observer for event and returns a function
// that cancels the subscription.
func (t *Text) Subscribe(event Event, observer Observer) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	sub := &subscription{id: id, obs: observer}
	t.observers[event] = append(t.observers[event], sub)
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		subs := t.observers[event]
		for i, s := range subs {
			if s.id == id {
				t.observers[event] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (t *Text) notify(event Event, payload interface{}) {
	// Copy under the lock, call outside it: an observer
	// (chiefly mark.Store's relocation callback) must not
	// reenter Text while it holds t.mu.
	t.mu.Lock()
	subs := append([]*subscription(nil), t.observers[event]...)
	t.mu.Unlock()
	for _, s := range subs {
		s.obs(payload)
	}
}

// Rebase reports where ref moves to when c is applied. A ref
// strictly before c.From is unaffected; a ref within [c.From,
// c.To) collapses to c.NewEnd (adapted from edit/text.go's
// Span.Update, specialized to a single point); a ref at or past
// c.To shifts by the size delta the change introduced.
func (t *Text) Rebase(ref Ref, c Change) Ref {
	switch {
	case ref.Index < c.From.Index:
		return ref
	case ref.Index < c.To.Index:
		return c.NewEnd
	default:
		delta := c.NewEnd.Index - c.To.Index
		return Ref{Page: ref.Page, Index: ref.Index + delta}
	}
}

// Replace replaces the content in [from, to) with text, and
// returns the Ref immediately following the inserted text. It
// fires Replaced after the edit completes, per §5's "notifications
// delivered before the initiating command returns" rule.
//
// A Delete or Insert failure means the underlying rune buffer
// declined the edit (e.g. a block I/O error), the §7 core.Fail case:
// the caller decides whether to retry or give up, exactly as it
// would for a Doc that refuses to walk past start-of-file.
func (t *Text) Replace(from, to Ref, text string) (Ref, error) {
	t.mu.Lock()
	if err := t.buf.Delete(to.Index-from.Index, from.Index); err != nil {
		t.mu.Unlock()
		return Ref{}, fmt.Errorf("doc: delete declined: %w: %v", core.Fail, err)
	}
	if err := t.buf.Insert([]rune(text), from.Index); err != nil {
		t.mu.Unlock()
		return Ref{}, fmt.Errorf("doc: insert declined: %w: %v", core.Fail, err)
	}
	newEnd := Ref{Index: from.Index + int64(len([]rune(text)))}
	t.mu.Unlock()

	t.notify(Replaced, Change{From: from, To: to, NewEnd: newEnd})
	return newEnd, nil
}
