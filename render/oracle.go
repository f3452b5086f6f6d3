// Copyright © 2016, The T Authors.

package render

import (
	"strings"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
)

// A LineOracle produces line text at marks and locates line
// boundaries, per §4.3. The document core never reads a Doc's
// content directly; it always goes through a LineOracle, so a
// markup pane can interpose between the Viewport and a raw-text
// Doc without either side noticing.
type LineOracle interface {
	// RenderLine returns the text from m up to (and including) the
	// next newline, moving m to the end of what it produced. If
	// limit >= 0, it bounds the returned byte length; if stop is
	// non-nil, rendering also stops the instant m reaches stop's
	// position. A `\f` in the content ends rendering immediately,
	// after including the `\f` itself.
	RenderLine(m *mark.Mark, limit int, stop *mark.Mark) (string, error)

	// RenderLinePrev places m at a start-of-line. With skip true,
	// it first steps back across one newline (so that calling it
	// on a mark already at a SOL moves to the previous line's SOL).
	RenderLinePrev(m *mark.Mark, skip bool) error

	// RenderLineToPoint returns the byte offset within the line
	// starting at start at which pm sits.
	RenderLineToPoint(start, pm *mark.Mark) (int, error)
}

// DocOracle is the reference LineOracle: it renders a raw-text Doc
// directly, applying only the ambient escaping rules of §6.3 (`<`
// doubling, control-character caret escapes); it has no attributes
// of its own to open/close, since the reference doc.Text carries
// none. A markup pane wrapping a richer Doc would tokenize its
// stored per-character attributes into Open/Close tokens around
// the same literal text this produces.
type DocOracle struct {
	store *mark.Store
}

// NewDocOracle returns a LineOracle rendering s's Doc directly.
func NewDocOracle(s *mark.Store) *DocOracle { return &DocOracle{store: s} }

func (o *DocOracle) RenderLine(m *mark.Mark, limit int, stop *mark.Mark) (string, error) {
	d := o.store.Doc()
	var b strings.Builder
	for {
		if stop != nil && d.RefsEqual(m.Ref(), stop.Ref()) {
			return b.String(), nil
		}
		if limit >= 0 && b.Len() >= limit {
			return b.String(), nil
		}
		r, err := o.store.MarkStep(m, true)
		if err != nil {
			return "", err
		}
		if r == doc.EOF {
			return b.String(), nil
		}
		switch {
		case r == '\n':
			b.WriteRune(r)
			return b.String(), nil
		case r == '\f':
			b.WriteRune(r)
			return b.String(), nil
		case r == '<':
			b.WriteString("<<")
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20:
			b.WriteString(controlEscape(r))
		default:
			b.WriteRune(r)
		}
	}
}

func (o *DocOracle) RenderLinePrev(m *mark.Mark, skip bool) error {
	d := o.store.Doc()
	if skip {
		r, err := o.store.MarkStep(m, false)
		if err != nil {
			return err
		}
		if r == doc.EOF {
			return nil
		}
	}
	for {
		r, _ := d.CharAt(m.Ref(), doc.BackwardPeek)
		if r == doc.EOF || r == '\n' {
			return nil
		}
		if _, err := o.store.MarkStep(m, false); err != nil {
			return err
		}
	}
}

func (o *DocOracle) RenderLineToPoint(start, pm *mark.Mark) (int, error) {
	d := o.store.Doc()
	dup, err := o.store.MarkDup(start)
	if err != nil {
		return 0, err
	}
	defer o.store.Free(dup)

	offset := 0
	for {
		if d.RefsEqual(dup.Ref(), pm.Ref()) {
			return offset, nil
		}
		r, err := o.store.MarkStep(dup, true)
		if err != nil {
			return 0, err
		}
		if r == doc.EOF {
			return offset, nil
		}
		switch {
		case r == '<':
			offset += len("<<")
		case r < 0x20 && r != '\t' && r != '\n' && r != '\f':
			offset += len(controlEscape(r))
		default:
			offset += len(string(r))
		}
		if r == '\n' || r == '\f' {
			return offset, nil
		}
	}
}
