// Copyright © 2016, The T Authors.

package viewport

import (
	"golang.org/x/image/math/fixed"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
	"github.com/neilbrown/edlib-sub004/render"
)

// maxShiftIterations bounds the horizontal auto-shift loop (§4.4
// step 4), guarding against a pathologically narrow pane.
const maxShiftIterations = 1000

// Reposition (re-)establishes the Viewport around pm: the cursor's
// line is located, and cells grow outward from it until the pane
// is covered or the document's start/end is reached, per the §4.4
// algorithm. It discards every previously-held cell mark.
func (vp *Viewport) Reposition(pm *mark.Mark) error {
	oldTop, oldBot := vp.boundaryRefs()

	start, err := vp.store.MarkDup(pm)
	if err != nil {
		return err
	}
	if err := vp.oracle.RenderLinePrev(start, false); err != nil {
		return err
	}

	vp.resetAutoShift(pm)

	var cells []Cell
	firstLine, err := vp.measureAt(start, -1, pm)
	if err != nil {
		return err
	}
	vp.applyAutoShift(firstLine)
	cells = append(cells, Cell{Mark: start, Line: firstLine})

	foundStart := vp.atSOF(start)
	foundEnd := false
	yPre := firstLine.Height
	yPost := fixed.Int26_6(0)
	y := firstLine.Height

	below, atEOF, err := vp.stepPastLine(start, firstLine)
	if err != nil {
		return err
	}
	if atEOF {
		foundEnd = true
	}

	for y < vp.paneH && (!foundStart || !foundEnd) {
		grew := false
		if !foundEnd {
			l, err := vp.measureAt(below, -1, nil)
			if err != nil {
				return err
			}
			cells = append(cells, Cell{Mark: below, Line: l})
			y += l.Height
			yPost += l.Height
			next, atEOF, err := vp.stepPastLine(below, l)
			if err != nil {
				return err
			}
			if atEOF {
				foundEnd = true
				vp.store.Free(next)
			} else {
				below = next
			}
			grew = true
		}
		if y >= vp.paneH {
			break
		}
		if !foundStart {
			prev, err := vp.store.MarkDup(cells[0].Mark)
			if err != nil {
				return err
			}
			if err := vp.oracle.RenderLinePrev(prev, true); err != nil {
				return err
			}
			l, err := vp.measureAt(prev, -1, nil)
			if err != nil {
				return err
			}
			cells = append([]Cell{{Mark: prev, Line: l}}, cells...)
			y += l.Height
			yPre += l.Height
			if vp.atSOF(prev) {
				foundStart = true
			}
			grew = true
		}
		if !grew {
			break
		}
	}

	vp.discardCells()
	vp.cells = cells
	vp.layout()
	vp.lines = len(cells)
	vp.cols = vp.widestCol()

	newTop, newBot := vp.boundaryRefs()
	vp.repositioned = newTop != oldTop || newBot != oldBot
	if vp.repositioned {
		vp.signal()
	}
	return nil
}

// resetAutoShift applies the configured shift-left policy before
// each reposition. Per the resolved Open Question, shift-left is
// ignored entirely (treated as 0) whenever render-wrap is on, since
// a wrapped line never needs horizontal scrolling.
func (vp *Viewport) resetAutoShift(pm *mark.Mark) {
	if vp.wrap() {
		vp.shiftLeft = 0
		vp.shiftLocked = false
		return
	}
	if vp.cfg != nil {
		if n, ok := vp.cfg.ShiftLeft(); ok {
			vp.shiftLeft = fixed.I(n)
			vp.shiftLocked = true
			return
		}
	}
	vp.shiftLocked = false
}

// applyAutoShift implements §4.4 step 4: in non-wrap mode, with no
// pinned shift-left, grow shiftLeft by eight cursor-widths at a
// time until the cursor's x position (after subtracting the
// current shift) fits within the pane, bounded by
// maxShiftIterations against a pathologically narrow pane.
func (vp *Viewport) applyAutoShift(line render.RenderedLine) {
	if vp.wrap() || vp.shiftLocked || line.CursorOffset < 0 {
		return
	}
	glyphW, ok := vp.face().GlyphAdvance('M')
	if !ok || glyphW == 0 {
		glyphW = fixed.I(8)
	}
	for i := 0; i < maxShiftIterations; i++ {
		cx := line.CursorX - vp.shiftLeft
		if cx <= vp.paneW-glyphW {
			break
		}
		vp.shiftLeft += 8 * glyphW
	}
	vp.shiftLeftLastRefresh = vp.shiftLeft
}

func (vp *Viewport) atSOF(m *mark.Mark) bool {
	d := vp.store.Doc()
	r, _ := d.CharAt(m.Ref(), doc.BackwardPeek)
	return r == doc.EOF
}

func (vp *Viewport) isEOFAtMark(m *mark.Mark) bool {
	d := vp.store.Doc()
	r, _ := d.CharAt(m.Ref(), doc.ForwardPeek)
	return r == doc.EOF
}

// stepPastLine duplicates anchor and walks it past the line
// already measured as l (render_line's own forward motion is
// idempotent on identical content, so re-rendering merely to
// relocate the walk is cheap and side-effect free on anchor
// itself). It reports whether the walk reached the document's end
// or a `\f` page marker, either of which freezes growth on this
// side of the viewport.
func (vp *Viewport) stepPastLine(anchor *mark.Mark, l render.RenderedLine) (*mark.Mark, bool, error) {
	next, err := vp.store.MarkDup(anchor)
	if err != nil {
		return nil, false, err
	}
	if _, err := vp.oracle.RenderLine(next, -1, nil); err != nil {
		vp.store.Free(next)
		return nil, false, err
	}
	if !l.Complete() {
		return next, true, nil
	}
	return next, vp.isEOFAtMark(next), nil
}

func (vp *Viewport) discardCells() {
	for _, c := range vp.cells {
		vp.store.Free(c.Mark)
	}
}

func (vp *Viewport) layout() {
	var y fixed.Int26_6
	for i := range vp.cells {
		vp.cells[i].Y = y
		y += vp.cells[i].Line.Height
	}
}

func (vp *Viewport) widestCol() int {
	w := 0
	for _, c := range vp.cells {
		if n := len(c.Line.Text); n > w {
			w = n
		}
	}
	return w
}

func (vp *Viewport) boundaryRefs() (top, bot doc.Ref) {
	if len(vp.cells) == 0 {
		return doc.Ref{}, doc.Ref{}
	}
	return vp.cells[0].Mark.Ref(), vp.cells[len(vp.cells)-1].Mark.Ref()
}
