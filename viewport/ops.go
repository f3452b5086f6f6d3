// Copyright © 2016, The T Authors.

package viewport

import (
	"golang.org/x/image/math/fixed"

	"github.com/neilbrown/edlib-sub004/mark"
	"github.com/neilbrown/edlib-sub004/render"
)

// Revise re-measures the Viewport's current cells in place (the
// hot path taken when only a redraw, not a scroll or edit outside
// the visible region, is requested). If the cursor remains visible
// within margin after re-measuring, it emits render:reposition (if
// anything actually changed) and returns; otherwise it falls back
// to a full Reposition around pm.
func (vp *Viewport) Revise(pm *mark.Mark) error {
	if len(vp.cells) == 0 {
		return vp.Reposition(pm)
	}

	changed := false
	for i := range vp.cells {
		var cursor *mark.Mark
		if vp.cellHoldsCursor(i, pm) {
			cursor = pm
		}
		l, err := vp.measureAt(vp.cells[i].Mark, -1, cursor)
		if err != nil {
			return err
		}
		if l.Height != vp.cells[i].Line.Height || l.Text != vp.cells[i].Line.Text {
			changed = true
		}
		vp.cells[i].Line = l
	}
	vp.layout()
	vp.cols = vp.widestCol()

	if !vp.wrap() && !vp.shiftLocked {
		if idx, ok := vp.cursorCellIndex(pm); ok {
			vp.applyAutoShift(vp.cells[idx].Line)
		}
	}

	if vp.cursorWithinMargin(pm) {
		if changed {
			vp.repositioned = true
			vp.signal()
		}
		return nil
	}
	return vp.Reposition(pm)
}

func (vp *Viewport) cellHoldsCursor(i int, pm *mark.Mark) bool {
	idx, ok := vp.cursorCellIndex(pm)
	return ok && idx == i
}

func (vp *Viewport) cursorCellIndex(pm *mark.Mark) (int, bool) {
	d := vp.store.Doc()
	pr := pm.Ref()
	for i, c := range vp.cells {
		cr := c.Mark.Ref()
		atOrAfter := d.RefsEqual(cr, pr) || cr.Before(pr)
		if !atOrAfter {
			continue
		}
		if i == len(vp.cells)-1 {
			return i, true
		}
		if pr.Before(vp.cells[i+1].Mark.Ref()) {
			return i, true
		}
	}
	return 0, false
}

// cursorWithinMargin applies a condensed form of the three Revise
// visibility rules (§4.4): the first cell needs margin above it
// (unless nothing precedes the document), the last needs margin
// below, and interior cells always pass.
func (vp *Viewport) cursorWithinMargin(pm *mark.Mark) bool {
	idx, ok := vp.cursorCellIndex(pm)
	if !ok {
		return false
	}
	margin := vp.margin()
	cell := vp.cells[idx]
	cy := cell.Y + cell.Line.Ascent
	switch {
	case idx == 0:
		return cy >= vp.skipHeight+margin || (vp.atSOF(cell.Mark) && vp.skipHeight == 0)
	case idx == len(vp.cells)-1:
		return cy <= vp.paneH-vp.lineHeight-margin
	default:
		return cy >= margin && cy <= vp.paneH-margin-vp.lineHeight
	}
}

// MoveView scrolls the Viewport by delta, given in thousandths of
// pane height (negative scrolls the content down, i.e. moves the
// window toward the start of the document). After MoveView, a
// Revise is required before the next draw since the point may no
// longer be the anchor of the visible window.
func (vp *Viewport) MoveView(deltaThousandths int) error {
	if len(vp.cells) == 0 {
		return nil
	}
	delta := fixed.Int26_6(int64(vp.paneH) * int64(deltaThousandths) / 1000)
	if delta < 0 {
		return vp.scrollUp(-delta)
	}
	return vp.scrollDown(delta)
}

func (vp *Viewport) scrollUp(px fixed.Int26_6) error {
	var consumed fixed.Int26_6
	for consumed < px {
		if vp.skipHeight > 0 {
			take := vp.skipHeight
			if consumed+take > px {
				take = px - consumed
			}
			vp.skipHeight -= take
			consumed += take
			continue
		}
		top := vp.cells[0].Mark
		if vp.atSOF(top) {
			break
		}
		prev, err := vp.store.MarkDup(top)
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
		vp.cells = append([]Cell{{Mark: prev, Line: l}}, vp.cells...)
		consumed += l.Height
		if vp.totalHeight() > vp.paneH*2 {
			last := vp.cells[len(vp.cells)-1]
			vp.store.Free(last.Mark)
			vp.cells = vp.cells[:len(vp.cells)-1]
		}
	}
	if consumed > px {
		vp.skipHeight = consumed - px
	}
	vp.layout()
	vp.repositioned = true
	vp.signal()
	return nil
}

func (vp *Viewport) scrollDown(px fixed.Int26_6) error {
	var consumed fixed.Int26_6
	for consumed < px && len(vp.cells) > 1 {
		first := vp.cells[0]
		remain := first.Line.Height - vp.skipHeight
		if consumed+remain > px {
			vp.skipHeight += px - consumed
			consumed = px
			break
		}
		consumed += remain
		vp.skipHeight = 0
		vp.store.Free(first.Mark)
		vp.cells = vp.cells[1:]
	}
	for vp.totalVisibleHeight() < vp.paneH && len(vp.cells) > 0 {
		last := vp.cells[len(vp.cells)-1]
		next, atEOF, err := vp.stepPastLine(last.Mark, last.Line)
		if err != nil {
			return err
		}
		if atEOF {
			vp.store.Free(next)
			break
		}
		l, err := vp.measureAt(next, -1, nil)
		if err != nil {
			return err
		}
		vp.cells = append(vp.cells, Cell{Mark: next, Line: l})
	}
	vp.layout()
	vp.repositioned = true
	vp.signal()
	return nil
}

func (vp *Viewport) totalHeight() fixed.Int26_6 {
	var h fixed.Int26_6
	for _, c := range vp.cells {
		h += c.Line.Height
	}
	return h
}

func (vp *Viewport) totalVisibleHeight() fixed.Int26_6 {
	return vp.totalHeight() - vp.skipHeight
}

// SetCursor locates the cell whose vertical span contains y
// (pinning to the first cell when y falls above it, i.e. within
// the skipped region), translates (x, y) within that cell to a
// byte offset via render.FindOffsetAtX, and moves m to the
// resulting document position via render_line(start, offset), per
// the §4.4 set_cursor contract.
func (vp *Viewport) SetCursor(m *mark.Mark, x, y fixed.Int26_6) error {
	if len(vp.cells) == 0 {
		return nil
	}
	idx := 0
	for i, c := range vp.cells {
		top := c.Y
		if i == 0 {
			top -= vp.skipHeight
		}
		if y < top+c.Line.Height || i == len(vp.cells)-1 {
			idx = i
			break
		}
	}
	cell := vp.cells[idx]
	localX := x + vp.shiftLeft
	offset := render.FindOffsetAtX(vp.face(), cell.Line.Text, localX)

	dup, err := vp.store.MarkDup(cell.Mark)
	if err != nil {
		return err
	}
	defer vp.store.Free(dup)
	if _, err := vp.oracle.RenderLine(dup, offset, nil); err != nil {
		return err
	}
	return vp.store.MarkToMark(m, dup)
}

// MoveLine moves m by n text lines, preserving the in-line target
// column cached in targetX/targetY across repeated calls (reset
// whenever the point moves by any other means, via ResetTarget).
func (vp *Viewport) MoveLine(m *mark.Mark, n int) error {
	if n == 0 {
		return nil
	}
	if !vp.haveTarget {
		if idx, ok := vp.cursorCellIndex(m); ok {
			vp.targetX = vp.cells[idx].Line.CursorX
			vp.haveTarget = true
		}
	}

	dup, err := vp.store.MarkDup(m)
	if err != nil {
		return err
	}
	defer vp.store.Free(dup)

	if n > 0 {
		for i := 0; i < n; i++ {
			if err := vp.skipToNextLine(dup); err != nil {
				return err
			}
		}
	} else {
		if err := vp.oracle.RenderLinePrev(dup, false); err != nil {
			return err
		}
		for i := 0; i < -n; i++ {
			if err := vp.oracle.RenderLinePrev(dup, true); err != nil {
				return err
			}
		}
	}

	l, err := vp.measureAt(dup, -1, nil)
	if err != nil {
		return err
	}
	offset := render.FindOffsetAtX(vp.face(), l.Text, vp.targetX)
	target, err := vp.store.MarkDup(dup)
	if err != nil {
		return err
	}
	defer vp.store.Free(target)
	if _, err := vp.oracle.RenderLine(target, offset, nil); err != nil {
		return err
	}
	return vp.store.MarkToMark(m, target)
}

func (vp *Viewport) skipToNextLine(m *mark.Mark) error {
	_, err := vp.oracle.RenderLine(m, -1, nil)
	return err
}

// ResetTarget clears the cached vertical-motion column, required
// whenever point moves by any agent other than MoveLine.
func (vp *Viewport) ResetTarget() { vp.haveTarget = false }
