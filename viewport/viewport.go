// Copyright © 2016, The T Authors.

// Package viewport maintains a line-windowed, pixel-measured view
// of a Doc around a point: the set of RenderedLines currently
// visible in a pane, kept consistent across scrolling, resizing,
// and document edits (§4.4). It is the hardest subsystem of the
// document core, mediating between mark.Store (stable positions)
// and render.LineOracle (line production and measurement).
package viewport

import (
	"golang.org/x/image/math/fixed"

	"github.com/neilbrown/edlib-sub004/attr"
	"github.com/neilbrown/edlib-sub004/mark"
	"github.com/neilbrown/edlib-sub004/render"
)

// A Cell pairs a viewport mark with the RenderedLine measured at
// it, mirroring the teacher's View.Mark / text split between
// position and measured content.
type Cell struct {
	Mark *mark.Mark
	Line render.RenderedLine
	// Y is the cell's top, in pixels, relative to the pane's top.
	Y fixed.Int26_6
}

// A Viewport is a pixel-measured, margin-aware window of Cells over
// a Doc, generalized from the teacher's View (which tracked a fixed
// number of whole text lines) to the spec's cell-per-RenderedLine
// model with horizontal auto-shift and vertical scroll-off margins.
type Viewport struct {
	store   *mark.Store
	oracle  render.LineOracle
	view    *mark.View
	cfg     *attr.Set

	paneW, paneH fixed.Int26_6
	lineHeight   fixed.Int26_6

	cells []Cell

	// topSOL records whether cells[0] begins at a true
	// start-of-line (false when its top has been scrolled off and
	// skipHeight pixels are clipped from it).
	topSOL       bool
	skipHeight   fixed.Int26_6
	tailHeight   fixed.Int26_6

	shiftLeft             fixed.Int26_6
	shiftLeftLastRefresh  fixed.Int26_6
	shiftLocked           bool

	targetX, targetY fixed.Int26_6
	haveTarget       bool

	cursorLine fixed.Int26_6
	lines, cols int

	faceOverride fontFace

	// Notify, per the teacher's View.Notify convention, carries a
	// single pending render:reposition signal; sends are
	// non-blocking so a busy consumer never stalls the editor.
	Notify <-chan struct{}
	notify chan struct{}

	repositioned bool
}

// New returns a Viewport of size (w, h) pixels, backed by oracle
// for line production/measurement and by store, on which it opens a
// private View. The cell marks are ungrouped duplicates and are not
// members of that View.
func New(store *mark.Store, oracle render.LineOracle, cfg *attr.Set, w, h fixed.Int26_6) *Viewport {
	notify := make(chan struct{}, 1)
	return &Viewport{
		store:  store,
		oracle: oracle,
		view:   store.NewView("viewport"),
		cfg:    cfg,
		paneW:  w,
		paneH:  h,
		Notify: notify,
		notify: notify,
	}
}

// Close releases the Viewport's private View.
func (vp *Viewport) Close() error {
	return vp.store.DelView(vp.view)
}

func (vp *Viewport) signal() {
	select {
	case vp.notify <- struct{}{}:
	default:
	}
}

// wrap reports whether the configured pane wraps long lines rather
// than horizontally shifting them.
func (vp *Viewport) wrap() bool { return vp.cfg != nil && vp.cfg.RenderWrap() }

func (vp *Viewport) margin() fixed.Int26_6 {
	if vp.cfg == nil {
		return 0
	}
	return fixed.I(vp.cfg.VMargin())
}

// Cells returns the Viewport's current, top-to-bottom cells.
func (vp *Viewport) Cells() []Cell { return vp.cells }

// Lines and Cols return the last-rendered totals, for scrollbars.
func (vp *Viewport) Lines() int { return vp.lines }
func (vp *Viewport) Cols() int  { return vp.cols }

// Repositioned reports whether the visible extent changed since
// the flag was last cleared by a caller (e.g. the consumer of
// Notify acknowledging a render:reposition event).
func (vp *Viewport) Repositioned() bool { return vp.repositioned }

// ClearRepositioned clears the repositioned flag.
func (vp *Viewport) ClearRepositioned() { vp.repositioned = false }

// measureAt measures the line starting at anchor without moving
// anchor itself: anchor is the cell's permanent position mark, so
// both the text walk and the optional cursor-offset lookup operate
// on throwaway duplicates.
func (vp *Viewport) measureAt(anchor *mark.Mark, limit int, cursor *mark.Mark) (render.RenderedLine, error) {
	cursorOffset := -1
	if cursor != nil {
		toPoint, err := vp.store.MarkDup(anchor)
		if err != nil {
			return render.RenderedLine{}, err
		}
		if off, err := vp.oracle.RenderLineToPoint(toPoint, cursor); err == nil {
			cursorOffset = off
		}
		vp.store.Free(toPoint)
	}

	walker, err := vp.store.MarkDup(anchor)
	if err != nil {
		return render.RenderedLine{}, err
	}
	defer vp.store.Free(walker)

	text, err := vp.oracle.RenderLine(walker, limit, nil)
	if err != nil {
		return render.RenderedLine{}, err
	}
	return render.Measure(vp.face(), text, cursorOffset), nil
}

// face is overridable in tests; it is defaultFace unless the caller
// installs another via SetFace, matching the teacher's pattern of a
// package-level defaultFont with an injectable override.
func (vp *Viewport) face() fontFace {
	if vp.faceOverride != nil {
		return vp.faceOverride
	}
	return defaultFace
}

// SetFace installs the font.Face used to measure cells.
func (vp *Viewport) SetFace(f fontFace) { vp.faceOverride = f }
