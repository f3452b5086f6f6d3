// Copyright © 2016, The T Authors.

package tile

// RefreshSize recomputes every Node's minimum width/height
// bottom-up (an internal node's minimum is its children's summed
// minimum along its own split axis, and the max along the other)
// and then applies actual pixel/column sizes top-down from the
// pane's full (width, height), per §4.7. AvailInline/AvailPerp are
// always width/height respectively — "inline" is the reading axis
// (scaled columns), regardless of any node's own split direction.
func (t *Tree) RefreshSize(width, height int) {
	minSize(t.root)
	applyRect(t.root, width, height)
}

func minSize(n *Node) (w, h int) {
	if n.Leaf() {
		m := 1
		if n.pane != nil {
			m = n.pane.MinInline()
		}
		return m, m
	}
	cw, ch := minSize(n.children[0])
	dw, dh := minSize(n.children[1])
	if n.dir == Horiz {
		return cw + dw, maxInt(ch, dh)
	}
	return maxInt(cw, dw), ch + dh
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func applyRect(n *Node, w, h int) {
	n.availInline, n.availPerp = w, h
	if n.Leaf() {
		return
	}
	if n.dir == Horiz {
		split := clampSplit(int(float64(w)*n.frac), w)
		applyRect(n.children[0], split, h)
		applyRect(n.children[1], w-split, h)
	} else {
		split := clampSplit(int(float64(h)*n.frac), h)
		applyRect(n.children[0], w, split)
		applyRect(n.children[1], w, h-split)
	}
}

func clampSplit(split, total int) int {
	if split < 0 {
		return 0
	}
	if split > total {
		return total
	}
	return split
}
