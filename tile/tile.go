// Copyright © 2016, The T Authors.

// Package tile implements a binary-tree split of a display pane:
// each internal node divides its extent between two children along
// a Horiz or Vert axis, and each leaf hosts one client content
// pane. It generalizes the teacher's ui/column.go (a flat list of
// vertically stacked frames with proportional, neighbor-borrowing
// resize) to an arbitrary-depth, two-axis binary split, per §4.7.
package tile

import (
	"fmt"

	"github.com/neilbrown/edlib-sub004/core"
)

// A Direction is the axis an internal Node splits its extent along.
type Direction int

const (
	// Horiz splits left/right; children sit side by side.
	Horiz Direction = iota
	// Vert splits top/bottom; children stack.
	Vert
)

// autoSplitCols is the minimum scaled-column width a pane must have
// before OtherPane is willing to auto-split it rather than reuse it
// (§4.7's "at least 120 scaled columns wide").
const autoSplitCols = 120

// Errors returned by Tree operations, classified per the §7 taxonomy:
// every one of these is a view-op given a structurally wrong argument
// (a pane that isn't in the tree, or isn't in a position the
// operation requires), so each wraps core.Invalid.
var (
	ErrNotFound  = fmt.Errorf("tile: pane not found in tree: %w", core.Invalid)
	ErrSoleLeaf  = fmt.Errorf("tile: cannot close the tree's only leaf: %w", core.Invalid)
	ErrNoSibling = fmt.Errorf("tile: no neighbor to borrow extent from: %w", core.Invalid)
)

// A Pane is the client content a leaf Node hosts. MinInline is its
// minimum extent along whichever axis its parent splits, in scaled
// columns; RefreshSize sums it into each node's minimum. Split and
// Grow do not consult it, so a split or a resize can take a tile
// below its content's minimum.
type Pane interface {
	MinInline() int
}

// A Node is one element of the binary split tree: either an
// internal node with two children and a Direction, or a leaf
// holding a Pane.
type Node struct {
	parent   *Node
	dir      Direction
	children [2]*Node
	frac     float64 // fraction of parent's extent given to children[0]

	pane   Pane
	buried []Pane // panes stacked under the visible one (Bury/unbury)

	availInline, availPerp int
}

// Leaf reports whether n hosts a Pane directly.
func (n *Node) Leaf() bool { return n.children[0] == nil }

// Pane returns the Node's visible Pane, or nil for an internal node.
func (n *Node) Pane() Pane { return n.pane }

// AvailInline and AvailPerp return the Node's last-computed width
// and height respectively, in scaled columns (set by RefreshSize),
// whatever the node's own split direction.
func (n *Node) AvailInline() int { return n.availInline }
func (n *Node) AvailPerp() int   { return n.availPerp }

// A Tree is a binary split tree rooted at a single pane.
type Tree struct {
	root *Node
}

// New returns a Tree with a single leaf hosting pane.
func New(pane Pane) *Tree {
	return &Tree{root: &Node{pane: pane}}
}

// Root returns the tree's root Node.
func (t *Tree) Root() *Node { return t.root }

// Find returns the leaf Node hosting pane, or nil.
func (t *Tree) Find(pane Pane) *Node {
	return find(t.root, pane)
}

func find(n *Node, pane Pane) *Node {
	if n == nil {
		return nil
	}
	if n.Leaf() {
		if n.pane == pane {
			return n
		}
		return nil
	}
	if f := find(n.children[0], pane); f != nil {
		return f
	}
	return find(n.children[1], pane)
}

// Split divides leaf's extent along dir, shrinking leaf's share to
// make room for a new leaf hosting pane. before places the new leaf
// ahead of leaf (to its left, or above it); otherwise it trails.
// When leaf's parent already splits along dir, the new leaf is
// promoted to that existing split (inserted as leaf's new sibling)
// rather than nesting another single-child nesting — the tree
// always stays strictly binary, so "promotion" here means leaf's
// slot in its parent becomes the new two-way split instead of
// growing a third child.
func (t *Tree) Split(leaf *Node, dir Direction, before bool, pane Pane) (*Node, error) {
	if leaf == nil || !leaf.Leaf() {
		return nil, ErrNotFound
	}
	newLeaf := &Node{pane: pane}
	oldContent := &Node{pane: leaf.pane, buried: leaf.buried}

	leaf.pane = nil
	leaf.buried = nil
	leaf.dir = dir
	oldContent.parent = leaf
	newLeaf.parent = leaf
	if before {
		leaf.children[0] = newLeaf
		leaf.children[1] = oldContent
		leaf.frac = 0.5
	} else {
		leaf.children[0] = oldContent
		leaf.children[1] = newLeaf
		leaf.frac = 0.5
	}
	return newLeaf, nil
}

// Close removes leaf from the tree. Its sibling absorbs its full
// extent and the parent collapses into the sibling, per §4.7. If
// the sibling is itself an internal node, it keeps its own split
// fraction, so its two children share the freed extent in
// proportion to their current shares; neither child is given
// priority.
func (t *Tree) Close(leaf *Node) error {
	if leaf == nil || !leaf.Leaf() {
		return ErrNotFound
	}
	parent := leaf.parent
	if parent == nil {
		return ErrSoleLeaf
	}
	var sib *Node
	if parent.children[0] == leaf {
		sib = parent.children[1]
	} else {
		sib = parent.children[0]
	}

	sib.parent = parent.parent
	*parent = *sib
	// Re-home grandchildren, since *parent = *sib copied their
	// parent pointers from sib, not from parent's new identity.
	if !parent.Leaf() {
		parent.children[0].parent = parent
		parent.children[1].parent = parent
	}
	if parent.parent == nil {
		t.root = parent
	}
	return nil
}

// Grow resizes leaf by delta scaled columns along dir, borrowing
// the extent from a neighbor. If leaf's parent does not split along
// dir, the resize recurses into the parent (and so on upward) until
// an ancestor split along dir is found.
func (t *Tree) Grow(leaf *Node, dir Direction, delta int) error {
	n := leaf
	for n.parent != nil && n.parent.dir != dir {
		n = n.parent
	}
	if n.parent == nil {
		return ErrNoSibling
	}
	p := n.parent
	total := p.availInline
	if dir == Vert {
		total = p.availPerp
	}
	if total == 0 {
		total = 1
	}
	deltaFrac := float64(delta) / float64(total)
	if p.children[0] == n {
		p.frac = clampFrac(p.frac + deltaFrac)
	} else {
		p.frac = clampFrac(p.frac - deltaFrac)
	}
	return nil
}

func clampFrac(f float64) float64 {
	const min = 0.05
	if f < min {
		return min
	}
	if f > 1-min {
		return 1 - min
	}
	return f
}

// Leaves returns every leaf in left-to-right, top-to-bottom order.
func (t *Tree) Leaves() []*Node {
	var out []*Node
	collectLeaves(t.root, &out)
	return out
}

func collectLeaves(n *Node, out *[]*Node) {
	if n == nil {
		return
	}
	if n.Leaf() {
		*out = append(*out, n)
		return
	}
	collectLeaves(n.children[0], out)
	collectLeaves(n.children[1], out)
}

// Next and Prev cycle through the tree's leaves in traversal order.
func (t *Tree) Next(leaf *Node) *Node { return cycle(t.Leaves(), leaf, 1) }
func (t *Tree) Prev(leaf *Node) *Node { return cycle(t.Leaves(), leaf, -1) }

func cycle(leaves []*Node, cur *Node, step int) *Node {
	if len(leaves) == 0 {
		return nil
	}
	i := indexOf(leaves, cur)
	if i < 0 {
		return leaves[0]
	}
	i = (i + step + len(leaves)) % len(leaves)
	return leaves[i]
}

func indexOf(leaves []*Node, n *Node) int {
	for i, l := range leaves {
		if l == n {
			return i
		}
	}
	return -1
}

// Bury stacks leaf's current Pane beneath replacement, which
// becomes the leaf's new visible Pane.
func (n *Node) Bury(replacement Pane) {
	if !n.Leaf() {
		return
	}
	n.buried = append(n.buried, n.pane)
	n.pane = replacement
}

// Unbury restores the most recently buried Pane, if any.
func (n *Node) Unbury() (Pane, bool) {
	if !n.Leaf() || len(n.buried) == 0 {
		return nil, false
	}
	prev := n.pane
	n.pane = n.buried[len(n.buried)-1]
	n.buried = n.buried[:len(n.buried)-1]
	return prev, true
}

// CloseOthers closes every leaf except keep, collapsing the tree to
// a single leaf.
func (t *Tree) CloseOthers(keep *Node) {
	t.root = &Node{pane: keep.pane, buried: keep.buried}
}
