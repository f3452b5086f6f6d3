// Copyright © 2016, The T Authors.

package tile

// ThisPane returns leaf itself: the chooser that always reuses the
// pane the command was invoked from.
func ThisPane(leaf *Node) *Node { return leaf }

// OtherPane returns a second pane to act on: if leaf is at least
// autoSplitCols scaled columns wide, it is split in two (Horiz,
// after) and the new, empty half is returned; otherwise leaf itself
// is reused, matching §4.7's auto-split threshold.
func OtherPane(t *Tree, leaf *Node, newPane Pane) *Node {
	if leaf.availInline >= autoSplitCols {
		if n, err := t.Split(leaf, Horiz, false, newPane); err == nil {
			return n
		}
	}
	return leaf
}

// DocPane returns the tile that should host a newly opened
// document: the currently focused leaf's OtherPane, so a document
// opened from a command pane lands beside it rather than replacing
// it outright when there's room.
func DocPane(t *Tree, focused *Node, newPane Pane) *Node {
	return OtherPane(t, focused, newPane)
}
