// Copyright © 2016, The T Authors.

// Package linecounter maintains cumulative line/word/character
// counts over a Doc using a chain of sentinel "counter" marks, so
// that a count query after a small, localized edit costs roughly
// the size of the edit rather than a full document walk. It is
// grounded on the mark package's own invalidate-on-replace pattern
// (a Watched mark's one-shot notification) generalized into a
// persistent cache rather than a single latch.
package linecounter

import (
	"strconv"
	"unicode"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
)

// span is the approximate number of lines between counter marks.
const span = 50

// minTrustedSpan is the minimum line distance a cached segment
// must have before its neighbor is trusted without merging (§4.5
// rule 3).
const minTrustedSpan = 10

const (
	linesKey = "lines"
	wordsKey = "words"
	charsKey = "chars"
)

// A Counter attaches a hidden View to a Doc and keeps a chain of
// counter marks, each caching the cumulative line/word/char counts
// from the previous counter mark (or start of document) up to
// itself.
type Counter struct {
	store  *mark.Store
	view   *mark.View
	cancel func()
}

// New attaches a Counter to s. The Counter must be closed with
// Close when no longer needed, which frees its hidden View.
func New(s *mark.Store) *Counter {
	c := &Counter{store: s, view: s.NewView("linecounter")}
	c.cancel = s.Doc().Subscribe(doc.Replaced, func(payload interface{}) {
		if ch, ok := payload.(doc.Change); ok {
			c.onReplaced(ch)
		}
	})
	return c
}

// Close frees every counter mark and drops the Counter's View.
// Nothing in this package reacts to the Doc itself being closed;
// the counter marks are released only by calling Close.
func (c *Counter) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.store.DelView(c.view)
}

// onReplaced clears the cached attributes of every counter mark
// whose segment could have been touched by change, without
// deleting the marks themselves (§4.5: "clear its three
// attributes (but not the mark)"). Counter marks are kept in
// document order within their View, so the affected run is
// contiguous and the walk stops as soon as it passes NewEnd.
func (c *Counter) onReplaced(change doc.Change) {
	d := c.store.Doc()
	for m := mark.VMarkFirst(c.view); m != nil; m = mark.VMarkNext(c.view, m) {
		r := m.Ref()
		touched := !r.Before(change.From) || d.RefsEqual(r, change.From)
		if touched {
			clearCounts(m)
		}
		if touched && change.NewEnd.Before(r) {
			break
		}
	}
}

func clearCounts(m *mark.Mark) {
	m.Attrs().Remove(linesKey)
	m.Attrs().Remove(wordsKey)
	m.Attrs().Remove(charsKey)
}

// Count returns the document's total line, word, and character
// counts, trusting cached counter-mark segments where possible and
// recomputing a segment where its cache is missing or too short to
// trust, per §4.5. No counter mark is deleted along the way.
func (c *Counter) Count() (lines, words, chars int, err error) {
	first, err := c.ensureStartMark()
	if err != nil {
		return 0, 0, 0, err
	}

	cur := first
	for {
		next := mark.VMarkNext(c.view, cur)
		if next == nil {
			l, w, ch, err := c.recompute(cur, nil)
			if err != nil {
				return 0, 0, 0, err
			}
			lines += l
			words += w
			chars += ch
			return lines, words, chars, nil
		}

		if l, w, ch, ok := cachedCounts(next); ok && c.neighborTrusted(next) {
			lines += l
			words += w
			chars += ch
			cur = next
			continue
		}

		// Either the segment cached on next is stale, or it is too
		// short to trust standing alone; recompute from cur through
		// next and store the result back on next.
		l, w, ch, err := c.recompute(cur, next)
		if err != nil {
			return 0, 0, 0, err
		}
		lines += l
		words += w
		chars += ch
		cur = next
	}
}

// neighborTrusted implements rule 3's second clause: the next
// counter mark's own cached segment must be present and span at
// least minTrustedSpan lines, else it is merged into the
// recomputation of the current segment.
func (c *Counter) neighborTrusted(next *mark.Mark) bool {
	v, ok := next.Attrs().Lookup(linesKey)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= minTrustedSpan
}

func cachedCounts(m *mark.Mark) (lines, words, chars int, ok bool) {
	lv, lok := m.Attrs().Lookup(linesKey)
	wv, wok := m.Attrs().Lookup(wordsKey)
	cv, cok := m.Attrs().Lookup(charsKey)
	if !lok || !wok || !cok {
		return 0, 0, 0, false
	}
	l, err1 := strconv.Atoi(lv)
	w, err2 := strconv.Atoi(wv)
	ch, err3 := strconv.Atoi(cv)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return l, w, ch, true
}

// ensureStartMark guarantees a counter mark at start-of-file,
// inserting one if absent (§4.5 step 1).
func (c *Counter) ensureStartMark() (*mark.Mark, error) {
	d := c.store.Doc()
	start := d.Terminus(doc.ToStart)
	if first := mark.VMarkFirst(c.view); first != nil && d.RefsEqual(first.Ref(), start) {
		return first, nil
	}
	m, err := c.store.NewMark(c.view)
	if err != nil {
		return nil, err
	}
	if err := c.store.MarkToEnd(m, false); err != nil {
		return nil, err
	}
	return m, nil
}

// recompute walks characters from cur to next (or to EOF if next
// is nil), maintaining an in-word flag over Unicode space class
// (seeded from the character before cur, so a word that straddles
// cur is counted once), dropping a fresh counter mark every span
// lines so future queries stay bounded. If next is non-nil, its
// attributes are overwritten with the freshly computed segment
// between the last drop point and next; the marks this walk drops
// stay in the View, and no existing counter mark is removed. If
// next is nil, only the running totals are returned, since there
// is no terminal mark to cache them on.
func (c *Counter) recompute(cur, next *mark.Mark) (lines, words, chars int, err error) {
	walker, err := c.store.MarkDup(cur)
	if err != nil {
		return 0, 0, 0, err
	}
	defer c.store.Free(walker)

	d := c.store.Doc()
	before, _ := d.CharAt(walker.Ref(), doc.BackwardPeek)
	inWord := before != doc.EOF && !unicode.IsSpace(before)
	segLines, segWords, segChars := 0, 0, 0

	for {
		if next != nil && d.RefsEqual(walker.Ref(), next.Ref()) {
			break
		}
		r, _ := d.CharAt(walker.Ref(), doc.ForwardPeek)
		if r == doc.EOF {
			break
		}
		if _, err := c.store.MarkStep(walker, true); err != nil {
			return 0, 0, 0, err
		}

		segChars++
		chars++
		if r == '\n' {
			segLines++
			lines++
		}
		if unicode.IsSpace(r) {
			inWord = false
		} else if !inWord {
			inWord = true
			segWords++
			words++
		}

		if segLines >= span && (next == nil || !d.RefsEqual(walker.Ref(), next.Ref())) {
			dropped, err := c.store.NewMark(c.view)
			if err != nil {
				return 0, 0, 0, err
			}
			if err := c.store.MarkToMark(dropped, walker); err != nil {
				return 0, 0, 0, err
			}
			storeCounts(dropped, segLines, segWords, segChars)
			// Re-seat the walker after the mark just dropped, so the
			// next drop lands after this one in the View.
			if err := c.store.MarkToMark(walker, dropped); err != nil {
				return 0, 0, 0, err
			}
			segLines, segWords, segChars = 0, 0, 0
		}
	}

	if next != nil {
		storeCounts(next, segLines, segWords, segChars)
	}
	return lines, words, chars, nil
}

func storeCounts(m *mark.Mark, lines, words, chars int) {
	m.Attrs().Insert(linesKey, strconv.Itoa(lines))
	m.Attrs().Insert(wordsKey, strconv.Itoa(words))
	m.Attrs().Insert(charsKey, strconv.Itoa(chars))
}
