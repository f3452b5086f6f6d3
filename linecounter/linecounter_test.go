// Copyright © 2016, The T Authors.

package linecounter

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"

	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/mark"
)

func wordCount(s string) int {
	return len(strings.FieldsFunc(s, unicode.IsSpace))
}

func lineCount(s string) int {
	n := strings.Count(s, "\n")
	return n
}

func randomDoc(seed int64, lines int) string {
	r := rand.New(rand.NewSource(seed))
	var b strings.Builder
	for i := 0; i < lines; i++ {
		n := r.Intn(81)
		hasWord := r.Intn(5) == 0
		for j := 0; j < n; j++ {
			if hasWord && j%7 == 3 {
				b.WriteByte(' ')
			} else {
				b.WriteByte(byte('a' + r.Intn(26)))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func TestCountMatchesFreshDocument(t *testing.T) {
	content := randomDoc(1, 200)
	d := doc.NewTextString(content)
	defer d.Close()
	s := mark.NewStore(d, nil)
	defer s.Close()

	c := New(s)
	defer c.Close()

	lines, words, chars, err := c.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if lines != lineCount(content) {
		t.Errorf("lines = %d, want %d", lines, lineCount(content))
	}
	if chars != len([]rune(content)) {
		t.Errorf("chars = %d, want %d", chars, len([]rune(content)))
	}
	if words != wordCount(content) {
		t.Errorf("words = %d, want %d", words, wordCount(content))
	}
}

// Scenario D: after attach-count and a handful of unrelated edits
// inside a small window near the middle of a long document, a
// fresh Count equals a from-scratch count of the final content.
func TestCountAfterLocalizedEdits(t *testing.T) {
	content := randomDoc(2, 1200)
	d := doc.NewTextString(content)
	defer d.Close()
	s := mark.NewStore(d, nil)
	defer s.Close()

	c := New(s)
	defer c.Close()

	if _, _, _, err := c.Count(); err != nil {
		t.Fatalf("initial Count: %v", err)
	}

	v := s.NewView("editor")
	pm, err := s.NewMark(v)
	if err != nil {
		t.Fatalf("NewMark: %v", err)
	}

	lines := strings.SplitAfter(content, "\n")
	var offset int
	for i := 0; i < 500 && i < len(lines); i++ {
		offset += len([]rune(lines[i]))
	}
	for i := 0; i < offset; i++ {
		if _, err := s.MarkStep(pm, true); err != nil {
			t.Fatalf("MarkStep: %v", err)
		}
	}

	for i := 0; i < 10; i++ {
		if _, err := d.Replace(pm.Ref(), pm.Ref(), "xy"); err != nil {
			t.Fatalf("Replace: %v", err)
		}
	}

	got, err := freshCountString(d)
	if err != nil {
		t.Fatalf("freshCountString: %v", err)
	}
	lns, wds, chs, err := c.Count()
	if err != nil {
		t.Fatalf("Count after edits: %v", err)
	}
	if lns != got.lines || wds != got.words || chs != got.chars {
		t.Fatalf("Count() = (%d,%d,%d), want (%d,%d,%d)", lns, wds, chs, got.lines, got.words, got.chars)
	}
}

type counts struct{ lines, words, chars int }

// freshCountString reads the document's entire current content back
// out via a throwaway mark walk and counts it directly, independent
// of the Counter under test.
func freshCountString(d *doc.Text) (counts, error) {
	s := mark.NewStore(d, nil)
	defer s.Close()
	v := s.NewView("fresh")
	m, err := s.NewMark(v)
	if err != nil {
		return counts{}, err
	}
	var b strings.Builder
	for {
		r, _ := d.CharAt(m.Ref(), doc.ForwardPeek)
		if r == doc.EOF {
			break
		}
		if _, err := s.MarkStep(m, true); err != nil {
			return counts{}, err
		}
		b.WriteRune(r)
	}
	text := b.String()
	return counts{lineCount(text), wordCount(text), len([]rune(text))}, nil
}
