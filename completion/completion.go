// Copyright © 2016, The T Authors.

// Package completion implements the popup completion filter that
// sits between a renderer and a line-source pane: it narrows a list
// of candidate lines to those matching what the user has typed, and
// computes the shared extension ("common"/"common_pre") the popup
// offers to auto-complete. Grounded on §4.6 and Scenario E; the
// match-quality ordering and common/common_pre split are novel to
// this spec, built in the small-matcher-type idiom the teacher's
// own re1 package uses for string matching.
package completion

import (
	"strings"

	"github.com/neilbrown/edlib-sub004/render"
)

// Quality ranks how well a candidate line matches the typed
// substring, highest first: ExactPrefix, then CasePrefix, then
// Substring, then NoMatch.
type Quality int

const (
	NoMatch Quality = iota
	Substring
	CasePrefix
	ExactPrefix
)

// matchQuality reports the best Quality at which line matches sub.
func matchQuality(line, sub string) Quality {
	if sub == "" {
		return ExactPrefix
	}
	if strings.HasPrefix(line, sub) {
		return ExactPrefix
	}
	if len(line) >= len(sub) && strings.EqualFold(line[:len(sub)], sub) {
		return CasePrefix
	}
	if strings.Contains(strings.ToLower(line), strings.ToLower(sub)) {
		return Substring
	}
	return NoMatch
}

// A Filter holds the popup's typing state: a stack of progressively
// typed (and auto-completed) candidate strings, the raw keystrokes
// typed so far (restored by Esc), and whether matching is
// restricted to prefix mode.
type Filter struct {
	stack      []string
	typed      []rune
	prefixOnly bool
	// suppressAutocomplete disables appending common beyond
	// common_pre, per §4.6's "or just common_pre if autocomplete
	// is suppressed".
	suppressAutocomplete bool
}

// New returns an empty Filter. prefixOnly selects prefix-mode
// matching; when false, substring mode is used as a fallback
// match quality for lines that don't prefix-match.
func New(prefixOnly bool) *Filter {
	return &Filter{prefixOnly: prefixOnly}
}

// SetAutocomplete toggles whether Type extends the stacked string
// with the computed common suffix, or stops at common_pre.
func (f *Filter) SetAutocomplete(on bool) { f.suppressAutocomplete = !on }

// Top returns the currently stacked candidate string, or "" if
// nothing has been typed.
func (f *Filter) Top() string {
	if len(f.stack) == 0 {
		return ""
	}
	return f.stack[len(f.stack)-1]
}

// Included reports whether line matches the current top-of-stack
// substring, in prefix or substring mode per f.prefixOnly.
func (f *Filter) Included(line string) bool {
	top := f.Top()
	if top == "" {
		return true
	}
	if f.prefixOnly {
		return strings.HasPrefix(strings.ToLower(line), strings.ToLower(top))
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(top))
}

// Type appends r to the raw keystroke record and to the previously
// stacked (already auto-completed) candidate, computes the new
// common_pre/common pair against lines for that extended candidate,
// and pushes the result onto the stack. Matching against the
// extended candidate, rather than the raw keystrokes alone, is what
// lets one keystroke's auto-completion carry into the next match
// (§4.6's "the filter stacks common_pre + common" feeding forward).
func (f *Filter) Type(r rune, lines []string) string {
	f.typed = append(f.typed, r)
	candidate := f.Top() + string(r)

	commonPre, common := f.computeCommon(candidate, lines)
	next := commonPre
	if !f.suppressAutocomplete {
		next += common
	}
	f.stack = append(f.stack, next)
	return next
}

// computeCommon implements §4.6's common/common_pre rule: among the
// lines matching typed at the best available Quality, common is the
// longest case-preserving extension beyond typed shared by all of
// them, and common_pre is typed itself (the user's own typed case
// is preserved for the portion actively being typed, per the
// resolved Open Question on common_pre case handling).
func (f *Filter) computeCommon(typed string, lines []string) (commonPre, common string) {
	best := NoMatch
	var matches []string
	for _, l := range lines {
		q := matchQuality(l, typed)
		if q == NoMatch {
			continue
		}
		switch {
		case q > best:
			best = q
			matches = []string{l}
		case q == best:
			matches = append(matches, l)
		}
	}
	if len(matches) == 0 {
		return typed, ""
	}

	// Only ExactPrefix and CasePrefix matches share a meaningful
	// positional extension beyond typed; Substring matches may
	// have typed occur anywhere, so no common suffix is offered.
	if best == Substring {
		return typed, ""
	}

	ext := []rune(matches[0])
	if len(ext) < len(typed) {
		return typed, ""
	}
	ext = ext[len(typed):]
	for _, m := range matches[1:] {
		mr := []rune(m)
		if len(mr) < len(typed) {
			return typed, ""
		}
		mr = mr[len(typed):]
		ext = commonExtension(ext, mr)
		if len(ext) == 0 {
			break
		}
	}
	return typed, string(ext)
}

// commonExtension returns the longest prefix of a and b that
// compares equal case-insensitively, with a's casing preserved.
func commonExtension(a, b []rune) []rune {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && foldEqual(a[i], b[i]) {
		i++
	}
	return a[:i]
}

func foldEqual(a, b rune) bool {
	return a == b || (toLower(a) == toLower(b))
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// Backspace pops the most recent typed character's effect off the
// stack (and off the raw keystroke record), restoring the previous
// candidate string.
func (f *Filter) Backspace() string {
	if len(f.typed) > 0 {
		f.typed = f.typed[:len(f.typed)-1]
	}
	if len(f.stack) > 0 {
		f.stack = f.stack[:len(f.stack)-1]
	}
	return f.Top()
}

// Escape discards every typed character and computed extension,
// reporting the string the user had literally typed before the
// popup's own autocomplete extended it — the popup's "original"
// input, per §4.6's Esc behavior.
func (f *Filter) Escape() string {
	raw := string(f.typed)
	f.stack = nil
	f.typed = nil
	return raw
}

// Accept strips the markup grammar from the highlighted line before
// it is submitted to the host popup, per §4.6's Return handling.
func Accept(line string) string { return render.PlainText(line) }
