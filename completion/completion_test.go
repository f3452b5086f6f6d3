// Copyright © 2016, The T Authors.

package completion

import (
	"strings"
	"testing"
)

var scenarioELines = []string{"alpha", "alphabet", "alphanumeric", "beta", "Beta"}

func TestTypeScenarioE(t *testing.T) {
	f := New(true)
	got := f.Type('a', scenarioELines)
	if got != "alpha" {
		t.Fatalf("after typing 'a', stacked = %q, want %q", got, "alpha")
	}

	before := got
	got = f.Type('b', scenarioELines)
	if !strings.HasPrefix(got, before) {
		t.Fatalf("after typing 'b', stacked = %q, want an extension of %q", got, before)
	}

	back := f.Backspace()
	if back != "alpha" {
		t.Fatalf("Backspace = %q, want %q", back, "alpha")
	}

	esc := f.Escape()
	if esc != "a" {
		t.Fatalf("Escape = %q, want %q", esc, "a")
	}
}

func TestMatchQualityOrdering(t *testing.T) {
	cases := []struct {
		line, sub string
		want      Quality
	}{
		{"alpha", "al", ExactPrefix},
		{"Alpha", "al", CasePrefix},
		{"beta", "et", Substring},
		{"beta", "xyz", NoMatch},
	}
	for _, c := range cases {
		if got := matchQuality(c.line, c.sub); got != c.want {
			t.Errorf("matchQuality(%q, %q) = %v, want %v", c.line, c.sub, got, c.want)
		}
	}
}

func TestIncludedPrefixMode(t *testing.T) {
	f := New(true)
	f.Type('a', scenarioELines)
	if !f.Included("Alphabet") {
		t.Error("prefix-mode Included should match case-insensitively")
	}
	if f.Included("beta") {
		t.Error("prefix-mode Included should not match a line lacking the prefix")
	}
}

func TestIncludedSubstringMode(t *testing.T) {
	f := New(false)
	f.typed = []rune("et")
	f.stack = []string{"et"}
	if !f.Included("alphabet") {
		t.Error("substring-mode Included should match a line containing the substring anywhere")
	}
	if f.Included("alphanumeric") {
		t.Error("substring-mode Included should not match a line without the substring")
	}
}

func TestAcceptStripsMarkup(t *testing.T) {
	got := Accept("<fg:blue>alpha</>")
	if got != "alpha" {
		t.Fatalf("Accept = %q, want %q", got, "alpha")
	}
}

func TestSuppressAutocompleteStopsAtCommonPre(t *testing.T) {
	f := New(true)
	f.SetAutocomplete(false)
	got := f.Type('a', scenarioELines)
	if got != "a" {
		t.Fatalf("with autocomplete suppressed, Type('a') = %q, want %q", got, "a")
	}
}
