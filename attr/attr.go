// Copyright © 2016, The T Authors.

// Package attr provides an ordered key/value attribute set
// with a numeric-aware collation, used both for per-character
// markup and for object metadata.
//
// A key may carry a numeric prefix: a decimal integer followed
// by a single space, then the logical key, written "%d %s".
// The prefix participates in collation as a number, not as a
// sequence of digit bytes, so that, for example, "9 x" sorts
// before "10 x" even though '9' sorts after '1' byte-for-byte.
package attr

import (
	"errors"
	"fmt"
	"sort"
)

// MaxEntryBytes is the maximum number of bytes a key and its
// value may together occupy. Larger values belong in a side
// table, not in an AttrSet.
const MaxEntryBytes = 510

// ErrTooLarge is returned by Insert when key and value together
// exceed MaxEntryBytes.
var ErrTooLarge = errors.New("attr: key and value exceed the size limit")

// An Attribute is a single (key, value) pair held by a Set.
type Attribute struct {
	Key   string
	Value string
}

// A Set is a sequence of Attributes kept in collation order.
//
// The zero value is an empty, usable Set. A Set is owned
// exclusively by its host (a mark, a pane, a document);
// dropping the host drops the Set.
type Set struct {
	entries []Attribute
	pool    *KeyPool
}

// SetKeyPool attaches p to s: every subsequent Insert interns its
// key through p before storing it, so Sets sharing a pool (as every
// Mark's Set does, via a single pool on their owning mark.Store)
// converge repeated key strings onto one allocation. Passing a nil
// p detaches the pool; existing entries are left as they are.
func (s *Set) SetKeyPool(p *KeyPool) { s.pool = p }

// Len returns the number of attributes in the set.
func (s *Set) Len() int { return len(s.entries) }

// At returns the ith attribute in collation order.
func (s *Set) At(i int) Attribute { return s.entries[i] }

// Compare implements the collation order: lexicographic on
// bytes, except that a maximal run of ASCII digits compares as
// a non-negative integer and outranks any non-digit byte at the
// same position. Leading zeros are insignificant.
func Compare(a, b string) int {
	ta, tb := tokenize(a), tokenize(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		if c := compareToken(ta[i], tb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(ta) < len(tb):
		return -1
	case len(ta) > len(tb):
		return 1
	default:
		return 0
	}
}

type token struct {
	digits bool
	num    int64
	b      byte
}

func tokenize(s string) []token {
	var ts []token
	i := 0
	for i < len(s) {
		if isDigit(s[i]) {
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			ts = append(ts, token{digits: true, num: atoi(s[i:j])})
			i = j
			continue
		}
		ts = append(ts, token{b: s[i]})
		i++
	}
	return ts
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// atoi parses a run of ASCII digits known not to overflow int64
// for any realistic key; it never errors because the caller has
// already verified every byte is a digit.
func atoi(s string) int64 {
	var n int64
	for i := 0; i < len(s); i++ {
		n = n*10 + int64(s[i]-'0')
	}
	return n
}

func compareToken(a, b token) int {
	switch {
	case a.digits && b.digits:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	case a.digits && !b.digits:
		return 1
	case !a.digits && b.digits:
		return -1
	case a.b < b.b:
		return -1
	case a.b > b.b:
		return 1
	default:
		return 0
	}
}

// search returns the index of the first entry whose key collates
// greater than or equal to key, and whether that entry is equal
// (not merely >=) to key.
func (s *Set) search(key string) (i int, found bool) {
	i = sort.Search(len(s.entries), func(i int) bool {
		return Compare(s.entries[i].Key, key) >= 0
	})
	found = i < len(s.entries) && Compare(s.entries[i].Key, key) == 0
	return i, found
}

// Lookup returns the value bound to key, using collation
// equality — not literal string equality — to find the binding.
// So Lookup(s, "5 Foo") finds an entry stored as "05 Foo".
func (s *Set) Lookup(key string) (value string, ok bool) {
	i, found := s.search(key)
	if !found {
		return "", false
	}
	return s.entries[i].Value, true
}

// LookupNumeric looks up the value bound to the numerically
// prefixed form of key with prefix n.
func (s *Set) LookupNumeric(key string, n int) (value string, ok bool) {
	return s.Lookup(prefixed(n, key))
}

func prefixed(n int, key string) string {
	return fmt.Sprintf("%d %s", n, key)
}

// Insert replaces any existing binding for key (found by
// collation equality) with value, preserving the literal text of
// a pre-existing key and only replacing its value. If no entry
// collates equal to key, a new entry is inserted at the correct
// sorted position.
//
// Insert of an absent value (see Remove) is a delete; Insert
// itself always binds key to value, including the empty string —
// collect_at is what treats an empty value specially.
func (s *Set) Insert(key, value string) error {
	if len(key)+len(value) > MaxEntryBytes {
		return ErrTooLarge
	}
	i, found := s.search(key)
	if found {
		s.entries[i].Value = value
		return nil
	}
	if s.pool != nil {
		key = s.pool.Intern(key)
	}
	s.entries = append(s.entries, Attribute{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = Attribute{Key: key, Value: value}
	return nil
}

// Remove deletes the entry collating equal to key, if any, and
// reports whether an entry was removed. This is the "insert of
// absent" operation named in the component design.
func (s *Set) Remove(key string) bool {
	i, found := s.search(key)
	if !found {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// splitPrefix parses a numerically prefixed key of the form
// "%d %s" into its prefix and logical key. ok is false if key
// carries no numeric prefix, in which case logical is key
// unchanged.
func splitPrefix(key string) (prefix int, logical string, ok bool) {
	i := 0
	for i < len(key) && isDigit(key[i]) {
		i++
	}
	if i == 0 || i >= len(key) || key[i] != ' ' {
		return 0, key, false
	}
	n := int(atoi(key[:i]))
	return n, key[i+1:], true
}

// DeleteRange deletes every numerically prefixed entry with the
// given logical key whose prefix is in [lo, hi], and returns the
// number of entries removed.
func (s *Set) DeleteRange(logicalKey string, lo, hi int) int {
	out := s.entries[:0]
	removed := 0
	for _, e := range s.entries {
		if prefix, logical, ok := splitPrefix(e.Key); ok && logical == logicalKey && prefix >= lo && prefix <= hi {
			removed++
			continue
		}
		out = append(out, e)
	}
	s.entries = out
	return removed
}

// Trim keeps only entries whose numeric prefix is less than n.
// Entries with no numeric prefix are left untouched; they carry
// no position to trim against.
func (s *Set) Trim(n int) {
	out := s.entries[:0]
	for _, e := range s.entries {
		if prefix, _, ok := splitPrefix(e.Key); ok && prefix >= n {
			continue
		}
		out = append(out, e)
	}
	s.entries = out
}

// CopyTail returns a new Set holding the entries whose numeric
// prefix is at least n, verbatim, with their prefix and logical
// key unchanged. Entries without a numeric prefix are not
// included: they carry no position to test against n.
func (s *Set) CopyTail(n int) *Set {
	var out Set
	for _, e := range s.entries {
		if prefix, _, ok := splitPrefix(e.Key); ok && prefix >= n {
			out.entries = append(out.entries, e)
		}
	}
	return &out
}

// CollectAt produces a new Set containing exactly the attributes
// in effect at pos: every numerically prefixed entry with prefix
// <= pos, with entries of higher prefix overriding entries of
// lower prefix that share the same logical key. A logical key
// whose winning value is empty is omitted (empty value on insert
// is a delete, as observed through collect_at).
//
// The result's entries are stamped with newPrefix, or left
// unprefixed if newPrefix is nil.
func (s *Set) CollectAt(pos int, newPrefix *int) *Set {
	type winner struct {
		prefix int
		value  string
	}
	effective := make(map[string]winner)
	var order []string
	for _, e := range s.entries {
		prefix, logical, ok := splitPrefix(e.Key)
		if !ok || prefix > pos {
			continue
		}
		w, seen := effective[logical]
		if !seen {
			order = append(order, logical)
		}
		if !seen || prefix >= w.prefix {
			effective[logical] = winner{prefix: prefix, value: e.Value}
		}
	}
	var out Set
	for _, logical := range order {
		w := effective[logical]
		if w.value == "" {
			continue
		}
		key := logical
		if newPrefix != nil {
			key = prefixed(*newPrefix, logical)
		}
		out.Insert(key, w.value)
	}
	return &out
}

// IterateFrom returns the next (key, value) pair whose numeric
// prefix is exactly n and whose logical key collates strictly
// after key (an empty key starts from the beginning), or reports
// ok == false when no such entry exists.
func (s *Set) IterateFrom(key string, n int) (nextKey, value string, ok bool) {
	for _, e := range s.entries {
		prefix, logical, isPrefixed := splitPrefix(e.Key)
		if !isPrefixed || prefix != n {
			continue
		}
		if key != "" && Compare(logical, key) <= 0 {
			continue
		}
		if !ok || Compare(logical, nextKey) < 0 {
			nextKey, value, ok = logical, e.Value, true
		}
	}
	return nextKey, value, ok
}

// Clone returns a deep copy of s, sharing s's KeyPool if any.
func (s *Set) Clone() *Set {
	out := &Set{entries: make([]Attribute, len(s.entries)), pool: s.pool}
	copy(out.entries, s.entries)
	return out
}
