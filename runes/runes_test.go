// Copyright © 2016, The T Authors.

package runes

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/neilbrown/edlib-sub004/core"
)

const testBlockSize = 8

func TestReadAll(t *testing.T) {
	manyRunes := make([]rune, int(minRead*1.5))
	for i := range manyRunes {
		manyRunes[i] = rune(i)
	}
	tests := [][]rune{
		[]rune("Hello, World! αβξ"),
		manyRunes,
	}
	for _, test := range tests {
		r := &SliceReader{Rs: append([]rune(nil), test...)}
		rs, err := ReadAll(r)
		if !reflect.DeepEqual(rs, test) || err != nil {
			t.Errorf("ReadAll(·)=%q,%v, want %q,<nil>", string(rs), err, string(test))
		}
	}
}

func TestSliceReaderEOF(t *testing.T) {
	r := &SliceReader{Rs: []rune("ab")}
	p := make([]rune, 2)
	if n, err := r.Read(p); n != 2 || err != nil {
		t.Fatalf("Read=%d,%v, want 2,nil", n, err)
	}
	if n, err := r.Read(p); n != 0 || err != io.EOF {
		t.Fatalf("Read=%d,%v, want 0,io.EOF", n, err)
	}
}

func TestLimitedReader(t *testing.T) {
	r := &LimitedReader{Reader: &SliceReader{Rs: []rune("Hello, World!")}, N: 5}
	rs, err := ReadAll(r)
	if err != nil || string(rs) != "Hello" {
		t.Errorf("ReadAll(·)=%q,%v, want %q,<nil>", string(rs), err, "Hello")
	}
}

func TestBufferInsertDeleteRune(t *testing.T) {
	b := NewBuffer(testBlockSize)
	defer b.Close()

	if err := b.Insert([]rune("Hello, 世界!"), 0); err != nil {
		t.Fatalf("Insert=%v, want nil", err)
	}
	if got, want := b.Size(), int64(len([]rune("Hello, 世界!"))); got != want {
		t.Fatalf("Size()=%d, want %d", got, want)
	}
	for i, want := range []rune("Hello, 世界!") {
		got, err := b.Rune(int64(i))
		if err != nil || got != want {
			t.Errorf("Rune(%d)=%q,%v, want %q,nil", i, got, err, want)
		}
	}

	if err := b.Delete(2, 5); err != nil {
		t.Fatalf("Delete=%v, want nil", err)
	}
	rs, err := b.Read(int(b.Size()), 0)
	if err != nil {
		t.Fatalf("Read=%v, want nil", err)
	}
	if got, want := string(rs), "Hello世界!"; got != want {
		t.Errorf("Read=%q, want %q", got, want)
	}
}

func TestBufferSpansMultipleBlocks(t *testing.T) {
	b := NewBuffer(testBlockSize)
	defer b.Close()

	const n = 100
	rs := make([]rune, n)
	for i := range rs {
		rs[i] = rune('a' + i%26)
	}
	if err := b.Insert(rs, 0); err != nil {
		t.Fatalf("Insert=%v, want nil", err)
	}
	if err := b.Insert([]rune("XYZ"), 50); err != nil {
		t.Fatalf("Insert=%v, want nil", err)
	}
	if err := b.Delete(10, 0); err != nil {
		t.Fatalf("Delete=%v, want nil", err)
	}

	got, err := b.Read(int(b.Size()), 0)
	if err != nil {
		t.Fatalf("Read=%v, want nil", err)
	}
	want := append(append(append([]rune{}, rs[10:50]...), []rune("XYZ")...), rs[50:]...)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Read=%q, want %q", string(got), string(want))
	}
}

// TestDeleteOutOfRangeIsInvalid covers the §7 wiring: an out-of-range
// Delete reports an error wrapping core.Invalid, not a bare string.
func TestDeleteOutOfRangeIsInvalid(t *testing.T) {
	b := NewBuffer(testBlockSize)
	defer b.Close()

	b.Insert([]rune("abc"), 0)
	if err := b.Delete(1, 5); !errors.Is(err, core.Invalid) {
		t.Fatalf("Delete(out of range) = %v, want an error wrapping core.Invalid", err)
	}
}
