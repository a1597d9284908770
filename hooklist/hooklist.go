// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hooklist implements the packed, ordered list of module references
// attached to a single hook.
//
// A List is a 256-bit word holding up to Capacity entries of EntryBits each.
// Position 0 is the most significant byte of the word and the final byte is
// always zero. Entries are contiguous from position 0: an empty slot is never
// followed by an occupied one, so the first empty slot terminates the list.
package hooklist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	// Capacity is the maximum number of entries in a list.
	Capacity = 31

	wordBits = 256
)

var (
	ErrInvalidIndex       = errors.New("invalid index")
	ErrGap                = errors.New("cannot create gaps in hook list")
	ErrFull               = errors.New("no free space in hook list")
	ErrZeroModuleIndex    = errors.New("module index cannot be zero")
	ErrModuleIndexTooHigh = errors.New("module index does not fit in hook list entry")
	ErrInvalidEncoding    = errors.New("invalid hook list encoding")
)

// List is an immutable packed hook list. The zero value is the empty list.
type List struct {
	word uint256.Int
}

// FromWord wraps a raw 256-bit word. The word is not validated; use
// FromBytes when decoding untrusted input.
func FromWord(word *uint256.Int) List {
	var l List
	l.word.Set(word)
	return l
}

// FromBytes decodes a 32-byte big-endian word and checks that it satisfies
// the list invariants.
func FromBytes(b []byte) (List, error) {
	if len(b) != 32 {
		return List{}, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidEncoding, len(b))
	}
	var l List
	l.word.SetBytes32(b)
	if err := l.Verify(); err != nil {
		return List{}, err
	}
	return l, nil
}

// Word returns a copy of the underlying word.
func (l List) Word() *uint256.Int {
	return new(uint256.Int).Set(&l.word)
}

// Bytes returns the 32-byte big-endian encoding of the list.
func (l List) Bytes() []byte {
	b := l.word.Bytes32()
	return b[:]
}

// Verify checks the contiguity invariant, that no stray flag bits are set in
// empty slots and that the unused trailing byte is zero.
func (l List) Verify() error {
	b := l.word.Bytes32()
	if b[Capacity] != 0 {
		return fmt.Errorf("%w: trailing byte is set", ErrInvalidEncoding)
	}
	ended := false
	for pos := 0; pos < Capacity; pos++ {
		switch {
		case b[pos]&indexMask == 0:
			if b[pos] != 0 {
				return fmt.Errorf("%w: flags set on empty slot %d", ErrInvalidEncoding, pos)
			}
			ended = true
		case ended:
			return fmt.Errorf("%w: gap before slot %d", ErrInvalidEncoding, pos)
		}
	}
	return nil
}

// Get returns the entry at position. Empty and out-of-range positions yield
// the zero Entry.
func (l List) Get(position uint8) Entry {
	if position >= Capacity {
		return Entry{}
	}
	b := l.word.Bytes32()
	return UnpackEntry(b[position])
}

// Len returns the number of occupied entries.
func (l List) Len() int {
	b := l.word.Bytes32()
	for pos := 0; pos < Capacity; pos++ {
		if b[pos]&indexMask == 0 {
			return pos
		}
	}
	return Capacity
}

// HasActiveModules reports whether the list holds at least one entry.
func (l List) HasActiveModules() bool {
	return !l.Get(0).Empty()
}

// HasDynamicFee reports whether any occupied entry may push a fee update.
func (l List) HasDynamicFee() bool {
	b := l.word.Bytes32()
	for pos := 0; pos < Capacity; pos++ {
		e := UnpackEntry(b[pos])
		if e.Empty() {
			return false
		}
		if e.ImplementsDynamicFee {
			return true
		}
	}
	return false
}

// Entries returns every occupied entry in list order.
func (l List) Entries() []Entry {
	b := l.word.Bytes32()
	entries := make([]Entry, 0, Capacity)
	for pos := 0; pos < Capacity; pos++ {
		e := UnpackEntry(b[pos])
		if e.Empty() {
			break
		}
		entries = append(entries, e)
	}
	return entries
}

// Insert returns a new list with entry written at position and every entry at
// or after position moved one slot toward the end.
func (l List) Insert(position uint8, entry Entry) (List, error) {
	switch {
	case entry.ModuleIndex == 0:
		return l, ErrZeroModuleIndex
	case entry.ModuleIndex > MaxModuleIndex:
		return l, ErrModuleIndexTooHigh
	case position >= Capacity:
		return l, ErrInvalidIndex
	}
	count := l.Len()
	if int(position) > count {
		return l, ErrGap
	}
	if count >= Capacity {
		return l, ErrFull
	}

	tail := new(uint256.Int).And(&l.word, suffixMask(position))
	head := new(uint256.Int).Xor(&l.word, tail)
	tail.Rsh(tail, EntryBits)

	packed := uint256.NewInt(uint64(entry.Pack()))
	packed.Lsh(packed, slotShift(position))

	var next List
	next.word.Or(head, tail)
	next.word.Or(&next.word, packed)
	return next, nil
}

// Remove returns a new list without the entry at position; later entries move
// one slot toward the start and the last slot is cleared. Removing an empty
// slot returns the list unchanged.
func (l List) Remove(position uint8) (List, error) {
	if position >= Capacity {
		return l, ErrInvalidIndex
	}
	if l.Get(position).Empty() {
		return l, nil
	}

	rest := new(uint256.Int).And(&l.word, suffixMask(position+1))
	prefix := suffixMask(position)
	prefix.Not(prefix)
	head := new(uint256.Int).And(&l.word, prefix)
	rest.Lsh(rest, EntryBits)

	var next List
	next.word.Or(head, rest)
	return next, nil
}

func (l List) String() string {
	entries := l.Entries()
	if len(entries) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// suffixMask covers the slots at position and beyond, including the trailing
// byte.
func suffixMask(position uint8) *uint256.Int {
	m := new(uint256.Int).Lsh(uint256.NewInt(1), uint(wordBits-EntryBits*int(position)))
	return m.SubUint64(m, 1)
}

// slotShift is the left shift that moves a packed entry into position.
func slotShift(position uint8) uint {
	return uint(wordBits - EntryBits*(int(position)+1))
}
