// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooklist

import "fmt"

const (
	// EntryBits is the width of a single packed entry.
	EntryBits = 8

	indexBits = 6
	indexMask = 1<<indexBits - 1

	delegateFlag   = 1 << 7
	dynamicFeeFlag = 1 << 6

	// MaxModuleIndex is the largest module index an entry can reference.
	MaxModuleIndex = indexMask
)

// Entry is a single module reference inside a hook list.
//
// A zero ModuleIndex means the slot is empty.
type Entry struct {
	ModuleIndex          uint8 `json:"moduleIndex"`
	UseDelegate          bool  `json:"useDelegate"`
	ImplementsDynamicFee bool  `json:"implementsDynamicFee"`
}

// Empty reports whether the entry does not reference a module.
func (e Entry) Empty() bool {
	return e.ModuleIndex == 0
}

// Pack encodes the entry into its 8-bit form:
// bit 7 delegate, bit 6 dynamic fee, bits 0-5 module index.
func (e Entry) Pack() uint8 {
	b := e.ModuleIndex & indexMask
	if e.UseDelegate {
		b |= delegateFlag
	}
	if e.ImplementsDynamicFee {
		b |= dynamicFeeFlag
	}
	return b
}

// UnpackEntry decodes an 8-bit packed entry. An empty slot always decodes to
// the zero Entry.
func UnpackEntry(b uint8) Entry {
	index := b & indexMask
	if index == 0 {
		return Entry{}
	}
	return Entry{
		ModuleIndex:          index,
		UseDelegate:          b&delegateFlag != 0,
		ImplementsDynamicFee: b&dynamicFeeFlag != 0,
	}
}

func (e Entry) String() string {
	if e.Empty() {
		return "empty"
	}
	mode := "direct"
	if e.UseDelegate {
		mode = "delegate"
	}
	return fmt.Sprintf("module %d (%s, dynamicFee=%t)", e.ModuleIndex, mode, e.ImplementsDynamicFee)
}
