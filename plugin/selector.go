// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package plugin

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// SelectorLen is the width of a hook selector.
const SelectorLen = 4

var ErrUnknownSelector = errors.New("unknown selector")

// Selector identifies a pool lifecycle event. It is the first four bytes of
// the Keccak-256 hash of the hook's canonical signature.
type Selector [SelectorLen]byte

// Hook selectors, in the order the pool invokes them.
var (
	BeforeInitialize     = newSelector("beforeInitialize", "beforeInitialize(address,uint160)")
	AfterInitialize      = newSelector("afterInitialize", "afterInitialize(address,uint160,int24)")
	BeforeModifyPosition = newSelector("beforeModifyPosition", "beforeModifyPosition(address,address,int24,int24,int128,bytes)")
	AfterModifyPosition  = newSelector("afterModifyPosition", "afterModifyPosition(address,address,int24,int24,int128,uint256,uint256,bytes)")
	BeforeSwap           = newSelector("beforeSwap", "beforeSwap(address,address,bool,int256,uint160,bool,bytes)")
	AfterSwap            = newSelector("afterSwap", "afterSwap(address,address,bool,int256,uint160,int256,int256,bytes)")
	BeforeFlash          = newSelector("beforeFlash", "beforeFlash(address,address,uint256,uint256,bytes)")
	AfterFlash           = newSelector("afterFlash", "afterFlash(address,address,uint256,uint256,uint256,uint256,bytes)")
)

var (
	selectors     []Selector
	selectorNames = map[Selector]string{}
)

func newSelector(name, signature string) Selector {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(signature))

	var s Selector
	copy(s[:], h.Sum(nil))

	selectors = append(selectors, s)
	selectorNames[s] = name
	return s
}

// Selectors returns every recognized hook selector.
func Selectors() []Selector {
	return append([]Selector(nil), selectors...)
}

// Valid reports whether s is one of the recognized hook points.
func (s Selector) Valid() bool {
	_, ok := selectorNames[s]
	return ok
}

// Name returns the hook name, or the empty string for unknown selectors.
func (s Selector) Name() string {
	return selectorNames[s]
}

// Hex returns the 0x-prefixed hex encoding.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

func (s Selector) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return s.Hex()
}

func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSelector accepts either a hook name ("beforeSwap") or a 4-byte hex
// selector with optional 0x prefix. Unknown hex selectors are returned as is;
// callers decide whether to reject them.
func ParseSelector(s string) (Selector, error) {
	for sel, name := range selectorNames {
		if name == s {
			return sel, nil
		}
	}

	raw := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return Selector{}, fmt.Errorf("%w: %q", ErrUnknownSelector, s)
	}
	if len(b) != SelectorLen {
		return Selector{}, fmt.Errorf("%w: %q is %d bytes", ErrUnknownSelector, s, len(b))
	}
	var sel Selector
	copy(sel[:], b)
	return sel, nil
}
