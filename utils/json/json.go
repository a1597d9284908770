// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides the JSON-RPC codec and numeric types used by the hub
// API.
package json

import (
	"fmt"
	"strconv"
)

const Null = "null"

// Uint8 is a uint8 that is JSON marshaled as a string and accepts either a
// string or a number when unmarshaled.
type Uint8 uint8

func (u Uint8) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint8) UnmarshalJSON(b []byte) error {
	val, err := parseUint(b, 8)
	if err != nil {
		return err
	}
	*u = Uint8(val)
	return nil
}

// Uint16 is a uint16 that is JSON marshaled as a string and accepts either a
// string or a number when unmarshaled.
type Uint16 uint16

func (u Uint16) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint16) UnmarshalJSON(b []byte) error {
	val, err := parseUint(b, 16)
	if err != nil {
		return err
	}
	*u = Uint16(val)
	return nil
}

// Uint64 is a uint64 that is JSON marshaled as a string and accepts either a
// string or a number when unmarshaled.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	val, err := parseUint(b, 64)
	if err != nil {
		return err
	}
	*u = Uint64(val)
	return nil
}

// parseUint returns 0 for null.
func parseUint(b []byte, bitSize int) (uint64, error) {
	str := string(b)
	if str == Null {
		return 0, nil
	}
	if len(str) >= 2 {
		if lastIndex := len(str) - 1; str[0] == '"' && str[lastIndex] == '"' {
			str = str[1:lastIndex]
		}
	}
	val, err := strconv.ParseUint(str, 10, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid uint%d %q: %w", bitSize, str, err)
	}
	return val, nil
}
