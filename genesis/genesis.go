// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package genesis describes the modules and hook connections a hub starts
// with.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

var ErrUnknownSelector = errors.New("unknown selector")

// Genesis is applied once, when a hub is initialized. Modules are registered
// in order, so Modules[i] receives index i+1. Connections are then appended to
// their hook lists in order.
type Genesis struct {
	Modules     []common.Address `serialize:"true" json:"modules"`
	Connections []Connection     `serialize:"true" json:"connections"`
}

// Connection attaches a registered module to the end of a hook list.
type Connection struct {
	Selector             plugin.Selector `serialize:"true" json:"selector"`
	ModuleIndex          uint8           `serialize:"true" json:"moduleIndex"`
	UseDelegate          bool            `serialize:"true" json:"useDelegate"`
	ImplementsDynamicFee bool            `serialize:"true" json:"implementsDynamicFee"`
}

// Parse decodes a genesis produced by Bytes.
func Parse(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if _, err := Codec.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	return g, g.Verify()
}

// ParseJSON decodes a genesis from its JSON form.
func ParseJSON(b []byte) (*Genesis, error) {
	g := &Genesis{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal genesis: %w", err)
	}
	return g, g.Verify()
}

func (g *Genesis) Bytes() ([]byte, error) {
	return Codec.Marshal(CodecVersion, g)
}

// Verify rejects connections to selectors the hub doesn't recognize. Module
// and position rules are enforced when the genesis is applied.
func (g *Genesis) Verify() error {
	for i, c := range g.Connections {
		if !c.Selector.Valid() {
			return fmt.Errorf("%w: connection %d: %s", ErrUnknownSelector, i, c.Selector)
		}
	}
	return nil
}
