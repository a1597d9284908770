// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry implements the append-only module slot table.
//
// Slots are addressed by a small stable index in [1, MaxModules]. Index 0 is
// reserved for "no module". Hook lists reference slots by index, so replacing
// the identifier stored in a slot retargets every hook list that references it
// without touching them.
package registry

import (
	"errors"

	"github.com/luxfi/geth/common"

	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
	"github.com/cryptoalgebra/algebra-modular-hub/state"
)

// MaxModules is the number of slots the registry can ever hand out.
const MaxModules = hooklist.MaxModuleIndex

var (
	ErrAlreadyRegistered = errors.New("module already registered")
	ErrFull              = errors.New("cannot add new modules")
	ErrInvalidIndex      = errors.New("invalid index")
	ErrNotRegistered     = errors.New("module not registered")
	ErrEmptyModule       = errors.New("cannot register empty module")
	ErrReplaceWithEmpty  = errors.New("cannot replace with empty module")
)

// Registry is the module slot table of one hub.
type Registry struct {
	state *state.State
}

func New(s *state.State) *Registry {
	return &Registry{state: s}
}

// Register stores addr in the next free slot and returns its index.
func (r *Registry) Register(addr common.Address) (uint8, error) {
	if addr == (common.Address{}) {
		return 0, ErrEmptyModule
	}

	_, found, err := r.IndexOf(addr)
	if err != nil {
		return 0, err
	}
	if found {
		return 0, ErrAlreadyRegistered
	}

	count, err := r.state.ModulesCount()
	if err != nil {
		return 0, err
	}
	if count >= MaxModules {
		return 0, ErrFull
	}

	index := count + 1
	if err := r.state.PutModule(index, addr); err != nil {
		return 0, err
	}
	if err := r.state.SetModulesCount(index); err != nil {
		return 0, err
	}
	return index, nil
}

// Replace overwrites the identifier stored at index and returns the previous
// one.
func (r *Registry) Replace(index uint8, addr common.Address) (common.Address, error) {
	if index == 0 {
		return common.Address{}, ErrInvalidIndex
	}

	registered, err := r.IsRegistered(index)
	if err != nil {
		return common.Address{}, err
	}
	if !registered {
		return common.Address{}, ErrNotRegistered
	}
	if addr == (common.Address{}) {
		return common.Address{}, ErrReplaceWithEmpty
	}

	existing, found, err := r.IndexOf(addr)
	if err != nil {
		return common.Address{}, err
	}
	if found && existing != index {
		return common.Address{}, ErrAlreadyRegistered
	}

	prev, err := r.state.Module(index)
	if err != nil {
		return common.Address{}, err
	}
	return prev, r.state.PutModule(index, addr)
}

// Count returns the number of registered modules.
func (r *Registry) Count() (uint8, error) {
	return r.state.ModulesCount()
}

// IsRegistered reports whether a module occupies index.
func (r *Registry) IsRegistered(index uint8) (bool, error) {
	if index == 0 {
		return false, nil
	}
	count, err := r.state.ModulesCount()
	if err != nil {
		return false, err
	}
	return index <= count, nil
}

// Module returns the identifier stored at index, or the empty address when
// the slot is unused.
func (r *Registry) Module(index uint8) (common.Address, error) {
	registered, err := r.IsRegistered(index)
	if err != nil || !registered {
		return common.Address{}, err
	}
	return r.state.Module(index)
}

// IndexOf returns the slot holding addr.
func (r *Registry) IndexOf(addr common.Address) (uint8, bool, error) {
	count, err := r.state.ModulesCount()
	if err != nil {
		return 0, false, err
	}
	for index := uint8(1); index <= count; index++ {
		stored, err := r.state.Module(index)
		if err != nil {
			return 0, false, err
		}
		if stored == addr {
			return index, true, nil
		}
	}
	return 0, false, nil
}

// Modules returns every registered identifier; element i is slot i+1.
func (r *Registry) Modules() ([]common.Address, error) {
	count, err := r.state.ModulesCount()
	if err != nil {
		return nil, err
	}
	modules := make([]common.Address, 0, count)
	for index := uint8(1); index <= count; index++ {
		addr, err := r.state.Module(index)
		if err != nil {
			return nil, err
		}
		modules = append(modules, addr)
	}
	return modules, nil
}
