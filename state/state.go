// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state manages the persistent layout of the modular hub: one packed
// hook list per selector, the module slot table and the slot counter.
package state

import (
	"errors"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"

	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

var (
	ErrStateCorrupted = errors.New("state corrupted")

	// Database prefixes
	prefixHookList  = []byte("hooklist:")
	prefixModule    = []byte("module:")
	keyModulesCount = []byte("modulesCount")
	keyInitialized  = []byte("initialized")
)

// DB is the storage the hub state lives in.
type DB interface {
	database.KeyValueReader
	database.KeyValueWriter
}

// State reads and writes hub state directly against its database. It holds
// no cache, so every read observes writes made by delegate modules.
type State struct {
	db DB
}

func New(db DB) *State {
	return &State{db: db}
}

// HookList returns the list connected to selector. Missing lists are empty.
func (s *State) HookList(selector plugin.Selector) (hooklist.List, error) {
	data, err := s.db.Get(hookListKey(selector))
	if errors.Is(err, database.ErrNotFound) {
		return hooklist.List{}, nil
	}
	if err != nil {
		return hooklist.List{}, err
	}

	list, err := hooklist.FromBytes(data)
	if err != nil {
		return hooklist.List{}, fmt.Errorf("%w: hook list %s: %w", ErrStateCorrupted, selector, err)
	}
	return list, nil
}

func (s *State) PutHookList(selector plugin.Selector, list hooklist.List) error {
	return s.db.Put(hookListKey(selector), list.Bytes())
}

// Module returns the identifier stored in slot index, or the empty address if
// the slot was never written.
func (s *State) Module(index uint8) (common.Address, error) {
	data, err := s.db.Get(moduleKey(index))
	if errors.Is(err, database.ErrNotFound) {
		return common.Address{}, nil
	}
	if err != nil {
		return common.Address{}, err
	}
	if len(data) != common.AddressLength {
		return common.Address{}, fmt.Errorf("%w: module slot %d has %d bytes", ErrStateCorrupted, index, len(data))
	}
	return common.BytesToAddress(data), nil
}

func (s *State) PutModule(index uint8, addr common.Address) error {
	return s.db.Put(moduleKey(index), addr.Bytes())
}

// ModulesCount returns the number of occupied module slots.
func (s *State) ModulesCount() (uint8, error) {
	data, err := s.db.Get(keyModulesCount)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(data) != 1 {
		return 0, fmt.Errorf("%w: modules count has %d bytes", ErrStateCorrupted, len(data))
	}
	return data[0], nil
}

func (s *State) SetModulesCount(count uint8) error {
	return s.db.Put(keyModulesCount, []byte{count})
}

// Initialized reports whether a genesis has been applied.
func (s *State) Initialized() (bool, error) {
	return s.db.Has(keyInitialized)
}

func (s *State) SetInitialized() error {
	return s.db.Put(keyInitialized, []byte{1})
}

func hookListKey(selector plugin.Selector) []byte {
	key := make([]byte, 0, len(prefixHookList)+plugin.SelectorLen)
	key = append(key, prefixHookList...)
	return append(key, selector[:]...)
}

func moduleKey(index uint8) []byte {
	key := make([]byte, 0, len(prefixModule)+1)
	key = append(key, prefixModule...)
	return append(key, index)
}
