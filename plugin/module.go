// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package plugin defines the contract between the modular hub and the
// modules it dispatches pool hooks to.
package plugin

import (
	"context"
	"errors"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
)

var (
	_ Module   = ModuleFunc(nil)
	_ Resolver = (*Directory)(nil)

	ErrModuleExists = errors.New("module already exists at address")
	ErrEmptyAddress = errors.New("empty module address")
)

// Storage is the key/value state a module executes against.
type Storage interface {
	database.KeyValueReader
	database.KeyValueWriterDeleter
}

// Call describes one hook invocation of one module.
type Call struct {
	Selector Selector
	// Pool is the pool that triggered the hook.
	Pool common.Address
	// Sender is the account that called the pool.
	Sender common.Address
	// Params is one of *InitializeParams, *ModifyPositionParams, *SwapParams
	// or *FlashParams depending on Selector.
	Params any

	// Delegate is true when the module runs against the hub's storage.
	Delegate bool
	// State is the hub's storage in delegate mode and the module's private
	// storage otherwise.
	State Storage
}

// Result is what a module reports back to the hub.
type Result struct {
	// OverrideFee asks the hub to apply Fee to the pool. It is ignored unless
	// the module was connected with dynamic fee support.
	OverrideFee bool
	Fee         uint16
}

// Module is the callable surface of a registered module.
//
// A non-nil error aborts the whole hook invocation and is returned to the
// pool unchanged.
type Module interface {
	Handle(ctx context.Context, call *Call) (Result, error)
}

// ModuleFunc adapts a function to the Module interface.
type ModuleFunc func(ctx context.Context, call *Call) (Result, error)

func (f ModuleFunc) Handle(ctx context.Context, call *Call) (Result, error) {
	return f(ctx, call)
}

// Resolver maps a module identifier to its callable surface.
type Resolver interface {
	Module(addr common.Address) (Module, bool)
}

// Directory is an in-memory Resolver.
type Directory struct {
	mu      sync.RWMutex
	modules map[common.Address]Module
}

func NewDirectory() *Directory {
	return &Directory{
		modules: make(map[common.Address]Module),
	}
}

// Deploy makes module callable at addr.
func (d *Directory) Deploy(addr common.Address, module Module) error {
	if addr == (common.Address{}) {
		return ErrEmptyAddress
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.modules[addr]; exists {
		return ErrModuleExists
	}
	d.modules[addr] = module
	return nil
}

func (d *Directory) Module(addr common.Address) (Module, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	module, ok := d.modules[addr]
	return module, ok
}
