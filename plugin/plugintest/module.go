// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package plugintest provides module and pool doubles for hub tests.
package plugintest

import (
	"context"
	"slices"
	"sync"

	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

var _ plugin.Module = (*Module)(nil)

// Module records every hook it handles and answers with a fixed result.
type Module struct {
	// OverrideFee and Fee are returned from every call.
	OverrideFee bool
	Fee         uint16
	// Err, if set, is returned from every call.
	Err error
	// HandleF, if set, runs before the fixed result is returned. A non-nil
	// error is returned in its place.
	HandleF func(context.Context, *plugin.Call) error

	lock  sync.Mutex
	calls []*plugin.Call
}

// NewModule returns a module that asks for fee when dynamicFee is set.
func NewModule(dynamicFee bool, fee uint16) *Module {
	return &Module{
		OverrideFee: dynamicFee,
		Fee:         fee,
	}
}

func (m *Module) Handle(ctx context.Context, call *plugin.Call) (plugin.Result, error) {
	m.lock.Lock()
	m.calls = append(m.calls, call)
	m.lock.Unlock()

	if m.HandleF != nil {
		if err := m.HandleF(ctx, call); err != nil {
			return plugin.Result{}, err
		}
	}
	if m.Err != nil {
		return plugin.Result{}, m.Err
	}
	return plugin.Result{
		OverrideFee: m.OverrideFee,
		Fee:         m.Fee,
	}, nil
}

// Touched reports whether the module handled selector.
func (m *Module) Touched(selector plugin.Selector) bool {
	m.lock.Lock()
	defer m.lock.Unlock()

	return slices.ContainsFunc(m.calls, func(c *plugin.Call) bool {
		return c.Selector == selector
	})
}

// Calls returns every call handled so far.
func (m *Module) Calls() []*plugin.Call {
	m.lock.Lock()
	defer m.lock.Unlock()

	return slices.Clone(m.calls)
}

// Pool records the fee applied by the hub.
type Pool struct {
	lock   sync.Mutex
	fee    uint16
	numSet int
	// Err, if set, is returned from SetFee.
	Err error
}

func (p *Pool) SetFee(_ context.Context, fee uint16) error {
	if p.Err != nil {
		return p.Err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	p.fee = fee
	p.numSet++
	return nil
}

// CurrentFee returns the last applied fee and how many times a fee was set.
func (p *Pool) CurrentFee() (uint16, int) {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.fee, p.numSet
}
