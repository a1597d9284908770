// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hub

import (
	"context"
	"fmt"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

func (h *Hub) BeforeInitialize(ctx context.Context, caller, sender common.Address, params *plugin.InitializeParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.BeforeInitialize, sender, params)
}

func (h *Hub) AfterInitialize(ctx context.Context, caller, sender common.Address, params *plugin.InitializeParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.AfterInitialize, sender, params)
}

func (h *Hub) BeforeModifyPosition(ctx context.Context, caller, sender common.Address, params *plugin.ModifyPositionParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.BeforeModifyPosition, sender, params)
}

func (h *Hub) AfterModifyPosition(ctx context.Context, caller, sender common.Address, params *plugin.ModifyPositionParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.AfterModifyPosition, sender, params)
}

func (h *Hub) BeforeSwap(ctx context.Context, caller, sender common.Address, params *plugin.SwapParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.BeforeSwap, sender, params)
}

func (h *Hub) AfterSwap(ctx context.Context, caller, sender common.Address, params *plugin.SwapParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.AfterSwap, sender, params)
}

func (h *Hub) BeforeFlash(ctx context.Context, caller, sender common.Address, params *plugin.FlashParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.BeforeFlash, sender, params)
}

func (h *Hub) AfterFlash(ctx context.Context, caller, sender common.Address, params *plugin.FlashParams) (plugin.Result, error) {
	return h.Dispatch(ctx, caller, plugin.AfterFlash, sender, params)
}

// Dispatch invokes every module connected to selector, in list order.
//
// The first module error aborts the invocation: no later module runs, every
// write made during the invocation is discarded and the error is returned
// unchanged. Otherwise, the fee of the last dynamic fee module that asked for
// an override is applied to the pool and returned.
//
// The fee is applied before the invocation's writes are committed. If
// Dispatch returns an error, the pool must discard the fee together with the
// rest of the hook's effects.
func (h *Hub) Dispatch(
	ctx context.Context,
	caller common.Address,
	selector plugin.Selector,
	sender common.Address,
	params any,
) (plugin.Result, error) {
	if caller != h.config.Pool {
		return plugin.Result{}, ErrOnlyPool
	}
	if !selector.Valid() {
		return plugin.Result{}, ErrInvalidSelector
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	h.metrics.MarkDispatched(selector.Name())

	var result plugin.Result
	err := h.execute(func() error {
		var err error
		result, err = h.dispatch(ctx, selector, sender, params)
		return err
	})
	if err != nil {
		h.metrics.MarkFailed(selector.Name())
		return plugin.Result{}, err
	}

	// Delegate modules may have rewritten hub state.
	h.refreshGauges()
	return result, nil
}

// dispatch must be called with the lock held.
func (h *Hub) dispatch(
	ctx context.Context,
	selector plugin.Selector,
	sender common.Address,
	params any,
) (plugin.Result, error) {
	list, err := h.state.HookList(selector)
	if err != nil {
		return plugin.Result{}, err
	}
	if !list.HasActiveModules() {
		return plugin.Result{}, nil
	}

	var fee plugin.Result
	for position, entry := range list.Entries() {
		addr, err := h.registry.Module(entry.ModuleIndex)
		if err != nil {
			return plugin.Result{}, err
		}
		module, ok := h.resolver.Module(addr)
		if !ok {
			return plugin.Result{}, fmt.Errorf("%w: index %d at %s", ErrModuleNotFound, entry.ModuleIndex, addr)
		}

		call := &plugin.Call{
			Selector: selector,
			Pool:     h.config.Pool,
			Sender:   sender,
			Params:   params,
			Delegate: entry.UseDelegate,
		}
		if entry.UseDelegate {
			call.State = h.hubDB
		} else {
			call.State = h.moduleDB(addr)
		}

		if h.config.LogDispatch {
			h.log.Debug("dispatching hook",
				log.Stringer("selector", selector),
				log.Int("position", position),
				log.Stringer("module", addr),
				log.Bool("delegate", entry.UseDelegate),
			)
		}

		res, err := module.Handle(ctx, call)
		if err != nil {
			h.log.Debug("module aborted hook",
				log.Stringer("selector", selector),
				log.Int("position", position),
				log.Stringer("module", addr),
				log.Err(err),
			)
			return plugin.Result{}, err
		}
		if entry.ImplementsDynamicFee && res.OverrideFee {
			fee = res
		}
	}

	if !fee.OverrideFee {
		return plugin.Result{}, nil
	}
	if err := h.pool.SetFee(ctx, fee.Fee); err != nil {
		return plugin.Result{}, fmt.Errorf("failed to set pool fee: %w", err)
	}
	h.metrics.MarkFeeOverride()
	return plugin.Result{OverrideFee: true, Fee: fee.Fee}, nil
}

// moduleDB is the private storage of the module at addr.
func (h *Hub) moduleDB(addr common.Address) database.Database {
	return prefixdb.New(addr[:], h.modulesDB)
}
