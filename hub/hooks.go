// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hub

import (
	"context"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

// InsertOp connects a registered module to a hook list at Position, shifting
// the entries at and after Position toward the end.
type InsertOp struct {
	Selector             plugin.Selector `json:"selector"`
	Position             uint8           `json:"position"`
	ModuleIndex          uint8           `json:"moduleIndex"`
	UseDelegate          bool            `json:"useDelegate"`
	ImplementsDynamicFee bool            `json:"implementsDynamicFee"`
}

// RemoveOp disconnects the entry at Position of a hook list, shifting the
// entries after it toward the start.
type RemoveOp struct {
	Selector plugin.Selector `json:"selector"`
	Position uint8           `json:"position"`
}

// BatchError reports which operation of a batch failed. The whole batch is
// discarded when it is returned.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("operation %d: %s", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// InsertModulesToHookLists applies ops in order. Each operation observes the
// effects of the ones before it. If any operation fails, none are applied.
func (h *Hub) InsertModulesToHookLists(ctx context.Context, caller common.Address, ops []InsertOp) error {
	if err := h.onlyAdministrator(ctx, caller); err != nil {
		return err
	}
	if err := h.verifyBatchSize(len(ops)); err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	err := h.execute(func() error {
		for i, op := range ops {
			entry := hooklist.Entry{
				ModuleIndex:          op.ModuleIndex,
				UseDelegate:          op.UseDelegate,
				ImplementsDynamicFee: op.ImplementsDynamicFee,
			}
			if err := h.insert(op.Selector, op.Position, entry); err != nil {
				return &BatchError{Index: i, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Info("inserted modules into hook lists",
		log.Int("numOps", len(ops)),
	)
	h.refreshGauges()
	return nil
}

// RemoveModulesFromHookLists applies ops in order. Each operation observes the
// effects of the ones before it. If any operation fails, none are applied.
func (h *Hub) RemoveModulesFromHookLists(ctx context.Context, caller common.Address, ops []RemoveOp) error {
	if err := h.onlyAdministrator(ctx, caller); err != nil {
		return err
	}
	if err := h.verifyBatchSize(len(ops)); err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	err := h.execute(func() error {
		for i, op := range ops {
			if err := h.remove(op.Selector, op.Position); err != nil {
				return &BatchError{Index: i, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.log.Info("removed modules from hook lists",
		log.Int("numOps", len(ops)),
	)
	h.refreshGauges()
	return nil
}

// ConnectModuleToHook appends the module at index to the end of selector's
// hook list and returns the position it was connected at.
func (h *Hub) ConnectModuleToHook(
	ctx context.Context,
	caller common.Address,
	selector plugin.Selector,
	index uint8,
	useDelegate bool,
	implementsDynamicFee bool,
) (uint8, error) {
	if err := h.onlyAdministrator(ctx, caller); err != nil {
		return 0, err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	var position uint8
	err := h.execute(func() error {
		var err error
		position, err = h.connect(selector, index, useDelegate, implementsDynamicFee)
		return err
	})
	if err != nil {
		return 0, err
	}

	h.log.Info("connected module to hook",
		log.Stringer("selector", selector),
		log.Int("index", int(index)),
		log.Int("position", int(position)),
	)
	h.refreshGauges()
	return position, nil
}

func (h *Hub) connect(selector plugin.Selector, index uint8, useDelegate, implementsDynamicFee bool) (uint8, error) {
	if !selector.Valid() {
		return 0, ErrInvalidSelector
	}
	list, err := h.state.HookList(selector)
	if err != nil {
		return 0, err
	}

	// A full list reports ErrFull from insert rather than an out of range
	// position.
	position := uint8(min(list.Len(), hooklist.Capacity-1))
	entry := hooklist.Entry{
		ModuleIndex:          index,
		UseDelegate:          useDelegate,
		ImplementsDynamicFee: implementsDynamicFee,
	}
	return position, h.insert(selector, position, entry)
}

func (h *Hub) insert(selector plugin.Selector, position uint8, entry hooklist.Entry) error {
	if !selector.Valid() {
		return ErrInvalidSelector
	}
	registered, err := h.registry.IsRegistered(entry.ModuleIndex)
	if err != nil {
		return err
	}
	if !registered {
		return ErrInvalidModuleIndex
	}

	list, err := h.state.HookList(selector)
	if err != nil {
		return err
	}
	list, err = list.Insert(position, entry)
	if err != nil {
		return err
	}
	return h.state.PutHookList(selector, list)
}

func (h *Hub) remove(selector plugin.Selector, position uint8) error {
	if !selector.Valid() {
		return ErrInvalidSelector
	}
	if position >= hooklist.Capacity {
		return hooklist.ErrInvalidIndex
	}

	list, err := h.state.HookList(selector)
	if err != nil {
		return err
	}
	if list.Get(position).Empty() {
		return ErrModuleNotConnected
	}
	list, err = list.Remove(position)
	if err != nil {
		return err
	}
	return h.state.PutHookList(selector, list)
}

func (h *Hub) verifyBatchSize(size int) error {
	if limit := h.config.MaxBatchSize; limit > 0 && size > limit {
		return fmt.Errorf("%w: %d operations exceeds %d", ErrBatchTooLarge, size, limit)
	}
	return nil
}
