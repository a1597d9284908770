// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hub implements the modular hub: a module registry, one hook list per
// pool lifecycle selector, and the dispatcher the pool calls at each hook.
package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/cryptoalgebra/algebra-modular-hub/config"
	"github.com/cryptoalgebra/algebra-modular-hub/genesis"
	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
	"github.com/cryptoalgebra/algebra-modular-hub/metrics"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
	"github.com/cryptoalgebra/algebra-modular-hub/registry"
	"github.com/cryptoalgebra/algebra-modular-hub/state"
)

var (
	hubPrefix     = []byte("hub")
	modulesPrefix = []byte("modules")

	ErrOnlyAdministrator   = errors.New("only pool administrator")
	ErrOnlyPool            = errors.New("only pool")
	ErrInvalidSelector     = errors.New("invalid selector")
	ErrInvalidModuleIndex  = errors.New("invalid module index")
	ErrModuleNotConnected  = errors.New("module not connected")
	ErrModuleNotFound      = errors.New("module not found")
	ErrNotImplemented      = errors.New("not implemented")
	ErrAlreadyInitialized  = errors.New("hub already initialized")
	ErrBatchTooLarge       = errors.New("batch too large")
	ErrMissingCollaborator = errors.New("missing collaborator")
)

// Authority decides who may mutate the registry and the hook lists.
type Authority interface {
	IsAdministrator(ctx context.Context, addr common.Address) (bool, error)
}

// Pool is the pool the hub is bound to.
type Pool interface {
	// SetFee applies a dynamic fee produced by a hook invocation.
	SetFee(ctx context.Context, fee uint16) error
}

// Collaborators are the external services a hub depends on.
type Collaborators struct {
	Pool      Pool
	Authority Authority
	Resolver  plugin.Resolver
}

// Hub is the modular hub of a single pool.
//
// Every exported mutation runs as one unit against a version database: it
// either commits all of its writes or none of them. This includes writes made
// by modules during dispatch.
type Hub struct {
	config    config.Config
	log       log.Logger
	metrics   metrics.Metrics
	pool      Pool
	authority Authority
	resolver  plugin.Resolver

	// lock serializes every call into the hub. Modules must not call back
	// into the hub while being dispatched to.
	lock sync.Mutex

	db        *versiondb.Database
	hubDB     database.Database
	modulesDB database.Database
	state     *state.State
	registry  *registry.Registry
}

func New(
	cfg config.Config,
	db database.Database,
	c Collaborators,
	m metrics.Metrics,
	logger log.Logger,
) (*Hub, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	switch {
	case c.Pool == nil:
		return nil, fmt.Errorf("%w: pool", ErrMissingCollaborator)
	case c.Authority == nil:
		return nil, fmt.Errorf("%w: authority", ErrMissingCollaborator)
	case c.Resolver == nil:
		return nil, fmt.Errorf("%w: resolver", ErrMissingCollaborator)
	}

	vdb := versiondb.New(prefixdb.New(cfg.PoolID[:], db))
	hubDB := prefixdb.New(hubPrefix, vdb)
	s := state.New(hubDB)
	h := &Hub{
		config:    cfg,
		log:       logger,
		metrics:   m,
		pool:      c.Pool,
		authority: c.Authority,
		resolver:  c.Resolver,
		db:        vdb,
		hubDB:     hubDB,
		modulesDB: prefixdb.New(modulesPrefix, vdb),
		state:     s,
		registry:  registry.New(s),
	}
	h.refreshGauges()
	return h, nil
}

// Pool returns the address of the pool the hub is bound to.
func (h *Hub) Pool() common.Address {
	return h.config.Pool
}

// Initialize registers and connects the modules in g on behalf of caller,
// who must be an administrator. It can only succeed once.
func (h *Hub) Initialize(ctx context.Context, caller common.Address, g *genesis.Genesis) error {
	if err := h.onlyAdministrator(ctx, caller); err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	err := h.execute(func() error {
		initialized, err := h.state.Initialized()
		if err != nil {
			return err
		}
		if initialized {
			return ErrAlreadyInitialized
		}

		for _, addr := range g.Modules {
			if _, err := h.registry.Register(addr); err != nil {
				return fmt.Errorf("failed to register genesis module %s: %w", addr, err)
			}
		}
		for i, c := range g.Connections {
			if _, err := h.connect(c.Selector, c.ModuleIndex, c.UseDelegate, c.ImplementsDynamicFee); err != nil {
				return fmt.Errorf("failed to apply genesis connection %d: %w", i, err)
			}
		}
		return h.state.SetInitialized()
	})
	if err != nil {
		return err
	}

	h.log.Info("initialized modular hub",
		log.Stringer("pool", h.config.Pool),
		log.Int("modules", len(g.Modules)),
		log.Int("connections", len(g.Connections)),
	)
	h.refreshGauges()
	return nil
}

// RegisterModule stores addr in the next free module slot and returns its
// index.
func (h *Hub) RegisterModule(ctx context.Context, caller, addr common.Address) (uint8, error) {
	if err := h.onlyAdministrator(ctx, caller); err != nil {
		return 0, err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	var index uint8
	err := h.execute(func() error {
		var err error
		index, err = h.registry.Register(addr)
		return err
	})
	if err != nil {
		return 0, err
	}

	h.log.Info("registered module",
		log.Stringer("module", addr),
		log.Int("index", int(index)),
	)
	h.refreshGauges()
	return index, nil
}

// ReplaceModule points the slot at index to addr. Hook lists reference slots
// by index, so every connection of the slot follows the new module.
func (h *Hub) ReplaceModule(ctx context.Context, caller common.Address, index uint8, addr common.Address) error {
	if err := h.onlyAdministrator(ctx, caller); err != nil {
		return err
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	var prev common.Address
	err := h.execute(func() error {
		var err error
		prev, err = h.registry.Replace(index, addr)
		return err
	})
	if err != nil {
		return err
	}

	h.log.Info("replaced module",
		log.Int("index", int(index)),
		log.Stringer("previous", prev),
		log.Stringer("module", addr),
	)
	return nil
}

// ModuleForHookByIndex returns the entry at position in selector's hook list.
// Unoccupied and out of range positions return the zero entry.
func (h *Hub) ModuleForHookByIndex(selector plugin.Selector, position uint8) (hooklist.Entry, error) {
	list, err := h.HookList(selector)
	if err != nil {
		return hooklist.Entry{}, err
	}
	return list.Get(position), nil
}

// HookModules is the projection of a hook list into parallel slices of equal
// length, in list order.
type HookModules struct {
	ModuleIndexes        []uint8
	ImplementsDynamicFee []bool
	UseDelegate          []bool
}

// ModulesForHook returns every occupied entry of selector's hook list.
func (h *Hub) ModulesForHook(selector plugin.Selector) (HookModules, error) {
	list, err := h.HookList(selector)
	if err != nil {
		return HookModules{}, err
	}

	entries := list.Entries()
	modules := HookModules{
		ModuleIndexes:        make([]uint8, len(entries)),
		ImplementsDynamicFee: make([]bool, len(entries)),
		UseDelegate:          make([]bool, len(entries)),
	}
	for i, entry := range entries {
		modules.ModuleIndexes[i] = entry.ModuleIndex
		modules.ImplementsDynamicFee[i] = entry.ImplementsDynamicFee
		modules.UseDelegate[i] = entry.UseDelegate
	}
	return modules, nil
}

// HookList returns the packed hook list of selector.
func (h *Hub) HookList(selector plugin.Selector) (hooklist.List, error) {
	if !selector.Valid() {
		return hooklist.List{}, ErrInvalidSelector
	}

	h.lock.Lock()
	defer h.lock.Unlock()

	return h.state.HookList(selector)
}

// ModuleAddress returns the module stored at index, or the empty address if
// the slot is unused.
func (h *Hub) ModuleAddress(index uint8) (common.Address, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.registry.Module(index)
}

func (h *Hub) ModulesCount() (uint8, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.registry.Count()
}

// ModuleIndex returns the slot holding addr.
func (h *Hub) ModuleIndex(addr common.Address) (uint8, bool, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.registry.IndexOf(addr)
}

// Modules returns every registered module; element i is slot i+1.
func (h *Hub) Modules() ([]common.Address, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	return h.registry.Modules()
}

// DefaultPluginConfig returns the feature flags of the hub itself. The hub
// declares none; all behavior comes from connected modules.
func (*Hub) DefaultPluginConfig() uint8 {
	return 0
}

// CurrentFee is unsupported. Fees are only produced by modules during
// dispatch.
func (*Hub) CurrentFee() (uint16, error) {
	return 0, ErrNotImplemented
}

func (h *Hub) onlyAdministrator(ctx context.Context, caller common.Address) error {
	isAdmin, err := h.authority.IsAdministrator(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to check administrator %s: %w", caller, err)
	}
	if !isAdmin {
		return ErrOnlyAdministrator
	}
	return nil
}

// execute runs fn against the version database and commits its writes only
// if fn succeeds. Must be called with the lock held.
func (h *Hub) execute(fn func() error) error {
	if err := fn(); err != nil {
		h.db.Abort()
		return err
	}
	return h.db.Commit()
}

func (h *Hub) refreshGauges() {
	count, err := h.registry.Count()
	if err != nil {
		h.log.Warn("failed to read modules count", log.Err(err))
		return
	}
	h.metrics.SetRegisteredModules(int(count))

	for _, selector := range plugin.Selectors() {
		list, err := h.state.HookList(selector)
		if err != nil {
			h.log.Warn("failed to read hook list",
				log.Stringer("selector", selector),
				log.Err(err),
			)
			continue
		}
		h.metrics.SetConnectedModules(selector.Name(), list.Len())
	}
}
