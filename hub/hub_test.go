// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hub

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cryptoalgebra/algebra-modular-hub/config"
	"github.com/cryptoalgebra/algebra-modular-hub/genesis"
	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
	"github.com/cryptoalgebra/algebra-modular-hub/hub/hubmock"
	"github.com/cryptoalgebra/algebra-modular-hub/metrics"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin/plugintest"
	"github.com/cryptoalgebra/algebra-modular-hub/registry"
	"github.com/cryptoalgebra/algebra-modular-hub/state"
)

var (
	errTest = errors.New("non-nil error")

	poolAddr = common.HexToAddress("0x0100")
	admin    = common.HexToAddress("0x0a")
	stranger = common.HexToAddress("0x0b")
)

type environment struct {
	hub     *Hub
	db      database.Database
	pool    *plugintest.Pool
	modules *plugin.Directory
}

func newEnvironment(t *testing.T) *environment {
	return newEnvironmentWithDB(t, memdb.New(), ids.Empty)
}

func newEnvironmentWithDB(t *testing.T, db database.Database, poolID ids.ID) *environment {
	require := require.New(t)

	cfg := config.DefaultConfig()
	cfg.PoolID = poolID
	cfg.Pool = poolAddr

	m, err := metrics.New(metric.NewRegistry())
	require.NoError(err)

	env := &environment{
		db:      db,
		pool:    &plugintest.Pool{},
		modules: plugin.NewDirectory(),
	}
	env.hub, err = New(
		cfg,
		db,
		Collaborators{
			Pool:      env.pool,
			Authority: NewStaticAuthority(admin),
			Resolver:  env.modules,
		},
		m,
		log.NoLog{},
	)
	require.NoError(err)
	return env
}

func moduleAddr(i int) common.Address {
	return common.BigToAddress(big.NewInt(int64(i) + 0x1000))
}

// addModule deploys module at addr and registers it with the hub.
func (e *environment) addModule(t *testing.T, addr common.Address, module plugin.Module) uint8 {
	require := require.New(t)

	require.NoError(e.modules.Deploy(addr, module))
	index, err := e.hub.RegisterModule(context.Background(), admin, addr)
	require.NoError(err)
	return index
}

func (e *environment) connect(t *testing.T, selector plugin.Selector, index uint8, useDelegate, dynamicFee bool) {
	_, err := e.hub.ConnectModuleToHook(context.Background(), admin, selector, index, useDelegate, dynamicFee)
	require.NoError(t, err)
}

func swap(e *environment) (plugin.Result, error) {
	return e.hub.BeforeSwap(context.Background(), poolAddr, stranger, &plugin.SwapParams{
		Recipient:      stranger,
		ZeroToOne:      true,
		AmountRequired: big.NewInt(1_000),
	})
}

func TestNewMissingCollaborator(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	cfg.Pool = poolAddr
	m, err := metrics.New(metric.NewRegistry())
	require.NoError(err)

	_, err = New(cfg, memdb.New(), Collaborators{}, m, log.NoLog{})
	require.ErrorIs(err, ErrMissingCollaborator)

	_, err = New(config.DefaultConfig(), memdb.New(), Collaborators{}, m, log.NoLog{})
	require.ErrorIs(err, config.ErrNoPool)
}

func TestOnlyAdministrator(t *testing.T) {
	tests := []struct {
		name        string
		isAdmin     bool
		authErr     error
		expectedErr error
	}{
		{
			name:        "not administrator",
			expectedErr: ErrOnlyAdministrator,
		},
		{
			name:        "authority failure",
			authErr:     errTest,
			expectedErr: errTest,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			ctrl := gomock.NewController(t)

			authority := hubmock.NewAuthority(ctrl)
			authority.EXPECT().IsAdministrator(gomock.Any(), stranger).Return(test.isAdmin, test.authErr).Times(5)

			env := newEnvironment(t)
			env.hub.authority = authority

			ctx := context.Background()
			_, err := env.hub.RegisterModule(ctx, stranger, moduleAddr(1))
			require.ErrorIs(err, test.expectedErr)

			err = env.hub.ReplaceModule(ctx, stranger, 1, moduleAddr(1))
			require.ErrorIs(err, test.expectedErr)

			err = env.hub.InsertModulesToHookLists(ctx, stranger, []InsertOp{{Selector: plugin.BeforeSwap, ModuleIndex: 1}})
			require.ErrorIs(err, test.expectedErr)

			err = env.hub.RemoveModulesFromHookLists(ctx, stranger, []RemoveOp{{Selector: plugin.BeforeSwap}})
			require.ErrorIs(err, test.expectedErr)

			_, err = env.hub.ConnectModuleToHook(ctx, stranger, plugin.BeforeSwap, 1, false, false)
			require.ErrorIs(err, test.expectedErr)

			count, err := env.hub.ModulesCount()
			require.NoError(err)
			require.Zero(count)
		})
	}
}

func TestAdministratorAllowed(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	authority := hubmock.NewAuthority(ctrl)
	authority.EXPECT().IsAdministrator(gomock.Any(), stranger).Return(true, nil)

	env := newEnvironment(t)
	env.hub.authority = authority

	index, err := env.hub.RegisterModule(context.Background(), stranger, moduleAddr(1))
	require.NoError(err)
	require.Equal(uint8(1), index)
}

func TestConnectModule(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	env.addModule(t, moduleAddr(1), plugintest.NewModule(false, 0))
	env.addModule(t, moduleAddr(2), plugintest.NewModule(false, 0))

	env.connect(t, plugin.BeforeSwap, 1, false, true)
	env.connect(t, plugin.BeforeSwap, 2, true, false)

	first, err := env.hub.ModuleForHookByIndex(plugin.BeforeSwap, 0)
	require.NoError(err)
	require.Equal(hooklist.Entry{ModuleIndex: 1, ImplementsDynamicFee: true}, first)

	second, err := env.hub.ModuleForHookByIndex(plugin.BeforeSwap, 1)
	require.NoError(err)
	require.Equal(hooklist.Entry{ModuleIndex: 2, UseDelegate: true}, second)

	// Other hooks are untouched.
	other, err := env.hub.ModulesForHook(plugin.AfterSwap)
	require.NoError(err)
	require.Empty(other.ModuleIndexes)
}

func TestConnectModuleErrors(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	index := env.addModule(t, moduleAddr(1), plugintest.NewModule(false, 0))

	ctx := context.Background()
	_, err := env.hub.ConnectModuleToHook(ctx, admin, plugin.Selector{0xde, 0xad, 0xbe, 0xef}, index, false, false)
	require.ErrorIs(err, ErrInvalidSelector)

	_, err = env.hub.ConnectModuleToHook(ctx, admin, plugin.AfterFlash, index+1, false, false)
	require.ErrorIs(err, ErrInvalidModuleIndex)

	for i := 0; i < hooklist.Capacity; i++ {
		position, err := env.hub.ConnectModuleToHook(ctx, admin, plugin.AfterFlash, index, false, false)
		require.NoError(err)
		require.Equal(uint8(i), position)
	}
	_, err = env.hub.ConnectModuleToHook(ctx, admin, plugin.AfterFlash, index, false, false)
	require.ErrorIs(err, hooklist.ErrFull)
}

func TestConnectedModuleCalled(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	module1 := plugintest.NewModule(true, 600)
	module2 := plugintest.NewModule(false, 0)
	env.addModule(t, moduleAddr(1), module1)
	env.addModule(t, moduleAddr(2), module2)

	env.connect(t, plugin.BeforeSwap, 1, false, true)
	env.connect(t, plugin.BeforeSwap, 2, true, false)

	result, err := swap(env)
	require.NoError(err)
	require.Equal(plugin.Result{OverrideFee: true, Fee: 600}, result)

	require.True(module1.Touched(plugin.BeforeSwap))
	require.False(module1.Touched(plugin.AfterSwap))
	require.True(module2.Touched(plugin.BeforeSwap))

	calls := module1.Calls()
	require.Len(calls, 1)
	require.Equal(poolAddr, calls[0].Pool)
	require.Equal(stranger, calls[0].Sender)
	require.False(calls[0].Delegate)
	require.IsType(&plugin.SwapParams{}, calls[0].Params)
	require.True(module2.Calls()[0].Delegate)

	fee, numSet := env.pool.CurrentFee()
	require.Equal(uint16(600), fee)
	require.Equal(1, numSet)
}

func TestDynamicFee(t *testing.T) {
	type module struct {
		overrideFee bool
		fee         uint16
		dynamicFee  bool
	}
	tests := []struct {
		name           string
		modules        []module
		expectedResult plugin.Result
	}{
		{
			name: "both signal the same fee",
			modules: []module{
				{overrideFee: true, fee: 600, dynamicFee: true},
				{overrideFee: true, fee: 600, dynamicFee: true},
			},
			expectedResult: plugin.Result{OverrideFee: true, Fee: 600},
		},
		{
			name: "last writer wins",
			modules: []module{
				{overrideFee: true, fee: 500, dynamicFee: true},
				{overrideFee: true, fee: 3000, dynamicFee: true},
				{overrideFee: false, dynamicFee: true},
			},
			expectedResult: plugin.Result{OverrideFee: true, Fee: 3000},
		},
		{
			name: "override ignored without dynamic fee",
			modules: []module{
				{overrideFee: true, fee: 500, dynamicFee: true},
				{overrideFee: true, fee: 700, dynamicFee: false},
			},
			expectedResult: plugin.Result{OverrideFee: true, Fee: 500},
		},
		{
			name: "zero fee override",
			modules: []module{
				{overrideFee: true, fee: 500, dynamicFee: true},
				{overrideFee: true, fee: 0, dynamicFee: true},
			},
			expectedResult: plugin.Result{OverrideFee: true, Fee: 0},
		},
		{
			name: "no override",
			modules: []module{
				{dynamicFee: true},
				{overrideFee: true, fee: 700},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			env := newEnvironment(t)
			for i, m := range test.modules {
				index := env.addModule(t, moduleAddr(i), plugintest.NewModule(m.overrideFee, m.fee))
				env.connect(t, plugin.BeforeSwap, index, false, m.dynamicFee)
			}

			result, err := swap(env)
			require.NoError(err)
			require.Equal(test.expectedResult, result)

			fee, numSet := env.pool.CurrentFee()
			require.Equal(test.expectedResult.Fee, fee)
			if test.expectedResult.OverrideFee {
				require.Equal(1, numSet)
			} else {
				require.Zero(numSet)
			}
		})
	}
}

func TestModuleFailureIsForwarded(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedReason string
		hasReason      bool
	}{
		{
			name:           "revert with reason",
			err:            plugin.Revert("X"),
			expectedReason: "X",
			hasReason:      true,
		},
		{
			name:      "revert with empty reason",
			err:       plugin.Revert(""),
			hasReason: true,
		},
		{
			name: "revert without reason",
			err:  plugin.RevertWithoutReason(),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			env := newEnvironment(t)
			first := plugintest.NewModule(true, 100)
			failing := plugintest.NewModule(true, 200)
			failing.Err = test.err
			last := plugintest.NewModule(true, 300)

			env.connect(t, plugin.BeforeSwap, env.addModule(t, moduleAddr(1), first), false, true)
			env.connect(t, plugin.BeforeSwap, env.addModule(t, moduleAddr(2), failing), false, true)
			env.connect(t, plugin.BeforeSwap, env.addModule(t, moduleAddr(3), last), false, true)

			_, err := swap(env)
			require.Equal(test.err, err)

			reason, hasReason := plugin.RevertReason(err)
			require.Equal(test.hasReason, hasReason)
			require.Equal(test.expectedReason, reason)

			require.True(first.Touched(plugin.BeforeSwap))
			require.False(last.Touched(plugin.BeforeSwap))

			_, numSet := env.pool.CurrentFee()
			require.Zero(numSet)
		})
	}
}

func TestReplaceModuleRetargetsDispatch(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	oldModule := plugintest.NewModule(false, 0)
	newModule := plugintest.NewModule(false, 0)

	index := env.addModule(t, moduleAddr(1), oldModule)
	env.connect(t, plugin.BeforeSwap, index, false, false)

	require.NoError(env.modules.Deploy(moduleAddr(2), newModule))
	require.NoError(env.hub.ReplaceModule(context.Background(), admin, index, moduleAddr(2)))

	_, err := swap(env)
	require.NoError(err)
	require.False(oldModule.Touched(plugin.BeforeSwap))
	require.True(newModule.Touched(plugin.BeforeSwap))

	addr, err := env.hub.ModuleAddress(index)
	require.NoError(err)
	require.Equal(moduleAddr(2), addr)

	found, ok, err := env.hub.ModuleIndex(moduleAddr(2))
	require.NoError(err)
	require.True(ok)
	require.Equal(index, found)

	err = env.hub.ReplaceModule(context.Background(), admin, index+1, moduleAddr(3))
	require.ErrorIs(err, registry.ErrNotRegistered)
}

func TestInsertModulesToHookLists(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	for i := 1; i <= 3; i++ {
		env.addModule(t, moduleAddr(i), plugintest.NewModule(false, 0))
	}

	// Later operations observe earlier ones.
	err := env.hub.InsertModulesToHookLists(context.Background(), admin, []InsertOp{
		{Selector: plugin.AfterSwap, Position: 0, ModuleIndex: 1},
		{Selector: plugin.AfterSwap, Position: 1, ModuleIndex: 2, UseDelegate: true},
		{Selector: plugin.AfterSwap, Position: 0, ModuleIndex: 3, ImplementsDynamicFee: true},
		{Selector: plugin.BeforeFlash, Position: 0, ModuleIndex: 2},
	})
	require.NoError(err)

	modules, err := env.hub.ModulesForHook(plugin.AfterSwap)
	require.NoError(err)
	require.Equal(HookModules{
		ModuleIndexes:        []uint8{3, 1, 2},
		ImplementsDynamicFee: []bool{true, false, false},
		UseDelegate:          []bool{false, false, true},
	}, modules)

	modules, err = env.hub.ModulesForHook(plugin.BeforeFlash)
	require.NoError(err)
	require.Equal([]uint8{2}, modules.ModuleIndexes)
}

func TestInsertModulesToHookListsErrors(t *testing.T) {
	tests := []struct {
		name          string
		ops           []InsertOp
		expectedErr   error
		expectedIndex int
	}{
		{
			name:        "invalid selector",
			ops:         []InsertOp{{Selector: plugin.Selector{1, 2, 3, 4}, ModuleIndex: 1}},
			expectedErr: ErrInvalidSelector,
		},
		{
			name:        "zero module index",
			ops:         []InsertOp{{Selector: plugin.BeforeSwap, ModuleIndex: 0}},
			expectedErr: ErrInvalidModuleIndex,
		},
		{
			name:        "unregistered module index",
			ops:         []InsertOp{{Selector: plugin.BeforeSwap, ModuleIndex: 3}},
			expectedErr: ErrInvalidModuleIndex,
		},
		{
			name:        "position out of range",
			ops:         []InsertOp{{Selector: plugin.BeforeSwap, Position: hooklist.Capacity, ModuleIndex: 1}},
			expectedErr: hooklist.ErrInvalidIndex,
		},
		{
			name: "gap",
			ops: []InsertOp{
				{Selector: plugin.BeforeSwap, Position: 0, ModuleIndex: 1},
				{Selector: plugin.BeforeSwap, Position: 1, ModuleIndex: 2},
				{Selector: plugin.BeforeSwap, Position: 3, ModuleIndex: 1},
			},
			expectedErr:   hooklist.ErrGap,
			expectedIndex: 2,
		},
		{
			name: "gap in another hook",
			ops: []InsertOp{
				{Selector: plugin.BeforeSwap, Position: 0, ModuleIndex: 1},
				{Selector: plugin.AfterSwap, Position: 1, ModuleIndex: 1},
			},
			expectedErr:   hooklist.ErrGap,
			expectedIndex: 1,
		},
		{
			name: "full",
			ops: func() []InsertOp {
				ops := make([]InsertOp, hooklist.Capacity+1)
				for i := range ops {
					ops[i] = InsertOp{Selector: plugin.BeforeSwap, Position: 0, ModuleIndex: 1}
				}
				return ops
			}(),
			expectedErr:   hooklist.ErrFull,
			expectedIndex: hooklist.Capacity,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			env := newEnvironment(t)
			env.addModule(t, moduleAddr(1), plugintest.NewModule(false, 0))
			env.addModule(t, moduleAddr(2), plugintest.NewModule(false, 0))

			err := env.hub.InsertModulesToHookLists(context.Background(), admin, test.ops)
			require.ErrorIs(err, test.expectedErr)

			var batchErr *BatchError
			require.ErrorAs(err, &batchErr)
			require.Equal(test.expectedIndex, batchErr.Index)

			// Nothing from the failed batch is applied.
			for _, selector := range plugin.Selectors() {
				modules, err := env.hub.ModulesForHook(selector)
				require.NoError(err)
				require.Empty(modules.ModuleIndexes)
			}
		})
	}
}

func TestRemoveModulesFromHookLists(t *testing.T) {
	env := newEnvironment(t)
	for i := 1; i <= 3; i++ {
		index := env.addModule(t, moduleAddr(i), plugintest.NewModule(false, 0))
		env.connect(t, plugin.AfterInitialize, index, false, false)
	}

	ctx := context.Background()
	tests := []struct {
		name        string
		ops         []RemoveOp
		expectedErr error
	}{
		{
			name:        "invalid selector",
			ops:         []RemoveOp{{Selector: plugin.Selector{}}},
			expectedErr: ErrInvalidSelector,
		},
		{
			name:        "not connected",
			ops:         []RemoveOp{{Selector: plugin.AfterInitialize, Position: 3}},
			expectedErr: ErrModuleNotConnected,
		},
		{
			name:        "empty hook",
			ops:         []RemoveOp{{Selector: plugin.BeforeInitialize, Position: 0}},
			expectedErr: ErrModuleNotConnected,
		},
		{
			name:        "out of range",
			ops:         []RemoveOp{{Selector: plugin.AfterInitialize, Position: hooklist.Capacity}},
			expectedErr: hooklist.ErrInvalidIndex,
		},
		{
			name: "second removal empties the slot",
			ops: []RemoveOp{
				{Selector: plugin.AfterInitialize, Position: 2},
				{Selector: plugin.AfterInitialize, Position: 2},
			},
			expectedErr: ErrModuleNotConnected,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			err := env.hub.RemoveModulesFromHookLists(ctx, admin, test.ops)
			require.ErrorIs(err, test.expectedErr)

			modules, err := env.hub.ModulesForHook(plugin.AfterInitialize)
			require.NoError(err)
			require.Equal([]uint8{1, 2, 3}, modules.ModuleIndexes)
		})
	}

	require.NoError(t, env.hub.RemoveModulesFromHookLists(ctx, admin, []RemoveOp{
		{Selector: plugin.AfterInitialize, Position: 0},
		{Selector: plugin.AfterInitialize, Position: 1},
	}))

	modules, err := env.hub.ModulesForHook(plugin.AfterInitialize)
	require.NoError(t, err)
	require.Equal(t, []uint8{2}, modules.ModuleIndexes)
}

func TestBatchTooLarge(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	ops := make([]RemoveOp, env.hub.config.MaxBatchSize+1)
	err := env.hub.RemoveModulesFromHookLists(context.Background(), admin, ops)
	require.ErrorIs(err, ErrBatchTooLarge)
}

func TestModulesForHookAgreesWithModuleForHookByIndex(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	var ops []InsertOp
	for i := 1; i <= 5; i++ {
		index := env.addModule(t, moduleAddr(i), plugintest.NewModule(false, 0))
		ops = append(ops, InsertOp{
			Selector:             plugin.BeforeModifyPosition,
			Position:             uint8(i / 2),
			ModuleIndex:          index,
			UseDelegate:          i%2 == 0,
			ImplementsDynamicFee: i%3 == 0,
		})
	}
	require.NoError(env.hub.InsertModulesToHookLists(context.Background(), admin, ops))

	list, err := env.hub.HookList(plugin.BeforeModifyPosition)
	require.NoError(err)
	modules, err := env.hub.ModulesForHook(plugin.BeforeModifyPosition)
	require.NoError(err)
	require.Len(modules.ModuleIndexes, list.Len())
	require.Len(modules.ImplementsDynamicFee, list.Len())
	require.Len(modules.UseDelegate, list.Len())

	for position := uint8(0); position <= hooklist.Capacity; position++ {
		entry, err := env.hub.ModuleForHookByIndex(plugin.BeforeModifyPosition, position)
		require.NoError(err)
		require.Equal(list.Get(position), entry)

		if int(position) >= list.Len() {
			require.True(entry.Empty())
			continue
		}
		require.Equal(modules.ModuleIndexes[position], entry.ModuleIndex)
		require.Equal(modules.ImplementsDynamicFee[position], entry.ImplementsDynamicFee)
		require.Equal(modules.UseDelegate[position], entry.UseDelegate)
	}

	_, err = env.hub.ModulesForHook(plugin.Selector{})
	require.ErrorIs(err, ErrInvalidSelector)
	_, err = env.hub.ModuleForHookByIndex(plugin.Selector{}, 0)
	require.ErrorIs(err, ErrInvalidSelector)
}

func TestCallModes(t *testing.T) {
	require := require.New(t)

	key := []byte("counter")
	write := func(value byte) func(context.Context, *plugin.Call) error {
		return func(_ context.Context, call *plugin.Call) error {
			return call.State.Put(key, []byte{value})
		}
	}

	env := newEnvironment(t)
	delegate := plugintest.NewModule(false, 0)
	delegate.HandleF = write(1)
	direct := plugintest.NewModule(false, 0)
	direct.HandleF = write(2)

	env.connect(t, plugin.AfterSwap, env.addModule(t, moduleAddr(1), delegate), true, false)
	env.connect(t, plugin.AfterSwap, env.addModule(t, moduleAddr(2), direct), false, false)

	_, err := env.hub.AfterSwap(context.Background(), poolAddr, stranger, &plugin.SwapParams{})
	require.NoError(err)

	value, err := env.hub.hubDB.Get(key)
	require.NoError(err)
	require.Equal([]byte{1}, value)

	value, err = env.hub.moduleDB(moduleAddr(2)).Get(key)
	require.NoError(err)
	require.Equal([]byte{2}, value)

	_, err = env.hub.moduleDB(moduleAddr(1)).Get(key)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestFailureDiscardsModuleWrites(t *testing.T) {
	require := require.New(t)

	key := []byte("counter")
	env := newEnvironment(t)
	delegate := plugintest.NewModule(false, 0)
	delegate.HandleF = func(_ context.Context, call *plugin.Call) error {
		return call.State.Put(key, []byte{1})
	}
	failing := plugintest.NewModule(false, 0)
	failing.Err = plugin.Revert("X")

	env.connect(t, plugin.BeforeFlash, env.addModule(t, moduleAddr(1), delegate), true, false)
	env.connect(t, plugin.BeforeFlash, env.addModule(t, moduleAddr(2), failing), false, false)

	_, err := env.hub.BeforeFlash(context.Background(), poolAddr, stranger, &plugin.FlashParams{})
	require.EqualError(err, "X")

	_, err = env.hub.hubDB.Get(key)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestDispatchErrors(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	ctx := context.Background()

	_, err := env.hub.BeforeInitialize(ctx, stranger, stranger, &plugin.InitializeParams{})
	require.ErrorIs(err, ErrOnlyPool)

	_, err = env.hub.Dispatch(ctx, poolAddr, plugin.Selector{}, stranger, nil)
	require.ErrorIs(err, ErrInvalidSelector)

	// Registered but never deployed.
	index, err := env.hub.RegisterModule(ctx, admin, moduleAddr(1))
	require.NoError(err)
	env.connect(t, plugin.AfterModifyPosition, index, false, false)

	_, err = env.hub.AfterModifyPosition(ctx, poolAddr, stranger, &plugin.ModifyPositionParams{})
	require.ErrorIs(err, ErrModuleNotFound)
}

func TestDispatchEmptyHook(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	module := plugintest.NewModule(true, 500)
	env.connect(t, plugin.AfterFlash, env.addModule(t, moduleAddr(1), module), false, true)

	result, err := env.hub.BeforeFlash(context.Background(), poolAddr, stranger, &plugin.FlashParams{})
	require.NoError(err)
	require.Equal(plugin.Result{}, result)
	require.False(module.Touched(plugin.BeforeFlash))

	_, numSet := env.pool.CurrentFee()
	require.Zero(numSet)
}

func TestSetFeeFailure(t *testing.T) {
	require := require.New(t)
	ctrl := gomock.NewController(t)

	env := newEnvironment(t)
	pool := hubmock.NewPool(ctrl)
	pool.EXPECT().SetFee(gomock.Any(), uint16(600)).Return(errTest)
	env.hub.pool = pool

	env.connect(t, plugin.BeforeSwap, env.addModule(t, moduleAddr(1), plugintest.NewModule(true, 600)), false, true)

	_, err := swap(env)
	require.ErrorIs(err, errTest)
}

func TestCommitFailureAfterSetFee(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	module := plugintest.NewModule(true, 700)
	module.HandleF = func(_ context.Context, call *plugin.Call) error {
		if err := call.State.Put([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return env.db.Close()
	}
	env.connect(t, plugin.BeforeSwap, env.addModule(t, moduleAddr(1), module), false, true)

	// The fee reached the pool but the invocation reports the failed commit,
	// so the pool must drop it.
	_, err := swap(env)
	require.ErrorIs(err, database.ErrClosed)

	fee, numSet := env.pool.CurrentFee()
	require.Equal(uint16(700), fee)
	require.Equal(1, numSet)
}

type recordingMetrics struct {
	registeredModules int
	connectedModules  map[string]int
}

func (*recordingMetrics) MarkDispatched(string) {}

func (*recordingMetrics) MarkFailed(string) {}

func (*recordingMetrics) MarkFeeOverride() {}

func (m *recordingMetrics) SetRegisteredModules(count int) {
	m.registeredModules = count
}

func (m *recordingMetrics) SetConnectedModules(selector string, count int) {
	m.connectedModules[selector] = count
}

func TestDispatchRefreshesGauges(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig()
	cfg.Pool = poolAddr
	m := &recordingMetrics{
		connectedModules: make(map[string]int),
	}
	modules := plugin.NewDirectory()
	h, err := New(
		cfg,
		memdb.New(),
		Collaborators{
			Pool:      &plugintest.Pool{},
			Authority: NewStaticAuthority(admin),
			Resolver:  modules,
		},
		m,
		log.NoLog{},
	)
	require.NoError(err)

	// The delegate module registers a second module and connects it to
	// afterFlash through the hub's own state.
	delegate := plugintest.NewModule(false, 0)
	delegate.HandleF = func(_ context.Context, call *plugin.Call) error {
		s := state.New(call.State)
		index, err := registry.New(s).Register(moduleAddr(2))
		if err != nil {
			return err
		}
		list, err := hooklist.List{}.Insert(0, hooklist.Entry{ModuleIndex: index})
		if err != nil {
			return err
		}
		return s.PutHookList(plugin.AfterFlash, list)
	}
	require.NoError(modules.Deploy(moduleAddr(1), delegate))
	ctx := context.Background()
	index, err := h.RegisterModule(ctx, admin, moduleAddr(1))
	require.NoError(err)
	_, err = h.ConnectModuleToHook(ctx, admin, plugin.BeforeSwap, index, true, false)
	require.NoError(err)

	require.Equal(1, m.registeredModules)
	require.Zero(m.connectedModules[plugin.AfterFlash.Name()])

	_, err = h.BeforeSwap(ctx, poolAddr, stranger, &plugin.SwapParams{})
	require.NoError(err)

	require.Equal(2, m.registeredModules)
	require.Equal(1, m.connectedModules[plugin.AfterFlash.Name()])
}

func TestReadOnlyConstants(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	require.Zero(env.hub.DefaultPluginConfig())

	_, err := env.hub.CurrentFee()
	require.ErrorIs(err, ErrNotImplemented)

	require.Equal(poolAddr, env.hub.Pool())
}

func TestInitialize(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	module := plugintest.NewModule(true, 250)
	require.NoError(env.modules.Deploy(moduleAddr(1), module))

	g := &genesis.Genesis{
		Modules: []common.Address{moduleAddr(1), moduleAddr(2)},
		Connections: []genesis.Connection{
			{Selector: plugin.BeforeSwap, ModuleIndex: 1, ImplementsDynamicFee: true},
			{Selector: plugin.AfterSwap, ModuleIndex: 2, UseDelegate: true},
		},
	}
	ctx := context.Background()
	require.ErrorIs(env.hub.Initialize(ctx, stranger, g), ErrOnlyAdministrator)
	count, err := env.hub.ModulesCount()
	require.NoError(err)
	require.Zero(count)

	require.NoError(env.hub.Initialize(ctx, admin, g))
	require.ErrorIs(env.hub.Initialize(ctx, admin, g), ErrAlreadyInitialized)

	modules, err := env.hub.Modules()
	require.NoError(err)
	require.Equal(g.Modules, modules)

	result, err := swap(env)
	require.NoError(err)
	require.Equal(plugin.Result{OverrideFee: true, Fee: 250}, result)
}

func TestInitializeIsAtomic(t *testing.T) {
	require := require.New(t)

	env := newEnvironment(t)
	g := &genesis.Genesis{
		Modules: []common.Address{moduleAddr(1)},
		Connections: []genesis.Connection{
			{Selector: plugin.BeforeSwap, ModuleIndex: 1},
			{Selector: plugin.BeforeSwap, ModuleIndex: 2},
		},
	}
	require.ErrorIs(env.hub.Initialize(context.Background(), admin, g), ErrInvalidModuleIndex)

	count, err := env.hub.ModulesCount()
	require.NoError(err)
	require.Zero(count)

	// A failed genesis can be retried.
	g.Connections = g.Connections[:1]
	require.NoError(env.hub.Initialize(context.Background(), admin, g))
}

func TestStatePersistence(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	poolID := ids.GenerateTestID()

	env := newEnvironmentWithDB(t, db, poolID)
	module := plugintest.NewModule(false, 0)
	env.connect(t, plugin.BeforeSwap, env.addModule(t, moduleAddr(1), module), false, false)

	reopened := newEnvironmentWithDB(t, db, poolID)
	entry, err := reopened.hub.ModuleForHookByIndex(plugin.BeforeSwap, 0)
	require.NoError(err)
	require.Equal(hooklist.Entry{ModuleIndex: 1}, entry)

	// Hubs of other pools don't share state.
	other := newEnvironmentWithDB(t, db, ids.GenerateTestID())
	count, err := other.hub.ModulesCount()
	require.NoError(err)
	require.Zero(count)
}
