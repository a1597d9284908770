// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the administrator and read-only surfaces of a modular
// hub over JSON-RPC.
package api

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/cryptoalgebra/algebra-modular-hub/hooklist"
	"github.com/cryptoalgebra/algebra-modular-hub/hub"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
	"github.com/cryptoalgebra/algebra-modular-hub/utils/json"
	"github.com/cryptoalgebra/algebra-modular-hub/utils/metric"
)

const serviceName = "hub"

// EmptyReply is the reply of calls that return nothing.
type EmptyReply struct{}

// Service is the JSON-RPC service of a modular hub.
//
// Mutating calls carry an Auth. The address that signed the call is the
// caller the hub checks against its administrators.
type Service struct {
	log    log.Logger
	hub    *hub.Hub
	nonces *nonces
}

func NewService(h *hub.Hub, db database.Database, logger log.Logger) *Service {
	return &Service{
		log: logger,
		hub: h,
		nonces: &nonces{
			db: db,
		},
	}
}

// NewHandler returns an http handler serving the "hub" service. Signer nonces
// are stored in db. Request metrics are registered with registerer.
func NewHandler(h *hub.Hub, db database.Database, logger log.Logger, registerer metric.Registerer) (http.Handler, error) {
	interceptor, err := utilmetric.NewAPIInterceptor(registerer)
	if err != nil {
		return nil, err
	}

	server := rpc.NewServer()
	codec := json.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	server.RegisterInterceptFunc(interceptor.InterceptRequest)
	server.RegisterAfterFunc(interceptor.AfterRequest)
	return server, server.RegisterService(NewService(h, db, logger), serviceName)
}

func (s *Service) called(method string) {
	s.log.Debug("API called",
		log.String("service", serviceName),
		log.String("method", method),
	)
}

func (s *Service) authenticate(method string, auth *Auth, args any) (common.Address, error) {
	return s.nonces.consume(method, s.hub.Pool(), auth, args)
}

// RegisterModuleArgs are the arguments to RegisterModule.
type RegisterModuleArgs struct {
	Auth   *Auth          `json:"auth,omitempty"`
	Module common.Address `json:"module"`
}

// RegisterModuleReply is the response from RegisterModule.
type RegisterModuleReply struct {
	Index json.Uint8 `json:"index"`
}

// RegisterModule stores a module in the next free slot.
func (s *Service) RegisterModule(r *http.Request, args *RegisterModuleArgs, reply *RegisterModuleReply) error {
	s.called("registerModule")

	unsigned := *args
	unsigned.Auth = nil
	caller, err := s.authenticate("registerModule", args.Auth, unsigned)
	if err != nil {
		return err
	}

	index, err := s.hub.RegisterModule(r.Context(), caller, args.Module)
	reply.Index = json.Uint8(index)
	return err
}

// ReplaceModuleArgs are the arguments to ReplaceModule.
type ReplaceModuleArgs struct {
	Auth   *Auth          `json:"auth,omitempty"`
	Index  json.Uint8     `json:"index"`
	Module common.Address `json:"module"`
}

// ReplaceModule points an occupied slot to a new module.
func (s *Service) ReplaceModule(r *http.Request, args *ReplaceModuleArgs, _ *EmptyReply) error {
	s.called("replaceModule")

	unsigned := *args
	unsigned.Auth = nil
	caller, err := s.authenticate("replaceModule", args.Auth, unsigned)
	if err != nil {
		return err
	}
	return s.hub.ReplaceModule(r.Context(), caller, uint8(args.Index), args.Module)
}

// InsertModulesArgs are the arguments to InsertModulesToHookLists.
type InsertModulesArgs struct {
	Auth *Auth          `json:"auth,omitempty"`
	Ops  []hub.InsertOp `json:"ops"`
}

// InsertModulesToHookLists applies a batch of hook list insertions.
func (s *Service) InsertModulesToHookLists(r *http.Request, args *InsertModulesArgs, _ *EmptyReply) error {
	s.called("insertModulesToHookLists")

	unsigned := *args
	unsigned.Auth = nil
	caller, err := s.authenticate("insertModulesToHookLists", args.Auth, unsigned)
	if err != nil {
		return err
	}
	return s.hub.InsertModulesToHookLists(r.Context(), caller, args.Ops)
}

// RemoveModulesArgs are the arguments to RemoveModulesFromHookLists.
type RemoveModulesArgs struct {
	Auth *Auth          `json:"auth,omitempty"`
	Ops  []hub.RemoveOp `json:"ops"`
}

// RemoveModulesFromHookLists applies a batch of hook list removals.
func (s *Service) RemoveModulesFromHookLists(r *http.Request, args *RemoveModulesArgs, _ *EmptyReply) error {
	s.called("removeModulesFromHookLists")

	unsigned := *args
	unsigned.Auth = nil
	caller, err := s.authenticate("removeModulesFromHookLists", args.Auth, unsigned)
	if err != nil {
		return err
	}
	return s.hub.RemoveModulesFromHookLists(r.Context(), caller, args.Ops)
}

// ConnectModuleArgs are the arguments to ConnectModuleToHook.
type ConnectModuleArgs struct {
	Auth                 *Auth           `json:"auth,omitempty"`
	Selector             plugin.Selector `json:"selector"`
	Index                json.Uint8      `json:"index"`
	UseDelegate          bool            `json:"useDelegate"`
	ImplementsDynamicFee bool            `json:"implementsDynamicFee"`
}

// ConnectModuleReply is the response from ConnectModuleToHook.
type ConnectModuleReply struct {
	Position json.Uint8 `json:"position"`
}

// ConnectModuleToHook appends a module to the end of a hook list.
func (s *Service) ConnectModuleToHook(r *http.Request, args *ConnectModuleArgs, reply *ConnectModuleReply) error {
	s.called("connectModuleToHook")

	unsigned := *args
	unsigned.Auth = nil
	caller, err := s.authenticate("connectModuleToHook", args.Auth, unsigned)
	if err != nil {
		return err
	}

	position, err := s.hub.ConnectModuleToHook(
		r.Context(),
		caller,
		args.Selector,
		uint8(args.Index),
		args.UseDelegate,
		args.ImplementsDynamicFee,
	)
	reply.Position = json.Uint8(position)
	return err
}

// GetModuleForHookByIndexArgs are the arguments to GetModuleForHookByIndex.
type GetModuleForHookByIndexArgs struct {
	Selector plugin.Selector `json:"selector"`
	Position json.Uint8      `json:"position"`
}

// EntryReply describes one hook list entry.
type EntryReply struct {
	ModuleIndex          json.Uint8 `json:"moduleIndex"`
	UseDelegate          bool       `json:"useDelegate"`
	ImplementsDynamicFee bool       `json:"implementsDynamicFee"`
}

func newEntryReply(e hooklist.Entry) EntryReply {
	return EntryReply{
		ModuleIndex:          json.Uint8(e.ModuleIndex),
		UseDelegate:          e.UseDelegate,
		ImplementsDynamicFee: e.ImplementsDynamicFee,
	}
}

// GetModuleForHookByIndex returns the entry at a position of a hook list.
func (s *Service) GetModuleForHookByIndex(_ *http.Request, args *GetModuleForHookByIndexArgs, reply *EntryReply) error {
	s.called("getModuleForHookByIndex")

	entry, err := s.hub.ModuleForHookByIndex(args.Selector, uint8(args.Position))
	if err != nil {
		return err
	}
	*reply = newEntryReply(entry)
	return nil
}

// SelectorArgs are the arguments of calls that target one hook.
type SelectorArgs struct {
	Selector plugin.Selector `json:"selector"`
}

// GetModulesForHookReply holds three parallel slices of equal length, in hook
// list order.
type GetModulesForHookReply struct {
	ModuleIndexes        []json.Uint8 `json:"moduleIndexes"`
	ImplementsDynamicFee []bool       `json:"implementsDynamicFee"`
	UseDelegate          []bool       `json:"useDelegate"`
}

// GetModulesForHook returns every module connected to a hook.
func (s *Service) GetModulesForHook(_ *http.Request, args *SelectorArgs, reply *GetModulesForHookReply) error {
	s.called("getModulesForHook")

	modules, err := s.hub.ModulesForHook(args.Selector)
	if err != nil {
		return err
	}
	reply.ModuleIndexes = make([]json.Uint8, len(modules.ModuleIndexes))
	for i, index := range modules.ModuleIndexes {
		reply.ModuleIndexes[i] = json.Uint8(index)
	}
	reply.ImplementsDynamicFee = modules.ImplementsDynamicFee
	reply.UseDelegate = modules.UseDelegate
	return nil
}

// GetHookListReply is the packed and decoded form of a hook list.
type GetHookListReply struct {
	Word    string       `json:"word"`
	Entries []EntryReply `json:"entries"`
}

// GetHookList returns the packed word of a hook list with its entries.
func (s *Service) GetHookList(_ *http.Request, args *SelectorArgs, reply *GetHookListReply) error {
	s.called("getHookList")

	list, err := s.hub.HookList(args.Selector)
	if err != nil {
		return err
	}
	reply.Word = list.Word().Hex()
	reply.Entries = make([]EntryReply, 0, list.Len())
	for _, entry := range list.Entries() {
		reply.Entries = append(reply.Entries, newEntryReply(entry))
	}
	return nil
}

// IndexArgs are the arguments of calls that target one module slot.
type IndexArgs struct {
	Index json.Uint8 `json:"index"`
}

// GetModuleReply is the response from GetModule.
type GetModuleReply struct {
	Module common.Address `json:"module"`
}

// GetModule returns the module stored in a slot. Unused slots return the empty
// address.
func (s *Service) GetModule(_ *http.Request, args *IndexArgs, reply *GetModuleReply) error {
	s.called("getModule")

	module, err := s.hub.ModuleAddress(uint8(args.Index))
	reply.Module = module
	return err
}

// GetModuleIndexArgs are the arguments to GetModuleIndex.
type GetModuleIndexArgs struct {
	Module common.Address `json:"module"`
}

// GetModuleIndexReply is the response from GetModuleIndex.
type GetModuleIndexReply struct {
	Index      json.Uint8 `json:"index"`
	Registered bool       `json:"registered"`
}

// GetModuleIndex returns the slot holding a module.
func (s *Service) GetModuleIndex(_ *http.Request, args *GetModuleIndexArgs, reply *GetModuleIndexReply) error {
	s.called("getModuleIndex")

	index, registered, err := s.hub.ModuleIndex(args.Module)
	reply.Index = json.Uint8(index)
	reply.Registered = registered
	return err
}

// GetModulesReply is the response from GetModules.
type GetModulesReply struct {
	Count   json.Uint8       `json:"count"`
	Modules []common.Address `json:"modules"`
}

// GetModules returns every registered module; element i is slot i+1.
func (s *Service) GetModules(_ *http.Request, _ *struct{}, reply *GetModulesReply) error {
	s.called("getModules")

	modules, err := s.hub.Modules()
	if err != nil {
		return err
	}
	reply.Count = json.Uint8(len(modules))
	reply.Modules = modules
	return nil
}

// GetDefaultPluginConfigReply is the response from GetDefaultPluginConfig.
type GetDefaultPluginConfigReply struct {
	Config json.Uint8 `json:"config"`
}

func (s *Service) GetDefaultPluginConfig(_ *http.Request, _ *struct{}, reply *GetDefaultPluginConfigReply) error {
	s.called("getDefaultPluginConfig")

	reply.Config = json.Uint8(s.hub.DefaultPluginConfig())
	return nil
}

// GetCurrentFeeReply is the response from GetCurrentFee.
type GetCurrentFeeReply struct {
	Fee json.Uint16 `json:"fee"`
}

// GetCurrentFee always fails; the hub never computes a fee itself.
func (s *Service) GetCurrentFee(_ *http.Request, _ *struct{}, reply *GetCurrentFeeReply) error {
	s.called("getCurrentFee")

	fee, err := s.hub.CurrentFee()
	reply.Fee = json.Uint16(fee)
	return err
}

// GetSelectorsReply is the response from GetSelectors.
type GetSelectorsReply struct {
	Selectors map[string]plugin.Selector `json:"selectors"`
}

// GetSelectors returns every recognized hook by name.
func (s *Service) GetSelectors(_ *http.Request, _ *struct{}, reply *GetSelectorsReply) error {
	s.called("getSelectors")

	reply.Selectors = make(map[string]plugin.Selector)
	for _, selector := range plugin.Selectors() {
		reply.Selectors[selector.Name()] = selector
	}
	return nil
}

// GetNonceArgs are the arguments to GetNonce.
type GetNonceArgs struct {
	Address common.Address `json:"address"`
}

// GetNonceReply is the response from GetNonce.
type GetNonceReply struct {
	Nonce json.Uint64 `json:"nonce"`
}

// GetNonce returns the nonce the next call signed by an address must carry.
func (s *Service) GetNonce(_ *http.Request, args *GetNonceArgs, reply *GetNonceReply) error {
	s.called("getNonce")

	nonce, err := s.nonces.get(args.Address)
	reply.Nonce = json.Uint64(nonce)
	return err
}
