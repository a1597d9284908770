// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config defines configuration types for the modular hub.
package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
)

var ErrNoPool = errors.New("pool address is required")

// Config contains configuration parameters for a modular hub.
type Config struct {
	// PoolID namespaces the hub's state inside a shared database
	PoolID ids.ID `json:"poolID"`
	// Pool is the only address allowed to trigger hooks
	Pool common.Address `json:"pool"`

	// LogDispatch logs every module invocation at debug level
	LogDispatch bool `json:"logDispatch"`

	// Daemon configuration

	// Administrators are granted the administrator role by the daemon's
	// static authority
	Administrators []common.Address `json:"administrators"`
	// HTTPHost and HTTPPort are where the JSON-RPC API listens
	HTTPHost string `json:"httpHost"`
	HTTPPort uint16 `json:"httpPort"`
	// AllowedOrigins are the origins granted CORS access to the API
	AllowedOrigins []string `json:"allowedOrigins"`
	// AllowedHosts restricts the Host header of API requests. IP literals are
	// always accepted.
	AllowedHosts []string `json:"allowedHosts"`
	// MaxBatchSize bounds the number of operations accepted by a single
	// batched API call. Zero disables the bound.
	MaxBatchSize int `json:"maxBatchSize"`
}

// DefaultConfig returns the default configuration for a modular hub.
func DefaultConfig() Config {
	return Config{
		LogDispatch: false,

		HTTPHost:       "127.0.0.1",
		HTTPPort:       9650,
		AllowedOrigins: []string{"*"},
		AllowedHosts:   []string{"localhost"},
		MaxBatchSize:   256,
	}
}

// Parse overlays the JSON in b on top of DefaultConfig.
func Parse(b []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(b) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Verify checks that the config can be used to build a hub.
func (c Config) Verify() error {
	if c.Pool == (common.Address{}) {
		return ErrNoPool
	}
	if c.MaxBatchSize < 0 {
		return fmt.Errorf("invalid max batch size %d", c.MaxBatchSize)
	}
	return nil
}

// Address returns the host:port the API listens on.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}
