// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"errors"
	"fmt"
	"os"

	"github.com/luxfi/geth/common"
	"github.com/spf13/pflag"

	"github.com/cryptoalgebra/algebra-modular-hub/config"
	"github.com/cryptoalgebra/algebra-modular-hub/genesis"
)

var errGenesisWithoutAdministrator = errors.New("a genesis requires at least one administrator")

const (
	ConfigFileKey  = "config-file"
	GenesisFileKey = "genesis-file"
	PoolKey        = "pool"
	HTTPHostKey    = "http-host"
	HTTPPortKey    = "http-port"
)

func AddFlags(flags *pflag.FlagSet) {
	flags.String(ConfigFileKey, "", "JSON config file of the hub")
	flags.String(GenesisFileKey, "", "JSON genesis file applied when the hub starts")
	flags.String(PoolKey, "", "Address of the pool, overrides the config file")
	flags.String(HTTPHostKey, "", "Host the API listens on, overrides the config file")
	flags.Uint16(HTTPPortKey, 0, "Port the API listens on, overrides the config file")
}

type Config struct {
	Hub     config.Config
	Genesis *genesis.Genesis
}

func ParseFlags(flags *pflag.FlagSet, args []string) (*Config, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	configFile, err := flags.GetString(ConfigFileKey)
	if err != nil {
		return nil, err
	}

	var configBytes []byte
	if configFile != "" {
		configBytes, err = os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	hubConfig, err := config.Parse(configBytes)
	if err != nil {
		return nil, err
	}

	poolStr, err := flags.GetString(PoolKey)
	if err != nil {
		return nil, err
	}
	if poolStr != "" {
		if !common.IsHexAddress(poolStr) {
			return nil, fmt.Errorf("invalid pool address %q", poolStr)
		}
		hubConfig.Pool = common.HexToAddress(poolStr)
	}

	if flags.Changed(HTTPHostKey) {
		hubConfig.HTTPHost, err = flags.GetString(HTTPHostKey)
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed(HTTPPortKey) {
		hubConfig.HTTPPort, err = flags.GetUint16(HTTPPortKey)
		if err != nil {
			return nil, err
		}
	}
	if err := hubConfig.Verify(); err != nil {
		return nil, err
	}

	genesisFile, err := flags.GetString(GenesisFileKey)
	if err != nil {
		return nil, err
	}

	var g *genesis.Genesis
	if genesisFile != "" {
		if len(hubConfig.Administrators) == 0 {
			return nil, errGenesisWithoutAdministrator
		}

		genesisBytes, err := os.ReadFile(genesisFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read genesis file: %w", err)
		}
		g, err = genesis.ParseJSON(genesisBytes)
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		Hub:     hubConfig,
		Genesis: g,
	}, nil
}
