// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package encode

import (
	"errors"
	"fmt"
	"os"

	"github.com/luxfi/geth/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/cryptoalgebra/algebra-modular-hub/genesis"
)

var errMissingFile = errors.New("expected exactly one genesis file")

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <genesis.json>",
		Short: "Encodes a JSON genesis into its binary form",
		RunE:  encodeFunc,
	}
}

func encodeFunc(c *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errMissingFile
	}
	jsonBytes, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	g, err := genesis.ParseJSON(jsonBytes)
	if err != nil {
		return err
	}
	genesisBytes, err := g.Bytes()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.OutOrStdout(), hexutil.Encode(genesisBytes))
	return err
}
