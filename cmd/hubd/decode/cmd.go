// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package decode

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "decode <word>",
		Short: "Decodes a packed hook list word",
		RunE:  decodeFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

type entry struct {
	Position             int  `json:"position"`
	ModuleIndex          int  `json:"moduleIndex"`
	UseDelegate          bool `json:"useDelegate"`
	ImplementsDynamicFee bool `json:"implementsDynamicFee"`
}

func decodeFunc(c *cobra.Command, args []string) error {
	config, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}

	out := c.OutOrStdout()
	if !config.JSON {
		for i, e := range config.List.Entries() {
			fmt.Fprintf(out, "%2d: %s\n", i, e)
		}
		return nil
	}

	entries := make([]entry, 0, config.List.Len())
	for i, e := range config.List.Entries() {
		entries = append(entries, entry{
			Position:             i,
			ModuleIndex:          int(e.ModuleIndex),
			UseDelegate:          e.UseDelegate,
			ImplementsDynamicFee: e.ImplementsDynamicFee,
		})
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
