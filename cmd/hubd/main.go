// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cryptoalgebra/algebra-modular-hub/cmd/hubd/decode"
	"github.com/cryptoalgebra/algebra-modular-hub/cmd/hubd/encode"
	"github.com/cryptoalgebra/algebra-modular-hub/cmd/hubd/serve"
)

func main() {
	cmd := &cobra.Command{
		Use:   "hubd",
		Short: "Runs and inspects a modular hub",
	}
	cmd.AddCommand(
		serve.Command(),
		decode.Command(),
		encode.Command(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
