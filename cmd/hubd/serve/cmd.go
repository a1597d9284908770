// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package serve

import (
	"context"
	"net"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"

	"github.com/cryptoalgebra/algebra-modular-hub/api"
	apiserver "github.com/cryptoalgebra/algebra-modular-hub/api/server"
	"github.com/cryptoalgebra/algebra-modular-hub/hub"
	"github.com/cryptoalgebra/algebra-modular-hub/metrics"
	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

const endpoint = "hub"

var apiPrefix = []byte("api")

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Serves the API of a modular hub",
		RunE:  serveFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func serveFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	config, err := ParseFlags(flags, args)
	if err != nil {
		return err
	}

	ctx := c.Context()
	logger := log.NewLogger("hubd")
	registry := metric.NewRegistry()

	m, err := metrics.New(registry)
	if err != nil {
		return err
	}

	db := memdb.New()
	h, err := hub.New(
		config.Hub,
		db,
		hub.Collaborators{
			Pool:      &loggingPool{log: logger},
			Authority: hub.NewStaticAuthority(config.Hub.Administrators...),
			Resolver:  plugin.NewDirectory(),
		},
		m,
		logger,
	)
	if err != nil {
		return err
	}

	if config.Genesis != nil {
		// The operator that configures the administrators applies the genesis
		// on behalf of the first one.
		if err := h.Initialize(ctx, config.Hub.Administrators[0], config.Genesis); err != nil {
			return err
		}
	}

	handler, err := api.NewHandler(h, prefixdb.New(apiPrefix, db), logger, registry)
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", config.Hub.Address())
	if err != nil {
		return err
	}
	server, err := apiserver.New(
		logger,
		listener,
		config.Hub.AllowedOrigins,
		config.Hub.AllowedHosts,
		registry,
		apiserver.DefaultHTTPConfig(),
	)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := server.AddRoute(handler, endpoint); err != nil {
		_ = listener.Close()
		return err
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving hub API",
			log.Stringer("address", server.Addr()),
			log.Stringer("pool", config.Hub.Pool),
		)
		errs <- server.Dispatch()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down hub API")
	if err := server.Shutdown(); err != nil {
		return err
	}
	return <-errs
}

// loggingPool stands in for a pool when the hub runs on its own.
type loggingPool struct {
	log log.Logger
}

func (p *loggingPool) SetFee(_ context.Context, fee uint16) error {
	p.log.Info("pool fee updated",
		log.Int("fee", int(fee)),
	)
	return nil
}
