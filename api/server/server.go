// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package server hosts API handlers under /ext.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64
	wildcard             = "*"
)

var ErrDuplicateRoute = errors.New("duplicate route")

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
	ShutdownTimeout   time.Duration `json:"shutdownTimeout"`
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Server maintains the HTTP router.
type Server struct {
	log             log.Logger
	shutdownTimeout time.Duration
	metrics         *serverMetrics

	lock   sync.Mutex
	mux    *http.ServeMux
	routes map[string]struct{}

	srv      *http.Server
	listener net.Listener
}

func New(
	logger log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	allowedHosts []string,
	registerer metric.Registerer,
	httpConfig HTTPConfig,
) (*Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	handler := wrapHandler(mux, allowedOrigins, allowedHosts)

	httpServer := &http.Server{
		Handler: h2c.NewHandler(
			handler,
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	logger.Info("API created",
		log.String("allowedOrigins", strings.Join(allowedOrigins, ",")),
		log.String("allowedHosts", strings.Join(allowedHosts, ",")),
	)

	return &Server{
		log:             logger,
		shutdownTimeout: httpConfig.ShutdownTimeout,
		metrics:         m,
		mux:             mux,
		routes:          make(map[string]struct{}),
		srv:             httpServer,
		listener:        listener,
	}, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// AddRoute serves handler at /ext/endpoint.
func (s *Server) AddRoute(handler http.Handler, endpoint string) error {
	url := fmt.Sprintf("%s/%s", baseURL, strings.Trim(endpoint, "/"))

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.routes[url]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, url)
	}
	s.log.Info("adding route",
		log.String("url", url),
	)
	s.routes[url] = struct{}{}
	s.mux.Handle(url, s.metrics.wrapHandler(url, handler))
	return nil
}

// Dispatch serves requests until the server is shut down.
func (s *Server) Dispatch() error {
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(
	handler http.Handler,
	allowedOrigins []string,
	allowedHosts []string,
) http.Handler {
	h := filterInvalidHosts(handler, allowedHosts)
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(h)
}

// filterInvalidHosts rejects requests whose Host header is a name outside of
// allowedHosts. IP literals are always accepted, as are all hosts when the
// list is empty or holds the wildcard.
func filterInvalidHosts(handler http.Handler, allowedHosts []string) http.Handler {
	hosts := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		if host == wildcard {
			return handler
		}
		hosts[strings.ToLower(host)] = struct{}{}
	}
	if len(hosts) == 0 {
		return handler
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.Host)
		if err != nil {
			host = r.Host
		}
		if net.ParseIP(host) != nil {
			handler.ServeHTTP(w, r)
			return
		}
		if _, ok := hosts[strings.ToLower(host)]; !ok {
			http.Error(w, "invalid host specified", http.StatusForbidden)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
