// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/luxfi/metric"

	"github.com/cryptoalgebra/algebra-modular-hub/utils/wrappers"
)

type serverMetrics struct {
	requests metric.CounterVec
	inflight metric.Gauge
}

func newMetrics(registerer metric.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		requests: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "http_requests",
				Help: "number of HTTP requests received",
			},
			[]string{"method", "endpoint"},
		),
		inflight: metric.NewGauge(metric.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "number of HTTP requests being served",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.requests)),
		registerer.Register(metric.AsCollector(m.inflight)),
	)
	return m, errs.Err
}

func (m *serverMetrics) wrapHandler(endpoint string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.requests.With(metric.Labels{
			"method":   r.Method,
			"endpoint": endpoint,
		}).Inc()
		m.inflight.Inc()
		defer m.inflight.Dec()

		handler.ServeHTTP(w, r)
	})
}
