// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/luxfi/metric"

	"github.com/cryptoalgebra/algebra-modular-hub/utils/wrappers"
)

const selectorLabel = "selector"

var (
	_ Metrics = (*metricsImpl)(nil)

	selectorLabels = []string{selectorLabel}
)

type Metrics interface {
	// MarkDispatched records a hook invocation for selector.
	MarkDispatched(selector string)
	// MarkFailed records a hook invocation that was aborted by a module.
	MarkFailed(selector string)
	// MarkFeeOverride records a fee pushed to the pool.
	MarkFeeOverride()
	// SetRegisteredModules records the number of occupied module slots.
	SetRegisteredModules(count int)
	// SetConnectedModules records the length of selector's hook list.
	SetConnectedModules(selector string, count int)
}

type metricsImpl struct {
	dispatches        metric.CounterVec
	failures          metric.CounterVec
	feeOverrides      metric.Counter
	registeredModules metric.Gauge
	connectedModules  metric.GaugeVec
}

func New(registerer metric.Registerer) (Metrics, error) {
	m := &metricsImpl{
		dispatches: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "hook_dispatches",
				Help: "Number of hook invocations received from the pool",
			},
			selectorLabels,
		),
		failures: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "hook_dispatch_failures",
				Help: "Number of hook invocations aborted by a module failure",
			},
			selectorLabels,
		),
		feeOverrides: metric.NewCounter(metric.CounterOpts{
			Name: "fee_overrides",
			Help: "Number of dynamic fee values applied to the pool",
		}),
		registeredModules: metric.NewGauge(metric.GaugeOpts{
			Name: "registered_modules",
			Help: "Number of occupied module slots",
		}),
		connectedModules: metric.NewGaugeVec(
			metric.GaugeOpts{
				Name: "connected_modules",
				Help: "Number of modules connected to a hook",
			},
			selectorLabels,
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(m.dispatches)),
		registerer.Register(metric.AsCollector(m.failures)),
		registerer.Register(metric.AsCollector(m.feeOverrides)),
		registerer.Register(metric.AsCollector(m.registeredModules)),
		registerer.Register(metric.AsCollector(m.connectedModules)),
	)
	return m, errs.Err
}

func (m *metricsImpl) MarkDispatched(selector string) {
	m.dispatches.With(metric.Labels{
		selectorLabel: selector,
	}).Inc()
}

func (m *metricsImpl) MarkFailed(selector string) {
	m.failures.With(metric.Labels{
		selectorLabel: selector,
	}).Inc()
}

func (m *metricsImpl) MarkFeeOverride() {
	m.feeOverrides.Inc()
}

func (m *metricsImpl) SetRegisteredModules(count int) {
	m.registeredModules.Set(float64(count))
}

func (m *metricsImpl) SetConnectedModules(selector string, count int) {
	m.connectedModules.With(metric.Labels{
		selectorLabel: selector,
	}).Set(float64(count))
}
