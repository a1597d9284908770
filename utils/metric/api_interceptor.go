// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utilmetric

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/metric"

	"github.com/cryptoalgebra/algebra-modular-hub/utils/wrappers"
)

const methodLabel = "method"

var methodLabels = []string{methodLabel}

// APIInterceptor records the count, latency and failures of JSON-RPC calls.
type APIInterceptor interface {
	InterceptRequest(i *rpc.RequestInfo) *http.Request
	AfterRequest(i *rpc.RequestInfo)
}

type contextKey int

const requestTimestampKey contextKey = iota

type apiInterceptor struct {
	requestDurationCount metric.CounterVec
	requestDurationSum   metric.GaugeVec
	requestErrors        metric.CounterVec
}

func NewAPIInterceptor(registerer metric.Registerer) (APIInterceptor, error) {
	a := &apiInterceptor{
		requestDurationCount: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "api_request_duration_count",
				Help: "Number of times this type of request was made",
			},
			methodLabels,
		),
		requestDurationSum: metric.NewGaugeVec(
			metric.GaugeOpts{
				Name: "api_request_duration_sum",
				Help: "Amount of time in nanoseconds that has been spent handling this type of request",
			},
			methodLabels,
		),
		requestErrors: metric.NewCounterVec(
			metric.CounterOpts{
				Name: "api_request_error_count",
				Help: "Number of request errors",
			},
			methodLabels,
		),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(metric.AsCollector(a.requestDurationCount)),
		registerer.Register(metric.AsCollector(a.requestDurationSum)),
		registerer.Register(metric.AsCollector(a.requestErrors)),
	)
	return a, errs.Err
}

func (*apiInterceptor) InterceptRequest(i *rpc.RequestInfo) *http.Request {
	ctx := context.WithValue(i.Request.Context(), requestTimestampKey, time.Now())
	return i.Request.WithContext(ctx)
}

func (a *apiInterceptor) AfterRequest(i *rpc.RequestInfo) {
	timestamp, ok := i.Request.Context().Value(requestTimestampKey).(time.Time)
	if !ok {
		return
	}

	labels := metric.Labels{
		methodLabel: i.Method,
	}
	a.requestDurationCount.With(labels).Inc()
	a.requestDurationSum.With(labels).Add(float64(time.Since(timestamp)))
	if i.Error != nil {
		a.requestErrors.With(labels).Inc()
	}
}
