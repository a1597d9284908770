// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	require := require.New(t)

	m, err := newMetrics(metric.NewRegistry())
	require.NoError(err)

	handler := m.wrapHandler("/ext/hub", teapot)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/ext/hub", nil))
	require.Equal(http.StatusTeapot, w.Code)
}
