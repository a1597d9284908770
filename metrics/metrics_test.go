// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"

	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	require := require.New(t)

	registry := metric.NewRegistry()
	m, err := New(registry)
	require.NoError(err)

	m.MarkDispatched("beforeSwap")
	m.MarkFailed("beforeSwap")
	m.MarkFeeOverride()
	m.SetRegisteredModules(3)
	m.SetConnectedModules("afterFlash", 2)
}
