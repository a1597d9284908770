// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/cryptoalgebra/algebra-modular-hub/plugin"
)

func TestBytesParse(t *testing.T) {
	require := require.New(t)

	g := &Genesis{
		Modules: []common.Address{
			common.HexToAddress("0x01"),
			common.HexToAddress("0x02"),
		},
		Connections: []Connection{
			{
				Selector:             plugin.BeforeSwap,
				ModuleIndex:          1,
				ImplementsDynamicFee: true,
			},
			{
				Selector:    plugin.AfterFlash,
				ModuleIndex: 2,
				UseDelegate: true,
			},
		},
	}

	b, err := g.Bytes()
	require.NoError(err)

	parsed, err := Parse(b)
	require.NoError(err)
	require.Equal(g, parsed)
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    *Genesis
		expectedErr error
	}{
		{
			name:  "selector by name",
			input: `{"modules":["0x0000000000000000000000000000000000000001"],"connections":[{"selector":"beforeSwap","moduleIndex":1,"useDelegate":true}]}`,
			expected: &Genesis{
				Modules: []common.Address{common.HexToAddress("0x01")},
				Connections: []Connection{{
					Selector:    plugin.BeforeSwap,
					ModuleIndex: 1,
					UseDelegate: true,
				}},
			},
		},
		{
			name:        "unrecognized selector",
			input:       `{"connections":[{"selector":"0xdeadbeef","moduleIndex":1}]}`,
			expectedErr: ErrUnknownSelector,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			g, err := ParseJSON([]byte(test.input))
			require.ErrorIs(err, test.expectedErr)
			if test.expectedErr != nil {
				return
			}
			require.Equal(test.expected, g)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte{0x00})
	require.Error(t, err)
}
