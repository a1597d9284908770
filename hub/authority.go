// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hub

import (
	"context"

	"github.com/luxfi/geth/common"
)

var _ Authority = StaticAuthority(nil)

// StaticAuthority grants the administrator role to a fixed set of addresses.
type StaticAuthority map[common.Address]struct{}

func NewStaticAuthority(administrators ...common.Address) StaticAuthority {
	a := make(StaticAuthority, len(administrators))
	for _, addr := range administrators {
		a[addr] = struct{}{}
	}
	return a
}

func (a StaticAuthority) IsAdministrator(_ context.Context, addr common.Address) (bool, error) {
	_, ok := a[addr]
	return ok, nil
}
