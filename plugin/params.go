// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package plugin

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
)

// InitializeParams are passed to BeforeInitialize and AfterInitialize.
type InitializeParams struct {
	SqrtPriceX96 *uint256.Int
	// Tick is only set for AfterInitialize.
	Tick int32
}

// ModifyPositionParams are passed to BeforeModifyPosition and
// AfterModifyPosition.
type ModifyPositionParams struct {
	Recipient      common.Address
	BottomTick     int32
	TopTick        int32
	LiquidityDelta *big.Int

	// Amount0 and Amount1 are only set for AfterModifyPosition.
	Amount0 *uint256.Int
	Amount1 *uint256.Int

	Data []byte
}

// SwapParams are passed to BeforeSwap and AfterSwap.
type SwapParams struct {
	Recipient      common.Address
	ZeroToOne      bool
	AmountRequired *big.Int
	LimitSqrtPrice *uint256.Int

	// WithPaymentInAdvance is only set for BeforeSwap.
	WithPaymentInAdvance bool

	// Amount0 and Amount1 are only set for AfterSwap.
	Amount0 *big.Int
	Amount1 *big.Int

	Data []byte
}

// FlashParams are passed to BeforeFlash and AfterFlash.
type FlashParams struct {
	Recipient common.Address
	Amount0   *uint256.Int
	Amount1   *uint256.Int

	// Paid0 and Paid1 are only set for AfterFlash.
	Paid0 *uint256.Int
	Paid1 *uint256.Int

	Data []byte
}
