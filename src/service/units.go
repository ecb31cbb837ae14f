package service

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the number of decimals of ETH.
const EtherDecimals = 18

var ErrTooManyDecimals = errors.New("amount has more decimal places than the unit allows")

// ParseUnits converts a decimal amount to its integer base units, e.g.
// 1.5 ETH to 1500000000000000000 wei.
func ParseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("invalid decimals %d", decimals)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("negative amount %s", amount.String())
	}
	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrTooManyDecimals, amount.String(), decimals)
	}
	return scaled.BigInt(), nil
}

// FormatUnits converts base units to a decimal amount. nil is zero.
func FormatUnits(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}
