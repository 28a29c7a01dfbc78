package domain

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// TokenDecimals is the precision of the staked governance token.
const TokenDecimals = 18

// ParseTokenAmount parses a human token amount ("12.5") into base units.
// A "wei" suffix takes the number as base units.
func ParseTokenAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	exp := int32(TokenDecimals)
	if raw, ok := strings.CutSuffix(s, "wei"); ok {
		s, exp = strings.TrimSpace(raw), 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid token amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid token amount %q: negative", s)
	}
	scaled := d.Shift(exp)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("invalid token amount %q: more than %d decimals", s, exp)
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("invalid token amount %q: overflows uint256", s)
	}
	return v, nil
}

// FormatTokenAmount renders base units as a token amount without trailing zeros.
func FormatTokenAmount(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v.ToBig(), -TokenDecimals).String()
}
