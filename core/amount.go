package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DropsPerXRP is the number of drops in one XRP.
const DropsPerXRP = 1_000_000

const (
	nativeCurrency = "XRP"
	xrpDecimals    = 6
)

// MaxXRP is the total XRP supply; no amount can exceed it.
var MaxXRP = decimal.NewFromInt(100_000_000_000)

// XRPToDrops converts XRP to drops, discarding fractions of a drop.
func XRPToDrops(xrp decimal.Decimal) (int64, error) {
	if xrp.IsNegative() || xrp.GreaterThan(MaxXRP) {
		return 0, fmt.Errorf("%w: %s XRP", ErrInvalidAmount, xrp)
	}
	return xrp.Shift(xrpDecimals).Floor().IntPart(), nil
}

// DropsToXRP converts a drops string to XRP.
func DropsToXRP(drops string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(drops)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, drops)
	}
	if d.IsNegative() || !d.Equal(d.Floor()) {
		return decimal.Zero, fmt.Errorf("%w: %q is not a whole number of drops", ErrInvalidAmount, drops)
	}
	return d.Shift(-xrpDecimals), nil
}

// FormatAmount renders an amount for display.
func FormatAmount(amount decimal.Decimal, currency string) string {
	if currency == "" || currency == nativeCurrency {
		return amount.StringFixed(xrpDecimals) + " " + nativeCurrency
	}
	return amount.StringFixed(2) + " " + currency
}
