package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXRPToDrops(t *testing.T) {
	drops, err := XRPToDrops(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000), drops)

	drops, err = XRPToDrops(decimal.RequireFromString("0.0000019"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), drops, "fractions of a drop are floored")

	_, err = XRPToDrops(decimal.RequireFromString("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = XRPToDrops(decimal.RequireFromString("100000000001"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDropsToXRP(t *testing.T) {
	xrp, err := DropsToXRP("1000000000")
	require.NoError(t, err)
	assert.True(t, xrp.Equal(decimal.NewFromInt(1000)))

	xrp, err = DropsToXRP("1")
	require.NoError(t, err)
	assert.Equal(t, "0.000001", xrp.String())

	_, err = DropsToXRP("1.5")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = DropsToXRP("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.500000 XRP", FormatAmount(decimal.RequireFromString("12.5"), "XRP"))
	assert.Equal(t, "12.500000 XRP", FormatAmount(decimal.RequireFromString("12.5"), ""))
	assert.Equal(t, "3.14 USD", FormatAmount(decimal.RequireFromString("3.14159"), "USD"))
}
