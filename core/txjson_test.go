package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentTx(t *testing.T) {
	tag := uint32(42)
	tx, err := PaymentTx("rSender", genesisAccount, decimal.RequireFromString("2.5"), &tag, "hi")
	require.NoError(t, err)

	assert.Equal(t, "Payment", tx["TransactionType"])
	assert.Equal(t, "2500000", tx["Amount"])
	assert.Equal(t, uint32(42), tx["DestinationTag"])

	memos := tx["Memos"].([]any)
	memo := memos[0].(map[string]any)["Memo"].(map[string]any)
	assert.Equal(t, "6869", memo["MemoData"])
}

func TestPaymentTxRejectsBadInput(t *testing.T) {
	_, err := PaymentTx("rSender", "not-an-address", decimal.NewFromInt(1), nil, "")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = PaymentTx("rSender", genesisAccount, decimal.Zero, nil, "")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = PaymentTx("rSender", genesisAccount, decimal.RequireFromString("0.0000001"), nil, "")
	assert.ErrorIs(t, err, ErrInvalidAmount, "rounds down to zero drops")
}

func TestTokenPaymentTx(t *testing.T) {
	tx, err := TokenPaymentTx("rSender", genesisAccount, decimal.RequireFromString("10.25"), "USD", genesisAccount, nil, "")
	require.NoError(t, err)

	amount := tx["Amount"].(map[string]any)
	assert.Equal(t, "10.25", amount["value"])
	assert.Equal(t, "USD", amount["currency"])
	assert.NotContains(t, tx, "DestinationTag")
	assert.NotContains(t, tx, "Memos")
}

func TestTrustSetTxDefaultsLimit(t *testing.T) {
	tx, err := TrustSetTx("rSender", "PRX", genesisAccount, "")
	require.NoError(t, err)

	limit := tx["LimitAmount"].(map[string]any)
	assert.Equal(t, DefaultTrustLimit, limit["value"])

	_, err = TrustSetTx("rSender", "PRX", genesisAccount, "lots")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
