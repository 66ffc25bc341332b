package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTrustLimit is the trust line limit used when none is given.
const DefaultTrustLimit = "1000000000"

// SignInTx is the identity challenge sent on connect.
func SignInTx() TxJSON {
	return TxJSON{"TransactionType": "SignIn"}
}

// PaymentTx builds a native XRP payment from account to destination.
func PaymentTx(account, destination string, xrp decimal.Decimal, destinationTag *uint32, memo string) (TxJSON, error) {
	if !IsValidAddress(destination) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, destination)
	}
	if !xrp.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}
	drops, err := XRPToDrops(xrp)
	if err != nil {
		return nil, err
	}
	if drops == 0 {
		return nil, fmt.Errorf("%w: %s XRP is less than one drop", ErrInvalidAmount, xrp)
	}

	tx := TxJSON{
		"TransactionType": "Payment",
		"Account":         account,
		"Destination":     destination,
		"Amount":          fmt.Sprintf("%d", drops),
	}
	withExtras(tx, destinationTag, memo)
	return tx, nil
}

// TokenPaymentTx builds an issued-currency payment.
func TokenPaymentTx(account, destination string, value decimal.Decimal, currency, issuer string, destinationTag *uint32, memo string) (TxJSON, error) {
	if !IsValidAddress(destination) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, destination)
	}
	if !IsValidAddress(issuer) {
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalidAddress, issuer)
	}
	if !value.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidAmount)
	}

	tx := TxJSON{
		"TransactionType": "Payment",
		"Account":         account,
		"Destination":     destination,
		"Amount": map[string]any{
			"currency": currency,
			"value":    value.String(),
			"issuer":   issuer,
		},
	}
	withExtras(tx, destinationTag, memo)
	return tx, nil
}

// TrustSetTx builds a trust line towards issuer for currency.
func TrustSetTx(account, currency, issuer, limit string) (TxJSON, error) {
	if !IsValidAddress(issuer) {
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalidAddress, issuer)
	}
	if limit == "" {
		limit = DefaultTrustLimit
	}
	if _, err := decimal.NewFromString(limit); err != nil {
		return nil, fmt.Errorf("%w: trust limit %q", ErrInvalidAmount, limit)
	}

	return TxJSON{
		"TransactionType": "TrustSet",
		"Account":         account,
		"LimitAmount": map[string]any{
			"currency": currency,
			"value":    limit,
			"issuer":   issuer,
		},
	}, nil
}

func withExtras(tx TxJSON, destinationTag *uint32, memo string) {
	if destinationTag != nil {
		tx["DestinationTag"] = *destinationTag
	}
	if memo != "" {
		tx["Memos"] = []any{
			map[string]any{
				"Memo": map[string]any{
					"MemoData": strings.ToUpper(hex.EncodeToString([]byte(memo))),
				},
			},
		}
	}
}
