package service

import (
	"context"

	"github.com/layer-3/walletlink/core"
	"github.com/shopspring/decimal"
)

// Payment describes a transfer from the session account.
type Payment struct {
	Destination    string
	Amount         decimal.Decimal
	DestinationTag *uint32
	Memo           string

	// Currency and Issuer select an issued currency; empty means XRP.
	Currency string
	Issuer   string
}

// SendPayment signs an XRP payment of p.Amount to p.Destination.
func (c *Coordinator) SendPayment(ctx context.Context, p Payment) (SignResult, error) {
	session, err := c.requireSession(ctx)
	if err != nil {
		return SignResult{}, err
	}

	tx, err := core.PaymentTx(session.Account, p.Destination, p.Amount, p.DestinationTag, p.Memo)
	if err != nil {
		return SignResult{}, err
	}

	return c.sign(ctx, session, tx, core.SignOptions{})
}

// SendTokenPayment signs an issued-currency payment.
func (c *Coordinator) SendTokenPayment(ctx context.Context, p Payment) (SignResult, error) {
	session, err := c.requireSession(ctx)
	if err != nil {
		return SignResult{}, err
	}

	tx, err := core.TokenPaymentTx(session.Account, p.Destination, p.Amount, p.Currency, p.Issuer, p.DestinationTag, p.Memo)
	if err != nil {
		return SignResult{}, err
	}

	return c.sign(ctx, session, tx, core.SignOptions{})
}

// CreateTrustLine signs a TrustSet allowing the session account to hold
// currency from issuer. An empty limit uses core.DefaultTrustLimit.
func (c *Coordinator) CreateTrustLine(ctx context.Context, currency, issuer, limit string) (SignResult, error) {
	session, err := c.requireSession(ctx)
	if err != nil {
		return SignResult{}, err
	}

	tx, err := core.TrustSetTx(session.Account, currency, issuer, limit)
	if err != nil {
		return SignResult{}, err
	}

	return c.sign(ctx, session, tx, core.SignOptions{})
}
