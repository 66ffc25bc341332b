// Package walletlink connects an application to an external XRP Ledger
// wallet: it establishes a session through an identity sign request, asks
// the wallet to sign transactions and keeps a snapshot of the session
// account. When the signing service is unavailable it runs against an
// in-process simulation with the same event sequence.
package walletlink

import (
	"context"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/service"
	"github.com/shopspring/decimal"
)

type (
	ConnectResult  = service.ConnectResult
	SignResult     = service.SignResult
	Payment        = service.Payment
	Listener       = service.Listener
	SubscriptionID = service.SubscriptionID
	Event          = core.Event
	EventKind      = core.EventKind
	WalletState    = core.WalletState
	TxJSON         = core.TxJSON
	SignOptions    = core.SignOptions
)

// Client represents the public interface consumed by UIs
type Client interface {
	// Initialize probes the signing service and restores a stored session
	Initialize(ctx context.Context) bool

	// Connect establishes a session, or returns the live one
	Connect(ctx context.Context) (ConnectResult, error)

	// Disconnect forgets the session and everything derived from it
	Disconnect(ctx context.Context)

	// Sign asks the wallet to approve a transaction
	Sign(ctx context.Context, tx TxJSON, opts SignOptions) (SignResult, error)

	SendPayment(ctx context.Context, p Payment) (SignResult, error)
	SendTokenPayment(ctx context.Context, p Payment) (SignResult, error)
	CreateTrustLine(ctx context.Context, currency, issuer, limit string) (SignResult, error)

	// RefreshAccountData reloads balance and ledger info of the session account
	RefreshAccountData(ctx context.Context) (core.AccountSnapshot, error)

	Subscribe(l Listener) SubscriptionID
	Unsubscribe(id SubscriptionID)

	// State returns a read-only view
	State() WalletState

	Close() error
}

var _ Client = (*service.Coordinator)(nil)

// IsValidAddress reports whether address is a well formed classic XRPL
// address with a valid checksum.
func IsValidAddress(address string) bool {
	return core.IsValidAddress(address)
}

// XRPToDrops converts XRP to drops, rounding down.
func XRPToDrops(xrp decimal.Decimal) (int64, error) {
	return core.XRPToDrops(xrp)
}

// DropsToXRP converts a drops string to XRP.
func DropsToXRP(drops string) (decimal.Decimal, error) {
	return core.DropsToXRP(drops)
}

// FormatAmount renders amount for display.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return core.FormatAmount(amount, currency)
}
