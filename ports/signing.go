package ports

import (
	"context"

	"github.com/layer-3/walletlink/core"
)

// Credentials are what the backend hands out for the signing service.
type Credentials struct {
	APIKey string
}

// CredentialSource resolves signing service credentials.
type CredentialSource interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// SigningBackend registers sign requests and reports their status.
type SigningBackend interface {
	CreateRequest(ctx context.Context, draft core.RequestDraft) (core.CreatedRequest, error)
	RequestStatus(ctx context.Context, requestID string) (core.PollResult, error)

	// Simulated reports whether the backend is the in-process fake.
	Simulated() bool
}

// SigningDialer builds a live backend and verifies it is reachable.
type SigningDialer interface {
	Dial(ctx context.Context, creds Credentials) (SigningBackend, error)
}

// AccountSource provides account data for the Account Data Loader.
type AccountSource interface {
	Balance(ctx context.Context, account string) (core.Balance, error)
	AccountInfo(ctx context.Context, account string) (core.AccountInfo, error)
}
