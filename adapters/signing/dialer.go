package signing

import (
	"context"
	"fmt"
	"net/http"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

// Dialer builds live XUMM clients for the capability probe.
type Dialer struct {
	BaseURL    string
	APISecret  string
	HTTPClient *http.Client
}

var _ ports.SigningDialer = Dialer{}

// Dial creates a client for creds and pings it.
func (d Dialer) Dial(ctx context.Context, creds ports.Credentials) (ports.SigningBackend, error) {
	if creds.APIKey == "" {
		return nil, core.ErrInvalidCredentials
	}

	client := NewXummClient(d.BaseURL, creds.APIKey, d.APISecret, d.HTTPClient)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrProbeFailed, err)
	}

	return client, nil
}
