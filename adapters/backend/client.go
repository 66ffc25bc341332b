// Package backend talks to the platform REST API: the credential endpoint
// used by the capability probe and the account endpoints used by the
// account data loader. The signing service is never reached from here.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const maxBodySize = 1 << 20

// Client is an HTTP client for the platform backend
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

var (
	_ ports.CredentialSource = (*Client)(nil)
	_ ports.AccountSource    = (*Client)(nil)
)

type envelope[T any] struct {
	Success *bool  `json:"success"`
	Data    *T     `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

type credentialsData struct {
	APIKey string `json:"apiKey"`
}

// Credentials fetches the signing service API key
func (c *Client) Credentials(ctx context.Context) (ports.Credentials, error) {
	data, err := getJSON[credentialsData](ctx, c, "/api/xumm/credentials")
	if err != nil {
		if errors.Is(err, errUnsuccessful) {
			return ports.Credentials{}, fmt.Errorf("%w: %v", core.ErrInvalidCredentials, err)
		}
		return ports.Credentials{}, err
	}
	if data.APIKey == "" {
		return ports.Credentials{}, fmt.Errorf("%w: empty apiKey", core.ErrInvalidCredentials)
	}
	return ports.Credentials{APIKey: data.APIKey}, nil
}

// Balance fetches the balance summary of account
func (c *Client) Balance(ctx context.Context, account string) (core.Balance, error) {
	return getJSON[core.Balance](ctx, c, "/api/xumm/balance/"+url.PathEscape(account))
}

// AccountInfo fetches the ledger info of account
func (c *Client) AccountInfo(ctx context.Context, account string) (core.AccountInfo, error) {
	return getJSON[core.AccountInfo](ctx, c, "/api/xumm/account/"+url.PathEscape(account))
}

var errUnsuccessful = errors.New("backend reported failure")

func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return zero, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return zero, fmt.Errorf("GET %s: failed to read body: %w", path, err)
	}

	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return zero, fmt.Errorf("GET %s: status %d: failed to decode body: %w", path, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || env.Success == nil || !*env.Success || env.Data == nil {
		reason := env.Message
		if reason == "" {
			reason = env.Error
		}
		return zero, fmt.Errorf("GET %s: status %d: %w: %s", path, resp.StatusCode, errUnsuccessful, reason)
	}

	return *env.Data, nil
}
