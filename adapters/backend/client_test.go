package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func TestCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/xumm/credentials", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"data":{"apiKey":"key-123"}}`))
	})

	creds, err := c.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "key-123", creds.APIKey)
}

func TestCredentialsMalformed(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"missing success", http.StatusOK, `{"data":{"apiKey":"k"}}`},
		{"success false", http.StatusInternalServerError, `{"success":false,"message":"XUMM API credentials not configured"}`},
		{"missing apiKey", http.StatusOK, `{"success":true,"data":{}}`},
		{"missing data", http.StatusOK, `{"success":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Credentials(context.Background())
			assert.ErrorIs(t, err, core.ErrInvalidCredentials)
		})
	}
}

func TestCredentialsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewClient(srv.URL, time.Second).Credentials(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestAccountEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/xumm/balance/rABC":
			_, _ = w.Write([]byte(`{"success":true,"data":{"xrp":1000.5,"tokens":[{"currency":"PRX","issuer":"rIssuer","value":"12"}],"totalValue":1012.5}}`))
		case "/api/xumm/account/rABC":
			_, _ = w.Write([]byte(`{"success":true,"data":{"account":"rABC","balance":"1000500000","sequence":7,"ownerCount":2,"validated":true}}`))
		default:
			http.NotFound(w, r)
		}
	})

	balance, err := c.Balance(context.Background(), "rABC")
	require.NoError(t, err)
	assert.True(t, balance.XRP.Equal(decimal.RequireFromString("1000.5")))
	require.Len(t, balance.Tokens, 1)
	assert.Equal(t, "PRX", balance.Tokens[0].Currency)

	info, err := c.AccountInfo(context.Background(), "rABC")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), info.Sequence)
	assert.True(t, info.Validated)

	_, err = c.Balance(context.Background(), "rOther")
	assert.Error(t, err)
}

func TestSimulatedAccounts(t *testing.T) {
	balance, err := SimulatedAccounts{}.Balance(context.Background(), "rSim")
	require.NoError(t, err)
	assert.True(t, balance.XRP.Equal(decimal.NewFromInt(1000)))

	info, err := SimulatedAccounts{}.AccountInfo(context.Background(), "rSim")
	require.NoError(t, err)
	assert.Equal(t, "rSim", info.Account)
	assert.Equal(t, SimulatedBalanceDrops, info.Balance)
}
