package signing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newXummServer(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestXummClientCreateRequest(t *testing.T) {
	var got map[string]any
	url := newXummServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payload", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Secret"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"uuid":"abc-123","next":{"always":"https://xumm.app/sign/abc-123"},"refs":{"qr_png":"https://xumm.app/sign/abc-123_q.png"},"pushed":false}`))
	})

	client := NewXummClient(url, "key", "secret", nil)
	created, err := client.CreateRequest(context.Background(), core.RequestDraft{
		Kind:    core.KindIdentity,
		TxJSON:  core.SignInTx(),
		Options: core.SignOptions{ReturnURL: "https://app.example/wallet-callback"},
	})
	require.NoError(t, err)

	assert.Equal(t, "abc-123", created.ID)
	assert.Equal(t, "https://xumm.app/sign/abc-123", created.ResolutionURL)
	assert.Equal(t, "https://xumm.app/sign/abc-123_q.png", created.QRCodeURL)

	options := got["options"].(map[string]any)
	assert.Equal(t, false, options["submit"], "identity requests are never submitted")
	assert.Equal(t, "https://app.example/wallet-callback", options["return_url"].(map[string]any)["web"])
	assert.Equal(t, "SignIn", got["txjson"].(map[string]any)["TransactionType"])
}

func TestXummClientCreateRequestFailure(t *testing.T) {
	url := newXummServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":812}}`))
	})

	_, err := NewXummClient(url, "key", "", nil).CreateRequest(context.Background(), core.RequestDraft{Kind: core.KindTransaction})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestXummClientRequestStatus(t *testing.T) {
	url := newXummServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payload/abc-123", r.URL.Path)
		_, _ = w.Write([]byte(`{"meta":{"uuid":"abc-123","resolved":true,"signed":true},"response":{"account":"rABC","txid":"DEADBEEF","dispatched_result":"tesSUCCESS"}}`))
	})

	result, err := NewXummClient(url, "key", "", nil).RequestStatus(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.True(t, result.Terminal())
	assert.Equal(t, core.StateSigned, result.State())
	assert.Equal(t, "rABC", result.Account)
	assert.Equal(t, "DEADBEEF", result.TxID)
	assert.Equal(t, "tesSUCCESS", result.Dispatched)
}

func TestDialer(t *testing.T) {
	pong := true
	url := newXummServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		if pong {
			_, _ = w.Write([]byte(`{"pong":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"pong":false}`))
	})

	d := Dialer{BaseURL: url}
	backend, err := d.Dial(context.Background(), ports.Credentials{APIKey: "key"})
	require.NoError(t, err)
	assert.False(t, backend.Simulated())

	pong = false
	_, err = d.Dial(context.Background(), ports.Credentials{APIKey: "key"})
	assert.ErrorIs(t, err, core.ErrProbeFailed)

	_, err = d.Dial(context.Background(), ports.Credentials{})
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}

func TestSimulatedBackend(t *testing.T) {
	ctx := context.Background()
	sim := NewSimulatedBackend("", 5*time.Millisecond)
	assert.True(t, sim.Simulated())

	payment := core.TxJSON{"TransactionType": "Payment", "Amount": "1"}
	created, err := sim.CreateRequest(ctx, core.RequestDraft{Kind: core.KindTransaction, TxJSON: payment})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "sim-"))
	assert.Empty(t, created.ResolutionURL)

	start := time.Now()
	result, err := sim.RequestStatus(ctx, created.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)

	assert.Equal(t, core.StateSigned, result.State())
	assert.Equal(t, DefaultSimulatedAccount, result.Account)
	assert.Equal(t, SyntheticTxID(created.ID, payment), result.TxID)
	assert.Len(t, result.TxID, 64)

	_, err = sim.RequestStatus(ctx, created.ID)
	assert.Error(t, err, "a resolved request is forgotten")
}

func TestNewSimulatedBackendDefaults(t *testing.T) {
	assert.Equal(t, DefaultSimulatedDelay, NewSimulatedBackend("", -1).delay)
	assert.Zero(t, NewSimulatedBackend("", 0).delay)
	assert.Equal(t, DefaultSimulatedAccount, NewSimulatedBackend("", 0).Account())
}

func TestSimulatedBackendIdentityHasNoTxID(t *testing.T) {
	sim := NewSimulatedBackend("rCustom", 0)
	created, err := sim.CreateRequest(context.Background(), core.RequestDraft{Kind: core.KindIdentity, TxJSON: core.SignInTx()})
	require.NoError(t, err)

	result, err := sim.RequestStatus(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "rCustom", result.Account)
	assert.Empty(t, result.TxID)
}

func TestSimulatedBackendHonorsContext(t *testing.T) {
	sim := NewSimulatedBackend("", time.Hour)
	created, err := sim.CreateRequest(context.Background(), core.RequestDraft{Kind: core.KindIdentity})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = sim.RequestStatus(ctx, created.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSyntheticTxIDIsDeterministic(t *testing.T) {
	tx := core.TxJSON{"TransactionType": "Payment", "Amount": "10"}
	assert.Equal(t, SyntheticTxID("sim-1", tx), SyntheticTxID("sim-1", tx))
	assert.NotEqual(t, SyntheticTxID("sim-1", tx), SyntheticTxID("sim-2", tx))
}
