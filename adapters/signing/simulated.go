package signing

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

const (
	// DefaultSimulatedAccount is the fixed pseudo-account of simulation mode.
	DefaultSimulatedAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

	// DefaultSimulatedDelay is how long the fake wallet takes to approve.
	DefaultSimulatedDelay = 1500 * time.Millisecond

	simulatedIDPrefix = "sim-"
)

// SimulatedBackend approves every request after a fixed delay with
// deterministic values. It never opens a resolution target.
type SimulatedBackend struct {
	account string
	delay   time.Duration

	mu      sync.Mutex
	pending map[string]core.RequestDraft
}

// NewSimulatedBackend creates the fake. An empty account selects
// DefaultSimulatedAccount and a negative delay DefaultSimulatedDelay; a zero
// delay resolves requests on the first poll.
func NewSimulatedBackend(account string, delay time.Duration) *SimulatedBackend {
	if account == "" {
		account = DefaultSimulatedAccount
	}
	if delay < 0 {
		delay = DefaultSimulatedDelay
	}
	return &SimulatedBackend{
		account: account,
		delay:   delay,
		pending: make(map[string]core.RequestDraft),
	}
}

var _ ports.SigningBackend = (*SimulatedBackend)(nil)

func (s *SimulatedBackend) CreateRequest(ctx context.Context, draft core.RequestDraft) (core.CreatedRequest, error) {
	if err := ctx.Err(); err != nil {
		return core.CreatedRequest{}, err
	}

	id := simulatedIDPrefix + uuid.NewString()

	s.mu.Lock()
	s.pending[id] = draft
	s.mu.Unlock()

	return core.CreatedRequest{ID: id}, nil
}

func (s *SimulatedBackend) RequestStatus(ctx context.Context, requestID string) (core.PollResult, error) {
	s.mu.Lock()
	draft, ok := s.pending[requestID]
	s.mu.Unlock()
	if !ok {
		return core.PollResult{}, fmt.Errorf("unknown simulated request %q", requestID)
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return core.PollResult{}, ctx.Err()
	case <-timer.C:
	}

	s.mu.Lock()
	delete(s.pending, requestID)
	s.mu.Unlock()

	result := core.PollResult{Resolved: true, Signed: true, Account: s.account}
	if draft.Kind == core.KindTransaction {
		result.TxID = SyntheticTxID(requestID, draft.TxJSON)
		if draft.Options.SubmitOr(true) {
			result.Dispatched = "tesSUCCESS"
		}
	}

	return result, nil
}

func (s *SimulatedBackend) Simulated() bool { return true }

// Account returns the pseudo-account every request resolves to.
func (s *SimulatedBackend) Account() string { return s.account }

// SyntheticTxID derives a ledger-shaped transaction id (SHA-512Half) from
// the request id and payload.
func SyntheticTxID(requestID string, tx core.TxJSON) string {
	payload, _ := json.Marshal(tx)

	h := sha512.New()
	h.Write([]byte(requestID))
	h.Write(payload)
	sum := h.Sum(nil)

	return strings.ToUpper(hex.EncodeToString(sum[:32]))
}
