package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignRequestTerminalStatesAreFinal(t *testing.T) {
	req := NewSignRequest(KindTransaction, TxJSON{"TransactionType": "Payment"}, SignOptions{}, time.Now())
	assert.Equal(t, StateCreating, req.State)

	require.NoError(t, req.Transition(StateAwaitingUserAction))
	require.NoError(t, req.Transition(StatePolling))
	require.NoError(t, req.Transition(StateExpired))

	err := req.Transition(StateSigned)
	assert.ErrorIs(t, err, ErrRequestFinished)
	assert.Equal(t, StateExpired, req.State)
}

func TestPollResultState(t *testing.T) {
	tests := []struct {
		name     string
		result   PollResult
		terminal bool
		state    RequestState
	}{
		{"pending", PollResult{}, false, StatePolling},
		{"signed", PollResult{Resolved: true, Signed: true}, true, StateSigned},
		{"declined", PollResult{Resolved: true}, true, StateDeclined},
		{"cancelled", PollResult{Cancelled: true}, true, StateDeclined},
		{"expired", PollResult{Expired: true}, true, StateExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.result.Terminal())
			assert.Equal(t, tt.state, tt.result.State())
		})
	}
}

func TestStateFromError(t *testing.T) {
	assert.Equal(t, StateSigned, StateFromError(nil))
	assert.Equal(t, StateDeclined, StateFromError(ErrDeclined))
	assert.Equal(t, StateExpired, StateFromError(errors.Join(ErrExpired, errors.New("x"))))
	assert.Equal(t, StateErrored, StateFromError(ErrPollFailed))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{Account: "rABC", ConnectedAt: now.Add(-24 * time.Hour)}

	assert.True(t, s.Valid())
	assert.True(t, s.Expired(now, 24*time.Hour))
	assert.False(t, s.Expired(now, 25*time.Hour))
	assert.False(t, Session{}.Valid())
}
