package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
)

type statusStep struct {
	res core.PollResult
	err error
}

// scriptedBackend answers status polls from a script; the last step
// repeats forever.
type scriptedBackend struct {
	mu        sync.Mutex
	simulated bool
	createErr error
	steps     []statusStep
	drafts    []core.RequestDraft
	polls     int
	nextID    int
}

var _ ports.SigningBackend = (*scriptedBackend)(nil)

func (b *scriptedBackend) CreateRequest(ctx context.Context, draft core.RequestDraft) (core.CreatedRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.createErr != nil {
		return core.CreatedRequest{}, b.createErr
	}
	b.nextID++
	b.drafts = append(b.drafts, draft)
	id := fmt.Sprintf("req-%d", b.nextID)
	return core.CreatedRequest{
		ID:            id,
		ResolutionURL: "https://xumm.app/sign/" + id,
		QRCodeURL:     "https://xumm.app/sign/" + id + "_q.png",
	}, nil
}

func (b *scriptedBackend) RequestStatus(ctx context.Context, requestID string) (core.PollResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.polls++
	if len(b.steps) == 0 {
		return core.PollResult{}, nil
	}
	step := b.steps[0]
	if len(b.steps) > 1 {
		b.steps = b.steps[1:]
	}
	return step.res, step.err
}

func (b *scriptedBackend) Simulated() bool { return b.simulated }

func (b *scriptedBackend) pollCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.polls
}

func (b *scriptedBackend) createdDrafts() []core.RequestDraft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.RequestDraft(nil), b.drafts...)
}

func signed(account, txid string) statusStep {
	return statusStep{res: core.PollResult{Resolved: true, Signed: true, Account: account, TxID: txid}}
}

func pending() statusStep {
	return statusStep{}
}

func failing(err error) statusStep {
	return statusStep{err: err}
}

// stubAccounts returns fixed account data and counts calls.
type stubAccounts struct {
	mu         sync.Mutex
	balance    core.Balance
	info       core.AccountInfo
	balanceErr error
	infoErr    error
	calls      int
	gate       chan struct{}
}

func (s *stubAccounts) Balance(ctx context.Context, account string) (core.Balance, error) {
	s.wait(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.balance, s.balanceErr
}

func (s *stubAccounts) AccountInfo(ctx context.Context, account string) (core.AccountInfo, error) {
	s.wait(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	info := s.info
	info.Account = account
	return info, s.infoErr
}

func (s *stubAccounts) wait(ctx context.Context) {
	if s.gate == nil {
		return
	}
	select {
	case <-s.gate:
	case <-ctx.Done():
	}
}

// recorder collects events published on a bus.
type recorder struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recorder) listen(e core.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) kinds() []core.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]core.EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *recorder) last(kind core.EventKind) (core.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return core.Event{}, false
}

func (r *recorder) count(kind core.EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}
