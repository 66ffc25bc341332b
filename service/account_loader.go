package service

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AccountLoader keeps the best-effort snapshot of the session account.
type AccountLoader struct {
	metrics  *Metrics
	logger   zerolog.Logger
	now      func() time.Time
	onUpdate func(core.AccountSnapshot)

	mu         sync.Mutex
	snapshot   *core.AccountSnapshot
	generation uint64
}

// NewAccountLoader creates a loader; onUpdate runs after every refresh
// that changed the snapshot.
func NewAccountLoader(metrics *Metrics, logger zerolog.Logger, onUpdate func(core.AccountSnapshot)) *AccountLoader {
	return &AccountLoader{
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		onUpdate: onUpdate,
	}
}

// Refresh fetches balance and account info concurrently and merges
// whichever succeed. It reports false when nothing was applied, either
// because both calls failed or because Clear ran meanwhile.
func (l *AccountLoader) Refresh(ctx context.Context, src ports.AccountSource, account string) (core.AccountSnapshot, bool) {
	l.mu.Lock()
	gen := l.generation
	l.mu.Unlock()

	var balance core.Balance
	var info core.AccountInfo
	var balanceErr, infoErr error

	var g errgroup.Group
	g.Go(func() error {
		balance, balanceErr = src.Balance(ctx, account)
		return nil
	})
	g.Go(func() error {
		info, infoErr = src.AccountInfo(ctx, account)
		return nil
	})
	_ = g.Wait()

	log := l.logger.With().Str("account", account).Logger()
	if balanceErr != nil {
		l.metrics.accountFetchFailed("balance")
		log.Warn().Err(balanceErr).Msg("failed to fetch balance")
	}
	if infoErr != nil {
		l.metrics.accountFetchFailed("account_info")
		log.Warn().Err(infoErr).Msg("failed to fetch account info")
	}

	l.mu.Lock()
	if gen != l.generation {
		l.mu.Unlock()
		log.Debug().Msg("dropping account data fetched before clear")
		return core.AccountSnapshot{}, false
	}

	snap := l.snapshot
	if snap == nil || snap.Account != account {
		snap = &core.AccountSnapshot{Account: account}
	}
	if balanceErr != nil && infoErr != nil {
		out := snap.Clone()
		l.mu.Unlock()
		return out, false
	}

	at := l.now()
	if balanceErr == nil {
		snap.ApplyBalance(balance, at)
	}
	if infoErr == nil {
		snap.ApplyInfo(info, at)
	}
	l.snapshot = snap
	out := snap.Clone()
	l.mu.Unlock()

	if l.onUpdate != nil {
		l.onUpdate(out.Clone())
	}
	return out, true
}

// Snapshot returns a copy of the current snapshot.
func (l *AccountLoader) Snapshot() (core.AccountSnapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.snapshot == nil {
		return core.AccountSnapshot{}, false
	}
	return l.snapshot.Clone(), true
}

// Clear drops the snapshot and invalidates refreshes in flight.
func (l *AccountLoader) Clear() {
	l.mu.Lock()
	l.generation++
	l.snapshot = nil
	l.mu.Unlock()
}
