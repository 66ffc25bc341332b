package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
)

const signInInstruction = "Sign in to connect your wallet"

// Options tune the coordinator.
type Options struct {
	Poll PollPolicy

	// SettleDelay is how long to wait after a signed transaction before
	// refreshing account data.
	SettleDelay time.Duration

	// ReturnURL is sent with every sign request that does not set one.
	ReturnURL string
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		Poll:        DefaultPollPolicy(),
		SettleDelay: 2 * time.Second,
	}
}

// ConnectResult describes the session a Connect call ended with.
type ConnectResult struct {
	Account   string `json:"account"`
	RequestID string `json:"requestId"`
	Simulated bool   `json:"simulated"`

	// AlreadyConnected is set when an existing session was returned.
	AlreadyConnected bool `json:"alreadyConnected"`
}

// SignResult describes an approved transaction.
type SignResult struct {
	RequestID  string `json:"requestId"`
	TxID       string `json:"txid"`
	Account    string `json:"account"`
	Dispatched string `json:"dispatched,omitempty"`
	Simulated  bool   `json:"simulated"`
}

// Coordinator drives identity and transaction sign requests through the
// external wallet and owns the session, the last transaction and the
// account snapshot.
type Coordinator struct {
	prober    *Prober
	sessions  *SessionStore
	poller    *Poller
	loader    *AccountLoader
	bus       *EventBus
	presenter ports.Presenter
	metrics   *Metrics
	logger    zerolog.Logger
	opts      Options
	now       func() time.Time

	initMu    sync.Mutex
	connectMu sync.Mutex

	mu          sync.RWMutex
	initialized bool
	caps        Capabilities
	lastTx      *core.TransactionRecord

	bgCtx     context.Context
	bgCancel  context.CancelFunc
	bgWG      sync.WaitGroup
	timers    map[uint64]*time.Timer
	nextTimer uint64
	closed    bool
}

// NewCoordinator creates a coordinator. A nil presenter shows nothing and
// a nil metrics records nothing.
func NewCoordinator(
	prober *Prober,
	sessions *SessionStore,
	bus *EventBus,
	presenter ports.Presenter,
	metrics *Metrics,
	logger zerolog.Logger,
	opts Options,
) (*Coordinator, error) {
	if err := opts.Poll.Validate(); err != nil {
		return nil, err
	}
	if opts.SettleDelay < 0 {
		return nil, fmt.Errorf("settle delay must not be negative, got %s", opts.SettleDelay)
	}

	bgCtx, bgCancel := context.WithCancel(context.Background())
	c := &Coordinator{
		prober:    prober,
		sessions:  sessions,
		poller:    NewPoller(opts.Poll, metrics, logger),
		bus:       bus,
		presenter: presenter,
		metrics:   metrics,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
		bgCtx:     bgCtx,
		bgCancel:  bgCancel,
		timers:    make(map[uint64]*time.Timer),
	}
	c.loader = NewAccountLoader(metrics, logger, c.accountUpdated)

	return c, nil
}

// Initialize probes the signing service once and restores a persisted
// session. It always reports ready; probing failures select simulation.
func (c *Coordinator) Initialize(ctx context.Context) bool {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.isInitialized() {
		return true
	}

	caps := c.prober.Probe(ctx)
	c.metrics.setSimulated(caps.Simulated)

	c.mu.Lock()
	c.caps = caps
	c.initialized = true
	c.mu.Unlock()

	c.logger.Info().Bool("simulated", caps.Simulated).Msg("wallet coordinator initialized")

	c.restoreSession(ctx, caps)
	return true
}

func (c *Coordinator) restoreSession(ctx context.Context, caps Capabilities) {
	if !c.sessions.HasActiveSession(ctx) {
		return
	}
	session, ok := c.sessions.Current()
	if !ok {
		return
	}

	// a session from the other signing mode stays in storage for the
	// next process that runs in its mode
	if session.Simulated != caps.Simulated {
		c.logger.Info().
			Str("account", session.Account).
			Bool("session_simulated", session.Simulated).
			Msg("ignoring session from the other signing mode")
		return
	}

	c.emit(core.EventSessionRestored, core.EventData{
		RequestID: session.RequestID,
		Account:   session.Account,
		Simulated: session.Simulated,
		Session:   &session,
	})
	c.scheduleRefresh(0)
}

// Connect establishes a session through an identity sign request. With a
// live session it returns that session without asking the wallet.
func (c *Coordinator) Connect(ctx context.Context) (ConnectResult, error) {
	c.Initialize(ctx)

	c.connectMu.Lock()
	defer c.connectMu.Unlock()

	if session, ok := c.activeSession(ctx); ok {
		return ConnectResult{
			Account:          session.Account,
			RequestID:        session.RequestID,
			Simulated:        session.Simulated,
			AlreadyConnected: true,
		}, nil
	}

	caps := c.capabilities()
	submit := false
	req := core.NewSignRequest(core.KindIdentity, core.SignInTx(), core.SignOptions{
		Submit:      &submit,
		ReturnURL:   c.opts.ReturnURL,
		Instruction: signInInstruction,
	}, c.now())

	res, err := c.run(ctx, caps, req, core.EventData{})
	if err == nil && !core.IsValidAddress(res.Account) {
		err = fmt.Errorf("%w: wallet returned account %q", core.ErrPollFailed, res.Account)
	}

	session := core.Session{
		Account:     res.Account,
		RequestID:   req.ID,
		ConnectedAt: c.now(),
		Simulated:   caps.Simulated,
	}
	if err == nil {
		err = c.sessions.Store(ctx, session)
	}
	if err != nil {
		c.emit(core.EventWalletError, core.EventData{
			RequestID: req.ID,
			Error:     err.Error(),
			State:     core.StateFromError(err),
			Simulated: caps.Simulated,
		})
		return ConnectResult{}, err
	}

	c.logger.Info().
		Str("request_id", req.ID).
		Str("account", session.Account).
		Bool("simulated", session.Simulated).
		Msg("wallet connected")

	c.emit(core.EventWalletConnected, core.EventData{
		RequestID: req.ID,
		Account:   session.Account,
		Simulated: session.Simulated,
		Session:   &session,
	})
	c.scheduleRefresh(0)

	return ConnectResult{
		Account:   session.Account,
		RequestID: req.ID,
		Simulated: session.Simulated,
	}, nil
}

// Sign asks the wallet to approve tx for the session account.
func (c *Coordinator) Sign(ctx context.Context, tx core.TxJSON, opts core.SignOptions) (SignResult, error) {
	session, err := c.requireSession(ctx)
	if err != nil {
		return SignResult{}, err
	}
	return c.sign(ctx, session, tx, opts)
}

func (c *Coordinator) sign(ctx context.Context, session core.Session, tx core.TxJSON, opts core.SignOptions) (SignResult, error) {
	if opts.ReturnURL == "" {
		opts.ReturnURL = c.opts.ReturnURL
	}

	caps := c.capabilities()
	req := core.NewSignRequest(core.KindTransaction, tx, opts, c.now())

	res, err := c.run(ctx, caps, req, core.EventData{Account: session.Account})
	if err != nil {
		c.emit(core.EventTxError, core.EventData{
			RequestID: req.ID,
			Account:   session.Account,
			Error:     err.Error(),
			State:     core.StateFromError(err),
			Simulated: caps.Simulated,
		})
		return SignResult{}, err
	}

	account := res.Account
	if account == "" {
		account = session.Account
	}
	record := core.TransactionRecord{
		TxID:       res.TxID,
		Account:    account,
		RequestID:  req.ID,
		Dispatched: res.Dispatched,
		SignedAt:   c.now(),
	}

	c.mu.Lock()
	c.lastTx = &record
	c.mu.Unlock()

	c.logger.Info().
		Str("request_id", req.ID).
		Str("account", account).
		Str("txid", res.TxID).
		Msg("transaction signed")

	c.emit(core.EventTxSigned, core.EventData{
		RequestID: req.ID,
		Account:   account,
		TxID:      res.TxID,
		Simulated: caps.Simulated,
	})
	c.scheduleRefresh(c.opts.SettleDelay)

	return SignResult{
		RequestID:  req.ID,
		TxID:       res.TxID,
		Account:    account,
		Dispatched: res.Dispatched,
		Simulated:  caps.Simulated,
	}, nil
}

// requireSession fails before any sign request is created.
func (c *Coordinator) requireSession(ctx context.Context) (core.Session, error) {
	if !c.isInitialized() {
		return core.Session{}, core.ErrNotInitialized
	}

	session, ok := c.activeSession(ctx)
	if !ok {
		c.emit(core.EventTxError, core.EventData{
			Error:     core.ErrNoSession.Error(),
			State:     core.StateErrored,
			Simulated: c.capabilities().Simulated,
		})
		return core.Session{}, core.ErrNoSession
	}
	return session, nil
}

// run drives req from Creating to a terminal state. start carries the
// fields of the awaiting-user-action event the caller wants to add.
func (c *Coordinator) run(ctx context.Context, caps Capabilities, req *core.SignRequest, start core.EventData) (core.PollResult, error) {
	log := c.logger.With().Str("kind", string(req.Kind)).Logger()

	created, err := caps.Signing.CreateRequest(ctx, req.Draft())
	if err != nil {
		return core.PollResult{}, c.finish(req, core.PollResult{}, fmt.Errorf("%w: %w", core.ErrRequestCreation, err))
	}
	req.ID = created.ID
	req.ResolutionURL = created.ResolutionURL
	req.QRCodeURL = created.QRCodeURL
	if err := req.Transition(core.StateAwaitingUserAction); err != nil {
		return core.PollResult{}, err
	}

	log = log.With().Str("request_id", req.ID).Logger()
	log.Debug().Str("resolution_url", req.ResolutionURL).Msg("sign request created")

	startKind := core.EventWalletConnecting
	if req.Kind == core.KindTransaction {
		startKind = core.EventTxSigning
	}
	start.RequestID = req.ID
	start.ResolutionURL = req.ResolutionURL
	start.QRCodeURL = req.QRCodeURL
	start.State = req.State
	start.Simulated = caps.Simulated
	c.emit(startKind, start)

	window := c.present(ctx, req.ResolutionURL, log)

	if err := req.Transition(core.StatePolling); err != nil {
		return core.PollResult{}, err
	}
	res, err := c.poller.Poll(ctx, caps.Signing, req.ID, req.Kind)

	if window != nil {
		if cerr := window.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("failed to close resolution window")
		}
	}

	if err == nil {
		switch res.State() {
		case core.StateDeclined:
			err = fmt.Errorf("%w by the user", core.ErrDeclined)
		case core.StateExpired:
			err = fmt.Errorf("%w on the signing service", core.ErrExpired)
		}
	}

	return res, c.finish(req, res, err)
}

func (c *Coordinator) finish(req *core.SignRequest, res core.PollResult, err error) error {
	state := core.StateFromError(err)
	if terr := req.Transition(state); terr != nil {
		return terr
	}
	req.Result = res
	req.Err = err

	c.metrics.signRequestFinished(req.Kind, state)

	ev := c.logger.Info()
	if err != nil {
		ev = c.logger.Warn().Err(err)
	}
	ev.Str("request_id", req.ID).
		Str("kind", string(req.Kind)).
		Str("state", state.String()).
		Msg("sign request finished")

	return err
}

func (c *Coordinator) present(ctx context.Context, target string, log zerolog.Logger) ports.Window {
	if c.presenter == nil || target == "" {
		return nil
	}
	window, err := c.presenter.Present(ctx, target)
	if err != nil {
		log.Warn().Err(err).Msg("failed to present resolution target")
		return nil
	}
	return window
}

// Disconnect forgets the session, the account snapshot and the last
// transaction. It is safe to call without a session.
func (c *Coordinator) Disconnect(ctx context.Context) {
	previous, _ := c.currentSession()

	c.mu.Lock()
	c.stopTimersLocked()
	c.lastTx = nil
	c.mu.Unlock()

	c.loader.Clear()
	c.sessions.Clear(ctx)

	c.logger.Info().Str("account", previous.Account).Msg("wallet disconnected")
	c.emit(core.EventWalletDisconnected, core.EventData{
		Account:   previous.Account,
		Simulated: c.capabilities().Simulated,
	})
}

// RefreshAccountData reloads the snapshot of the session account.
func (c *Coordinator) RefreshAccountData(ctx context.Context) (core.AccountSnapshot, error) {
	if !c.isInitialized() {
		return core.AccountSnapshot{}, core.ErrNotInitialized
	}
	session, ok := c.activeSession(ctx)
	if !ok {
		return core.AccountSnapshot{}, core.ErrNoSession
	}

	snap, applied := c.loader.Refresh(ctx, c.capabilities().Accounts, session.Account)
	if !applied && snap.Account != session.Account {
		// cleared while loading
		return core.AccountSnapshot{}, core.ErrNoSession
	}
	return snap, nil
}

// Subscribe registers a lifecycle listener.
func (c *Coordinator) Subscribe(l Listener) SubscriptionID {
	return c.bus.Subscribe(l)
}

// Unsubscribe removes a lifecycle listener.
func (c *Coordinator) Unsubscribe(id SubscriptionID) {
	c.bus.Unsubscribe(id)
}

// State returns a read-only view of the coordinator.
func (c *Coordinator) State() core.WalletState {
	c.mu.RLock()
	state := core.WalletState{
		Initialized: c.initialized,
		Simulated:   c.caps.Simulated,
	}
	if c.lastTx != nil {
		tx := *c.lastTx
		state.LastTransaction = &tx
	}
	c.mu.RUnlock()

	if session, ok := c.currentSession(); ok {
		state.Connected = true
		state.Session = &session
		if snap, ok := c.loader.Snapshot(); ok && snap.Account == session.Account {
			state.Account = &snap
		}
	}

	return state
}

// Simulated reports whether the simulated backend was selected.
func (c *Coordinator) Simulated() bool {
	return c.capabilities().Simulated
}

// Close stops scheduled refreshes and waits for running ones.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopTimersLocked()
	c.mu.Unlock()

	c.bgCancel()
	c.bgWG.Wait()
	return nil
}

func (c *Coordinator) scheduleRefresh(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.nextTimer++
	id := c.nextTimer
	c.bgWG.Add(1)
	c.timers[id] = time.AfterFunc(delay, func() {
		defer c.bgWG.Done()

		c.mu.Lock()
		_, pending := c.timers[id]
		delete(c.timers, id)
		c.mu.Unlock()
		if !pending {
			return
		}

		c.backgroundRefresh()
	})
}

// stopTimersLocked cancels refreshes that have not started.
func (c *Coordinator) stopTimersLocked() {
	for id, t := range c.timers {
		if t.Stop() {
			c.bgWG.Done()
		}
		delete(c.timers, id)
	}
}

func (c *Coordinator) backgroundRefresh() {
	session, ok := c.currentSession()
	if !ok {
		return
	}
	if _, applied := c.loader.Refresh(c.bgCtx, c.capabilities().Accounts, session.Account); !applied {
		c.logger.Debug().Str("account", session.Account).Msg("background account refresh applied nothing")
	}
}

func (c *Coordinator) accountUpdated(snap core.AccountSnapshot) {
	c.emit(core.EventAccountUpdated, core.EventData{
		Account:  snap.Account,
		Snapshot: &snap,
	})
}

func (c *Coordinator) activeSession(ctx context.Context) (core.Session, bool) {
	if !c.sessions.HasActiveSession(ctx) {
		return core.Session{}, false
	}
	return c.currentSession()
}

// currentSession is the cached session when it belongs to the signing mode
// of this process.
func (c *Coordinator) currentSession() (core.Session, bool) {
	session, ok := c.sessions.Current()
	if !ok || session.Simulated != c.capabilities().Simulated {
		return core.Session{}, false
	}
	return session, true
}

func (c *Coordinator) capabilities() Capabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caps
}

func (c *Coordinator) isInitialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

func (c *Coordinator) emit(kind core.EventKind, data core.EventData) {
	c.bus.Publish(core.Event{Kind: kind, Data: data, At: c.now()})
}

