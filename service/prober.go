package service

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
)

// DefaultProbeTimeout bounds credential resolution plus the liveness ping.
const DefaultProbeTimeout = 10 * time.Second

// Capabilities is the backend strategy chosen at initialization.
type Capabilities struct {
	Signing   ports.SigningBackend
	Accounts  ports.AccountSource
	Simulated bool
}

// Simulation holds the in-process fallbacks.
type Simulation struct {
	Signing  ports.SigningBackend
	Accounts ports.AccountSource
}

// Prober picks the live backends when the signing service is reachable
// and the simulation otherwise. The first result is cached.
type Prober struct {
	credentials ports.CredentialSource
	dialer      ports.SigningDialer
	accounts    ports.AccountSource
	simulation  Simulation
	timeout     time.Duration
	logger      zerolog.Logger

	mu   sync.Mutex
	caps *Capabilities
}

// NewProber creates a prober. A nil credential source or dialer always
// selects the simulation.
func NewProber(
	credentials ports.CredentialSource,
	dialer ports.SigningDialer,
	accounts ports.AccountSource,
	simulation Simulation,
	timeout time.Duration,
	logger zerolog.Logger,
) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Prober{
		credentials: credentials,
		dialer:      dialer,
		accounts:    accounts,
		simulation:  simulation,
		timeout:     timeout,
		logger:      logger,
	}
}

// Probe never fails: any probing error degrades to the simulation.
func (p *Prober) Probe(ctx context.Context) Capabilities {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.caps != nil {
		return *p.caps
	}

	caps := p.probe(ctx)
	p.caps = &caps
	return caps
}

// Probed reports whether Probe has completed.
func (p *Prober) Probed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.caps != nil
}

func (p *Prober) probe(ctx context.Context) Capabilities {
	simulated := Capabilities{
		Signing:   p.simulation.Signing,
		Accounts:  p.simulation.Accounts,
		Simulated: true,
	}

	if p.credentials == nil || p.dialer == nil {
		p.logger.Info().Msg("no signing service configured, using simulation mode")
		return simulated
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	creds, err := p.credentials.Credentials(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to resolve signing credentials, using simulation mode")
		return simulated
	}

	backend, err := p.dialer.Dial(ctx, creds)
	if err != nil {
		p.logger.Warn().Err(err).Msg("signing service unavailable, using simulation mode")
		return simulated
	}

	accounts := p.accounts
	if accounts == nil {
		accounts = p.simulation.Accounts
	}

	p.logger.Info().Msg("signing service reachable")
	return Capabilities{Signing: backend, Accounts: accounts}
}
