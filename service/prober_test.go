package service

import (
	"context"
	"errors"
	"testing"

	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type stubCredentials struct {
	creds ports.Credentials
	err   error
	calls int
}

func (s *stubCredentials) Credentials(context.Context) (ports.Credentials, error) {
	s.calls++
	return s.creds, s.err
}

type stubDialer struct {
	backend ports.SigningBackend
	err     error
}

func (d stubDialer) Dial(ctx context.Context, creds ports.Credentials) (ports.SigningBackend, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.backend, nil
}

func testSimulation() Simulation {
	return Simulation{
		Signing:  &scriptedBackend{simulated: true},
		Accounts: &stubAccounts{},
	}
}

func TestProberSelectsLiveBackend(t *testing.T) {
	live := &scriptedBackend{}
	accounts := &stubAccounts{}
	creds := &stubCredentials{creds: ports.Credentials{APIKey: "key"}}

	p := NewProber(creds, stubDialer{backend: live}, accounts, testSimulation(), 0, zerolog.Nop())
	caps := p.Probe(context.Background())

	assert.False(t, caps.Simulated)
	assert.Same(t, live, caps.Signing)
	assert.Same(t, accounts, caps.Accounts)
	assert.True(t, p.Probed())
}

func TestProberFallsBackToSimulation(t *testing.T) {
	cases := map[string]*Prober{
		"credentials unavailable": NewProber(
			&stubCredentials{err: core.ErrInvalidCredentials},
			stubDialer{backend: &scriptedBackend{}}, &stubAccounts{}, testSimulation(), 0, zerolog.Nop()),
		"ping failed": NewProber(
			&stubCredentials{creds: ports.Credentials{APIKey: "key"}},
			stubDialer{err: core.ErrProbeFailed}, &stubAccounts{}, testSimulation(), 0, zerolog.Nop()),
		"nothing configured": NewProber(nil, nil, nil, testSimulation(), 0, zerolog.Nop()),
	}

	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			caps := p.Probe(context.Background())
			assert.True(t, caps.Simulated)
			assert.True(t, caps.Signing.Simulated())
			assert.NotNil(t, caps.Accounts)
		})
	}
}

func TestProberCachesFirstResult(t *testing.T) {
	creds := &stubCredentials{err: errors.New("backend down")}
	p := NewProber(creds, stubDialer{}, nil, testSimulation(), 0, zerolog.Nop())

	first := p.Probe(context.Background())
	creds.err = nil
	creds.creds = ports.Credentials{APIKey: "key"}
	second := p.Probe(context.Background())

	assert.True(t, first.Simulated)
	assert.True(t, second.Simulated)
	assert.Equal(t, 1, creds.calls)
}
