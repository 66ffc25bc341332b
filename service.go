package walletlink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/layer-3/walletlink/adapters/backend"
	"github.com/layer-3/walletlink/adapters/events"
	"github.com/layer-3/walletlink/adapters/presenter"
	"github.com/layer-3/walletlink/adapters/signing"
	"github.com/layer-3/walletlink/adapters/store"
	"github.com/layer-3/walletlink/adapters/tokenizer"
	"github.com/layer-3/walletlink/config"
	"github.com/layer-3/walletlink/ports"
	"github.com/layer-3/walletlink/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Runtime is a wired coordinator plus the resources it owns.
type Runtime struct {
	Coordinator *service.Coordinator
	Metrics     *service.Metrics

	closers []func() error
}

// Client returns the coordinator as the public façade.
func (r *Runtime) Client() Client { return r.Coordinator }

// Close stops the coordinator and releases stores and publishers.
func (r *Runtime) Close() error {
	errs := []error{r.Coordinator.Close()}
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

type buildOptions struct {
	registerer prometheus.Registerer
	presenter  ports.Presenter
	publisher  message.Publisher
	store      ports.Store
}

// Option customizes Build.
type Option func(*buildOptions)

// WithRegisterer registers the coordinator metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *buildOptions) { o.registerer = reg }
}

// WithPresenter sets how resolution targets are shown. The default shows
// nothing and leaves it to event subscribers.
func WithPresenter(p ports.Presenter) Option {
	return func(o *buildOptions) { o.presenter = p }
}

// WithPublisher forwards every lifecycle event to the publisher.
func WithPublisher(p message.Publisher) Option {
	return func(o *buildOptions) { o.publisher = p }
}

// WithStore overrides the durable store selected by the config.
func WithStore(s ports.Store) Option {
	return func(o *buildOptions) { o.store = s }
}

// Build wires a coordinator from cfg. The returned runtime is not
// initialized yet.
func Build(ctx context.Context, cfg config.Config, logger zerolog.Logger, opts ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions{presenter: presenter.Headless{}}
	for _, opt := range opts {
		opt(&o)
	}

	rt := &Runtime{}
	fail := func(err error) (*Runtime, error) {
		for i := len(rt.closers) - 1; i >= 0; i-- {
			_ = rt.closers[i]()
		}
		return nil, err
	}

	durable := o.store
	if durable == nil {
		s, closer, err := openStore(ctx, cfg.Session)
		if err != nil {
			return fail(err)
		}
		if closer != nil {
			rt.closers = append(rt.closers, closer)
		}
		durable = s
	}

	var codec ports.SessionCodec = tokenizer.JSONCodec{}
	if cfg.Session.SigningKeyFile != "" {
		key, err := tokenizer.LoadSigningKey(cfg.Session.SigningKeyFile)
		if err != nil {
			return fail(err)
		}
		codec = tokenizer.NewJWTCodec(key, cfg.Session.TTL)
	}

	sessions := service.NewSessionStore(durable, codec, cfg.Session.Key, cfg.Session.TTL,
		logger.With().Str("component", "session_store").Logger())

	var (
		credentials ports.CredentialSource
		dialer      ports.SigningDialer
		accounts    ports.AccountSource
	)
	if cfg.Backend.BaseURL != "" {
		client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
		credentials = client
		accounts = client
		dialer = signing.Dialer{
			BaseURL:    cfg.Signing.BaseURL,
			APISecret:  cfg.Signing.APISecret,
			HTTPClient: &http.Client{Timeout: cfg.Backend.Timeout},
		}
	}

	simulation := service.Simulation{
		Signing:  signing.NewSimulatedBackend(cfg.Simulation.Account, cfg.Simulation.Delay),
		Accounts: backend.SimulatedAccounts{},
	}
	prober := service.NewProber(credentials, dialer, accounts, simulation, cfg.Signing.ProbeTimeout,
		logger.With().Str("component", "prober").Logger())

	bus := service.NewEventBus(logger.With().Str("component", "event_bus").Logger())
	if o.publisher != nil {
		pub := events.NewWatermillPublisher(o.publisher, cfg.Events.Topic)
		bus.Subscribe(events.Forwarder(pub, logger))
		rt.closers = append(rt.closers, o.publisher.Close)
	}

	rt.Metrics = service.NewMetrics(o.registerer)

	coordinator, err := service.NewCoordinator(prober, sessions, bus, o.presenter, rt.Metrics,
		logger.With().Str("component", "coordinator").Logger(),
		service.Options{
			Poll: service.PollPolicy{
				Interval:    cfg.Poll.Interval,
				MaxAttempts: cfg.Poll.MaxAttempts,
			},
			SettleDelay: cfg.Account.SettleDelay,
			ReturnURL:   cfg.Signing.ReturnURL,
		})
	if err != nil {
		return fail(err)
	}
	rt.Coordinator = coordinator

	return rt, nil
}

func openStore(ctx context.Context, cfg config.SessionConfig) (ports.Store, func() error, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil, nil
	case config.StoreRedis:
		client, err := store.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(client), client.Close, nil
	}

	dir := cfg.FileDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to locate config directory: %w", err)
		}
		dir = filepath.Join(base, "walletlink")
	}
	s, err := store.NewFileStore(dir)
	if err != nil {
		return nil, nil, err
	}
	return s, nil, nil
}
