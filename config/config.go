// Package config loads walletlink settings from defaults, an optional
// file and WALLETLINK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/walletlink/logging"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WALLETLINK"

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	Backend    BackendConfig    `mapstructure:"backend"`
	Signing    SigningConfig    `mapstructure:"signing"`
	Poll       PollConfig       `mapstructure:"poll"`
	Session    SessionConfig    `mapstructure:"session"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Account    AccountConfig    `mapstructure:"account"`
	Events     EventsConfig     `mapstructure:"events"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        logging.Config   `mapstructure:"log"`
}

// BackendConfig points at the platform backend serving credentials and
// account data. An empty BaseURL forces simulation mode.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SigningConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APISecret    string        `mapstructure:"api_secret"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	ReturnURL    string        `mapstructure:"return_url"`
}

type PollConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type SessionConfig struct {
	TTL            time.Duration `mapstructure:"ttl"`
	Key            string        `mapstructure:"key"`
	Store          string        `mapstructure:"store"`
	FileDir        string        `mapstructure:"file_dir"`
	RedisURL       string        `mapstructure:"redis_url"`
	SigningKeyFile string        `mapstructure:"signing_key_file"`
}

type SimulationConfig struct {
	Delay   time.Duration `mapstructure:"delay"`
	Account string        `mapstructure:"account"`
}

type AccountConfig struct {
	SettleDelay time.Duration `mapstructure:"settle_delay"`
}

// EventsConfig enables forwarding lifecycle events to a redis stream.
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	RedisURL string `mapstructure:"redis_url"`
	Topic    string `mapstructure:"topic"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

var defaults = map[string]any{
	"backend.base_url":         "http://localhost:3000",
	"backend.timeout":          10 * time.Second,
	"signing.base_url":         "https://xumm.app/api/v1/platform",
	"signing.api_secret":       "",
	"signing.probe_timeout":    10 * time.Second,
	"signing.return_url":       "",
	"poll.interval":            2 * time.Second,
	"poll.max_attempts":        60,
	"session.ttl":              24 * time.Hour,
	"session.key":              "walletlink:session",
	"session.store":            StoreFile,
	"session.file_dir":         "",
	"session.redis_url":        "redis://localhost:6379/0",
	"session.signing_key_file": "",
	"simulation.delay":         1500 * time.Millisecond,
	"simulation.account":       "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh",
	"account.settle_delay":     2 * time.Second,
	"events.enabled":           false,
	"events.redis_url":         "redis://localhost:6379/0",
	"events.topic":             "walletlink.lifecycle",
	"http.addr":                ":9000",
	"log.level":                "info",
	"log.pretty":               false,
}

// New returns a viper instance carrying the defaults and env bindings.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, err := Unmarshal(New())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path (if not empty) over the defaults and env overrides.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg, err := Unmarshal(v)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Unmarshal decodes v into a Config without validating it.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Validate rejects settings the coordinator cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Poll.Interval <= 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval))
	}
	if c.Poll.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("poll.max_attempts must be positive, got %d", c.Poll.MaxAttempts))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL))
	}
	if c.Simulation.Delay < 0 {
		errs = append(errs, fmt.Errorf("simulation.delay must not be negative, got %s", c.Simulation.Delay))
	}
	if c.Account.SettleDelay < 0 {
		errs = append(errs, fmt.Errorf("account.settle_delay must not be negative, got %s", c.Account.SettleDelay))
	}

	switch c.Session.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("session.redis_url is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.store must be one of memory, file, redis, got %q", c.Session.Store))
	}

	if c.Events.Enabled && c.Events.RedisURL == "" {
		errs = append(errs, errors.New("events.redis_url is required when events are enabled"))
	}

	return errors.Join(errs...)
}
