package pump

import (
	"errors"
	"fmt"
	"time"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/logger"
)

// Defaults for a New Era A-1000 on its factory settings.
const (
	DefaultBaudRate     = 19200
	DefaultAddress      = 0
	DefaultReadTimeout  = 1 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultRunTimeout   = 5 * time.Minute

	MaxAddress = 99
)

// Config holds all configuration for a pump link.
type Config struct {
	port string

	baudRate int
	address  int
	safeMode bool

	// diameter is the syringe inner diameter in millimeters, programmed at
	// connect. The pump derives volume accounting from it.
	diameter float64
	// maxRate is the pump's rate ceiling in mL/min for the mounted syringe.
	maxRate float64

	readTimeout  time.Duration
	pollInterval time.Duration
	runTimeout   time.Duration

	logger logger.Logger
}

// NewConfig creates a pump configuration for the given serial port and
// syringe diameter in millimeters.
//
// opts are functional options applied in order; see With* functions.
func NewConfig(port string, diameter float64, opts ...Option) (*Config, error) {
	if diameter <= 0 {
		return nil, fmt.Errorf("pump: syringe diameter %g must be positive", diameter)
	}

	cfg := &Config{
		port:         port,
		baudRate:     DefaultBaudRate,
		address:      DefaultAddress,
		safeMode:     true,
		diameter:     diameter,
		readTimeout:  DefaultReadTimeout,
		pollInterval: DefaultPollInterval,
		runTimeout:   DefaultRunTimeout,
		logger:       logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// Port returns the configured serial port name.
func (cfg *Config) Port() string { return cfg.port }

// BaudRate returns the configured baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// Address returns the pump's bus address.
func (cfg *Config) Address() int { return cfg.address }

// SafeMode returns whether CRC-framed safe mode is enabled.
func (cfg *Config) SafeMode() bool { return cfg.safeMode }

// Diameter returns the syringe inner diameter in millimeters.
func (cfg *Config) Diameter() float64 { return cfg.diameter }

// MaxRate returns the rate ceiling in mL/min, or 0 when unset.
func (cfg *Config) MaxRate() float64 { return cfg.maxRate }

// ReadTimeout returns the per-reply read timeout.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// PollInterval returns the status poll interval while pumping.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// RunTimeout returns the deadline for a pumping operation to finish.
func (cfg *Config) RunTimeout() time.Duration { return cfg.runTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate sets the serial baud rate.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("pump: baud rate %d must be positive", baud)
		}
		cfg.baudRate = baud
		return nil
	})
}

// WithAddress sets the pump's bus address. Must be in [0, 99].
func WithAddress(address int) Option {
	return optFunc(func(cfg *Config) error {
		if address < 0 || address > MaxAddress {
			return fmt.Errorf("pump: address %d out of range [0, %d]", address, MaxAddress)
		}
		cfg.address = address
		return nil
	})
}

// WithSafeMode enables or disables CRC-framed safe mode. Enabled by default.
func WithSafeMode(enabled bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.safeMode = enabled
		return nil
	})
}

// WithMaxRate sets the rate ceiling in mL/min for the mounted syringe.
func WithMaxRate(rate float64) Option {
	return optFunc(func(cfg *Config) error {
		if rate <= 0 {
			return fmt.Errorf("pump: max rate %g must be positive", rate)
		}
		cfg.maxRate = rate
		return nil
	})
}

// WithReadTimeout sets the per-reply read timeout.
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("pump: read timeout must be positive")
		}
		cfg.readTimeout = d
		return nil
	})
}

// WithPollInterval sets the status poll interval while pumping.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("pump: poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	})
}

// WithRunTimeout sets the deadline for a pumping operation to finish.
func WithRunTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("pump: run timeout must be positive")
		}
		cfg.runTimeout = d
		return nil
	})
}

// WithLogger sets the logger for the pump.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("pump: logger must not be nil")
		}
		cfg.logger = l
		return nil
	})
}
