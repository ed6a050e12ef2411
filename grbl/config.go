package grbl

import (
	"errors"
	"fmt"
	"time"

	"github.com/BU-KABlab/PANDA-BEAR-sub004/logger"
)

// Defaults for a GRBL 1.1 controller on a benchtop mill.
const (
	DefaultBaudRate       = 115200
	DefaultReadTimeout    = 500 * time.Millisecond
	DefaultPollInterval   = 250 * time.Millisecond
	DefaultCommandTimeout = 90 * time.Second
	DefaultHomingTimeout  = 120 * time.Second
	DefaultFeedRate       = 2000.0
)

// Config holds all configuration for a controller link.
type Config struct {
	port string

	baudRate       int
	readTimeout    time.Duration
	pollInterval   time.Duration
	commandTimeout time.Duration
	homingTimeout  time.Duration

	// feedRate is the F word programmed after connect, and re-programmed
	// when the controller reports a missing feed rate.
	feedRate float64

	logger logger.Logger
}

// NewConfig creates a controller configuration for the given serial port.
//
// opts are functional options applied in order; see With* functions.
func NewConfig(port string, opts ...Option) (*Config, error) {
	cfg := &Config{
		port:           port,
		baudRate:       DefaultBaudRate,
		readTimeout:    DefaultReadTimeout,
		pollInterval:   DefaultPollInterval,
		commandTimeout: DefaultCommandTimeout,
		homingTimeout:  DefaultHomingTimeout,
		feedRate:       DefaultFeedRate,
		logger:         logger.GetLogger(),
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

// ReadTimeout returns the per-line read timeout.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// PollInterval returns the status poll interval during motion.
func (cfg *Config) PollInterval() time.Duration { return cfg.pollInterval }

// CommandTimeout returns the deadline for a motion command to reach Idle.
func (cfg *Config) CommandTimeout() time.Duration { return cfg.commandTimeout }

// HomingTimeout returns the deadline for the homing cycle.
func (cfg *Config) HomingTimeout() time.Duration { return cfg.homingTimeout }

// FeedRate returns the default feed rate in mm/min.
func (cfg *Config) FeedRate() float64 { return cfg.feedRate }

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
			return fmt.Errorf("grbl: baud rate %d must be positive", baud)
		}
		cfg.baudRate = baud
		return nil
	})
}

// WithReadTimeout sets the per-line read timeout.
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("grbl: read timeout must be positive")
		}
		cfg.readTimeout = d
		return nil
	})
}

// WithPollInterval sets the status poll interval during motion.
func WithPollInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("grbl: poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	})
}

// WithCommandTimeout sets the deadline for a motion command to reach Idle.
func WithCommandTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("grbl: command timeout must be positive")
		}
		cfg.commandTimeout = d
		return nil
	})
}

// WithHomingTimeout sets the deadline for the homing cycle. Homing sweeps
// every axis to its limit switch, so it needs more headroom than a move.
func WithHomingTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("grbl: homing timeout must be positive")
		}
		cfg.homingTimeout = d
		return nil
	})
}

// WithFeedRate sets the default feed rate in mm/min.
func WithFeedRate(rate float64) Option {
	return optFunc(func(cfg *Config) error {
		if rate <= 0 {
			return fmt.Errorf("grbl: feed rate %g must be positive", rate)
		}
		cfg.feedRate = rate
		return nil
	})
}

// WithLogger sets the logger for the controller.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("grbl: logger must not be nil")
		}
		cfg.logger = l
		return nil
	})
}
