package observable

import (
	"fmt"

	"github.com/jbattermann/observable/types"
)

// Default configuration values.
const (
	// DefaultResetThreshold is the affected-item count at which bulk changes
	// coalesce into a single Reset notification.
	DefaultResetThreshold = 100

	// DefaultChannelBufferSize is the per-subscriber channel buffer size.
	DefaultChannelBufferSize = 128
)

// Config is the configuration for a Dictionary.
type Config struct {
	// ResetThreshold controls reset coalescing: once a batch affects at
	// least this many items, one Reset is emitted instead of individual
	// change records.
	//
	// 0 means "always coalesce": every change, even a single add, is
	// reported as a Reset. Use a very large value (e.g. math.MaxInt) to
	// never coalesce. The threshold can be changed at any time via
	// SetResetThreshold.
	ResetThreshold int `yaml:"resetThreshold"`

	// ChannelBufferSize is the buffer size of every subscriber channel.
	// A subscriber whose buffer is full misses notifications until it
	// drains; drops are logged and counted.
	//
	// 0 selects DefaultChannelBufferSize.
	ChannelBufferSize int `yaml:"channelBufferSize"`
}

// DefaultConfig returns the configuration used when New receives a nil
// config.
//
// Returns:
//   - Config: ResetThreshold 100, ChannelBufferSize 128
func DefaultConfig() Config {
	return Config{
		ResetThreshold:    DefaultResetThreshold,
		ChannelBufferSize: DefaultChannelBufferSize,
	}
}

// Validate checks configuration validity.
//
// Returns:
//   - error: ErrInvalidConfig (wrapped with detail) if any field is out of
//     range, nil otherwise
func (c *Config) Validate() error {
	if c.ResetThreshold < 0 {
		return fmt.Errorf("%w: %s", types.ErrInvalidConfig, types.ErrInvalidThreshold)
	}
	if c.ChannelBufferSize < 0 {
		return fmt.Errorf("%w: channel buffer size must not be negative", types.ErrInvalidConfig)
	}

	return nil
}

// withDefaults returns a copy of the config with unset optional fields
// filled in. The reset threshold is deliberately not defaulted here: zero is
// a meaningful value ("always coalesce").
func (c Config) withDefaults() Config {
	if c.ChannelBufferSize == 0 {
		c.ChannelBufferSize = DefaultChannelBufferSize
	}

	return c
}
