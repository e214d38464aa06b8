package slotter

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the configuration for the Engine.
//
// All duration fields accept standard Go duration strings like "500ms", "2s"
// when parsed from YAML.
type Config struct {
	// LockTimeout bounds how long an operation waits for a slot's critical
	// section before failing with ErrContentionTimeout.
	//
	// Default: 2 seconds.
	LockTimeout time.Duration `yaml:"lockTimeout"`

	// EventBufferSize is the capacity of the notification dispatch buffer.
	// When the buffer is full, events are dropped (counted and logged)
	// rather than blocking slot operations.
	//
	// Default: 256.
	EventBufferSize int `yaml:"eventBufferSize"`

	// WarnQueueDepth is the pending-queue depth above which the engine logs
	// a warning for a slot (0 disables the warning).
	//
	// Default: 25.
	WarnQueueDepth int `yaml:"warnQueueDepth"`
}

// DefaultConfig returns a configuration with default values.
//
// Returns:
//   - Config: Configuration suitable for production use
func DefaultConfig() Config {
	return Config{
		LockTimeout:     2 * time.Second,
		EventBufferSize: 256,
		WarnQueueDepth:  25,
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Only zero-valued fields are modified; explicit settings are preserved.
//
// Parameters:
//   - cfg: Configuration to fill in (modified in place)
func SetDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = def.LockTimeout
	}
	if cfg.EventBufferSize == 0 {
		cfg.EventBufferSize = def.EventBufferSize
	}
	if cfg.WarnQueueDepth == 0 {
		cfg.WarnQueueDepth = def.WarnQueueDepth
	}
}

// Validate checks the configuration for invalid values.
//
// Returns:
//   - error: ErrInvalidConfig (wrapped with detail) on the first invalid
//     field, nil otherwise
func (cfg *Config) Validate() error {
	if cfg.LockTimeout <= 0 {
		return fmt.Errorf("%w: lockTimeout must be positive, got %v", ErrInvalidConfig, cfg.LockTimeout)
	}
	if cfg.EventBufferSize < 1 {
		return fmt.Errorf("%w: eventBufferSize must be at least 1, got %d", ErrInvalidConfig, cfg.EventBufferSize)
	}
	if cfg.WarnQueueDepth < 0 {
		return fmt.Errorf("%w: warnQueueDepth must not be negative, got %d", ErrInvalidConfig, cfg.WarnQueueDepth)
	}

	return nil
}

// ValidateWithWarnings logs advisory warnings for suspicious but valid
// configurations.
//
// Parameters:
//   - logger: Logger receiving the warnings
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	if cfg.LockTimeout > 30*time.Second {
		logger.Warn("lockTimeout is unusually long; contention will surface slowly",
			"lock_timeout", cfg.LockTimeout,
		)
	}
	if cfg.EventBufferSize < 16 {
		logger.Warn("eventBufferSize is small; bursts of transitions may drop notifications",
			"event_buffer_size", cfg.EventBufferSize,
		)
	}
}

// TestConfig returns a configuration tuned for fast tests.
//
// Returns:
//   - Config: Configuration with short timeouts and small buffers
func TestConfig() Config {
	return Config{
		LockTimeout:     250 * time.Millisecond,
		EventBufferSize: 64,
		WarnQueueDepth:  8,
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so duration fields accept Go
// duration strings ("500ms", "2s") rather than bare nanosecond integers.
func (cfg *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		LockTimeout     string `yaml:"lockTimeout"`
		EventBufferSize int    `yaml:"eventBufferSize"`
		WarnQueueDepth  int    `yaml:"warnQueueDepth"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return fmt.Errorf("lockTimeout: %w", err)
		}
		cfg.LockTimeout = d
	}
	cfg.EventBufferSize = raw.EventBufferSize
	cfg.WarnQueueDepth = raw.WarnQueueDepth

	return nil
}

// ParseConfig parses a YAML document into a validated Config.
//
// Missing fields are filled with defaults before validation.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Parsed and validated configuration
//   - error: Parse or validation failure
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
