package queue

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Default values for queue configuration
const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultEnvironment     = "development"
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds backend-independent queue configuration
type Config struct {
	Environment     string         `env:"EVENTQ_ENVIRONMENT"      envDefault:"development"` // Deployment environment: "development", "workstation" or "production"
	PollInterval    *time.Duration `env:"EVENTQ_POLL_INTERVAL"    envDefault:"500ms"`       // Default consumer poll interval
	ShutdownTimeout *time.Duration `env:"EVENTQ_SHUTDOWN_TIMEOUT" envDefault:"5s"`          // Upper bound for consumer shutdown
	Debug           bool           `env:"EVENTQ_DEBUG"            envDefault:"false"`       // Log full payloads on publish/consume
}

// LoadConfig loads queue configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse queue config: %w", err)
	}
	return cfg, nil
}

// WithDefaults returns a copy of the config with default values filled in
// for any nil pointer fields. This method does not mutate the original config.
func (c Config) WithDefaults() Config {
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.PollInterval == nil {
		interval := DefaultPollInterval
		c.PollInterval = &interval
	}
	if c.ShutdownTimeout == nil {
		timeout := DefaultShutdownTimeout
		c.ShutdownTimeout = &timeout
	}
	return c
}
