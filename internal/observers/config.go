package observers

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds observer channel settings.
type Config struct {
	Buffer         int      `toml:"buffer"`
	WriteTimeout   string   `toml:"write_timeout"`
	PingInterval   string   `toml:"ping_interval"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Buffer         string
	WriteTimeout   string
	PingInterval   string
	AllowedOrigins string
}

// WriteTimeoutDuration returns WriteTimeout as a time.Duration.
func (c *Config) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// PingIntervalDuration returns PingInterval as a time.Duration.
func (c *Config) PingIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.PingInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Buffer != 0 {
		c.Buffer = overlay.Buffer
	}
	if overlay.WriteTimeout != "" {
		c.WriteTimeout = overlay.WriteTimeout
	}
	if overlay.PingInterval != "" {
		c.PingInterval = overlay.PingInterval
	}
	if overlay.AllowedOrigins != nil {
		c.AllowedOrigins = overlay.AllowedOrigins
	}
}

func (c *Config) loadDefaults() {
	if c.Buffer <= 0 {
		c.Buffer = 8
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "10s"
	}
	if c.PingInterval == "" {
		c.PingInterval = "30s"
	}
}

func (c *Config) loadEnv(env *Env) error {
	if env.Buffer != "" {
		if v := os.Getenv(env.Buffer); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env.Buffer, err)
			}
			c.Buffer = n
		}
	}
	if env.WriteTimeout != "" {
		if v := os.Getenv(env.WriteTimeout); v != "" {
			c.WriteTimeout = v
		}
	}
	if env.PingInterval != "" {
		if v := os.Getenv(env.PingInterval); v != "" {
			c.PingInterval = v
		}
	}
	if env.AllowedOrigins != "" {
		if v := os.Getenv(env.AllowedOrigins); v != "" {
			origins := strings.Split(v, ",")
			c.AllowedOrigins = make([]string, 0, len(origins))
			for _, origin := range origins {
				if trimmed := strings.TrimSpace(origin); trimmed != "" {
					c.AllowedOrigins = append(c.AllowedOrigins, trimmed)
				}
			}
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Buffer < 1 {
		return fmt.Errorf("buffer must be positive")
	}
	if d, err := time.ParseDuration(c.WriteTimeout); err != nil || d <= 0 {
		return fmt.Errorf("write_timeout must be a positive duration: %q", c.WriteTimeout)
	}
	if d, err := time.ParseDuration(c.PingInterval); err != nil || d <= 0 {
		return fmt.Errorf("ping_interval must be a positive duration: %q", c.PingInterval)
	}
	return nil
}
