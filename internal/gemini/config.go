package gemini

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Providers supported by New.
const (
	ProviderREST  = "rest"
	ProviderGenAI = "genai"
)

// Config holds language model endpoint parameters.
type Config struct {
	Provider     string `toml:"provider"`
	BaseURL      string `toml:"base_url"`
	APIVersion   string `toml:"api_version"`
	Model        string `toml:"model"`
	APIKey       string `toml:"api_key"`
	Timeout      string `toml:"timeout"`
	MaxRetries   int    `toml:"max_retries"`
	RetryBackoff string `toml:"retry_backoff"`
}

// Env maps config fields to environment variable names for override injection.
// APIKeyFallback is consulted only when APIKey is unset in both file and env.
type Env struct {
	Provider       string
	BaseURL        string
	APIVersion     string
	Model          string
	APIKey         string
	APIKeyFallback string
	Timeout        string
	MaxRetries     string
	RetryBackoff   string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// MaxCallDuration is the longest a single Generate can take: every attempt
// running to its timeout plus the backoff between attempts.
func (c *Config) MaxCallDuration() time.Duration {
	attempts := time.Duration(c.MaxRetries + 1)
	return c.TimeoutDuration()*attempts + c.RetryBackoffDuration()*(attempts-1)
}

// RetryBackoffDuration returns RetryBackoff as a time.Duration.
func (c *Config) RetryBackoffDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBackoff)
	return d
}

// Endpoint returns the generateContent URL for the configured model.
func (c *Config) Endpoint() string {
	return fmt.Sprintf("%s/%s/models/%s:generateContent", c.BaseURL, c.APIVersion, c.Model)
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

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.RetryBackoff != "" {
		c.RetryBackoff = overlay.RetryBackoff
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderREST
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.APIVersion == "" {
		c.APIVersion = "v1beta"
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout == "" {
		c.Timeout = "60s"
	}
	if c.RetryBackoff == "" {
		c.RetryBackoff = "1s"
	}
}

func (c *Config) loadEnv(env *Env) error {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.BaseURL, &c.BaseURL)
	set(env.APIVersion, &c.APIVersion)
	set(env.Model, &c.Model)
	set(env.APIKey, &c.APIKey)
	set(env.Timeout, &c.Timeout)
	set(env.RetryBackoff, &c.RetryBackoff)

	if c.APIKey == "" {
		set(env.APIKeyFallback, &c.APIKey)
	}

	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env.MaxRetries, err)
			}
			c.MaxRetries = n
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Provider != ProviderREST && c.Provider != ProviderGenAI {
		return fmt.Errorf("provider must be %s or %s: %q", ProviderREST, ProviderGenAI, c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if _, err := time.ParseDuration(c.RetryBackoff); err != nil {
		return fmt.Errorf("invalid retry_backoff: %w", err)
	}
	return nil
}
