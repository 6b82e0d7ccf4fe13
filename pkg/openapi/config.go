package openapi

import "os"

// Config holds OpenAPI metadata for spec generation. Server, when set, is
// advertised instead of the module base path; use it behind a proxy that
// rewrites the public URL.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Server      string `toml:"server"`
}

// ConfigEnv maps config fields to environment variable names for override injection.
type ConfigEnv struct {
	Title       string
	Description string
	Server      string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.Server != "" {
		c.Server = overlay.Server
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Tally API"
	}
	if c.Description == "" {
		c.Description = "Survey answer classification against a dynamic, model-maintained category taxonomy."
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	if env.Title != "" {
		if v := os.Getenv(env.Title); v != "" {
			c.Title = v
		}
	}
	if env.Description != "" {
		if v := os.Getenv(env.Description); v != "" {
			c.Description = v
		}
	}
	if env.Server != "" {
		if v := os.Getenv(env.Server); v != "" {
			c.Server = v
		}
	}
}
