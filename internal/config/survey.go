package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvSurveyQuestion         = "TALLY_SURVEY_QUESTION"
	EnvSurveySerializeMinting = "TALLY_SURVEY_SERIALIZE_MINTING"
	EnvSurveyBatchConcurrency = "TALLY_SURVEY_BATCH_CONCURRENCY"
	EnvSurveyMaxBatchSize     = "TALLY_SURVEY_MAX_BATCH_SIZE"
)

// SurveyConfig holds survey and classification pipeline settings.
// An empty Question selects the built-in default.
type SurveyConfig struct {
	Question         string `toml:"question"`
	SerializeMinting bool   `toml:"serialize_minting"`
	BatchConcurrency int    `toml:"batch_concurrency"`
	MaxBatchSize     int    `toml:"max_batch_size"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *SurveyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields from overlay. SerializeMinting always applies;
// other fields only apply when non-zero.
func (c *SurveyConfig) Merge(overlay *SurveyConfig) {
	c.SerializeMinting = overlay.SerializeMinting

	if overlay.Question != "" {
		c.Question = overlay.Question
	}
	if overlay.BatchConcurrency != 0 {
		c.BatchConcurrency = overlay.BatchConcurrency
	}
	if overlay.MaxBatchSize != 0 {
		c.MaxBatchSize = overlay.MaxBatchSize
	}
}

func (c *SurveyConfig) loadDefaults() {
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 4
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 50
	}
}

func (c *SurveyConfig) loadEnv() {
	if v := os.Getenv(EnvSurveyQuestion); v != "" {
		c.Question = v
	}
	if v := os.Getenv(EnvSurveySerializeMinting); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SerializeMinting = b
		}
	}
	if v := os.Getenv(EnvSurveyBatchConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchConcurrency = n
		}
	}
	if v := os.Getenv(EnvSurveyMaxBatchSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBatchSize = n
		}
	}
}

func (c *SurveyConfig) validate() error {
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be positive")
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be positive")
	}
	return nil
}
