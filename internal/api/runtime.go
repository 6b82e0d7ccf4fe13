package api

import (
	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/config"
	"github.com/JaimeStill/tally/internal/infrastructure"
	"github.com/JaimeStill/tally/internal/observers"
	"github.com/JaimeStill/tally/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Pipeline   classification.Options
	Observers  observers.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Model:     infra.Model,
			Store:     infra.Store,
			Survey:    infra.Survey,
			Hub:       infra.Hub,
		},
		Pagination: cfg.API.Pagination,
		Pipeline: classification.Options{
			SerializeMinting: cfg.Survey.SerializeMinting,
			BatchConcurrency: cfg.Survey.BatchConcurrency,
			MaxBatchSize:     cfg.Survey.MaxBatchSize,
		},
		Observers: cfg.Observers,
	}
}
