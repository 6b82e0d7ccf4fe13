// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, the language model, the response
// store, and the observer hub) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/config"
	"github.com/JaimeStill/tally/internal/gemini"
	"github.com/JaimeStill/tally/internal/observers"
	"github.com/JaimeStill/tally/pkg/lifecycle"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, model access, the shared response store, and observer fan-out.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Model     gemini.Model
	Store     classification.Store
	Survey    *classification.Survey
	Hub       *observers.Hub
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithLogger(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// NewWithLogger is New with a caller-supplied logger.
func NewWithLogger(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	model, err := gemini.New(lc.Context(), &cfg.Model, logger)
	if err != nil {
		return nil, fmt.Errorf("model init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Model:     model,
		Store:     classification.NewMemoryStore(),
		Survey:    classification.NewSurvey(cfg.Survey.Question),
		Hub:       observers.NewHub(cfg.Observers.Buffer, logger),
	}, nil
}

// Start registers infrastructure systems with the lifecycle coordinator.
// The observer hub closes every subscriber once shutdown begins.
func (i *Infrastructure) Start() error {
	i.Lifecycle.AddCheck("observers", i.Hub)

	i.Lifecycle.OnStartup(func() {
		i.Logger.Info(
			"survey ready",
			"question", i.Survey.Question(),
			"responses", i.Store.Len(),
		)
	})

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		i.Hub.Close()
	})

	return nil
}
