package api

import (
	"github.com/JaimeStill/tally/internal/classification"
	"github.com/JaimeStill/tally/internal/observers"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classification classification.System
	Observers      *observers.Handler
}

// NewDomain creates all domain systems from the API runtime.
// Classification publishes its state updates to the observer hub.
func NewDomain(runtime *Runtime) *Domain {
	classificationSystem := classification.New(
		runtime.Model,
		runtime.Store,
		runtime.Survey,
		runtime.Hub,
		runtime.Logger,
		runtime.Pagination,
		runtime.Pipeline,
	)

	observersHandler := observers.NewHandler(
		runtime.Hub,
		classificationSystem.State,
		&runtime.Observers,
		runtime.Logger,
	)

	return &Domain{
		Classification: classificationSystem,
		Observers:      observersHandler,
	}
}
