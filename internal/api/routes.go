package api

import (
	"net/http"

	"github.com/JaimeStill/tally/internal/config"
	"github.com/JaimeStill/tally/pkg/openapi"
	"github.com/JaimeStill/tally/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	spec []byte,
) {
	routes.Register(mux, routeGroups(domain, cfg, spec)...)
}

func routeGroups(domain *Domain, cfg *config.Config, spec []byte) []routes.Group {
	groups := domain.Classification.Handler(cfg.API.MaxBodySizeBytes()).Routes()

	return append(groups, routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/observe", Handler: domain.Observers.Observe},
			{Method: "GET", Pattern: "/openapi.json", Handler: openapi.ServeSpec(spec)},
		},
	})
}
