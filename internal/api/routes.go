package api

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/internal/config"
	"github.com/JaimeStill/bestiary/internal/prompts"
	"github.com/JaimeStill/bestiary/pkg/openapi"
	"github.com/JaimeStill/bestiary/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, cfg *config.Config) error {
	groups := append(
		domain.Catalogs.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
	)

	routes.Register(mux, groups...)

	spec, err := buildSpec(cfg, groups)
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(spec))

	return nil
}

func buildSpec(cfg *config.Config, groups []routes.Group) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(catalogs.Schemas())
	spec.Components.AddSchemas(prompts.Schemas())

	routes.Document(spec, groups...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal openapi spec: %w", err)
	}
	return data, nil
}
