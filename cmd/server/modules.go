package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaimeStill/bestiary/internal/api"
	"github.com/JaimeStill/bestiary/internal/config"
	"github.com/JaimeStill/bestiary/internal/infrastructure"
	"github.com/JaimeStill/bestiary/pkg/middleware"
	"github.com/JaimeStill/bestiary/pkg/module"
)

type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.HandleNative("GET /metrics", promhttp.HandlerFor(infra.Metrics, promhttp.HandlerOpts{}).ServeHTTP)

	return router
}

// instrument counts every request that reaches handler in the metrics registry.
func instrument(infra *infrastructure.Infrastructure, handler http.Handler) http.Handler {
	counter := middleware.NewRequestCounter(infra.Metrics)
	return middleware.CountRequests(counter)(handler)
}
