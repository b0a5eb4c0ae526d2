package main

import (
	"fmt"
	"time"

	"github.com/JaimeStill/bestiary/internal/config"
	"github.com/JaimeStill/bestiary/internal/infrastructure"
	"github.com/JaimeStill/bestiary/internal/schema"
	"github.com/JaimeStill/bestiary/pkg/formatting"
)

type Server struct {
	infra   *infrastructure.Infrastructure
	modules *Modules
	http    *httpServer
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := schema.Up(cfg.Database.URL()); err != nil {
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
		infra.Logger.Info("schema migrated")
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra)
	modules.Mount(router)

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"env", cfg.Env(),
		"max_body_size", formatting.FormatBytes(cfg.API.MaxBodySizeBytes(), 0),
	)

	return &Server{
		infra:   infra,
		modules: modules,
		http:    newHTTPServer(&cfg.Server, instrument(infra, router), infra.Logger),
	}, nil
}

func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
