package infrastructure_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/bestiary/internal/config"
	"github.com/JaimeStill/bestiary/internal/infrastructure"
	"github.com/JaimeStill/bestiary/pkg/cache"
	"github.com/JaimeStill/bestiary/pkg/database"
)

func validConfig() *config.Config {
	return &config.Config{
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "bestiary",
			User:            "bestiary",
			Password:        "bestiary",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
			PingAttempts:    1,
			PingDelay:       "10ms",
		},
		Cache: cache.Config{
			Addr:   "localhost:6379",
			Prefix: "bestiary:",
			TTL:    "1h",
		},
		Version: "0.1.0",
	}
}

func TestNew(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if infra.Lifecycle == nil {
		t.Error("Lifecycle is nil")
	}
	if infra.Logger == nil {
		t.Error("Logger is nil")
	}
	if infra.Database == nil {
		t.Error("Database is nil")
	}
	if infra.Cache == nil {
		t.Error("Cache is nil")
	}
	if infra.Metrics == nil {
		t.Error("Metrics is nil")
	}
}

func TestNewDisabledCacheIsReady(t *testing.T) {
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer infra.Database.Connection().Close()

	if !infra.Cache.Ready() {
		t.Error("disabled cache should report ready")
	}
}

func TestStartUnreachableDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Port = 1
	cfg.Database.ConnTimeout = "1s"

	infra, err := infrastructure.New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := infra.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	infra.Lifecycle.WaitForStartup()

	if infra.Lifecycle.Ready() {
		t.Error("lifecycle should not be ready with an unreachable database")
	}

	if err := infra.Lifecycle.Shutdown(5 * time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
