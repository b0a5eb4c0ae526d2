package database_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/JaimeStill/bestiary/pkg/database"
	"github.com/JaimeStill/bestiary/pkg/lifecycle"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func unreachableConfig() database.Config {
	return database.Config{
		Host:            "127.0.0.1",
		Port:            1,
		Name:            "bestiary",
		User:            "bestiary",
		SSLMode:         "disable",
		MaxOpenConns:    42,
		MaxIdleConns:    7,
		ConnMaxLifetime: "10m",
		ConnTimeout:     "1s",
		PingAttempts:    1,
		PingDelay:       "10ms",
	}
}

func TestNewSetsPoolParams(t *testing.T) {
	cfg := unreachableConfig()

	sys, err := database.New(&cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	conn := sys.Connection()
	if conn == nil {
		t.Fatal("Connection() returned nil")
	}
	defer conn.Close()

	if got := conn.Stats().MaxOpenConnections; got != 42 {
		t.Errorf("MaxOpenConnections = %d, want 42", got)
	}
	if sys.Ready() {
		t.Error("Ready() = true before Start")
	}
}

func TestStartUnreachableStaysNotReady(t *testing.T) {
	cfg := unreachableConfig()

	sys, err := database.New(&cfg, discardLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	lc.WaitForStartup()

	if sys.Ready() {
		t.Error("Ready() = true for an unreachable database")
	}
	if lc.Ready() {
		t.Error("coordinator Ready() = true while database is not ready")
	}

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}
