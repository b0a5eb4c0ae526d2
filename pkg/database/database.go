// Package database provides PostgreSQL connection management with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/bestiary/pkg/lifecycle"
)

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Ready reports whether the startup ping succeeded.
	Ready() bool
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn         *sql.DB
	logger       *slog.Logger
	connTimeout  time.Duration
	pingAttempts uint
	pingDelay    time.Duration
	ready        atomic.Bool
}

// New creates a database system with the given configuration.
// It calls sql.Open to validate the DSN and configure pool parameters,
// but does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:         db,
		logger:       logger.With("system", "database"),
		connTimeout:  cfg.ConnTimeoutDuration(),
		pingAttempts: uint(cfg.PingAttempts),
		pingDelay:    cfg.PingDelayDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection")
	lc.Track(d)

	lc.OnStartup(func() {
		if err := d.ping(lc.Context()); err != nil {
			d.logger.Error("database ping failed", "error", err, "attempts", d.pingAttempts)
			return
		}

		d.ready.Store(true)
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}

func (d *database) ping(ctx context.Context) error {
	return retry.Do(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, d.connTimeout)
			defer cancel()
			return d.conn.PingContext(pingCtx)
		},
		retry.Context(ctx),
		retry.Attempts(d.pingAttempts),
		retry.Delay(d.pingDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			d.logger.Warn("database ping retry", "attempt", n+1, "error", err)
		}),
	)
}
