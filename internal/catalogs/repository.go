package catalogs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/bestiary/pkg/cache"
	"github.com/JaimeStill/bestiary/pkg/query"
	"github.com/JaimeStill/bestiary/pkg/repository"
)

const (
	resolveAttempts = 5
	resolveDelay    = 10 * time.Millisecond
	resolveTimeout  = 10 * time.Second
)

type resolution struct {
	entry   Entry
	created bool
}

type repo struct {
	db     *sql.DB
	cache  cache.System
	logger *slog.Logger
	flight singleflight.Group
}

// New creates a catalog repository implementing the System interface.
// A nil cache disables caching.
func New(db *sql.DB, c cache.System, logger *slog.Logger) System {
	if c == nil {
		c = cache.Noop()
	}
	return &repo{
		db:     db,
		cache:  c,
		logger: logger.With("system", "catalogs"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context, kind Kind) ([]Entry, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	q, args := query.NewBuilder(projections[kind], defaultSort).Build()

	entries, err := repository.QueryMany(ctx, r.db, q, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.Plural(), err)
	}
	return entries, nil
}

func (r *repo) Resolve(ctx context.Context, kind Kind, name string) (*Entry, error) {
	if err := validate(kind, name); err != nil {
		return nil, err
	}

	key := cacheKey(kind, name)
	if e, ok := r.lookup(ctx, key); ok {
		return &e, nil
	}

	// The flight outlives any single caller so one disconnect cannot fail
	// every waiter on the same name.
	v, err, _ := r.flight.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()

		res, err := r.resolve(fctx, r.db, kind, name)
		if err != nil {
			return nil, err
		}
		if res.created {
			r.logger.Info("catalog entry created", "kind", kind, "id", res.entry.ID, "name", res.entry.Name)
		}
		r.Remember(fctx, kind, res.entry)
		return res.entry, nil
	})
	if err != nil {
		return nil, err
	}

	e := v.(Entry)
	return &e, nil
}

func (r *repo) ResolveTx(ctx context.Context, q repository.Querier, kind Kind, name string) (*Entry, error) {
	if err := validate(kind, name); err != nil {
		return nil, err
	}

	res, err := r.resolve(ctx, q, kind, name)
	if err != nil {
		return nil, err
	}
	return &res.entry, nil
}

func (r *repo) Remember(ctx context.Context, kind Kind, entries ...Entry) {
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			continue
		}
		r.cache.Set(ctx, cacheKey(kind, e.Name), data)
	}
}

func (r *repo) lookup(ctx context.Context, key string) (Entry, bool) {
	data, ok := r.cache.Get(ctx, key)
	if !ok {
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil || e.ID == uuid.Nil {
		return Entry{}, false
	}
	return e, true
}

// resolve retries resolveOnce while a concurrent insert of the same name
// leaves the entry momentarily unreadable.
func (r *repo) resolve(ctx context.Context, q repository.Querier, kind Kind, name string) (resolution, error) {
	res, err := retry.DoWithData(
		func() (resolution, error) {
			return resolveOnce(ctx, q, kind, name)
		},
		retry.Context(ctx),
		retry.Attempts(resolveAttempts),
		retry.Delay(resolveDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrConflict)
		}),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("catalog resolve retry", "kind", kind, "name", name, "attempt", n+1)
		}),
	)

	if errors.Is(err, ErrConflict) {
		return resolution{}, fmt.Errorf("resolve %s %q: unresolved after %d attempts", kind, name, resolveAttempts)
	}
	if err != nil {
		return resolution{}, fmt.Errorf("resolve %s %q: %w", kind, name, err)
	}
	return res, nil
}

// resolveOnce reads the entry, inserts it when absent, and re-reads when the
// insert lost a race. None of its statements can fail on a duplicate name, so
// an enclosing transaction stays usable.
func resolveOnce(ctx context.Context, q repository.Querier, kind Kind, name string) (resolution, error) {
	find, args := findByNameQuery(kind, name)

	e, err := repository.QueryOne(ctx, q, find, args, scanEntry)
	if err == nil {
		return resolution{entry: e}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return resolution{}, err
	}

	e, err = repository.QueryOne(ctx, q, insertQuery(kind), []any{uuid.New(), name}, scanEntry)
	if err == nil {
		return resolution{entry: e, created: true}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return resolution{}, repository.MapError(err, ErrConflict, ErrConflict)
	}

	e, err = repository.QueryOne(ctx, q, find, args, scanEntry)
	if err != nil {
		return resolution{}, repository.MapError(err, ErrConflict, ErrConflict)
	}
	return resolution{entry: e}, nil
}
