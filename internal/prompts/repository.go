package prompts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/internal/history"
	"github.com/JaimeStill/bestiary/pkg/query"
	"github.com/JaimeStill/bestiary/pkg/repository"
)

const (
	createAttempts = 3
	createDelay    = 20 * time.Millisecond
)

type repo struct {
	db       *sql.DB
	catalogs catalogs.System
	logger   *slog.Logger

	// afterInsert runs between the prompt insert and the link inserts. Tests
	// use it to fail a creation midway.
	afterInsert func(ctx context.Context) error
}

// New creates a prompt repository implementing the System interface.
func New(db *sql.DB, cat catalogs.System, logger *slog.Logger) System {
	return &repo{
		db:       db,
		catalogs: cat,
		logger:   logger.With("system", "prompts"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) List(ctx context.Context) ([]Prompt, error) {
	q, args := query.NewBuilder(projection, defaultSort...).Build()

	prompts, err := repository.QueryMany(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, fmt.Errorf("query prompts: %w", err)
	}

	if err := r.attach(ctx, prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	p, err := repository.QueryOne(ctx, r.db, q, args, scanPrompt)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}

	prompts := []Prompt{p}
	if err := r.attach(ctx, prompts); err != nil {
		return nil, err
	}
	return &prompts[0], nil
}

func (r *repo) History(ctx context.Context, id uuid.UUID) ([]history.Entry, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, existsQuery, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup prompt: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	return history.ForPrompt(ctx, r.db, id)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Prompt, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := retry.DoWithData(
		func() (Prompt, error) {
			return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Prompt, error) {
				return r.create(ctx, tx, cmd)
			})
		},
		retry.Context(ctx),
		retry.Attempts(createAttempts),
		retry.Delay(createDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(repository.IsTransient),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("prompt create retry", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}

	r.catalogs.Remember(ctx, catalogs.KindStatus, p.Status)
	r.catalogs.Remember(ctx, catalogs.KindStyle, p.Styles...)
	r.catalogs.Remember(ctx, catalogs.KindAnimal, p.Animals...)

	r.logger.Info(
		"prompt created",
		"id", p.ID,
		"status", p.Status.Name,
		"styles", len(p.Styles),
		"animals", len(p.Animals),
	)
	return &p, nil
}

func (r *repo) create(ctx context.Context, tx *sql.Tx, cmd CreateCommand) (Prompt, error) {
	status, err := r.catalogs.ResolveTx(ctx, tx, catalogs.KindStatus, cmd.Status)
	if err != nil {
		return Prompt{}, err
	}

	styles, err := r.resolveAll(ctx, tx, catalogs.KindStyle, cmd.Styles)
	if err != nil {
		return Prompt{}, err
	}

	animals, err := r.resolveAll(ctx, tx, catalogs.KindAnimal, cmd.Animals)
	if err != nil {
		return Prompt{}, err
	}

	p := Prompt{
		ID:      uuid.New(),
		Text:    cmd.Text,
		Status:  *status,
		Styles:  styles,
		Animals: animals,
	}

	if err := tx.QueryRowContext(ctx, insertQuery, p.ID, p.Text, p.Status.ID).Scan(&p.CreatedAt); err != nil {
		return Prompt{}, fmt.Errorf("insert prompt: %w", err)
	}

	if r.afterInsert != nil {
		if err := r.afterInsert(ctx); err != nil {
			return Prompt{}, err
		}
	}

	if err := insertLinks(ctx, tx, styleLinks, p.ID, p.Styles); err != nil {
		return Prompt{}, err
	}
	if err := insertLinks(ctx, tx, animalLinks, p.ID, p.Animals); err != nil {
		return Prompt{}, err
	}

	entry, err := history.Append(ctx, tx, p.ID, p.Status)
	if err != nil {
		return Prompt{}, err
	}
	p.History = []history.Entry{entry}

	return p, nil
}

// resolveAll resolves the distinct names in sorted order, so concurrent
// creations lock new catalog rows in the same order, then returns the entries
// in first-seen order without repeats.
func (r *repo) resolveAll(ctx context.Context, q repository.Querier, kind catalogs.Kind, names []string) ([]catalogs.Entry, error) {
	distinct := slices.Clone(names)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	resolved := make(map[string]catalogs.Entry, len(distinct))
	for _, name := range distinct {
		e, err := r.catalogs.ResolveTx(ctx, q, kind, name)
		if err != nil {
			return nil, err
		}
		resolved[name] = *e
	}

	entries := make([]catalogs.Entry, 0, len(distinct))
	seen := make(map[uuid.UUID]bool, len(distinct))

	for _, name := range names {
		e := resolved[name]
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		entries = append(entries, e)
	}
	return entries, nil
}

func insertLinks(ctx context.Context, e repository.Executor, l link, promptID uuid.UUID, entries []catalogs.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	q, args := l.insertQuery(promptID, entries)
	if _, err := e.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("link %s: %w", l.kind.Plural(), err)
	}
	return nil
}

// attach loads styles, animals, and history for prompts concurrently and
// fills them in place.
func (r *repo) attach(ctx context.Context, prompts []Prompt) error {
	if len(prompts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID
	}

	var (
		styles  map[uuid.UUID][]catalogs.Entry
		animals map[uuid.UUID][]catalogs.Entry
		ledger  map[uuid.UUID][]history.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		styles, err = r.linked(gctx, styleLinks, ids)
		return err
	})
	g.Go(func() (err error) {
		animals, err = r.linked(gctx, animalLinks, ids)
		return err
	})
	g.Go(func() (err error) {
		ledger, err = history.ForPrompts(gctx, r.db, ids)
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	for i := range prompts {
		id := prompts[i].ID
		prompts[i].Styles = orEmpty(styles[id])
		prompts[i].Animals = orEmpty(animals[id])
		prompts[i].History = orEmpty(ledger[id])
	}
	return nil
}

func (r *repo) linked(ctx context.Context, l link, ids []uuid.UUID) (map[uuid.UUID][]catalogs.Entry, error) {
	grouped := make(map[uuid.UUID][]catalogs.Entry, len(ids))

	for batch := range slices.Chunk(ids, repository.MaxBatch) {
		q, args := query.
			NewBuilder(l.proj, query.SortField{Field: "Name"}).
			WhereIn("PromptID", repository.Args(batch)).
			Build()

		rows, err := repository.QueryMany(ctx, r.db, q, args, scanLinkedEntry)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", l.kind.Plural(), err)
		}

		for _, row := range rows {
			grouped[row.promptID] = append(grouped[row.promptID], row.entry)
		}
	}
	return grouped, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
