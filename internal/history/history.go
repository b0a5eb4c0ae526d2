// Package history records the append-only ledger of status assignments for prompts.
// Entries are never updated or removed, and each prompt's entries carry strictly
// increasing changed_at timestamps.
package history

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/pkg/query"
	"github.com/JaimeStill/bestiary/pkg/repository"
)

// Entry is one status assignment of a prompt.
type Entry struct {
	PromptID  uuid.UUID      `json:"prompt_id"`
	Status    catalogs.Entry `json:"status"`
	ChangedAt time.Time      `json:"changed_at"`
}

// changed_at never falls behind the latest entry for the same prompt, even
// when the database clock does.
const appendQuery = `
	INSERT INTO public.prompt_status_history (prompt_id, status_id, changed_at)
	SELECT $1, $2, GREATEST(
		NOW(),
		COALESCE(
			(SELECT MAX(changed_at) + INTERVAL '1 microsecond'
			 FROM public.prompt_status_history
			 WHERE prompt_id = $1),
			'-infinity'::timestamptz
		)
	)
	RETURNING changed_at`

var projection = query.
	NewProjectionMap("public", "prompt_status_history", "h").
	Join("statuses", "s", "s.id = h.status_id").
	Project("prompt_id", "PromptID").
	ProjectFrom("s", "id", "StatusID").
	ProjectFrom("s", "name", "StatusName").
	Project("changed_at", "ChangedAt")

var defaultSort = query.SortField{
	Field: "ChangedAt",
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(&e.PromptID, &e.Status.ID, &e.Status.Name, &e.ChangedAt)
	return e, err
}

// Append records that promptID was assigned status. Run it in the same
// transaction that changes the prompt's status.
func Append(ctx context.Context, q repository.Querier, promptID uuid.UUID, status catalogs.Entry) (Entry, error) {
	e := Entry{PromptID: promptID, Status: status}

	if err := q.QueryRowContext(ctx, appendQuery, promptID, status.ID).Scan(&e.ChangedAt); err != nil {
		return Entry{}, fmt.Errorf("append history: %w", err)
	}
	return e, nil
}

// ForPrompt returns the ledger of one prompt in assignment order.
func ForPrompt(ctx context.Context, q repository.Querier, promptID uuid.UUID) ([]Entry, error) {
	sql, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("PromptID", promptID).
		Build()

	entries, err := repository.QueryMany(ctx, q, sql, args, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

// ForPrompts loads the ledgers of several prompts with batched queries, keyed by prompt.
func ForPrompts(ctx context.Context, q repository.Querier, promptIDs []uuid.UUID) (map[uuid.UUID][]Entry, error) {
	grouped := make(map[uuid.UUID][]Entry, len(promptIDs))
	if len(promptIDs) == 0 {
		return grouped, nil
	}

	for batch := range slices.Chunk(promptIDs, repository.MaxBatch) {
		sql, args := query.
			NewBuilder(projection, defaultSort).
			WhereIn("PromptID", repository.Args(batch)).
			Build()

		entries, err := repository.QueryMany(ctx, q, sql, args, scanEntry)
		if err != nil {
			return nil, fmt.Errorf("query history: %w", err)
		}

		for _, e := range entries {
			grouped[e.PromptID] = append(grouped[e.PromptID], e)
		}
	}
	return grouped, nil
}
