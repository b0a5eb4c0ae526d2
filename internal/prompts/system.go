package prompts

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/bestiary/internal/history"
)

// System defines the public contract for prompt operations.
type System interface {
	Handler() *Handler

	// List returns every prompt in creation order with associations attached.
	List(ctx context.Context) ([]Prompt, error)

	// Find returns one prompt with associations attached.
	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// History returns the status ledger of one prompt in assignment order.
	History(ctx context.Context, id uuid.UUID) ([]history.Entry, error)

	// Create validates cmd, then in one transaction resolves its catalog names,
	// stores the prompt and its links, and records the initial status.
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
}
