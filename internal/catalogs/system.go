package catalogs

import (
	"context"

	"github.com/JaimeStill/bestiary/pkg/repository"
)

// System defines the public contract for catalog operations.
type System interface {
	Handler() *Handler

	// List returns every entry of one catalog ordered by name.
	List(ctx context.Context, kind Kind) ([]Entry, error)

	// Resolve returns the entry named name, creating it when absent.
	Resolve(ctx context.Context, kind Kind, name string) (*Entry, error)

	// ResolveTx resolves inside a caller-owned transaction. Entries it creates
	// become visible only when that transaction commits.
	ResolveTx(ctx context.Context, q repository.Querier, kind Kind, name string) (*Entry, error)

	// Remember caches committed entries so later resolutions skip the database.
	Remember(ctx context.Context, kind Kind, entries ...Entry)
}
