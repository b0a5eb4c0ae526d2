package prompts

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/JaimeStill/bestiary/internal/catalogs"
)

// NewWithAfterInsert builds a System whose creations call hook right after
// the prompt row is written.
func NewWithAfterInsert(db *sql.DB, cat catalogs.System, logger *slog.Logger, hook func(context.Context) error) System {
	sys := New(db, cat, logger).(*repo)
	sys.afterInsert = hook
	return sys
}
