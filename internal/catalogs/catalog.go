// Package catalogs implements the style, animal, and status catalogs.
// Entries are created on first use, identified by a name that is unique
// within its own catalog, and never renamed or removed.
package catalogs

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies one of the reference catalogs.
type Kind string

// Catalog kinds.
const (
	KindStyle  Kind = "style"
	KindAnimal Kind = "animal"
	KindStatus Kind = "status"
)

var kinds = []Kind{
	KindStyle,
	KindAnimal,
	KindStatus,
}

var plurals = map[Kind]string{
	KindStyle:  "styles",
	KindAnimal: "animals",
	KindStatus: "statuses",
}

// Kinds returns every catalog kind.
func Kinds() []Kind {
	return kinds
}

// Valid reports whether k names a known catalog.
func (k Kind) Valid() bool {
	return slices.Contains(kinds, k)
}

// Plural returns the collection name used for the catalog's table and routes.
func (k Kind) Plural() string {
	return plurals[k]
}

// Entry is a named member of a catalog.
type Entry struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func validate(kind Kind, name string) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return nil
}

func cacheKey(kind Kind, name string) string {
	return string(kind) + ":" + name
}
