package catalogs

import (
	"fmt"

	"github.com/JaimeStill/bestiary/pkg/query"
	"github.com/JaimeStill/bestiary/pkg/repository"
)

var projections = map[Kind]*query.ProjectionMap{
	KindStyle:  newProjection(KindStyle),
	KindAnimal: newProjection(KindAnimal),
	KindStatus: newProjection(KindStatus),
}

var defaultSort = query.SortField{
	Field: "Name",
}

func newProjection(kind Kind) *query.ProjectionMap {
	return query.
		NewProjectionMap("public", kind.Plural(), "c").
		Project("id", "ID").
		Project("name", "Name")
}

func findByNameQuery(kind Kind, name string) (string, []any) {
	return query.
		NewBuilder(projections[kind]).
		WhereEquals("Name", name).
		BuildSingleOrNull()
}

func insertQuery(kind Kind) string {
	return fmt.Sprintf(`
		INSERT INTO public.%s (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name`, kind.Plural())
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var e Entry
	err := s.Scan(&e.ID, &e.Name)
	return e, err
}
