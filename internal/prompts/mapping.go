package prompts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/pkg/query"
	"github.com/JaimeStill/bestiary/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Join("statuses", "s", "s.id = p.status_id").
	Project("id", "ID").
	Project("text", "Text").
	Project("created_at", "CreatedAt").
	ProjectFrom("s", "id", "StatusID").
	ProjectFrom("s", "name", "StatusName")

var defaultSort = []query.SortField{
	{Field: "CreatedAt"},
	{Field: "ID"},
}

const insertQuery = `
	INSERT INTO public.prompts (id, text, created_at, status_id)
	VALUES ($1, $2, NOW(), $3)
	RETURNING created_at`

const existsQuery = `SELECT EXISTS (SELECT 1 FROM public.prompts WHERE id = $1)`

// link describes the join table tying prompts to one catalog.
type link struct {
	kind   catalogs.Kind
	table  string
	column string
	proj   *query.ProjectionMap
}

var (
	styleLinks  = newLink(catalogs.KindStyle, "prompt_styles", "style_id")
	animalLinks = newLink(catalogs.KindAnimal, "prompt_animals", "animal_id")
)

func newLink(kind catalogs.Kind, table, column string) link {
	return link{
		kind:   kind,
		table:  table,
		column: column,
		proj: query.
			NewProjectionMap("public", table, "l").
			Join(kind.Plural(), "c", "c.id = l."+column).
			Project("prompt_id", "PromptID").
			ProjectFrom("c", "id", "ID").
			ProjectFrom("c", "name", "Name"),
	}
}

// insertQuery builds one multi-row insert for entries. Rows already present are skipped.
func (l link) insertQuery(promptID uuid.UUID, entries []catalogs.Entry) (string, []any) {
	values := make([]string, len(entries))
	args := make([]any, 0, len(entries)+1)
	args = append(args, promptID)

	for i, e := range entries {
		values[i] = fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, e.ID)
	}

	q := fmt.Sprintf(
		"INSERT INTO public.%s (prompt_id, %s) VALUES %s ON CONFLICT DO NOTHING",
		l.table, l.column, strings.Join(values, ", "),
	)
	return q, args
}

type linkedEntry struct {
	promptID uuid.UUID
	entry    catalogs.Entry
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var p Prompt
	err := s.Scan(
		&p.ID,
		&p.Text,
		&p.CreatedAt,
		&p.Status.ID,
		&p.Status.Name,
	)
	return p, err
}

func scanLinkedEntry(s repository.Scanner) (linkedEntry, error) {
	var le linkedEntry
	err := s.Scan(&le.promptID, &le.entry.ID, &le.entry.Name)
	return le, err
}
