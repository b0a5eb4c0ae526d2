// Package prompts implements prompt records: text tagged with styles and animals,
// carrying a current status and the ledger of every status it has held.
// Prompts are created once, atomically with their associations, and never modified.
package prompts

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/internal/history"
)

// Prompt is a stored prompt with its associations eagerly loaded.
type Prompt struct {
	ID        uuid.UUID        `json:"id"`
	Text      string           `json:"text"`
	CreatedAt time.Time        `json:"created_at"`
	Status    catalogs.Entry   `json:"status"`
	Styles    []catalogs.Entry `json:"styles"`
	Animals   []catalogs.Entry `json:"animals"`
	History   []history.Entry  `json:"history"`
}

// CreateCommand carries the raw names a new prompt is tagged with.
// Unknown names are added to their catalogs during creation.
type CreateCommand struct {
	Text    string   `json:"text"`
	Styles  []string `json:"styles"`
	Animals []string `json:"animals"`
	Status  string   `json:"status"`
}

var notBlank = validation.By(func(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
})

// Validate reports every malformed field. The returned error wraps ErrInvalid.
func (c CreateCommand) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Text, notBlank),
		validation.Field(&c.Status, notBlank),
		validation.Field(&c.Styles, validation.Each(notBlank)),
		validation.Field(&c.Animals, validation.Each(notBlank)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
