package api

import (
	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Catalogs catalogs.System
	Prompts  prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	catalogsSystem := catalogs.New(
		runtime.Database.Connection(),
		runtime.Cache,
		runtime.Logger,
	)

	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		catalogsSystem,
		runtime.Logger,
	)

	return &Domain{
		Catalogs: catalogsSystem,
		Prompts:  promptsSystem,
	}
}
