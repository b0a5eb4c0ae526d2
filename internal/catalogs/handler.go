package catalogs

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/bestiary/pkg/handlers"
	"github.com/JaimeStill/bestiary/pkg/openapi"
	"github.com/JaimeStill/bestiary/pkg/routes"
)

// Handler provides HTTP endpoints for catalog operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "catalogs"),
	}
}

// Routes returns one route group per catalog: a listing and a get-or-create by name.
func (h *Handler) Routes() []routes.Group {
	groups := make([]routes.Group, 0, len(kinds))
	for _, kind := range kinds {
		groups = append(groups, routes.Group{
			Prefix: "/" + kind.Plural(),
			Tags:   []string{"Catalogs"},
			Routes: []routes.Route{
				{
					Method:  "GET",
					Pattern: "",
					Handler: h.List(kind),
					OpenAPI: listOperation(kind),
				},
				{
					Method:  "POST",
					Pattern: "/{name}",
					Handler: h.Resolve(kind),
					OpenAPI: resolveOperation(kind),
				},
			},
		})
	}
	return groups
}

// List returns every entry of the catalog ordered by name.
func (h *Handler) List(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := h.sys.List(r.Context(), kind)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}

		handlers.RespondJSON(w, http.StatusOK, entries)
	}
}

// Resolve returns the entry named by the {name} path value, creating it when absent.
func (h *Handler) Resolve(kind Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := h.sys.Resolve(r.Context(), kind, r.PathValue("name"))
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}

		handlers.RespondJSON(w, http.StatusOK, entry)
	}
}

// Schemas returns the OpenAPI component schemas for catalog payloads.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Entry": {
			Type:     "object",
			Required: []string{"id", "name"},
			Properties: map[string]*openapi.Schema{
				"id":   {Type: "string", Format: "uuid"},
				"name": {Type: "string", Description: "Unique, case-sensitive name within the catalog"},
			},
		},
	}
}

func listOperation(kind Kind) *openapi.Operation {
	return &openapi.Operation{
		Summary: "List " + kind.Plural(),
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSONArray("Entries ordered by name", "Entry"),
			500: openapi.ResponseRef("ServerError"),
		},
	}
}

func resolveOperation(kind Kind) *openapi.Operation {
	return &openapi.Operation{
		Summary:     "Get or create a " + string(kind),
		Description: "Returns the existing entry with this exact name, creating it first when absent.",
		Parameters:  []*openapi.Parameter{openapi.StringPathParam("name", "Entry name")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Resolved entry", "Entry"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("ServerError"),
		},
	}
}
