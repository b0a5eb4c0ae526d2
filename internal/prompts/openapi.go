package prompts

import "github.com/JaimeStill/bestiary/pkg/openapi"

var (
	listOp = &openapi.Operation{
		Summary: "List prompts",
		Description: "Returns every prompt in creation order with its status, styles, " +
			"animals, and status history.",
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSONArray("Prompts", "Prompt"),
			500: openapi.ResponseRef("ServerError"),
		},
	}

	createOp = &openapi.Operation{
		Summary: "Create prompt",
		Description: "Creates a prompt and any styles, animals, or status named in the request " +
			"that do not exist yet. Nothing is stored unless every step succeeds.",
		RequestBody: openapi.RequestBodyJSON("CreateCommand", true),
		Responses: map[int]*openapi.Response{
			201: openapi.ResponseJSON("Created prompt", "Prompt"),
			400: openapi.ResponseRef("BadRequest"),
			500: openapi.ResponseRef("ServerError"),
		},
	}

	findOp = &openapi.Operation{
		Summary:    "Find prompt",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Prompt", "Prompt"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("ServerError"),
		},
	}

	historyOp = &openapi.Operation{
		Summary:    "Prompt status history",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSONArray("Status assignments, oldest first", "HistoryEntry"),
			404: openapi.ResponseRef("NotFound"),
			500: openapi.ResponseRef("ServerError"),
		},
	}
)

// Schemas returns the OpenAPI component schemas for prompt payloads.
func Schemas() map[string]*openapi.Schema {
	entries := &openapi.Schema{Type: "array", Items: openapi.SchemaRef("Entry")}
	names := &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}

	return map[string]*openapi.Schema{
		"Prompt": {
			Type:     "object",
			Required: []string{"id", "text", "created_at", "status", "styles", "animals", "history"},
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"text":       {Type: "string"},
				"created_at": {Type: "string", Format: "date-time"},
				"status":     openapi.SchemaRef("Entry"),
				"styles":     entries,
				"animals":    entries,
				"history":    {Type: "array", Items: openapi.SchemaRef("HistoryEntry")},
			},
		},
		"CreateCommand": {
			Type:     "object",
			Required: []string{"text", "status"},
			Properties: map[string]*openapi.Schema{
				"text":    {Type: "string", Example: "a cat in a trench coat"},
				"styles":  names,
				"animals": names,
				"status":  {Type: "string", Example: "draft"},
			},
		},
		"HistoryEntry": {
			Type:     "object",
			Required: []string{"prompt_id", "status", "changed_at"},
			Properties: map[string]*openapi.Schema{
				"prompt_id":  {Type: "string", Format: "uuid"},
				"status":     openapi.SchemaRef("Entry"),
				"changed_at": {Type: "string", Format: "date-time"},
			},
		},
	}
}
