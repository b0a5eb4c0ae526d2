package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/bestiary/pkg/openapi"
	"github.com/JaimeStill/bestiary/pkg/routes"
)

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

func sampleGroup() routes.Group {
	return routes.Group{
		Prefix: "/prompts",
		Tags:   []string{"Prompts"},
		Routes: []routes.Route{
			{
				Method:  "GET",
				Pattern: "",
				Handler: status(http.StatusOK),
				OpenAPI: &openapi.Operation{Summary: "List prompts"},
			},
			{
				Method:  "POST",
				Pattern: "",
				Handler: status(http.StatusCreated),
				OpenAPI: &openapi.Operation{Summary: "Create prompt", Tags: []string{"Writes"}},
			},
			{
				Method:  "GET",
				Pattern: "/{id}",
				Handler: status(http.StatusOK),
			},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}/history",
				Routes: []routes.Route{
					{
						Method:  "GET",
						Pattern: "",
						Handler: status(http.StatusAccepted),
						OpenAPI: &openapi.Operation{Summary: "Prompt history"},
					},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, sampleGroup())

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{"list", "GET", "/prompts", http.StatusOK},
		{"create", "POST", "/prompts", http.StatusCreated},
		{"find", "GET", "/prompts/123", http.StatusOK},
		{"child group", "GET", "/prompts/123/history", http.StatusAccepted},
		{"method not allowed", "DELETE", "/prompts/123", http.StatusMethodNotAllowed},
		{"unregistered", "GET", "/styles", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	spec := openapi.NewSpec("test", "v0")
	routes.Document(spec, sampleGroup())

	list := spec.Paths["/prompts"]
	if list == nil || list.Get == nil || list.Post == nil {
		t.Fatalf("/prompts path item incomplete: %+v", list)
	}
	if list.Get.Tags[0] != "Prompts" {
		t.Errorf("inherited tags: got %v", list.Get.Tags)
	}
	if list.Post.Tags[0] != "Writes" {
		t.Errorf("explicit tags overridden: got %v", list.Post.Tags)
	}

	if _, ok := spec.Paths["/prompts/{id}"]; ok {
		t.Error("route without OpenAPI operation should not be documented")
	}

	history := spec.Paths["/prompts/{id}/history"]
	if history == nil || history.Get == nil {
		t.Fatal("child group route not documented")
	}
	if history.Get.Tags[0] != "Prompts" {
		t.Errorf("child group tags: got %v", history.Get.Tags)
	}
}
