package prompts_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/bestiary/internal/catalogs"
	"github.com/JaimeStill/bestiary/internal/history"
	"github.com/JaimeStill/bestiary/internal/prompts"
	"github.com/JaimeStill/bestiary/pkg/handlers"
	"github.com/JaimeStill/bestiary/pkg/middleware"
	"github.com/JaimeStill/bestiary/pkg/routes"
)

type mockSystem struct {
	listFn    func(ctx context.Context) ([]prompts.Prompt, error)
	findFn    func(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error)
	historyFn func(ctx context.Context, id uuid.UUID) ([]history.Entry, error)
	createFn  func(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error)
}

func (m *mockSystem) Handler() *prompts.Handler {
	return prompts.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) List(ctx context.Context) ([]prompts.Prompt, error) {
	return m.listFn(ctx)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*prompts.Prompt, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) History(ctx context.Context, id uuid.UUID) ([]history.Entry, error) {
	return m.historyFn(ctx, id)
}

func (m *mockSystem) Create(ctx context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
	return m.createFn(ctx, cmd)
}

func setupMux(sys *mockSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return mux
}

func samplePrompt() prompts.Prompt {
	draft := catalogs.Entry{ID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), Name: "draft"}
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")

	return prompts.Prompt{
		ID:        id,
		Text:      "a cat in a trench coat",
		CreatedAt: created,
		Status:    draft,
		Styles:    []catalogs.Entry{{ID: uuid.New(), Name: "noir"}},
		Animals:   []catalogs.Entry{{ID: uuid.New(), Name: "cat"}},
		History:   []history.Entry{{PromptID: id, Status: draft, ChangedAt: created}},
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

func TestHandlerList(t *testing.T) {
	p := samplePrompt()

	t.Run("returns prompts", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(context.Context) ([]prompts.Prompt, error) {
				return []prompts.Prompt{p}, nil
			},
		}

		rec := httptest.NewRecorder()
		setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/prompts", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var got []prompts.Prompt
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 1 || got[0].ID != p.ID {
			t.Fatalf("prompts = %+v", got)
		}
		if got[0].Status.Name != "draft" || len(got[0].History) != 1 {
			t.Errorf("associations not encoded: %+v", got[0])
		}
	})

	t.Run("storage error hidden", func(t *testing.T) {
		sys := &mockSystem{
			listFn: func(context.Context) ([]prompts.Prompt, error) {
				return nil, errors.New("pq: relation \"prompts\" does not exist")
			},
		}

		rec := httptest.NewRecorder()
		setupMux(sys).ServeHTTP(rec, httptest.NewRequest("GET", "/prompts", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if msg := decodeError(t, rec); strings.Contains(msg, "relation") {
			t.Errorf("storage error leaked: %q", msg)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*prompts.Prompt, error) {
			if id != p.ID {
				return nil, prompts.ErrNotFound
			}
			return &p, nil
		},
	}
	mux := setupMux(sys)

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"found", "/prompts/" + p.ID.String(), http.StatusOK},
		{"unknown id", "/prompts/" + uuid.NewString(), http.StatusNotFound},
		{"malformed id", "/prompts/not-a-uuid", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusNotFound {
				if msg := decodeError(t, rec); msg != prompts.ErrNotFound.Error() {
					t.Errorf("error = %q, want %q", msg, prompts.ErrNotFound.Error())
				}
			}
		})
	}
}

func TestHandlerHistory(t *testing.T) {
	p := samplePrompt()
	sys := &mockSystem{
		historyFn: func(_ context.Context, id uuid.UUID) ([]history.Entry, error) {
			if id != p.ID {
				return nil, prompts.ErrNotFound
			}
			return p.History, nil
		},
	}
	mux := setupMux(sys)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/"+p.ID.String()+"/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var entries []history.Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Status.Name != "draft" {
		t.Errorf("entries = %+v", entries)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/prompts/"+uuid.NewString()+"/history", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown prompt: status = %d, want 404", rec.Code)
	}
}

func TestHandlerCreate(t *testing.T) {
	p := samplePrompt()

	tests := []struct {
		name     string
		body     string
		createFn func(context.Context, prompts.CreateCommand) (*prompts.Prompt, error)
		wantCode int
	}{
		{
			name: "created",
			body: `{"text":"a cat in a trench coat","styles":["noir"],"animals":["cat"],"status":"draft"}`,
			createFn: func(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
				if cmd.Text != "a cat in a trench coat" || cmd.Status != "draft" {
					return nil, errors.New("command not decoded")
				}
				if len(cmd.Styles) != 1 || len(cmd.Animals) != 1 {
					return nil, errors.New("lists not decoded")
				}
				return &p, nil
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "malformed json",
			body:     `{"text":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "validation failure",
			body: `{"text":"","status":"draft"}`,
			createFn: func(_ context.Context, cmd prompts.CreateCommand) (*prompts.Prompt, error) {
				return nil, cmd.Validate()
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			body: `{"text":"x","status":"draft"}`,
			createFn: func(context.Context, prompts.CreateCommand) (*prompts.Prompt, error) {
				return nil, errors.New("connection refused")
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{createFn: tt.createFn}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/prompts", bytes.NewBufferString(tt.body))
			setupMux(sys).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}

			if tt.wantCode == http.StatusCreated {
				var got prompts.Prompt
				if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if got.ID != p.ID {
					t.Errorf("id = %s, want %s", got.ID, p.ID)
				}
			}
		})
	}
}

func TestHandlerCreateBodyTooLarge(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, prompts.CreateCommand) (*prompts.Prompt, error) {
			t.Error("create should not be called")
			return nil, nil
		},
	}

	handler := middleware.MaxBody(16)(setupMux(sys))
	body := `{"text":"` + strings.Repeat("x", 64) + `","status":"draft"}`

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/prompts", strings.NewReader(body)))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", prompts.ErrNotFound, http.StatusNotFound},
		{"invalid", prompts.ErrInvalid, http.StatusBadRequest},
		{"catalog name", catalogs.ErrInvalidName, http.StatusBadRequest},
		{"wrapped not found", errors.Join(errors.New("ctx"), prompts.ErrNotFound), http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := prompts.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
