package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy/types"
)

// installedOnly fakes binary resolution: only the listed kinds exist.
func installedOnly(kinds ...providers.Kind) BinaryResolver {
	installed := make(map[providers.Kind]bool)
	for _, k := range kinds {
		installed[k] = true
	}
	return func(kind providers.Kind) (string, error) {
		if installed[kind] {
			return "/usr/local/bin/" + kind.String(), nil
		}
		return "", providers.NewBinaryNotFoundError(kind.String(), kind.String())
	}
}

func getModels(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// modelLister lets tests control the advertised model list.
type modelLister struct {
	stubProvider
	models []string
}

func (m *modelLister) AvailableModels() []string { return m.models }

func TestModelsListsInstalledProviders(t *testing.T) {
	source := &stubSource{adapters: map[providers.Kind]providers.Provider{
		providers.ClaudeCode: &modelLister{
			stubProvider: stubProvider{name: "claude-code", kind: providers.ClaudeCode},
			models:       []string{"opus", "sonnet"},
		},
		providers.Copilot: &modelLister{
			stubProvider: stubProvider{name: "copilot", kind: providers.Copilot},
			models:       []string{"gpt-4o"},
		},
	}}
	handler := NewModelsHandler(source, installedOnly(providers.ClaudeCode, providers.Copilot))

	rec := getModels(t, handler)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	resp := decodeJSON[types.ModelsResponse](t, rec)
	if resp.Object != "list" {
		t.Errorf("Expected list object, got %q", resp.Object)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("Expected 3 models, got %d: %+v", len(resp.Data), resp.Data)
	}

	// Providers iterate in declaration order, models in list order.
	wantIDs := []string{"claude-code:opus", "claude-code:sonnet", "copilot:gpt-4o"}
	for i, want := range wantIDs {
		if resp.Data[i].ID != want {
			t.Errorf("Model %d: expected %q, got %q", i, want, resp.Data[i].ID)
		}
		if resp.Data[i].Object != "model" {
			t.Errorf("Model %d: expected object model, got %q", i, resp.Data[i].Object)
		}
	}
	if resp.Data[0].OwnedBy != "claude-code" {
		t.Errorf("Expected owned_by claude-code, got %q", resp.Data[0].OwnedBy)
	}
}

func TestModelsEmptyModelListFallsBackToName(t *testing.T) {
	source := &stubSource{adapters: map[providers.Kind]providers.Provider{
		providers.OpenCode: &modelLister{
			stubProvider: stubProvider{name: "opencode", kind: providers.OpenCode},
			models:       nil,
		},
	}}
	handler := NewModelsHandler(source, installedOnly(providers.OpenCode))

	rec := getModels(t, handler)

	resp := decodeJSON[types.ModelsResponse](t, rec)
	if len(resp.Data) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(resp.Data))
	}
	if resp.Data[0].ID != "opencode" || resp.Data[0].OwnedBy != "opencode" {
		t.Errorf("Expected bare provider entry, got %+v", resp.Data[0])
	}
}

func TestModelsSkipsFailedAdapters(t *testing.T) {
	source := &stubSource{
		adapters: map[providers.Kind]providers.Provider{
			providers.Copilot: &modelLister{
				stubProvider: stubProvider{name: "copilot", kind: providers.Copilot},
				models:       []string{"gpt-4o"},
			},
		},
		errs: map[providers.Kind]error{
			providers.ClaudeCode: providers.NewInternalError("claude_code", "construction failed"),
		},
	}
	handler := NewModelsHandler(source, installedOnly(providers.ClaudeCode, providers.Copilot))

	rec := getModels(t, handler)

	resp := decodeJSON[types.ModelsResponse](t, rec)
	if len(resp.Data) != 1 {
		t.Fatalf("Expected only the working provider, got %+v", resp.Data)
	}
	if resp.Data[0].ID != "copilot:gpt-4o" {
		t.Errorf("Unexpected entry: %+v", resp.Data[0])
	}
}

func TestModelsNoBinariesYieldsEmptyArray(t *testing.T) {
	handler := NewModelsHandler(&stubSource{}, installedOnly())

	rec := getModels(t, handler)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 even with nothing installed, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("Expected empty array, not null: %s", rec.Body.String())
	}
}
