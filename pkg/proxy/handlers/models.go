package handlers

import (
	"log/slog"
	"net/http"

	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/proxy"
	"embacle-hq/embacle/pkg/proxy/types"
)

// ModelsHandler serves GET /v1/models. It probes each known provider
// for an installed CLI binary and lists the models of the installed
// ones in OpenAI format, with the provider name as prefix
// (e.g. "copilot:gpt-4o").
type ModelsHandler struct {
	source  AdapterSource
	resolve BinaryResolver
}

// NewModelsHandler creates the models listing handler. A nil resolver
// falls back to the environment-aware default.
func NewModelsHandler(source AdapterSource, resolve BinaryResolver) *ModelsHandler {
	if resolve == nil {
		resolve = DefaultBinaryResolver
	}
	return &ModelsHandler{source: source, resolve: resolve}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := make([]types.ModelObject, 0)

	for _, kind := range providers.AllKinds() {
		if _, err := h.resolve(kind); err != nil {
			slog.DebugContext(ctx, "binary not found, skipping",
				"provider", kind.String(),
			)
			continue
		}

		adapter, err := h.source.Get(kind)
		if err != nil {
			slog.DebugContext(ctx, "failed to create adapter",
				"provider", kind.String(),
				"error", err,
			)
			continue
		}

		name := adapter.Name()
		models := adapter.AvailableModels()

		if len(models) == 0 {
			// Provider advertises no model list; expose just its name.
			data = append(data, types.ModelObject{
				ID:      name,
				Object:  types.ObjectModel,
				OwnedBy: name,
			})
			continue
		}

		for _, model := range models {
			data = append(data, types.ModelObject{
				ID:      name + ":" + model,
				Object:  types.ObjectModel,
				OwnedBy: name,
			})
		}
	}

	resp := &types.ModelsResponse{
		Object: types.ObjectList,
		Data:   data,
	}

	if err := proxy.WriteJSON(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write models response", "error", err)
	}
}
