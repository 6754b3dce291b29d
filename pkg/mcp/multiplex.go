package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"embacle-hq/embacle/pkg/providers"
)

// getMultiplexProviderTool reports the configured multiplex fan-out
// list.
type getMultiplexProviderTool struct{}

func (getMultiplexProviderTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "get_multiplex_provider",
		Description: "Get the list of providers configured for multiplex prompt dispatch",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (getMultiplexProviderTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	kinds := state.MultiplexKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}

	return jsonText(map[string]any{
		"multiplex_providers": names,
		"available_providers": kindNames(),
	})
}

// setMultiplexProviderTool replaces the multiplex fan-out list.
type setMultiplexProviderTool struct{}

func (setMultiplexProviderTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "set_multiplex_provider",
		Description: "Set providers for multiplex mode; prompts will fan out to all listed providers",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"providers": map[string]any{
					"type":        "array",
					"description": "List of provider names to multiplex to",
					"items": map[string]any{
						"type": "string",
						"enum": kindNames(),
					},
				},
			},
			"required": []string{"providers"},
		},
	}
}

func (setMultiplexProviderTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	raw, ok := args["providers"].([]any)
	if !ok {
		return ErrorResult("Missing 'providers' array argument")
	}

	// An empty list is accepted and clears the configuration.
	kinds := make([]providers.Kind, 0, len(raw))
	names := make([]string, 0, len(raw))
	for _, val := range raw {
		name, ok := val.(string)
		if !ok {
			rendered, _ := json.Marshal(val)
			return ErrorResult("Provider must be a string, got: " + string(rendered))
		}

		kind, err := providers.ParseKind(name)
		if err != nil {
			return ErrorResult(fmt.Sprintf("Unknown provider: %s. Valid: %s", name, providers.ValidKindNames()))
		}

		kinds = append(kinds, kind)
		names = append(names, kind.String())
	}

	state.SetMultiplexKinds(kinds)

	return jsonText(map[string]any{
		"multiplex_providers": names,
		"status":              "configured",
	})
}
