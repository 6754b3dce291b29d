package mcp

import (
	"context"
	"fmt"

	"embacle-hq/embacle/pkg/providers"
)

// getProviderTool reports the active provider and the full provider
// list.
type getProviderTool struct{}

func (getProviderTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "get_provider",
		Description: "Get the active LLM provider and list all available providers",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (getProviderTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	return jsonText(map[string]any{
		"active_provider":     state.ActiveKind().String(),
		"available_providers": kindNames(),
	})
}

// setProviderTool switches the active provider, resetting the model
// override.
type setProviderTool struct{}

func (setProviderTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "set_provider",
		Description: "Set the active LLM provider for prompt dispatch",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"provider": map[string]any{
					"type":        "string",
					"description": "Provider name",
					"enum":        kindNames(),
				},
			},
			"required": []string{"provider"},
		},
	}
}

func (setProviderTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	name, ok := args["provider"].(string)
	if !ok {
		return ErrorResult("Missing 'provider' argument")
	}

	kind, err := providers.ParseKind(name)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Unknown provider: %s. Valid: %s", name, providers.ValidKindNames()))
	}

	state.SetActiveKind(kind)

	return jsonText(map[string]any{
		"active_provider": kind.String(),
		"status":          "active",
	})
}
