package mcp

import "context"

// getModelTool reports the model selection for the active provider,
// including its default and the models it advertises.
type getModelTool struct{}

func (getModelTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "get_model",
		Description: "Get the current model and list available models for the active provider",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func (getModelTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	kind := state.ActiveKind()

	var current any
	if m := state.ActiveModel(); m != nil {
		current = *m
	}

	adapter, err := state.Adapter(kind)
	if err != nil {
		// Still a text result: the model selection is readable even
		// when the provider binary is missing.
		return jsonText(map[string]any{
			"provider":      kind.String(),
			"current_model": current,
			"error":         "Could not load runner: " + err.Error(),
		})
	}

	models := adapter.AvailableModels()
	if models == nil {
		models = []string{}
	}

	return jsonText(map[string]any{
		"provider":         kind.String(),
		"current_model":    current,
		"default_model":    adapter.DefaultModel(),
		"available_models": models,
	})
}

// setModelTool sets or resets the model override for the active
// provider.
type setModelTool struct{}

func (setModelTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "set_model",
		Description: "Set the model for the active provider (pass null to reset to default)",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"model": map[string]any{
					"type":        "string",
					"description": "Model identifier (e.g. claude-opus-4-20250514, gpt-4o). Pass null to reset.",
				},
			},
			"required": []string{"model"},
		},
	}
}

func (setModelTool) Call(ctx context.Context, state *State, args map[string]any) CallToolResult {
	var model *string
	if v, ok := args["model"].(string); ok {
		model = &v
	}

	state.SetActiveModel(model)

	var current any
	if model != nil {
		current = *model
	}

	return jsonText(map[string]any{
		"provider":      state.ActiveKind().String(),
		"current_model": current,
		"status":        "updated",
	})
}
