package mcp

import (
	"context"
	"encoding/json"

	"embacle-hq/embacle/pkg/providers"
)

// Tool is one MCP tool exposed by the server.
type Tool interface {
	// Definition returns the tool's name, description, and input schema.
	Definition() ToolDefinition

	// Call executes the tool against the shared state. Failures are
	// reported in-band via ErrorResult, never as Go errors, so a broken
	// tool invocation still produces a well-formed JSON-RPC response.
	Call(ctx context.Context, state *State, args map[string]any) CallToolResult
}

// ToolRegistry maps tool names to handlers. Registration order is
// preserved so tools/list responses are deterministic.
type ToolRegistry struct {
	order []string
	tools map[string]Tool
}

// NewToolRegistry creates an empty registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool, keyed by its definition name. Re-registering a
// name replaces the handler but keeps its original position.
func (r *ToolRegistry) Register(tool Tool) {
	name := tool.Definition().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool
}

// Definitions lists every registered tool in registration order.
func (r *ToolRegistry) Definitions() []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition())
	}
	return defs
}

// Execute dispatches a tools/call to the named tool. An unknown name
// yields an in-band error result.
func (r *ToolRegistry) Execute(ctx context.Context, name string, state *State, args map[string]any) CallToolResult {
	tool, ok := r.tools[name]
	if !ok {
		return ErrorResult("Unknown tool: " + name)
	}
	return tool.Call(ctx, state, args)
}

// BuildToolRegistry assembles the full gateway tool set.
func BuildToolRegistry() *ToolRegistry {
	r := NewToolRegistry()
	r.Register(getProviderTool{})
	r.Register(setProviderTool{})
	r.Register(getModelTool{})
	r.Register(setModelTool{})
	r.Register(getMultiplexProviderTool{})
	r.Register(setMultiplexProviderTool{})
	r.Register(promptTool{})
	return r
}

// jsonText marshals a payload into a compact-JSON text result.
func jsonText(payload any) CallToolResult {
	b, err := json.Marshal(payload)
	if err != nil {
		return ErrorResult("Serialization failed: " + err.Error())
	}
	return TextResult(string(b))
}

// kindNames lists every provider kind identifier.
func kindNames() []string {
	kinds := providers.AllKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}
