// Package mcp exposes the gateway over the Model Context Protocol.
//
// The server speaks JSON-RPC 2.0 and implements the MCP initialize,
// tools/list, tools/call, and ping methods. Seven tools manage the
// active provider, model override, and multiplex fan-out list, and
// dispatch prompts through the same adapters as the REST surface.
//
// Two transports are provided: stdio (newline-delimited JSON-RPC on
// stdin/stdout, logs on stderr) for editor integration, and HTTP
// (POST /mcp with JSON or single-event SSE responses) for networked
// clients.
//
// Usage:
//
//	registry := providerfactory.NewRegistry(providers.Copilot)
//	state := mcp.NewState(providers.Copilot, registry, nil, nil)
//	server := mcp.NewServer(state, mcp.BuildToolRegistry())
//	if err := mcp.NewStdioTransport(server).Serve(ctx); err != nil {
//		log.Fatal(err)
//	}
package mcp
