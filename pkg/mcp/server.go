package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Server routes JSON-RPC requests to the MCP method handlers. It owns
// the shared tool state and registry; transports feed parsed requests
// into HandleRequest and deliver the returned responses.
type Server struct {
	state *State
	tools *ToolRegistry
}

// NewServer creates a server over the given state and tool registry.
func NewServer(state *State, tools *ToolRegistry) *Server {
	return &Server{
		state: state,
		tools: tools,
	}
}

// HandleRequest dispatches one JSON-RPC request and returns the
// response, or nil for notifications.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	// The version check runs before the notification check so that a
	// client speaking the wrong protocol always hears about it.
	if req.JSONRPC != jsonRPCVersion {
		return NewErrorResponse(normalizeID(req.ID), CodeInvalidRequest,
			fmt.Sprintf("Unsupported JSON-RPC version: %s", req.JSONRPC))
	}

	id := normalizeID(req.ID)
	if id == nil {
		slog.DebugContext(ctx, "received notification, no response", "method", req.Method)
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(ctx, id, req.Params)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req.Params)
	case "ping":
		return NewResponse(id, json.RawMessage("{}"))
	default:
		slog.DebugContext(ctx, "unknown MCP method", "method", req.Method)
		return NewErrorResponse(id, CodeMethodNotFound, "Method not found: "+req.Method)
	}
}

// handleInitialize answers the MCP handshake. Client params are
// decoded for logging only; a handshake never fails on them.
func (s *Server) handleInitialize(ctx context.Context, id json.RawMessage, params json.RawMessage) *Response {
	if hasParams(params) {
		var init InitializeParams
		if err := json.Unmarshal(params, &init); err == nil {
			slog.DebugContext(ctx, "MCP client connected",
				"client", init.ClientInfo.Name,
				"client_version", init.ClientInfo.Version,
				"protocol", init.ProtocolVersion,
			)
		}
	}

	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, CodeInternalError, "Serialization error: "+err.Error())
	}
	return NewResponse(id, raw)
}

// handleToolsList returns every registered tool definition.
func (s *Server) handleToolsList(id json.RawMessage) *Response {
	result := ToolsListResult{Tools: s.tools.Definitions()}

	raw, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, CodeInternalError, "Serialization error: "+err.Error())
	}
	return NewResponse(id, raw)
}

// handleToolsCall dispatches to the named tool. A panicking tool is
// converted into an internal error response so the transport loop
// keeps serving.
func (s *Server) handleToolsCall(ctx context.Context, id json.RawMessage, params json.RawMessage) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "tool handler panicked", "panic", r)
			resp = NewErrorResponse(id, CodeInternalError, fmt.Sprintf("Tool handler panicked: %v", r))
		}
	}()

	if !hasParams(params) {
		return NewErrorResponse(id, CodeInvalidParams, "Missing params for tools/call")
	}

	var call CallToolParams
	if err := json.Unmarshal(params, &call); err != nil {
		return NewErrorResponse(id, CodeInvalidParams, "Invalid params: "+err.Error())
	}
	if call.Name == "" {
		return NewErrorResponse(id, CodeInvalidParams, "Invalid params: missing field 'name'")
	}

	result := s.tools.Execute(ctx, call.Name, s.state, decodeArguments(call.Arguments))

	raw, err := json.Marshal(result)
	if err != nil {
		return NewErrorResponse(id, CodeInternalError, "Result serialization error: "+err.Error())
	}
	return NewResponse(id, raw)
}

// decodeArguments unpacks tool arguments into a map. Absent, null, or
// non-object arguments carry no fields and decode to an empty map.
func decodeArguments(raw json.RawMessage) map[string]any {
	args := map[string]any{}
	if len(raw) == 0 || string(raw) == "null" {
		return args
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return map[string]any{}
	}
	return args
}
