package mcp

import "encoding/json"

// ProtocolVersion is the MCP protocol revision this server implements.
const ProtocolVersion = "2024-11-05"

// ServerName is reported to clients during the initialize handshake.
const ServerName = "embacle-mcp"

// ServerVersion is reported to clients during the initialize
// handshake. Overridden at build time via -ldflags.
var ServerVersion = "0.1.0"

// jsonRPCVersion is the only JSON-RPC version the server accepts.
const jsonRPCVersion = "2.0"

// JSON-RPC error codes.
const (
	// CodeParseError signals invalid JSON.
	CodeParseError = -32700

	// CodeInvalidRequest signals a malformed request, such as a wrong
	// protocol version.
	CodeInvalidRequest = -32600

	// CodeMethodNotFound signals an unknown method.
	CodeMethodNotFound = -32601

	// CodeInvalidParams signals missing or malformed parameters.
	CodeInvalidParams = -32602

	// CodeInternalError signals a server-side failure.
	CodeInternalError = -32603
)

// Request is an incoming JSON-RPC request. The id is kept raw so
// string and numeric identifiers round-trip unchanged.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is an outgoing JSON-RPC response. Exactly one of Result and
// Error is set; id is omitted when the request carried none.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the JSON-RPC error payload.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewResponse builds a success response carrying the given result.
func NewResponse(id json.RawMessage, result json.RawMessage) *Response {
	return &Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse builds an error response with the given code and
// message.
func NewErrorResponse(id json.RawMessage, code int, message string) *Response {
	return &Response{
		JSONRPC: jsonRPCVersion,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
		},
	}
}

// normalizeID treats a JSON null id the same as an absent one, so
// requests carrying "id": null are handled as notifications.
func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 || string(id) == "null" {
		return nil
	}
	return id
}

// hasParams reports whether the request carried a params value.
func hasParams(params json.RawMessage) bool {
	return len(params) > 0 && string(params) != "null"
}

// InitializeParams is the client handshake payload, decoded for
// logging only.
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
	ClientInfo      ClientInfo      `json:"clientInfo"`
}

// ClientInfo identifies the connecting MCP client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeResult is the server half of the MCP handshake.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
}

// ServerCapabilities declares which optional MCP features the server
// supports. Presence of Tools signals tool support.
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability marks tool support; it carries no fields.
type ToolsCapability struct{}

// ServerInfo identifies the server to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolDefinition describes one tool in tools/list responses.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolsListResult is the tools/list response payload.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// CallToolParams is the tools/call request payload.
type CallToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult is a tool invocation outcome. Tool-level failures are
// reported in-band with IsError set rather than as JSON-RPC errors.
type CallToolResult struct {
	Content []ContentPart `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentPart is one piece of tool result content. Only text parts are
// produced.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextResult builds a successful tool result with one text part.
func TextResult(text string) CallToolResult {
	return CallToolResult{
		Content: []ContentPart{{Type: "text", Text: text}},
	}
}

// ErrorResult builds a failed tool result carrying the given message.
func ErrorResult(message string) CallToolResult {
	return CallToolResult{
		Content: []ContentPart{{Type: "text", Text: message}},
		IsError: true,
	}
}
