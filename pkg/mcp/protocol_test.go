package mcp

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSuccessResponseSerialization(t *testing.T) {
	resp := NewResponse(json.RawMessage("1"), json.RawMessage(`{"ok":true}`))

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(raw)
	if got != `{"jsonrpc":"2.0","id":1,"result":{"ok":true}}` {
		t.Errorf("Unexpected serialization: %s", got)
	}
}

func TestErrorResponseSerialization(t *testing.T) {
	resp := NewErrorResponse(json.RawMessage("1"), CodeParseError, "bad json")

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(raw)
	if !strings.Contains(got, `"error"`) || !strings.Contains(got, "-32700") {
		t.Errorf("Expected an error payload in %s", got)
	}
	if strings.Contains(got, `"result"`) {
		t.Errorf("Expected no result field in %s", got)
	}
}

func TestResponseOmitsAbsentID(t *testing.T) {
	resp := NewErrorResponse(nil, CodeParseError, "bad json")

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(raw), `"id"`) {
		t.Errorf("Expected no id field in %s", raw)
	}
}

func TestRequestDecoding(t *testing.T) {
	var req Request
	if err := json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if req.Method != "tools/list" {
		t.Errorf("Method = %q, want tools/list", req.Method)
	}
	if hasParams(req.Params) {
		t.Errorf("Expected no params, got %s", req.Params)
	}
	if normalizeID(req.ID) == nil {
		t.Error("Expected the id to survive normalization")
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantNil bool
	}{
		{name: "absent", id: "", wantNil: true},
		{name: "explicit null", id: "null", wantNil: true},
		{name: "number", id: "1", wantNil: false},
		{name: "zero", id: "0", wantNil: false},
		{name: "string", id: `"abc"`, wantNil: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id json.RawMessage
			if tt.id != "" {
				id = json.RawMessage(tt.id)
			}
			got := normalizeID(id)
			if (got == nil) != tt.wantNil {
				t.Errorf("normalizeID(%q) = %v, want nil=%v", tt.id, got, tt.wantNil)
			}
		})
	}
}

func TestHasParams(t *testing.T) {
	if hasParams(nil) {
		t.Error("nil params should count as absent")
	}
	if hasParams(json.RawMessage("null")) {
		t.Error("null params should count as absent")
	}
	if !hasParams(json.RawMessage("{}")) {
		t.Error("an empty object is still params")
	}
}

func TestCallToolResultConstructors(t *testing.T) {
	text := TextResult("hello")
	if text.IsError {
		t.Error("TextResult should not be an error")
	}
	if len(text.Content) != 1 || text.Content[0].Text != "hello" {
		t.Errorf("Unexpected content: %+v", text.Content)
	}

	fail := ErrorResult("oops")
	if !fail.IsError {
		t.Error("ErrorResult should be an error")
	}
	if fail.Content[0].Text != "oops" {
		t.Errorf("Unexpected content: %+v", fail.Content)
	}
}

func TestCallToolResultSerialization(t *testing.T) {
	raw, err := json.Marshal(TextResult("hello"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(raw) != `{"content":[{"type":"text","text":"hello"}]}` {
		t.Errorf("Unexpected serialization: %s", raw)
	}

	raw, err = json.Marshal(ErrorResult("oops"))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(raw) != `{"content":[{"type":"text","text":"oops"}],"isError":true}` {
		t.Errorf("Unexpected serialization: %s", raw)
	}
}

func TestInitializeResultSerialization(t *testing.T) {
	result := InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      ServerInfo{Name: ServerName, Version: "9.9.9"},
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(raw)
	for _, want := range []string{
		`"protocolVersion":"2024-11-05"`,
		`"capabilities":{"tools":{}}`,
		`"serverInfo":{"name":"embacle-mcp","version":"9.9.9"}`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %s in %s", want, got)
		}
	}
}
