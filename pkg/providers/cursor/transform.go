package cursor

import (
	"encoding/json"

	"embacle-hq/embacle/pkg/providers"
)

// cliResponse is the JSON envelope printed by
// `cursor-agent --output-format json`.
type cliResponse struct {
	Result    *string   `json:"result"`
	IsError   bool      `json:"is_error"`
	SessionID *string   `json:"session_id"`
	Usage     *cliUsage `json:"usage"`
}

type cliUsage struct {
	InputTokens  *int `json:"input_tokens"`
	OutputTokens *int `json:"output_tokens"`
}

// parseResponse normalises a CLI JSON envelope into a ChatResponse and
// the session ID for resumption (empty when the CLI reported none).
func parseResponse(raw []byte) (*providers.ChatResponse, string, error) {
	var parsed cliResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", providers.WrapInternalError("cursor-agent",
			"failed to parse Cursor Agent JSON response", err)
	}

	if parsed.IsError {
		message := "Unknown error from Cursor Agent"
		if parsed.Result != nil {
			message = *parsed.Result
		}
		return nil, "", providers.NewExternalServiceError("cursor-agent", message)
	}

	content := ""
	if parsed.Result != nil {
		content = *parsed.Result
	}

	var usage *providers.Usage
	if parsed.Usage != nil {
		input := 0
		if parsed.Usage.InputTokens != nil {
			input = *parsed.Usage.InputTokens
		}
		output := 0
		if parsed.Usage.OutputTokens != nil {
			output = *parsed.Usage.OutputTokens
		}
		usage = &providers.Usage{
			PromptTokens:     input,
			CompletionTokens: output,
			TotalTokens:      input + output,
		}
	}

	finish := providers.FinishReasonStop
	resp := &providers.ChatResponse{
		Content:      content,
		Model:        "cursor-agent",
		Usage:        usage,
		FinishReason: &finish,
	}

	sessionID := ""
	if parsed.SessionID != nil {
		sessionID = *parsed.SessionID
	}
	return resp, sessionID, nil
}
