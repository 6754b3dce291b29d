package claude

import (
	"encoding/json"
	"strings"

	"embacle-hq/embacle/pkg/providers"
)

// streamEvent is one line of `--output-format stream-json` output. Only
// the fields the translator needs are decoded.
type streamEvent struct {
	Type    string `json:"type"`
	Message *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// translateLine converts one stream-json event line into stream chunks.
//
// "assistant" events contribute the concatenated text blocks of the
// message, the "result" event ends the stream with a final chunk, and
// every other event type (system, rate_limit_event, ...) passes through
// as an empty keep-alive chunk.
func translateLine(line string) ([]*providers.StreamChunk, bool) {
	if strings.TrimSpace(line) == "" {
		return []*providers.StreamChunk{{}}, false
	}

	var event streamEvent
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return []*providers.StreamChunk{{
			Err: providers.WrapInternalError("claude-code", "invalid JSON in claude stream", err),
		}}, false
	}

	switch event.Type {
	case "result":
		finish := providers.FinishReasonStop
		return []*providers.StreamChunk{{IsFinal: true, FinishReason: &finish}}, true
	case "assistant":
		var text strings.Builder
		if event.Message != nil {
			for _, block := range event.Message.Content {
				if block.Type == "text" {
					text.WriteString(block.Text)
				}
			}
		}
		return []*providers.StreamChunk{{Delta: text.String()}}, false
	default:
		return []*providers.StreamChunk{{}}, false
	}
}
