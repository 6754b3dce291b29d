package cursor

import (
	"encoding/json"
	"strings"

	"embacle-hq/embacle/pkg/providers"
)

// streamEvent is one line of `--output-format stream-json` output.
type streamEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Result  string `json:"result"`
}

// translateLine converts one stream-json event line into stream chunks.
//
// "content" events carry incremental text deltas. The "result" event
// carries the full final text and ends the stream. Other event types
// pass through as empty keep-alive chunks.
func translateLine(line string) ([]*providers.StreamChunk, bool) {
	if strings.TrimSpace(line) == "" {
		return []*providers.StreamChunk{{}}, false
	}

	var event streamEvent
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		return []*providers.StreamChunk{{
			Err: providers.WrapInternalError("cursor-agent", "invalid JSON in cursor-agent stream", err),
		}}, false
	}

	switch event.Type {
	case "result":
		finish := providers.FinishReasonStop
		return []*providers.StreamChunk{{Delta: event.Result, IsFinal: true, FinishReason: &finish}}, true
	case "content":
		return []*providers.StreamChunk{{Delta: event.Content}}, false
	default:
		return []*providers.StreamChunk{{}}, false
	}
}
