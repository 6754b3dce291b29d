package providers

import (
	"fmt"
	"strings"
)

// BuildCombined serialises a conversation into a single prompt string.
// Each message becomes a "[role]\ncontent" block; blocks are joined by
// blank lines. Used by CLIs without a separate system-prompt flag.
func BuildCombined(messages []ChatMessage) string {
	blocks := make([]string, 0, len(messages))
	for _, m := range messages {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", m.Role, m.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// BuildSplit separates the system prompt from the conversation body for
// CLIs that take a dedicated system-prompt flag. It returns the content
// of the first system message (nil if there is none) and the combined
// text of the non-system messages in their original order.
func BuildSplit(messages []ChatMessage) (system *string, user string) {
	rest := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			if system == nil {
				content := m.Content
				system = &content
			}
			continue
		}
		rest = append(rest, m)
	}
	return system, BuildCombined(rest)
}
