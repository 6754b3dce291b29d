package providers

import (
	"fmt"
	"strings"
)

// ParseKind parses a provider name into a Kind. Matching is
// case-insensitive and accepts the documented aliases for each
// provider.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "claude_code", "claude", "claudecode":
		return ClaudeCode, nil
	case "copilot":
		return Copilot, nil
	case "cursor_agent", "cursoragent", "cursor-agent":
		return CursorAgent, nil
	case "opencode", "open_code":
		return OpenCode, nil
	}
	return 0, fmt.Errorf("unknown provider: %s", name)
}

// ValidKindNames returns the canonical provider names as a
// comma-separated list, for error messages.
func ValidKindNames() string {
	names := make([]string, 0, len(AllKinds()))
	for _, k := range AllKinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

// ResolveAddress parses a model address of the form "provider:model",
// "provider:", a bare provider name, or a bare model name.
//
//	"copilot:gpt-4o"    -> {Copilot, "gpt-4o"}
//	"copilot:"          -> {Copilot, default model}
//	"copilot"           -> {Copilot, default model}
//	"unknown:something" -> {defaultProvider, "unknown:something"}
//	"gpt-4o"            -> {defaultProvider, "gpt-4o"}
//
// Provider prefixes are case-insensitive and accept the same aliases
// as ParseKind. An unknown prefix is not an error: the entire input is
// treated as a model name for the default provider. An empty input
// selects the default provider with its default model.
func ResolveAddress(modelString string, defaultProvider Kind) ResolvedAddress {
	if modelString == "" {
		return ResolvedAddress{Provider: defaultProvider}
	}

	if prefix, rest, ok := strings.Cut(modelString, ":"); ok {
		if kind, err := ParseKind(prefix); err == nil {
			if rest == "" {
				return ResolvedAddress{Provider: kind}
			}
			model := rest
			return ResolvedAddress{Provider: kind, Model: &model}
		}
		model := modelString
		return ResolvedAddress{Provider: defaultProvider, Model: &model}
	}

	if kind, err := ParseKind(modelString); err == nil {
		return ResolvedAddress{Provider: kind}
	}

	model := modelString
	return ResolvedAddress{Provider: defaultProvider, Model: &model}
}

// Format renders the address back into "provider" or "provider:model"
// form using the canonical provider name.
func (a ResolvedAddress) Format() string {
	if a.Model == nil {
		return a.Provider.String()
	}
	return fmt.Sprintf("%s:%s", a.Provider, *a.Model)
}
