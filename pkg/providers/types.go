package providers

import "fmt"

// Kind identifies one of the supported CLI providers. The set is closed:
// adding a provider means adding an adapter, a binary name, and an
// environment override key.
type Kind int

const (
	// ClaudeCode is the Anthropic `claude` CLI.
	ClaudeCode Kind = iota

	// Copilot is the GitHub `copilot` CLI.
	Copilot

	// CursorAgent is the `cursor-agent` CLI.
	CursorAgent

	// OpenCode is the `opencode` CLI.
	OpenCode
)

// AllKinds returns every provider kind in discovery order.
func AllKinds() []Kind {
	return []Kind{ClaudeCode, Copilot, CursorAgent, OpenCode}
}

// String returns the canonical identifier used in logs, error messages,
// and on-wire model addresses (e.g. "claude_code:opus").
func (k Kind) String() string {
	switch k {
	case ClaudeCode:
		return "claude_code"
	case Copilot:
		return "copilot"
	case CursorAgent:
		return "cursor_agent"
	case OpenCode:
		return "opencode"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// BinaryName returns the executable name searched for on PATH.
func (k Kind) BinaryName() string {
	switch k {
	case ClaudeCode:
		return "claude"
	case Copilot:
		return "copilot"
	case CursorAgent:
		return "cursor-agent"
	case OpenCode:
		return "opencode"
	}
	return ""
}

// EnvOverride returns the environment variable that overrides the binary
// path for this kind. An empty value means no override is set.
func (k Kind) EnvOverride() string {
	switch k {
	case ClaudeCode:
		return "CLAUDE_CODE_BINARY"
	case Copilot:
		return "COPILOT_BINARY"
	case CursorAgent:
		return "CURSOR_AGENT_BINARY"
	case OpenCode:
		return "OPENCODE_BINARY"
	}
	return ""
}

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// ChatRequest is a provider-agnostic completion request. Adapters
// translate it into the argument grammar of their CLI.
type ChatRequest struct {
	// Messages is the ordered conversation history. At least one message
	// is required for a completion.
	Messages []ChatMessage `json:"messages"`

	// Model optionally overrides the adapter's default model.
	Model *string `json:"model,omitempty"`

	// Temperature is advisory; CLIs without a temperature control
	// log and ignore it. Valid range is [0.0, 2.0].
	Temperature *float64 `json:"temperature,omitempty"`

	// MaxTokens is advisory; only Claude Code can honour it (via its
	// environment). Must be positive when set.
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Stream requests incremental delivery via CompleteStream.
	Stream bool `json:"stream,omitempty"`
}

// Usage reports token consumption for a completion, when the underlying
// CLI provides it.
type Usage struct {
	// PromptTokens is the number of tokens in the prompt
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens generated
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the sum of prompt and completion tokens
	TotalTokens int `json:"total_tokens"`
}

// ChatResponse is a provider-agnostic completion response, normalised
// from the CLI's output format.
type ChatResponse struct {
	// Content is the generated text
	Content string `json:"content"`

	// Model is the adapter-reported model identifier
	Model string `json:"model"`

	// Usage is nil when the CLI does not report token counts
	Usage *Usage `json:"usage,omitempty"`

	// FinishReason indicates why generation stopped (usually "stop");
	// nil when the CLI does not report one
	FinishReason *string `json:"finish_reason,omitempty"`
}

// StreamChunk is a single increment of a streaming response.
//
// A stream delivers chunks over a channel that closes when the stream
// ends. At most one chunk has IsFinal set, and it is the last chunk
// sent. Empty deltas are legal and must be tolerated by consumers.
// Errors during streaming are carried in Err on the last chunk.
type StreamChunk struct {
	// Delta is the incremental content in this chunk
	Delta string `json:"delta"`

	// IsFinal marks the terminal chunk of the stream
	IsFinal bool `json:"is_final"`

	// FinishReason is set on the final chunk when known
	FinishReason *string `json:"finish_reason,omitempty"`

	// Err is set if the stream failed; no further chunks follow
	Err error `json:"-"`
}

// ResolvedAddress is the outcome of parsing a model address string.
// A nil Model means "use the provider's default model".
type ResolvedAddress struct {
	Provider Kind
	Model    *string
}

// Features is a bit set of optional provider behaviours. Adapters
// declare what their CLI can do; callers use the flags to pick request
// shapes (e.g. split vs. combined prompts).
type Features uint8

const (
	// FeatureStreaming indicates incremental response delivery.
	FeatureStreaming Features = 1 << iota

	// FeatureFunctionCalling indicates tool/function call support.
	FeatureFunctionCalling

	// FeatureVision indicates image input support.
	FeatureVision

	// FeatureJSONMode indicates JSON-mode output support.
	FeatureJSONMode

	// FeatureSystemMessages indicates a dedicated system-prompt flag.
	FeatureSystemMessages
)

// Has reports whether all flags in f are present.
func (fs Features) Has(f Features) bool {
	return fs&f == f
}

// Version is a parsed semantic version.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// AtLeast reports whether v is greater than or equal to min.
func (v Version) AtLeast(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	if v.Minor != min.Minor {
		return v.Minor > min.Minor
	}
	return v.Patch >= min.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Capabilities describes what a provider's installed CLI supports:
// the feature flags are constants per kind, the version fields come
// from probing the binary.
type Capabilities struct {
	// Runner is the canonical provider identifier
	Runner string `json:"runner"`

	// VersionString is the raw output of the version command
	VersionString string `json:"version_string"`

	// ParsedVersion is nil when the version output was unparseable
	ParsedVersion *Version `json:"parsed_version,omitempty"`

	// JSONOutput indicates structured (JSON) output support
	JSONOutput bool `json:"json_output"`

	// Streaming indicates line-delimited streaming output support
	Streaming bool `json:"streaming"`

	// SystemPrompt indicates a dedicated system-prompt flag
	SystemPrompt bool `json:"system_prompt"`

	// SessionResume indicates session-id resume support
	SessionResume bool `json:"session_resume"`

	// MeetsMinimumVersion is true when the parsed version is at least
	// the per-provider minimum
	MeetsMinimumVersion bool `json:"meets_minimum_version"`
}

// IsCompatible reports whether the installed CLI can serve the gateway:
// it must meet the minimum version and support structured output.
func (c Capabilities) IsCompatible() bool {
	return c.MeetsMinimumVersion && c.JSONOutput
}

// ReadinessState classifies the result of a readiness probe.
type ReadinessState int

const (
	// StateReady means the CLI is installed and authenticated.
	StateReady ReadinessState = iota

	// StateNotReady means the CLI responded but is not usable yet,
	// typically because authentication is missing.
	StateNotReady

	// StateBinaryMissing means the binary could not be resolved.
	StateBinaryMissing

	// StateUnknown means the probe itself failed to run.
	StateUnknown
)

func (s ReadinessState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateNotReady:
		return "not_ready"
	case StateBinaryMissing:
		return "binary_missing"
	case StateUnknown:
		return "unknown"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Readiness is the outcome of a readiness probe. Probes never fail
// upward; every failure mode is encoded here.
type Readiness struct {
	// State is the probe classification
	State ReadinessState

	// Reason explains a NotReady or Unknown state
	Reason string

	// Action is a remediation hint for NotReady states
	// (e.g. "Run `claude auth login` to authenticate")
	Action string

	// Expected is the binary name that could not be found, for
	// BinaryMissing states
	Expected string
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
