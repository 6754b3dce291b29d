package providers

import "testing"

func TestKindConstants(t *testing.T) {
	tests := []struct {
		kind    Kind
		display string
		binary  string
		envKey  string
	}{
		{ClaudeCode, "claude_code", "claude", "CLAUDE_CODE_BINARY"},
		{Copilot, "copilot", "copilot", "COPILOT_BINARY"},
		{CursorAgent, "cursor_agent", "cursor-agent", "CURSOR_AGENT_BINARY"},
		{OpenCode, "opencode", "opencode", "OPENCODE_BINARY"},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.display {
				t.Errorf("String() = %q, want %q", got, tt.display)
			}
			if got := tt.kind.BinaryName(); got != tt.binary {
				t.Errorf("BinaryName() = %q, want %q", got, tt.binary)
			}
			if got := tt.kind.EnvOverride(); got != tt.envKey {
				t.Errorf("EnvOverride() = %q, want %q", got, tt.envKey)
			}
		})
	}
}

func TestAllKindsOrder(t *testing.T) {
	kinds := AllKinds()
	want := []Kind{ClaudeCode, Copilot, CursorAgent, OpenCode}
	if len(kinds) != len(want) {
		t.Fatalf("AllKinds() returned %d kinds, want %d", len(kinds), len(want))
	}
	for i, k := range want {
		if kinds[i] != k {
			t.Errorf("AllKinds()[%d] = %v, want %v", i, kinds[i], k)
		}
	}
}

func TestVersionAtLeast(t *testing.T) {
	tests := []struct {
		v, min Version
		want   bool
	}{
		{Version{1, 0, 0}, Version{1, 0, 0}, true},
		{Version{1, 0, 18}, Version{1, 0, 0}, true},
		{Version{0, 9, 9}, Version{1, 0, 0}, false},
		{Version{2, 0, 0}, Version{1, 9, 9}, true},
		{Version{1, 2, 0}, Version{1, 2, 1}, false},
		{Version{0, 3, 1}, Version{0, 1, 0}, true},
	}

	for _, tt := range tests {
		if got := tt.v.AtLeast(tt.min); got != tt.want {
			t.Errorf("%v.AtLeast(%v) = %v, want %v", tt.v, tt.min, got, tt.want)
		}
	}
}

func TestCapabilitiesIsCompatible(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want bool
	}{
		{"meets minimum with json", Capabilities{JSONOutput: true, MeetsMinimumVersion: true}, true},
		{"meets minimum without json", Capabilities{MeetsMinimumVersion: true}, false},
		{"json but below minimum", Capabilities{JSONOutput: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.IsCompatible(); got != tt.want {
				t.Errorf("IsCompatible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeaturesHas(t *testing.T) {
	fs := FeatureStreaming | FeatureSystemMessages

	if !fs.Has(FeatureStreaming) {
		t.Error("expected FeatureStreaming")
	}
	if !fs.Has(FeatureStreaming | FeatureSystemMessages) {
		t.Error("expected combined flags")
	}
	if fs.Has(FeatureVision) {
		t.Error("did not expect FeatureVision")
	}
	if Features(0).Has(FeatureStreaming) {
		t.Error("empty set claims FeatureStreaming")
	}
}

func TestReadinessStateString(t *testing.T) {
	if got := StateReady.String(); got != "ready" {
		t.Errorf("StateReady.String() = %q", got)
	}
	if got := StateBinaryMissing.String(); got != "binary_missing" {
		t.Errorf("StateBinaryMissing.String() = %q", got)
	}
}
