package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"embacle-hq/embacle/pkg/cli"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/runner"
)

var doctorFlags struct {
	format string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check provider installation and authentication",
	Long: `Probe every supported provider CLI and report its state.

For each provider the doctor resolves the binary (honoring the
<PROVIDER>_BINARY environment overrides), probes its version against
the minimum the gateway supports, and runs the provider's readiness
check (authentication status where the CLI exposes one).

Examples:
  # Human-readable table
  embacle doctor

  # Machine-readable report
  embacle doctor --format json`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVar(&doctorFlags.format, "format", "text", "output format: text, json")
}

// doctorReport is one provider's diagnostic result.
type doctorReport struct {
	Provider   string                  `json:"provider"`
	Binary     string                  `json:"binary,omitempty"`
	Version    string                  `json:"version,omitempty"`
	Compatible *bool                   `json:"compatible,omitempty"`
	State      string                  `json:"state"`
	Reason     string                  `json:"reason,omitempty"`
	Action     string                  `json:"action,omitempty"`
	Caps       *providers.Capabilities `json:"capabilities,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(doctorFlags.format)
	if err != nil {
		return err
	}

	ctx := context.Background()
	reports := make([]doctorReport, 0, len(providers.AllKinds()))
	for _, kind := range providers.AllKinds() {
		reports = append(reports, probeProvider(ctx, kind))
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, reports)
	}

	table := cli.NewTable(os.Stdout, "PROVIDER", "BINARY", "VERSION", "COMPATIBLE", "STATE", "ACTION")
	for _, r := range reports {
		compatible := "-"
		if r.Compatible != nil {
			compatible = fmt.Sprintf("%t", *r.Compatible)
		}
		version := r.Version
		if version == "" {
			version = "-"
		}
		binary := r.Binary
		if binary == "" {
			binary = "-"
		}
		action := r.Action
		if action == "" {
			action = r.Reason
		}
		table.Row(r.Provider, binary, version, compatible, r.State, action)
	}
	return table.Flush()
}

// probeProvider resolves one provider's binary and runs the capability
// and readiness probes against it.
func probeProvider(ctx context.Context, kind providers.Kind) doctorReport {
	report := doctorReport{Provider: kind.String()}

	binaryPath, err := runner.ResolveBinary(kind)
	if err != nil {
		report.State = providers.StateBinaryMissing.String()
		report.Reason = fmt.Sprintf("binary %q not found", kind.BinaryName())
		report.Action = fmt.Sprintf("Install the %s CLI or set %s", kind.BinaryName(), kind.EnvOverride())
		return report
	}
	report.Binary = binaryPath

	if caps, err := runner.CheckCapabilities(ctx, kind, binaryPath); err == nil {
		report.Caps = caps
		report.Version = caps.VersionString
		compatible := caps.IsCompatible()
		report.Compatible = &compatible
	}

	readiness := runner.CheckReadiness(ctx, kind, binaryPath)
	report.State = readiness.State.String()
	report.Reason = readiness.Reason
	report.Action = readiness.Action
	return report
}
