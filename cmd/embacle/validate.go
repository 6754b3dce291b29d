package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"embacle-hq/embacle/pkg/config"
	"embacle-hq/embacle/pkg/providers"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply environment overrides, and report
every validation problem found.

A missing configuration file is not an error: the gateway runs with
built-in defaults. Unknown YAML keys and out-of-range values are
reported with their field paths.

Examples:
  # Validate the default configuration (always passes)
  embacle validate

  # Validate a specific file
  embacle validate --config /etc/embacle/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ Configuration invalid (%d problems)\n", len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return fmt.Errorf("configuration validation failed")
		}
		return err
	}

	if cfgFile != "" {
		fmt.Printf("✓ Configuration valid: %s\n", cfgFile)
	} else {
		fmt.Println("✓ Configuration valid (built-in defaults)")
	}

	if _, err := providers.ParseKind(cfg.Server.DefaultProvider); err != nil {
		fmt.Printf("✗ %v\n", err)
		return fmt.Errorf("configuration validation failed")
	}
	fmt.Printf("✓ Default provider: %s\n", cfg.Server.DefaultProvider)

	if cfg.Audit.Enabled {
		fmt.Printf("✓ Audit trail: %s (%s)\n", cfg.Audit.Path, cfg.Audit.Driver)
	}
	if cfg.Container.Enabled {
		fmt.Printf("✓ Container backend: %s\n", cfg.Container.Image)
	}

	return nil
}
