package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/cli"
	"embacle-hq/embacle/pkg/config"
	"embacle-hq/embacle/pkg/providerfactory"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/server"
	"embacle-hq/embacle/pkg/telemetry/logging"
	"embacle-hq/embacle/pkg/telemetry/metrics"
)

var serveFlags struct {
	host     string
	port     int
	provider string
	logLevel string
	dryRun   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the OpenAI-compatible REST front",
	Long: `Start the REST front of the gateway.

The server exposes POST /v1/chat/completions, GET /v1/models, and
GET /health, brokering requests to locally installed AI coding
assistant CLIs. Setting EMBACLE_API_KEY activates bearer-token
authentication; the key is re-read on every request so it can be
rotated without a restart.

Examples:
  # Start with defaults (127.0.0.1:3000, copilot as default provider)
  embacle serve

  # Start with a config file and a different default provider
  embacle serve --config /etc/embacle/config.yaml --provider claude_code

  # Validate config and wiring without listening
  embacle serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.host, "host", "", "override bind host")
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "override bind port")
	serveCmd.Flags().StringVar(&serveFlags.provider, "provider", "", "override default provider")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if serveFlags.host != "" {
		cfg.Server.Host = serveFlags.host
	}
	if serveFlags.port != 0 {
		cfg.Server.Port = serveFlags.port
	}
	if serveFlags.provider != "" {
		cfg.Server.DefaultProvider = serveFlags.provider
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	defaultKind, err := providers.ParseKind(cfg.Server.DefaultProvider)
	if err != nil {
		return cli.NewConfigError("server.default_provider", err.Error())
	}

	if serveFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Embacle v%s\n", Version)
	if cfgFile != "" {
		fmt.Printf("Loading configuration from: %s\n", cfgFile)
	}
	fmt.Println("✓ Configuration loaded")

	// Adapters are constructed lazily on first use; the registry binds
	// them to the config's binary/model/timeout settings.
	registry := providerfactory.NewRegistryWithConfig(defaultKind, cfg.RunnerConfigFor)
	fmt.Printf("✓ Provider registry ready (default: %s)\n", defaultKind)

	var gm *metrics.GatewayMetrics
	if cfg.Telemetry.Metrics.Enabled {
		gm = metrics.New(cfg.Telemetry.Metrics, nil)
		fmt.Println("✓ Metrics enabled")
	}

	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		storage, pruner, err := openAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer storage.Close()

		recorder = audit.NewRecorder(storage, &audit.RecorderConfig{
			AsyncBuffer: cfg.Audit.AsyncBuffer,
		})
		defer recorder.Close()

		if pruner != nil {
			if err := pruner.Start(context.Background()); err != nil {
				slog.Warn("failed to start audit retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
			}
		}
		fmt.Println("✓ Audit trail enabled")
	}

	srv := server.New(cfg.Server, registry, gm, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hot-reload: re-read log level and swap the config store on file
	// changes. Subprocess settings stay fixed for the process lifetime.
	store := config.NewStore(cfg)
	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, slog.Default().With("component", "config_watcher"))
		if err != nil {
			slog.Warn("config watcher unavailable", "error", err)
		} else {
			go func() {
				err := watcher.Watch(ctx, func() error {
					next, err := config.LoadConfigWithEnvOverrides(cfgFile)
					if err != nil {
						return err
					}
					store.Swap(next)
					return logging.SetLevel(next.Telemetry.Logging.Level)
				})
				if err != nil {
					slog.Warn("config watcher stopped", "error", err)
				}
			}()
			defer watcher.Stop()
		}
	}

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", srv.Addr())
	fmt.Printf("✓ Health endpoint: http://%s/health\n", srv.Addr())
	if gm != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", srv.Addr())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until SIGINT/SIGTERM, context cancellation, or a
	// listener error, and shuts down gracefully on its own.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// openAuditStorage builds the audit store and, when a prune schedule is
// configured, its retention pruner.
func openAuditStorage(cfg *config.Config) (audit.Storage, *audit.Pruner, error) {
	storage, err := audit.NewSQLiteStorage(&audit.SQLiteConfig{
		Driver:  cfg.Audit.Driver,
		Path:    cfg.Audit.Path,
		WALMode: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit storage: %w", err)
	}

	var pruner *audit.Pruner
	if cfg.Audit.PruneSchedule != "" {
		pruner = audit.NewPruner(storage, &audit.PrunerConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			MaxRecords:    cfg.Audit.MaxRecords,
			Schedule:      cfg.Audit.PruneSchedule,
		})
	}

	return storage, pruner, nil
}
