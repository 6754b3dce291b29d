package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"embacle-hq/embacle/pkg/audit"
	"embacle-hq/embacle/pkg/cli"
	"embacle-hq/embacle/pkg/config"
	"embacle-hq/embacle/pkg/mcp"
	"embacle-hq/embacle/pkg/providerfactory"
	"embacle-hq/embacle/pkg/providers"
	"embacle-hq/embacle/pkg/telemetry/logging"
)

var mcpFlags struct {
	transport string
	host      string
	port      int
	provider  string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol front",
	Long: `Start the MCP front of the gateway.

The MCP server exposes provider configuration and prompting as tools
over JSON-RPC 2.0. The stdio transport reads newline-delimited JSON
messages on stdin and answers on stdout (all logs go to stderr); the
HTTP transport serves a single POST /mcp endpoint.

Examples:
  # Serve on stdio (for MCP clients that spawn the server)
  embacle mcp

  # Serve over HTTP
  embacle mcp --transport http --port 3001

  # Use Claude Code as the initially active provider
  embacle mcp --provider claude_code`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVarP(&mcpFlags.transport, "transport", "t", "", "transport: stdio or http")
	mcpCmd.Flags().StringVar(&mcpFlags.host, "host", "", "bind host for the http transport")
	mcpCmd.Flags().IntVarP(&mcpFlags.port, "port", "p", 0, "bind port for the http transport")
	mcpCmd.Flags().StringVar(&mcpFlags.provider, "provider", "", "initially active provider")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if mcpFlags.transport != "" {
		cfg.MCP.Transport = mcpFlags.transport
	}
	if mcpFlags.host != "" {
		cfg.MCP.Host = mcpFlags.host
	}
	if mcpFlags.port != 0 {
		cfg.MCP.Port = mcpFlags.port
	}
	if mcpFlags.provider != "" {
		cfg.Server.DefaultProvider = mcpFlags.provider
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	// Stdout carries protocol frames on the stdio transport, so logs
	// always go to stderr regardless of transport.
	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stderr); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	defaultKind, err := providers.ParseKind(cfg.Server.DefaultProvider)
	if err != nil {
		return cli.NewConfigError("server.default_provider", err.Error())
	}

	registry := providerfactory.NewRegistryWithConfig(defaultKind, cfg.RunnerConfigFor)

	var recorder *audit.Recorder
	if cfg.Audit.Enabled {
		storage, _, err := openAuditStorage(cfg)
		if err != nil {
			return cli.NewCommandError("mcp", err)
		}
		defer storage.Close()

		recorder = audit.NewRecorder(storage, &audit.RecorderConfig{
			AsyncBuffer: cfg.Audit.AsyncBuffer,
		})
		defer recorder.Close()
	}

	state := mcp.NewState(defaultKind, registry, nil, recorder)
	srv := mcp.NewServer(state, mcp.BuildToolRegistry())

	ctx := cli.SetupSignalHandler()

	switch cfg.MCP.Transport {
	case "stdio":
		return mcp.NewStdioTransport(srv).Serve(ctx)
	case "http":
		transport := mcp.NewHTTPTransport(cfg.MCP.Host, cfg.MCP.Port, srv)
		fmt.Fprintf(os.Stderr, "MCP server listening on http://%s/mcp\n", transport.Addr())
		return transport.Serve(ctx)
	default:
		return cli.NewConfigError("mcp.transport",
			fmt.Sprintf("unsupported transport %q (valid: stdio, http)", cfg.MCP.Transport))
	}
}
