package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "embacle",
	Short: "Embacle - LLM gateway over local AI coding-assistant CLIs",
	Long: `Embacle is an LLM gateway that fronts locally installed AI coding
assistants (claude, copilot, cursor-agent, opencode) with a uniform
chat-completion surface.

It runs the underlying CLI tools as sandboxed subprocesses, providing:
  - An OpenAI-compatible REST API
  - A Model Context Protocol (MCP) endpoint over stdio or HTTP
  - provider:model addressing across every installed CLI
  - Multiplex fan-out of one prompt to several providers at once

For more information, visit: https://github.com/embacle-hq/embacle`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
