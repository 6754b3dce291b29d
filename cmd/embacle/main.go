// Embacle is an LLM gateway over local AI coding-assistant CLIs.
//
// It presents a uniform chat-completion surface over the claude,
// copilot, cursor-agent, and opencode command-line tools, providing:
//   - An OpenAI-compatible REST API (POST /v1/chat/completions)
//   - A Model Context Protocol (MCP) front over stdio or HTTP
//   - provider:model addressing across every installed CLI
//   - Multiplex fan-out of one prompt to several providers
//
// Usage:
//
//	# Start the REST front
//	embacle serve --port 3000
//
//	# Start the MCP front on stdio
//	embacle mcp
//
//	# Check which providers are installed and authenticated
//	embacle doctor
//
//	# Validate a configuration file
//	embacle validate --config /etc/embacle/config.yaml
//
//	# Query the audit trail
//	embacle audit list --provider claude_code
//
// For complete documentation, see: https://github.com/embacle-hq/embacle
package main

func main() {
	Execute()
}
