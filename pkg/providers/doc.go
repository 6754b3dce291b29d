// Package providers defines the provider abstraction shared by every
// CLI-backed adapter: the chat data model, the streaming chunk contract,
// the capability and readiness descriptors, the error taxonomy, the
// prompt assembler, and the provider/model address resolver.
//
// Concrete adapters live in subpackages (claude, copilot, cursor,
// opencode) and are constructed through pkg/providerfactory. The
// subprocess machinery they share lives in pkg/runner.
package providers
