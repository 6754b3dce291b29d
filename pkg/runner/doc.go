// Package runner contains the subprocess machinery shared by all
// provider adapters: binary discovery, the environment sandbox, the
// bounded process runner, the guarded stream, the capability and
// readiness probes, and the optional container execution backend.
//
// Nothing in this package knows about chat semantics. It spawns
// commands, bounds what they can read and write, and guarantees that
// children die when their callers walk away.
package runner
