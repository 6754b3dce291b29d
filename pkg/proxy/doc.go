// Package proxy implements the OpenAI-compatible REST surface of the
// gateway: request parsing and validation, response formatting,
// Server-Sent Events streaming, and the mapping from provider errors
// to HTTP statuses.
//
// The package is organized as:
//   - proxy (this package): parse/write helpers shared by the handlers
//   - proxy/types: wire types for requests, responses, and errors
//   - proxy/handlers: the HTTP handlers for each route
//   - proxy/middleware: auth, request ID, logging, and panic recovery
//
// The HTTP server that mounts these pieces lives in pkg/server.
package proxy
