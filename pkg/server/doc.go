// Package server provides the HTTP server for the REST surface. It
// mounts the chat completion, models, health, and metrics routes,
// applies the middleware chain, and handles graceful shutdown on
// signals or context cancellation.
package server
