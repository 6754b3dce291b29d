// Package middleware provides the HTTP middleware for the REST
// surface: bearer-token authentication, request ID propagation,
// structured request logging, and panic recovery.
//
// Middleware compose as plain func(http.Handler) http.Handler
// wrappers. The server applies them inside-out, with recovery
// outermost so a panic anywhere in the chain still produces a
// well-formed error response.
package middleware
