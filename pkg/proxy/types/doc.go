// Package types defines the OpenAI-compatible wire types for the REST
// surface: chat completion requests and responses, streaming chunks,
// the multiplex response extension, the models listing, the health
// report, and the error envelope.
//
// The JSON shapes follow the OpenAI chat completion API where the API
// defines them, so off-the-shelf OpenAI SDKs work against the gateway
// unchanged. The multiplex response (object "chat.completion.multiplex")
// is a non-standard extension for fan-out requests.
package types
