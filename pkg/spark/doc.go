// Package spark provides a client for the Information Science Department
// Spark chat API, an OpenAI-compatible Chat Completions endpoint. It handles
// request serialization, bearer authentication, response parsing, SSE chunk
// streaming, and error mapping.
//
// Responses are normalized to a ChatResult carrying the assistant content and,
// when requested, the model's reasoning text. The same shape is returned for
// buffered completions and for each incremental chunk of a streamed response.
package spark
