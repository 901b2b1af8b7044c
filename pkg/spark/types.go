package spark

import "fmt"

// Spark chat request/response types. These mirror the OpenAI Chat Completions
// wire format as served by the Spark API.

// Message represents a single turn in a conversation. The ordered message
// sequence forms the conversation history; order is caller-supplied and
// preserved as given.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReasoningLevel controls how much reasoning effort the model spends.
// The empty value leaves the level unset so the API default applies.
type ReasoningLevel string

const (
	ReasoningLow    ReasoningLevel = "low"
	ReasoningMedium ReasoningLevel = "medium"
	ReasoningHigh   ReasoningLevel = "high"
)

// Validate checks that the level is one of the recognized values or unset.
func (l ReasoningLevel) Validate() error {
	switch l {
	case "", ReasoningLow, ReasoningMedium, ReasoningHigh:
		return nil
	}
	return NewInvalidArgumentError("reasoning_level",
		fmt.Sprintf("reasoning_level must be %q, %q, %q, or unset, got %q",
			ReasoningLow, ReasoningMedium, ReasoningHigh, string(l)))
}

// ChatResult is a normalized chat response. In buffered mode it holds the
// complete assistant message; in streaming mode it holds one incremental
// delta. Reasoning is always empty unless ChatOptions.ShowThinking was set.
type ChatResult struct {
	Content   string `json:"content"`
	Reasoning string `json:"reasoning"`
}

// ChatOptions configures a single chat call.
type ChatOptions struct {
	// ShowThinking includes the model's reasoning text in results.
	// When false, ChatResult.Reasoning is forced to empty regardless of
	// what the backend sent.
	ShowThinking bool

	// ReasoningLevel optionally requests a reasoning effort level.
	ReasoningLevel ReasoningLevel
}

// ChatRequest is the request body for /api/chat. A fresh value is built for
// every call; reasoning_level is omitted entirely when unset.
type ChatRequest struct {
	Messages       []Message `json:"messages"`
	Stream         bool      `json:"stream"`
	ReasoningLevel string    `json:"reasoning_level,omitempty"`
}

// ChatCompletionResponse is the buffered response from /api/chat.
type ChatCompletionResponse struct {
	ID      string       `json:"id,omitempty"`
	Object  string       `json:"object,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []ChatChoice `json:"choices"`
}

// ChatChoice represents one completion choice.
type ChatChoice struct {
	Index        int                 `json:"index"`
	Message      ChatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason,omitempty"`
}

// ChatResponseMessage is the assistant message in a buffered response.
type ChatResponseMessage struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// ChatCompletionChunk is a single SSE chunk in a streaming response.
type ChatCompletionChunk struct {
	ID      string            `json:"id,omitempty"`
	Object  string            `json:"object,omitempty"`
	Model   string            `json:"model,omitempty"`
	Choices []ChatChunkChoice `json:"choices"`
}

// ChatChunkChoice represents a streaming choice delta. FinishReason is empty
// until the backend signals completion (null decodes to the empty string).
type ChatChunkChoice struct {
	Index        int            `json:"index"`
	Delta        ChatChunkDelta `json:"delta"`
	FinishReason string         `json:"finish_reason,omitempty"`
}

// ChatChunkDelta holds incremental content in a streaming chunk.
type ChatChunkDelta struct {
	Role             string `json:"role,omitempty"`
	Content          string `json:"content,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

// ChatErrorResponse is the error envelope returned by the backend.
type ChatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
