package spark

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrPeterss/infosci-spark-client/pkg/debug"
	"github.com/MrPeterss/infosci-spark-client/pkg/observability"
)

// DefaultBaseURL is the well-known Spark API host used when no base URL is
// configured.
const DefaultBaseURL = "https://4300spark.infosci.cornell.edu"

// chatEndpointPath is appended to the base URL to form the chat endpoint.
const chatEndpointPath = "/api/chat"

// defaultTimeout applies to buffered requests when no timeout is configured.
// Streaming requests are not bounded by it; their lifetime is controlled by
// the caller's context.
const defaultTimeout = 120 * time.Second

// Client performs HTTP requests against the Spark chat API. It holds only
// fixed configuration and is safe for concurrent use; every call builds its
// own payload and headers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	chatURL    string
	apiKey     string
}

// NewClient creates a Client for the Spark API. An empty baseURL selects
// DefaultBaseURL and a zero timeout selects a default. No network activity
// occurs until the first call.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// Normalize: remove trailing slash from base URL.
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		chatURL: baseURL + chatEndpointPath,
		apiKey:  apiKey,
	}
}

// BaseURL returns the normalized base URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete performs a buffered chat request and returns one normalized
// result.
//
// A non-2xx status or connection failure is returned as a transport *Error.
// An unexpected response shape (missing or empty choices, or a body that is
// not JSON at all) is not an error: the raw body is handed back as the
// Content field with empty Reasoning.
func (c *Client) Complete(ctx context.Context, messages []Message, opts ChatOptions) (*ChatResult, error) {
	httpReq, err := c.newChatRequest(ctx, messages, opts, false)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("complete", "error").Inc()
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()
	observability.RequestDuration.WithLabelValues("complete").Observe(time.Since(start).Seconds())

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		observability.RequestsTotal.WithLabelValues("complete", "error").Inc()
		return nil, MapHTTPError(httpResp)
	}
	observability.RequestsTotal.WithLabelValues("complete", "success").Inc()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, MapNetworkError(err)
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(raw, &chatResp); err != nil || len(chatResp.Choices) == 0 {
		// Unexpected shape: hand back the raw body instead of failing.
		debug.Log("client", "response without usable choices, returning raw body",
			"body", debug.Truncate(string(raw), 200))
		return &ChatResult{Content: string(raw)}, nil
	}

	msg := chatResp.Choices[0].Message
	result := &ChatResult{Content: msg.Content}
	if opts.ShowThinking {
		result.Reasoning = msg.ReasoningContent
	}
	return result, nil
}

// Stream performs a streaming chat request and returns a ChatStream over the
// incremental results. A non-2xx status or connection failure is returned as
// a transport *Error before any result is produced.
//
// The returned stream holds the network connection open; callers must drain
// it or call Close. The HTTP client timeout is not applied because a stream
// can legitimately outlast any fixed timeout; lifecycle control relies on
// context cancellation instead.
func (c *Client) Stream(ctx context.Context, messages []Message, opts ChatOptions) (*ChatStream, error) {
	httpReq, err := c.newChatRequest(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}

	// Use a client without timeout for streaming. The context controls
	// the request lifetime instead.
	streamClient := &http.Client{
		Transport: c.httpClient.Transport,
	}

	httpResp, err := streamClient.Do(httpReq)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("stream", "error").Inc()
		return nil, MapNetworkError(err)
	}

	// Check for error status codes before starting the stream.
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		observability.RequestsTotal.WithLabelValues("stream", "error").Inc()
		mapped := MapHTTPError(httpResp)
		httpResp.Body.Close()
		return nil, mapped
	}
	observability.RequestsTotal.WithLabelValues("stream", "success").Inc()

	return newChatStream(httpResp.Body, opts.ShowThinking), nil
}

// newChatRequest validates the call options and builds the HTTP request.
// Validation happens before anything else so that a bad reasoning level
// never reaches the network.
func (c *Client) newChatRequest(ctx context.Context, messages []Message, opts ChatOptions, stream bool) (*http.Request, error) {
	if err := opts.ReasoningLevel.Validate(); err != nil {
		return nil, err
	}

	reqData := ChatRequest{
		Messages: messages,
		Stream:   stream,
	}
	if opts.ReasoningLevel != "" {
		reqData.ReasoningLevel = string(opts.ReasoningLevel)
	}

	body, err := json.Marshal(reqData)
	if err != nil {
		return nil, NewTransportError(0, "failed to marshal request: "+err.Error())
	}

	debug.Log("client", "chat request",
		"url", c.chatURL,
		"stream", stream,
		"messages", len(messages),
		"reasoning_level", reqData.ReasoningLevel,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError(0, "failed to create HTTP request: "+err.Error())
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	return httpReq, nil
}
