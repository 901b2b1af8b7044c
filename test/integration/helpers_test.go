// Package integration contains end-to-end tests that run the Spark client
// against an in-process mock backend, covering the full path: request
// building, authentication, buffered and streaming responses, and error
// mapping.
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MrPeterss/infosci-spark-client/pkg/auth"
	"github.com/MrPeterss/infosci-spark-client/pkg/auth/apikey"
	"github.com/MrPeterss/infosci-spark-client/pkg/spark"
)

const testAPIKey = "integration-test-key"

// startMockBackend starts an in-process Spark backend with API key auth.
// It behaves like cmd/mock-spark: deterministic replies, reasoning content
// scaled by reasoning_level, SSE streaming with a [DONE] sentinel.
func startMockBackend(t *testing.T) *httptest.Server {
	t.Helper()

	chain := &auth.Chain{
		Authenticators: []auth.Authenticator{
			apikey.New([]apikey.RawKeyEntry{
				{Key: testAPIKey, Identity: auth.Identity{Subject: "integration"}},
			}),
		},
		DefaultDecision: auth.No,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", handleMockChat)

	server := httptest.NewServer(auth.Middleware(chain, auth.DefaultBypassEndpoints)(mux))
	t.Cleanup(server.Close)
	return server
}

func handleMockChat(w http.ResponseWriter, r *http.Request) {
	var req spark.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	switch req.ReasoningLevel {
	case "", "low", "medium", "high":
	default:
		http.Error(w, `{"error":{"message":"invalid reasoning_level","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	content := "The capital of France is Paris."
	reasoning := mockReasoning(req.ReasoningLevel)

	if req.Stream {
		writeMockStream(w, content, reasoning)
		return
	}

	resp := spark.ChatCompletionResponse{
		Choices: []spark.ChatChoice{
			{
				Message: spark.ChatResponseMessage{
					Role:             "assistant",
					Content:          content,
					ReasoningContent: reasoning,
				},
				FinishReason: "stop",
			},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// mockReasoning returns reasoning text whose length depends on the level,
// so tests can observe that the level reached the backend.
func mockReasoning(level string) string {
	switch level {
	case "high":
		return "Recalling geography. France is in Europe. Its capital is Paris."
	case "medium":
		return "Recalling geography. The capital is Paris."
	default:
		return "Recalling geography."
	}
}

func writeMockStream(w http.ResponseWriter, content, reasoning string) {
	flusher := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")

	fmt.Fprint(w, ": keep-alive\n\n")
	flusher.Flush()

	writeMockChunk(w, spark.ChatChunkDelta{Role: "assistant"}, "")
	for _, word := range strings.SplitAfter(reasoning, " ") {
		writeMockChunk(w, spark.ChatChunkDelta{ReasoningContent: word}, "")
	}
	for _, word := range strings.SplitAfter(content, " ") {
		writeMockChunk(w, spark.ChatChunkDelta{Content: word}, "")
	}
	writeMockChunk(w, spark.ChatChunkDelta{}, "stop")
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func writeMockChunk(w http.ResponseWriter, delta spark.ChatChunkDelta, finishReason string) {
	chunk := spark.ChatCompletionChunk{
		Choices: []spark.ChatChunkChoice{
			{Index: 0, Delta: delta, FinishReason: finishReason},
		},
	}
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// userMessage is a shorthand for a single-turn conversation.
func userMessage(content string) []spark.Message {
	return []spark.Message{{Role: "user", Content: content}}
}
