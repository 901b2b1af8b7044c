// Command mock-spark runs a deterministic Spark chat server for local
// development and conformance testing. It returns predictable responses
// based on request content, in both buffered and SSE streaming mode, and
// includes reasoning_content so clients can exercise their show-thinking
// handling.
//
// Configuration is loaded via pkg/config (spark.yaml / SPARK_* env vars):
//
//	SPARK_MOCK_PORT      - Listen port (default: 9090)
//	SPARK_MOCK_AUTH_TYPE - "none", "apikey", or "jwt" (default: none)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrPeterss/infosci-spark-client/pkg/auth"
	"github.com/MrPeterss/infosci-spark-client/pkg/auth/apikey"
	authjwt "github.com/MrPeterss/infosci-spark-client/pkg/auth/jwt"
	"github.com/MrPeterss/infosci-spark-client/pkg/config"
	"github.com/MrPeterss/infosci-spark-client/pkg/debug"
	"github.com/MrPeterss/infosci-spark-client/pkg/observability"
	"github.com/MrPeterss/infosci-spark-client/pkg/spark"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	debug.Init(cfg.Debug.Categories, cfg.Debug.Level)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", handleChat)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if cfg.Mock.Metrics.Enabled {
		mux.Handle("GET "+cfg.Mock.Metrics.Path, promhttp.Handler())
	}

	handler := observability.MetricsMiddleware(
		auth.Middleware(buildAuthChain(&cfg.Mock.Auth), auth.DefaultBypassEndpoints)(mux),
	)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Mock.Port), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock spark backend starting", "port", cfg.Mock.Port, "auth", cfg.Mock.Auth.Type)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock spark backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock spark backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// buildAuthChain assembles the authenticator chain from configuration.
func buildAuthChain(cfg *config.Auth) *auth.Chain {
	chain := &auth.Chain{DefaultDecision: auth.No}

	switch cfg.Type {
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.APIKeys))
		for _, k := range cfg.APIKeys {
			subject := k.Subject
			if subject == "" {
				subject = "apikey-user"
			}
			entries = append(entries, apikey.RawKeyEntry{
				Key:      k.Key,
				Identity: auth.Identity{Subject: subject},
			})
		}
		chain.Authenticators = append(chain.Authenticators, apikey.New(entries))
	case "jwt":
		chain.Authenticators = append(chain.Authenticators, authjwt.New(authjwt.Config{
			Secret:   cfg.JWT.Secret,
			Issuer:   cfg.JWT.Issuer,
			Audience: cfg.JWT.Audience,
		}))
	default:
		chain.DefaultDecision = auth.Yes
	}

	return chain
}

// --- Handler ---

func handleChat(w http.ResponseWriter, r *http.Request) {
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

	debug.Log("mock", "chat request",
		"stream", req.Stream,
		"messages", len(req.Messages),
		"reasoning_level", req.ReasoningLevel,
	)

	content := responseText(&req)
	reasoning := reasoningText(req.ReasoningLevel)

	if req.Stream {
		handleStreaming(w, content, reasoning)
		return
	}

	resp := spark.ChatCompletionResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Model:  "spark-mock",
		Choices: []spark.ChatChoice{
			{
				Index: 0,
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

// responseText picks a deterministic reply based on the last user message.
func responseText(req *spark.ChatRequest) string {
	lastMsg := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			lastMsg = req.Messages[i].Content
			break
		}
	}

	lower := strings.ToLower(lastMsg)
	switch {
	case strings.Contains(lower, "count from 1 to 5"):
		return "1, 2, 3, 4, 5"
	case strings.Contains(lower, "seafood"):
		return "Lobster, without question."
	default:
		return "Hello, nice day!"
	}
}

// reasoningText scales the canned reasoning with the requested level.
func reasoningText(level string) string {
	base := "Let me think about this."
	switch level {
	case "medium":
		return base + " The question is simple, so a short answer suffices."
	case "high":
		return base + " The question is simple, so a short answer suffices." +
			" Checking for edge cases before answering: none apply."
	default:
		return base
	}
}

// --- Streaming ---

func handleStreaming(w http.ResponseWriter, content, reasoning string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// SSE comment, which conforming clients must skip.
	fmt.Fprintf(w, ": keep-alive\n\n")
	flusher.Flush()

	// Role chunk.
	writeChunk(w, spark.ChatChunkDelta{Role: "assistant"}, "")
	flusher.Flush()

	// Reasoning chunks, word by word.
	for _, token := range splitTokens(reasoning) {
		writeChunk(w, spark.ChatChunkDelta{ReasoningContent: token}, "")
		flusher.Flush()
	}

	// Content chunks.
	for _, token := range splitTokens(content) {
		writeChunk(w, spark.ChatChunkDelta{Content: token}, "")
		flusher.Flush()
	}

	// Finish chunk.
	writeChunk(w, spark.ChatChunkDelta{}, "stop")
	flusher.Flush()

	// Done sentinel.
	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// splitTokens breaks text into word-sized streaming tokens, keeping the
// separating spaces attached so concatenation reproduces the input.
func splitTokens(text string) []string {
	words := strings.Split(text, " ")
	tokens := make([]string, 0, len(words))
	for i, word := range words {
		if i < len(words)-1 {
			word += " "
		}
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func writeChunk(w http.ResponseWriter, delta spark.ChatChunkDelta, finishReason string) {
	chunk := spark.ChatCompletionChunk{
		ID:     "chatcmpl-mock-stream",
		Object: "chat.completion.chunk",
		Model:  "spark-mock",
		Choices: []spark.ChatChunkChoice{
			{Index: 0, Delta: delta, FinishReason: finishReason},
		},
	}

	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}
