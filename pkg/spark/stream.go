package spark

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/MrPeterss/infosci-spark-client/pkg/debug"
	"github.com/MrPeterss/infosci-spark-client/pkg/observability"
)

// dataPrefix marks an SSE payload line.
const dataPrefix = "data: "

// doneSentinel is the stream-end marker sent by the backend.
const doneSentinel = "[DONE]"

// ChatStream iterates over the incremental results of a streaming chat
// request. It reads the underlying connection lazily: each Next call consumes
// lines only until one result is decoded.
//
// Usage:
//
//	stream, err := client.Stream(ctx, messages, opts)
//	if err != nil { ... }
//	defer stream.Close()
//	for stream.Next() {
//		chunk := stream.Current()
//		...
//	}
//	if err := stream.Err(); err != nil { ... }
//
// The stream terminates itself (and releases the connection) when the backend
// sends the [DONE] sentinel, when a chunk carries a finish_reason, or when
// the underlying reader is exhausted. Close is idempotent and covers early
// abandonment by the caller.
type ChatStream struct {
	body         io.ReadCloser
	scanner      *bufio.Scanner
	showThinking bool

	cur    ChatResult
	err    error
	done   bool
	closed bool
}

func newChatStream(body io.ReadCloser, showThinking bool) *ChatStream {
	scanner := bufio.NewScanner(body)
	// Grow the line buffer to accommodate large chunks.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	observability.StreamsActive.Inc()
	return &ChatStream{
		body:         body,
		scanner:      scanner,
		showThinking: showThinking,
	}
}

// Next advances to the next result. It returns false when the stream has
// terminated; check Err afterwards to distinguish a clean end from a read
// failure. After a chunk with a finish_reason has been returned, Next
// returns false without reading any further lines.
func (s *ChatStream) Next() bool {
	if s.done || s.closed {
		return false
	}

	for s.scanner.Scan() {
		res, emit, terminal := s.decodeLine(s.scanner.Text())
		if terminal {
			s.done = true
			s.Close()
		}
		if emit {
			s.cur = res
			return true
		}
		if terminal {
			return false
		}
	}

	// Reader exhausted without a sentinel, or the connection dropped.
	if err := s.scanner.Err(); err != nil {
		s.err = MapNetworkError(err)
	}
	s.done = true
	s.Close()
	return false
}

// decodeLine applies the per-line stream protocol. It reports whether a
// result should be emitted and whether the stream is terminal after this
// line. Anything that goes wrong while decoding a single line skips that
// line and never aborts the stream.
func (s *ChatStream) decodeLine(line string) (res ChatResult, emit, terminal bool) {
	// Skip keep-alive comments and lines that are empty after trimming.
	if strings.TrimSpace(line) == "" || strings.HasPrefix(line, ":") {
		return
	}

	payload := strings.TrimPrefix(line, dataPrefix)

	if strings.TrimSpace(payload) == doneSentinel {
		terminal = true
		return
	}

	var chunk ChatCompletionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		observability.StreamLinesSkipped.Inc()
		slog.Warn("skipping malformed stream line",
			"error", err.Error(),
			"data", debug.Truncate(payload, 200),
		)
		return
	}

	// A parsed chunk without usable choices produces nothing; keep reading.
	if len(chunk.Choices) == 0 {
		return
	}

	choice := chunk.Choices[0]
	res = ChatResult{Content: choice.Delta.Content}
	if s.showThinking {
		res.Reasoning = choice.Delta.ReasoningContent
	}
	emit = true
	terminal = choice.FinishReason != ""
	return
}

// Current returns the result decoded by the last successful Next call.
func (s *ChatStream) Current() ChatResult {
	return s.cur
}

// Err returns the first read failure encountered, or nil after a clean
// termination. Malformed lines are not failures; they are skipped.
func (s *ChatStream) Err() error {
	return s.err
}

// Close releases the underlying connection. It is safe to call multiple
// times and is invoked automatically when the stream terminates, so callers
// only need it to abandon a stream early.
func (s *ChatStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	observability.StreamsActive.Dec()
	return s.body.Close()
}
