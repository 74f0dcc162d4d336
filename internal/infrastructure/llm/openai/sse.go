package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// parseSSEStream reads a text/event-stream response, forwarding each non-empty
// content delta to deltaCh in emission order and accumulating the full text.
//
// Termination, in layers:
//
//	L1: finish_reason on a choice (some APIs never send [DONE])
//	L2: the literal [DONE] frame
//	L3: 60s read idle timeout (stale connection)
//
// The caller owns deltaCh; this function never closes it.
func parseSSEStream(ctx context.Context, reader io.Reader, deltaCh chan<- string, logger *zap.Logger) (string, error) {
	idleTimeout := 60 * time.Second
	tReader := &timedReader{r: reader, timeout: idleTimeout}

	scanner := bufio.NewScanner(tReader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line

	var contentBuilder strings.Builder

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		line := scanner.Text()

		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk StreamChunkData
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			logger.Debug("Skip unparseable SSE chunk", zap.Error(err))
			continue
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			contentBuilder.WriteString(choice.Delta.Content)
			select {
			case deltaCh <- choice.Delta.Content:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			logger.Debug("SSE stream: finish_reason received",
				zap.String("finish_reason", *choice.FinishReason))
			break
		}
	}

	if err := scanner.Err(); err != nil {
		if isIdleTimeoutErr(err) {
			logger.Warn("SSE stream idle timeout, API stalled",
				zap.Duration("idle_timeout", idleTimeout))
			if contentBuilder.Len() == 0 {
				return "", fmt.Errorf("SSE stream stalled: no data for %v", idleTimeout)
			}
			logger.Info("Returning partial SSE response after idle timeout")
		} else {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("SSE scan error: %w", err)
		}
	}

	return contentBuilder.String(), nil
}

// --- SSE idle timeout support ---

var errIdleTimeout = fmt.Errorf("SSE read idle timeout")

// timedReader wraps an io.Reader and applies a per-Read deadline.
type timedReader struct {
	r       io.Reader
	timeout time.Duration
}

func (t *timedReader) Read(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := t.r.Read(p)
		ch <- result{n, err}
	}()

	select {
	case res := <-ch:
		return res.n, res.err
	case <-time.After(t.timeout):
		return 0, errIdleTimeout
	}
}

func isIdleTimeoutErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SSE read idle timeout")
}
