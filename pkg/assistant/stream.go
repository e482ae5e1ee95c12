package assistant

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody limits how much of an upstream error body gets read back.
const maxErrorBody = 64 * 1024

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []Message        `json:"messages"`
	Tools    []toolDefinition `json:"tools,omitempty"`
	Stream   bool             `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// turn is the accumulated outcome of one streamed completion.
type turn struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

// Stream runs the conversation until the model produces a reply with no
// further tool calls, forwarding every text delta to onDelta. Tool failures
// are fed back to the model as ordinary tool results; only transport-level
// problems surface as an error.
func (c *Client) Stream(ctx context.Context, messages []Message, tools []Tool, onDelta func(string)) error {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)

	for round := 0; ; round++ {
		t, err := c.streamTurnWithRetry(ctx, msgs, tools, onDelta)
		if err != nil {
			return err
		}
		if len(t.ToolCalls) == 0 {
			return nil
		}
		if round >= c.maxToolRounds {
			return fmt.Errorf("tool loop exceeded %d rounds", c.maxToolRounds)
		}

		msgs = append(msgs, Message{Role: "assistant", Content: t.Content, ToolCalls: t.ToolCalls})
		for _, call := range t.ToolCalls {
			result := c.executeTool(ctx, tools, call)
			payload, err := json.Marshal(result)
			if err != nil {
				payload = []byte(`{"success":false,"error":"unserializable tool result"}`)
			}
			msgs = append(msgs, Message{Role: "tool", ToolCallID: call.ID, Content: string(payload)})
		}
	}
}

// executeTool runs one tool call. Cancellation of the chat stream must not
// abort a creation already underway, so the tool runs on a context detached
// from the stream's.
func (c *Client) executeTool(ctx context.Context, tools []Tool, call ToolCall) any {
	tool := findTool(tools, call.Function.Name)
	if tool == nil {
		c.logger.Warn("model requested unknown tool", "tool", call.Function.Name)
		return map[string]any{"success": false, "error": "unknown tool: " + call.Function.Name}
	}
	result, err := tool.Execute(context.WithoutCancel(ctx), json.RawMessage(call.Function.Arguments))
	if err != nil {
		c.logger.Warn("tool execution failed", "tool", call.Function.Name, "error", err)
		return map[string]any{"success": false, "error": err.Error()}
	}
	return result
}

// streamTurnWithRetry retries transient failures, but only while nothing has
// been forwarded to the caller yet; a half-delivered reply cannot be replayed.
func (c *Client) streamTurnWithRetry(ctx context.Context, msgs []Message, tools []Tool, onDelta func(string)) (*turn, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryConfig.MaxAttempts; attempt++ {
		emitted := false
		t, err := c.streamTurn(ctx, msgs, tools, func(delta string) {
			emitted = true
			onDelta(delta)
		})
		if err == nil {
			return t, nil
		}
		lastErr = err
		if emitted || IsFatal(err) || attempt == c.retryConfig.MaxAttempts {
			return nil, err
		}
		wait := c.backoff(attempt)
		c.logger.Debug("completion failed, retrying", "attempt", attempt, "backoff", wait, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, lastErr
}

// streamTurn performs a single streamed completion request and accumulates
// the reply, forwarding content deltas as they arrive.
func (c *Client) streamTurn(ctx context.Context, msgs []Message, tools []Tool, onDelta func(string)) (*turn, error) {
	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: msgs,
		Tools:    wireTools(tools),
		Stream:   true,
	})
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), strings.NewReader(string(body)))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create HTTP request: %w", err))
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, classifyHTTPError(resp.StatusCode, errBody)
	}

	return readStream(resp.Body, onDelta)
}

// readStream consumes server-sent events until [DONE] or EOF.
func readStream(r io.Reader, onDelta func(string)) (*turn, error) {
	result := &turn{}
	// tool call fragments arrive keyed by index and must be stitched together
	calls := map[int]*ToolCall{}
	maxIndex := -1

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			if data == "[DONE]" {
				break
			}
			continue
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil, NewTransientError(fmt.Errorf("parse stream chunk: %w", err))
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			result.Content += choice.Delta.Content
			onDelta(choice.Delta.Content)
		}
		for _, tc := range choice.Delta.ToolCalls {
			call := calls[tc.Index]
			if call == nil {
				call = &ToolCall{}
				calls[tc.Index] = call
				if tc.Index > maxIndex {
					maxIndex = tc.Index
				}
			}
			if tc.ID != "" {
				call.ID = tc.ID
			}
			if tc.Type != "" {
				call.Type = tc.Type
			}
			if tc.Function.Name != "" {
				call.Function.Name = tc.Function.Name
			}
			call.Function.Arguments += tc.Function.Arguments
		}
		if choice.FinishReason != "" {
			result.FinishReason = choice.FinishReason
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, NewTransientError(fmt.Errorf("read stream: %w", err))
	}

	for i := 0; i <= maxIndex; i++ {
		if call := calls[i]; call != nil {
			result.ToolCalls = append(result.ToolCalls, *call)
		}
	}
	return result, nil
}

// classifyHTTPError splits upstream failures into retryable and permanent.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}
	err := fmt.Errorf("chat API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}
