package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 1.0,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func writeSSE(w http.ResponseWriter, events ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	for _, e := range events {
		fmt.Fprintf(w, "data: %s\n\n", e)
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
}

func contentChunk(s string) string {
	return fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, s)
}

func TestStreamForwardsContentDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.True(t, req.Stream)

		writeSSE(w, contentChunk("Hel"), contentChunk("lo"))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", "test-key")
	var got strings.Builder
	err := c.Stream(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil, func(d string) {
		got.WriteString(d)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.String())
}

func TestStreamRunsToolLoop(t *testing.T) {
	var round atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch round.Add(1) {
		case 1:
			// tool call id, name and arguments arrive fragmented
			writeSSE(w,
				`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"createTask","arguments":""}}]}}]}`,
				`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"title\":"}}]}}]}`,
				`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"\"Buy milk\"}"}}]}}]}`,
				`{"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
			)
		default:
			assert.Contains(t, string(body), `"tool_call_id":"call_1"`)
			assert.Contains(t, string(body), `\"success\":true`)
			writeSSE(w, contentChunk("Created the task."))
		}
	}))
	defer srv.Close()

	var gotArgs string
	tools := []Tool{{
		Name: "createTask",
		Execute: func(_ context.Context, args json.RawMessage) (any, error) {
			gotArgs = string(args)
			return map[string]any{"success": true}, nil
		},
	}}

	c := New(srv.URL, "test-model", "")
	var got strings.Builder
	err := c.Stream(context.Background(), []Message{{Role: "user", Content: "add milk"}}, tools, func(d string) {
		got.WriteString(d)
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Buy milk"}`, gotArgs)
	assert.Equal(t, "Created the task.", got.String())
	assert.Equal(t, int32(2), round.Load())
}

func TestStreamFeedsToolFailureBackToModel(t *testing.T) {
	var round atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch round.Add(1) {
		case 1:
			writeSSE(w,
				`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"createTask","arguments":"{}"}}]}},{"finish_reason":"tool_calls"}]}`,
			)
		default:
			assert.Contains(t, string(body), `\"success\":false`)
			assert.Contains(t, string(body), "storage unavailable")
			writeSSE(w, contentChunk("Sorry, that failed."))
		}
	}))
	defer srv.Close()

	tools := []Tool{{
		Name: "createTask",
		Execute: func(_ context.Context, _ json.RawMessage) (any, error) {
			return nil, errors.New("storage unavailable")
		},
	}}

	c := New(srv.URL, "test-model", "")
	err := c.Stream(context.Background(), []Message{{Role: "user", Content: "add"}}, tools, func(string) {})
	require.NoError(t, err)
	assert.Equal(t, int32(2), round.Load())
}

func TestStreamReportsUnknownToolAsResult(t *testing.T) {
	var round atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch round.Add(1) {
		case 1:
			writeSSE(w,
				`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"launchRocket","arguments":"{}"}}]}}]}`,
			)
		default:
			assert.Contains(t, string(body), "unknown tool: launchRocket")
			writeSSE(w, contentChunk("I cannot do that."))
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", "")
	err := c.Stream(context.Background(), []Message{{Role: "user", Content: "go"}}, nil, func(string) {})
	require.NoError(t, err)
}

func TestStreamRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		writeSSE(w, contentChunk("ok"))
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", "", WithRetryConfig(testRetryConfig()))
	var got strings.Builder
	err := c.Stream(context.Background(), nil, nil, func(d string) { got.WriteString(d) })
	require.NoError(t, err)
	assert.Equal(t, "ok", got.String())
	assert.Equal(t, int32(2), attempts.Load())
}

func TestStreamDoesNotRetryFatalFailures(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "bad api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "test-model", "", WithRetryConfig(testRetryConfig()))
	err := c.Stream(context.Background(), nil, nil, func(string) {})
	require.Error(t, err)
	assert.True(t, IsFatal(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestStreamStopsRunawayToolLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w,
			`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"noop","arguments":"{}"}}]}}]}`,
		)
	}))
	defer srv.Close()

	tools := []Tool{{
		Name:    "noop",
		Execute: func(_ context.Context, _ json.RawMessage) (any, error) { return "ok", nil },
	}}

	c := New(srv.URL, "test-model", "", WithMaxToolRounds(1))
	err := c.Stream(context.Background(), nil, tools, func(string) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool loop")
}

func TestReadStreamAccumulatesParallelToolCalls(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":1,"id":"call_b","type":"function","function":{"name":"second","arguments":"{}"}}]}}]}`,
		``,
		`: keep-alive comment`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_a","type":"function","function":{"name":"first","arguments":"{}"}}]}}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	result, err := readStream(strings.NewReader(body), func(string) {})
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 2)
	assert.Equal(t, "first", result.ToolCalls[0].Function.Name)
	assert.Equal(t, "second", result.ToolCalls[1].Function.Name)
}

func TestClassifyHTTPError(t *testing.T) {
	assert.True(t, IsTransient(classifyHTTPError(http.StatusTooManyRequests, nil)))
	assert.True(t, IsTransient(classifyHTTPError(http.StatusBadGateway, nil)))
	assert.True(t, IsFatal(classifyHTTPError(http.StatusBadRequest, nil)))
	assert.True(t, IsFatal(classifyHTTPError(http.StatusUnauthorized, nil)))
}
