// Package assistant streams chat completions from an OpenAI-compatible
// endpoint and runs the tool-calling loop that lets the model drive the
// household mutation gateways.
package assistant

import (
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Message is one turn of the chat transcript, in the OpenAI chat format.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a model-issued request to execute one tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// RetryConfig holds retry settings for completion requests.
type RetryConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        15 * time.Second,
	}
}

// Client talks to one OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL       string
	model         string
	apiKey        string
	httpClient    *http.Client
	retryConfig   RetryConfig
	logger        *slog.Logger
	maxToolRounds int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) { client.httpClient = c }
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(client *Client) { client.retryConfig = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) { client.logger = logger }
}

// WithMaxToolRounds caps how many times a single Stream call may go back to
// the model after executing tools.
func WithMaxToolRounds(n int) Option {
	return func(client *Client) { client.maxToolRounds = n }
}

// New creates a client for the given endpoint and model. An empty baseURL
// targets the public OpenAI API.
func New(baseURL, model, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		model:       model,
		apiKey:      apiKey,
		retryConfig: DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // allow time for long completions
		},
		logger:        slog.Default(),
		maxToolRounds: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// completionsURL builds the chat-completions endpoint from the base URL.
func (c *Client) completionsURL() string {
	base := c.baseURL
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	base = strings.TrimSuffix(base, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// backoff computes the jittered exponential delay before the given attempt.
func (c *Client) backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= c.retryConfig.BackoffMultiplier
	}
	d := time.Duration(float64(c.retryConfig.BackoffBase) * multiplier)
	if d > c.retryConfig.MaxBackoff {
		d = c.retryConfig.MaxBackoff
	}
	jitter := float64(d) * 0.25 * (rand.Float64()*2 - 1)
	return d + time.Duration(jitter)
}
