package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"folio/internal/logging"
	"folio/internal/services"
)

// ClientConfig carries the settings needed to reach an OpenAI-compatible
// chat completion endpoint.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

const (
	defaultMaxAttempts  = 4
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 30 * time.Second
)

// Client speaks JSON-only chat completions and implements Service.
type Client struct {
	cfg          ClientConfig
	httpClient   *http.Client
	logger       *slog.Logger
	sleep        func(context.Context, time.Duration) error
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// Option adjusts client behavior, mainly for tests.
type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

func WithRetryPolicy(maxAttempts int, initialDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if initialDelay > 0 {
			c.initialDelay = initialDelay
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// NewClient validates the endpoint configuration and returns a ready client.
func NewClient(cfg ClientConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "new", "classifier API key is required", nil)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "new", "classifier base URL is required", nil)
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "new", "classifier model is required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logging.WithComponent(logger, "classifier"),
		sleep:        sleepWithContext,
		maxAttempts:  defaultMaxAttempts,
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string            `json:"model"`
	Messages    []chatMessage     `json:"messages"`
	Temperature float64           `json:"temperature"`
	Response    map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Classify asks the provider to sort files into or out of the described
// category. The raw response is re-matched to the submitted files by the
// caller through DecisionsByFile.
func (c *Client) Classify(ctx context.Context, files []FileInfo, categoryDescription string) ([]Decision, error) {
	if len(files) == 0 {
		return nil, nil
	}
	userPrompt, err := renderClassifyPrompt(files, categoryDescription)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "classifier", "classify", "build classification prompt", err)
	}
	payload, err := c.completeJSON(ctx, classifySystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Decisions []Decision `json:"decisions"`
	}
	if err := DecodeJSON(payload, &parsed); err != nil {
		return nil, services.Wrap(services.ErrIO, "classifier", "classify", "decode classification response", err)
	}
	return parsed.Decisions, nil
}

// ResolveConflict asks the provider how to handle a destination-name
// collision. Callers should pass the result through SafeConflict.
func (c *Client) ResolveConflict(ctx context.Context, existing, incoming string) (ConflictDecision, error) {
	userPrompt, err := renderConflictPrompt(existing, incoming)
	if err != nil {
		return ConflictDecision{}, services.Wrap(services.ErrConfiguration, "classifier", "resolve_conflict", "build conflict prompt", err)
	}
	payload, err := c.completeJSON(ctx, conflictSystemPrompt, userPrompt)
	if err != nil {
		return ConflictDecision{}, err
	}
	var decision ConflictDecision
	if err := DecodeJSON(payload, &decision); err != nil {
		return ConflictDecision{}, services.Wrap(services.ErrIO, "classifier", "resolve_conflict", "decode conflict response", err)
	}
	return decision, nil
}

func (c *Client) completeJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
		Response:    map[string]string{"type": "json_object"},
	}
	body, err := json.Marshal(request)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "classifier", "complete", "encode chat request", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		payload, retryAfter, retryable, err := c.sendOnce(ctx, body)
		if err == nil {
			return payload, nil
		}
		lastErr = err
		if !retryable || attempt == c.maxAttempts {
			break
		}
		delay := c.backoffDelay(attempt, retryAfter)
		c.logger.Warn("classifier request failed, retrying",
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err))
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return "", services.Wrap(services.ErrIO, "classifier", "complete", "retry wait interrupted", sleepErr)
		}
	}
	return "", lastErr
}

func (c *Client) sendOnce(ctx context.Context, body []byte) (payload string, retryAfter time.Duration, retryable bool, err error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", 0, false, services.Wrap(services.ErrIO, "classifier", "complete", "build chat request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, false, services.Wrap(services.ErrIO, "classifier", "complete", "chat request canceled", err)
		}
		return "", 0, true, services.Wrap(services.ErrIO, "classifier", "complete", "chat request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, true, services.Wrap(services.ErrIO, "classifier", "complete", "read chat response", err)
	}

	if resp.StatusCode != http.StatusOK {
		canRetry := resp.StatusCode == http.StatusRequestTimeout ||
			resp.StatusCode == http.StatusTooManyRequests ||
			resp.StatusCode >= http.StatusInternalServerError
		return "", parseRetryAfter(resp.Header.Get("Retry-After")), canRetry,
			services.Wrap(services.ErrIO, "classifier", "complete",
				fmt.Sprintf("chat endpoint returned status %d", resp.StatusCode), nil)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", 0, false, services.Wrap(services.ErrIO, "classifier", "complete", "decode chat envelope", err)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", 0, false, services.Wrap(services.ErrIO, "classifier", "complete",
			"chat endpoint reported: "+decoded.Error.Message, nil)
	}
	if len(decoded.Choices) == 0 {
		return "", 0, false, services.Wrap(services.ErrIO, "classifier", "complete", "chat response contained no choices", nil)
	}
	content := strings.TrimSpace(decoded.Choices[0].Message.Content)
	if content == "" {
		return "", 0, false, services.Wrap(services.ErrIO, "classifier", "complete", "chat response content was empty", nil)
	}
	return content, 0, false, nil
}

func (c *Client) backoffDelay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return capDelay(retryAfter, c.maxDelay)
	}
	delay := time.Duration(float64(c.initialDelay) * math.Pow(2, float64(attempt-1)))
	return capDelay(delay, c.maxDelay)
}

func capDelay(delay, maxDelay time.Duration) time.Duration {
	if delay <= 0 {
		return maxDelay
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(value); err == nil {
		if delta := time.Until(when); delta > 0 {
			return delta
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DecodeJSON parses a model response into out, tolerating code fences and
// leading prose around the JSON object.
func DecodeJSON(payload string, out any) error {
	cleaned := sanitizeJSONPayload(payload)
	if cleaned == "" {
		return fmt.Errorf("empty JSON payload")
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("parse JSON payload: %w", err)
	}
	return nil
}

func sanitizeJSONPayload(payload string) string {
	trimmed := strings.TrimSpace(payload)
	trimmed = stripCodeFence(trimmed)
	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return ""
	}
	var end int
	switch trimmed[start] {
	case '{':
		end = strings.LastIndex(trimmed, "}")
	case '[':
		end = strings.LastIndex(trimmed, "]")
	}
	if end <= start {
		return ""
	}
	return trimmed[start : end+1]
}

func stripCodeFence(payload string) string {
	if !strings.HasPrefix(payload, "```") {
		return payload
	}
	rest := strings.TrimPrefix(payload, "```")
	if idx := strings.Index(rest, "\n"); idx >= 0 {
		rest = rest[idx+1:]
	}
	if idx := strings.LastIndex(rest, "```"); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.TrimSpace(rest)
}
