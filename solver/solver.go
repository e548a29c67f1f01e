// Package solver wraps the external solve collaborator behind the session's
// Solver contract. The collaborator speaks the OpenAI chat API; image problems
// travel as base64 data-URL message parts. The collaborator has no structured
// error channel of its own: it signals in-band failure with a leading "Error:"
// tag, which this client normalizes into a typed error so nothing above it
// ever has to sniff text.
package solver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	openai "github.com/sashabaranov/go-openai"
)

const (
	errorTag = "Error:"

	systemPrompt = "You are a math tutor. Solve the given problem step by step. " +
		"Answer in markdown: a short heading per stage, numbered steps, inline math in $...$ " +
		"and display math in $$...$$, ending with a '## Final Answer' section. " +
		"If the input is not a solvable math problem, reply with a single line starting with 'Error:' " +
		"followed by the reason."

	imageUserPrompt = "Solve the math problem shown in this image."

	defaultTimeout   = 120 * time.Second
	defaultCacheSize = 64
)

// Config carries the collaborator settings. APIKey is mandatory; everything
// else has a usable default.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	CacheSize int
	Timeout   time.Duration
}

// ErrMissingCredential aborts startup; credential presence is checked once at
// process start, never per request.
var ErrMissingCredential = errors.New("solver: API credential is not configured")

// SolveError is a failure the collaborator reported, in-band or transport.
type SolveError struct{ Message string }

func (e *SolveError) Error() string { return e.Message }

// Client implements session.Solver.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
	cache   *lru.Cache[string, string]
}

// New constructs the client. Fails fast when the credential is absent.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("solver: cache: %w", err)
	}
	return &Client{
		api:     openai.NewClientWithConfig(cc),
		model:   model,
		timeout: timeout,
		logger:  logger,
		cache:   cache,
	}, nil
}

// SolveImage submits an extracted region payload.
func (c *Client) SolveImage(ctx context.Context, payload, mediaType string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: imageUserPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", mediaType, payload),
						},
					},
				},
			},
		},
	}
	return c.complete(ctx, req)
}

// SolveText submits a typed problem. Text problems are cheaper than vision
// ones, so reduced reasoning effort is requested, and identical resubmissions
// are served from the cache.
func (c *Client) SolveText(ctx context.Context, problem string) (string, error) {
	if cached, ok := c.cache.Get(problem); ok {
		if c.logger != nil {
			c.logger.Debug("text solve served from cache", "problem_len", len(problem))
		}
		return cached, nil
	}
	req := openai.ChatCompletionRequest{
		Model:           c.model,
		ReasoningEffort: "low",
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: problem},
		},
	}
	solution, err := c.complete(ctx, req)
	if err != nil {
		return "", err
	}
	c.cache.Add(problem, solution)
	return solution, nil
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("solve call failed", "error", err)
		}
		return "", &SolveError{Message: err.Error()}
	}
	if len(resp.Choices) == 0 {
		return "", &SolveError{Message: "the solver returned no choices"}
	}
	content := resp.Choices[0].Message.Content
	if msg, failed := inBandError(content); failed {
		return "", &SolveError{Message: msg}
	}
	if c.logger != nil {
		c.logger.Info("solve call completed", "model", c.model, "elapsed", time.Since(start), "chars", len(content))
	}
	return content, nil
}

// inBandError reports whether the collaborator tagged its reply as a failure,
// returning the message with the tag stripped.
func inBandError(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, errorTag) {
		return "", false
	}
	msg := strings.TrimSpace(strings.TrimPrefix(trimmed, errorTag))
	if msg == "" {
		msg = "the solver reported an unspecified error"
	}
	return msg, true
}
