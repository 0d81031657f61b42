// Package openai implements the intent classifier and content generator
// ports on an OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/mitchellh/mapstructure"
	api "github.com/sashabaranov/go-openai"
)

// Defaults mirror the settings the coach has always run with.
const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1200
)

// ErrNoAPIKey is returned by New when no key is configured.
var ErrNoAPIKey = errors.New("openai api key not configured")

// Config holds the backend settings.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// Client implements ports.IntentClassifier and ports.ContentGenerator.
type Client struct {
	client *api.Client
	cfg    Config
	logger *slog.Logger
}

var (
	_ ports.IntentClassifier = (*Client)(nil)
	_ ports.ContentGenerator = (*Client)(nil)
)

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	apiCfg := api.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return NewFromClient(api.NewClientWithConfig(apiCfg), cfg, opts...), nil
}

// NewFromClient wraps an existing go-openai client.
func NewFromClient(client *api.Client, cfg Config, opts ...Option) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	c := &Client{client: client, cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassifySlots asks the model for the objectives, subject and grade in text.
// An unreadable answer yields all-unspecified slots rather than an error.
func (c *Client) ClassifySlots(ctx context.Context, text string) (domain.SlotResult, error) {
	unspecified := domain.SlotResult{
		Objectives: domain.Unspecified,
		Subject:    domain.Unspecified,
		Grade:      domain.Unspecified,
	}

	raw, err := c.complete(ctx, systemPrompt(slotsInstruction), text, true, 0)
	if err != nil {
		return domain.SlotResult{}, err
	}

	var slots domain.SlotResult
	if err := decodeJSON(raw, &slots); err != nil {
		c.logger.Warn("unreadable slot classification", "err", err)
		return unspecified, nil
	}
	return slots, nil
}

// alignmentAnswer is the JSON contract of the alignment prompt.
type alignmentAnswer struct {
	Verdict string `mapstructure:"verdict"`
	Reason  string `mapstructure:"reason"`
}

// ClassifyAlignment returns the verdict for assessment. Anything other than an
// explicit "aligned" answer is AlignmentNotAligned.
func (c *Client) ClassifyAlignment(ctx context.Context, assessment string) (domain.Alignment, error) {
	raw, err := c.complete(ctx, systemPrompt(alignmentInstruction), assessment, true, 0)
	if err != nil {
		return domain.AlignmentNotAligned, err
	}

	var answer alignmentAnswer
	if err := decodeJSON(raw, &answer); err != nil {
		c.logger.Warn("unreadable alignment verdict", "err", err)
		return domain.AlignmentNotAligned, nil
	}
	verdict := domain.ParseAlignment(answer.Verdict)
	c.logger.Debug("alignment classified", "verdict", verdict, "reason", answer.Reason)
	return verdict, nil
}

// Generate renders the prompt for req.Kind and returns the model's markdown.
func (c *Client) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	prompt, err := renderPrompt(req)
	if err != nil {
		return "", err
	}
	maxTokens := c.cfg.MaxTokens
	if req.Kind == ports.KindEvaluationReport || req.Kind == ports.KindRationale {
		maxTokens = min(maxTokens, 1000)
	}
	return c.complete(ctx, persona, prompt, false, maxTokens)
}

func (c *Client) complete(ctx context.Context, system, user string, jsonMode bool, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req := api.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []api.ChatCompletionMessage{
			{Role: api.ChatMessageRoleSystem, Content: system},
			{Role: api.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.cfg.Temperature,
	}
	if jsonMode {
		req.Temperature = 0.1
		req.ResponseFormat = &api.ChatCompletionResponseFormat{Type: api.ChatCompletionResponseFormatTypeJSONObject}
	}
	if maxTokens > 0 {
		req.MaxCompletionTokens = maxTokens
	}

	c.logger.Debug("chat completion", "model", c.cfg.Model, "json", jsonMode)
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai returned empty content")
	}
	c.logger.Debug("chat completion finished", "finish_reason", resp.Choices[0].FinishReason)
	return content, nil
}

// decodeJSON parses a JSON object (tolerating a surrounding code fence) and
// decodes it into out with weak typing, so {"grade": 4} becomes "4".
func decodeJSON(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var fields map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(fields)
}

func errUnknownKind(kind ports.InstructionKind) error {
	return fmt.Errorf("unknown instruction kind %q", kind)
}
