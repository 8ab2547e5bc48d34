// Package assistant sends generated prompts to an Anthropic model.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/standardbeagle/uisel/internal/debug"
)

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY is not set")

// ErrEmptyReply is returned when the model answers without text.
var ErrEmptyReply = errors.New("assistant returned no text")

// Config configures a Client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int

	// BaseURL overrides the API endpoint.
	BaseURL string
}

// Client sends prompts to the Messages API.
type Client struct {
	api       anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// New creates a client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Send submits text as a single user message and returns the reply text.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	debug.Log("assistant", "sending %d byte prompt to %s", len(text), c.model)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("send prompt: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyReply
	}
	return b.String(), nil
}
