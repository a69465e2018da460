package capability

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"billbrain/internal/config"
	"billbrain/internal/metrics"
)

// Client invokes a single configured model on an OpenAI-compatible endpoint.
// It implements both Vision and Reasoning; which one it serves is a matter
// of which model it was configured with. Connection settings are fixed at
// construction and immutable for the process lifetime.
type Client struct {
	name  string
	model string
	api   *openai.Client
}

// NewClient builds a capability client from configuration.
func NewClient(name string, cfg config.Capability, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client must not be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("capability %s: base url must not be empty", name)
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = baseURL
	apiCfg.HTTPClient = httpClient

	return &Client{
		name:  name,
		model: cfg.Model,
		api:   openai.NewClientWithConfig(apiCfg),
	}, nil
}

// Name returns the capability name used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// Describe sends an instruction plus an inline image and returns the raw
// model text. A single attempt; failures propagate immediately.
func (c *Client) Describe(ctx context.Context, instruction string, img Image) (string, error) {
	imageURL := fmt.Sprintf("data:%s;base64,%s", img.MIME, base64.StdEncoding.EncodeToString(img.Data))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: instruction,
					},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	return c.complete(ctx, req)
}

// Complete sends a message sequence and returns the raw model text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	return c.complete(ctx, req)
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	metrics.ObserveUpstream(c.name, err, time.Since(started))

	if err != nil {
		return "", fmt.Errorf("%w: %s request: %v", ErrUnavailable, c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s response contained no choices", ErrMalformedOutput, c.name)
	}

	slog.Debug("capability call completed",
		"capability", c.name,
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}
