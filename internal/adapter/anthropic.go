package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const DefaultAnthropicModel = "claude-sonnet-4-6"

// AnthropicClient counts tokens with the Anthropic count-tokens API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a client for model. baseURL and timeout may be zero.
func NewAnthropicClient(apiKey, baseURL, model string, timeout time.Duration) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.Join(ErrMissingAPIKey, errors.New("anthropic: set ANTHROPIC_API_KEY or keys.anthropic"))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	opts := []anthropic.ClientOption{
		anthropic.WithHTTPClient(newHostedHTTPClient(ProviderAnthropic, timeout)),
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}, nil
}

// Model returns the model tokens are counted for.
func (c *AnthropicClient) Model() string {
	return c.model
}

// CountTokens sends texts as the text blocks of a single user message and
// returns the input token count reported by the service.
func (c *AnthropicClient) CountTokens(ctx context.Context, texts []string) (int, error) {
	content := make([]anthropic.MessageContent, 0, len(texts))
	for _, text := range texts {
		content = append(content, anthropic.NewTextMessageContent(text))
	}

	resp, err := c.client.CountTokens(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: content},
		},
	})
	if err != nil {
		var statusErr *RequestError
		if errors.As(err, &statusErr) {
			return 0, statusErr
		}
		return 0, fmt.Errorf("anthropic count tokens: %w", err)
	}
	return resp.InputTokens, nil
}
