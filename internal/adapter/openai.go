package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = string(openai.SmallEmbedding3)

// compatEmbedder implements Embedder for any OpenAI-compatible embeddings
// API (OpenAI itself, Voyage AI).
type compatEmbedder struct {
	provider string
	client   *openai.Client
	model    string
}

// NewOpenAI creates an OpenAI embedder. If apiKey is empty, OPENAI_API_KEY is used.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) (Embedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.Join(ErrMissingAPIKey, errors.New("openai: set OPENAI_API_KEY or keys.openai"))
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &compatEmbedder{
		provider: ProviderOpenAI,
		client:   newCompatClient(ProviderOpenAI, apiKey, baseURL, timeout),
		model:    model,
	}, nil
}

func newCompatClient(provider, apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = newHostedHTTPClient(provider, timeout)
	return openai.NewClientWithConfig(cfg)
}

func (c *compatEmbedder) Model() string {
	return c.model
}

func (c *compatEmbedder) Embed(ctx context.Context, chunk string) (Embedding, error) {
	resp, err := createEmbeddings(ctx, c.provider, c.client, c.model, []string{chunk})
	if err != nil {
		return Embedding{}, err
	}

	vector := []float32{}
	if len(resp.Data) > 0 && resp.Data[0].Embedding != nil {
		vector = resp.Data[0].Embedding
	}
	return Embedding{Model: c.model, Vector: vector}, nil
}

func createEmbeddings(ctx context.Context, provider string, client *openai.Client, model string, texts []string) (openai.EmbeddingResponse, error) {
	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		return resp, compatError(provider, err)
	}
	return resp, nil
}

// compatError maps status errors onto *RequestError. Responses caught by
// statusTransport already are one; the go-openai types cover the rest.
func compatError(provider string, err error) error {
	var statusErr *RequestError
	if errors.As(err, &statusErr) {
		return statusErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &RequestError{
			Provider:   provider,
			StatusCode: apiErr.HTTPStatusCode,
			Body:       apiErr.Message,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &RequestError{
			Provider:   provider,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       body,
		}
	}

	return fmt.Errorf("%s embed: %w", provider, err)
}
