package adapter

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultVoyageBaseURL = "https://api.voyageai.com/v1"
	DefaultVoyageModel   = "voyage-2"
)

// ErrMissingAPIKey is returned when a hosted client is constructed without a key.
var ErrMissingAPIKey = errors.New("api key required")

// VoyageClient talks to the Voyage AI embeddings API, which follows the
// OpenAI wire format. It is created once from an API key and reused.
type VoyageClient struct {
	client *openai.Client
	model  string
}

// NewVoyageClient creates a Voyage client. baseURL and timeout may be zero.
func NewVoyageClient(apiKey, baseURL string, timeout time.Duration) (*VoyageClient, error) {
	if apiKey == "" {
		return nil, errors.Join(ErrMissingAPIKey, errors.New("voyage: set VOYAGE_API_KEY or keys.voyage"))
	}
	if baseURL == "" {
		baseURL = DefaultVoyageBaseURL
	}
	return &VoyageClient{
		client: newCompatClient(ProviderVoyage, apiKey, baseURL, timeout),
		model:  DefaultVoyageModel,
	}, nil
}

// WithModel returns a copy of the client bound to model.
func (c *VoyageClient) WithModel(model string) *VoyageClient {
	if model == "" {
		return c
	}
	cp := *c
	cp.model = model
	return &cp
}

// Embedder returns an Embedder for model (empty selects voyage-2).
func (c *VoyageClient) Embedder(model string) Embedder {
	bound := c.WithModel(model)
	return &compatEmbedder{
		provider: ProviderVoyage,
		client:   bound.client,
		model:    bound.model,
	}
}

// CountTokens returns the number of tokens the service bills for texts,
// read from the usage block of an embeddings call.
func (c *VoyageClient) CountTokens(ctx context.Context, texts []string) (int, error) {
	resp, err := createEmbeddings(ctx, ProviderVoyage, c.client, c.model, texts)
	if err != nil {
		return 0, err
	}
	return resp.Usage.TotalTokens, nil
}
