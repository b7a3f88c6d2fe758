// Package adapter wraps third-party embedding and token-counting services
// behind small, synchronous interfaces.
package adapter

import (
	"context"
	"fmt"
	"time"
)

// Provider name constants.
const (
	ProviderOllama    = "ollama"
	ProviderVoyage    = "voyage"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Embedding is a vector together with the model that produced it.
// Dimensions vary by model; vectors from different models must not be mixed.
type Embedding struct {
	Model  string
	Vector []float32
}

// Embedder turns a single chunk of text into an Embedding.
type Embedder interface {
	Embed(ctx context.Context, chunk string) (Embedding, error)

	// Model returns the name of the embedding model being used.
	Model() string
}

// Options configures New. Fields that do not apply to the selected
// provider are ignored.
type Options struct {
	// Model is the embedding model. Empty selects the provider default.
	Model string

	// APIKey authenticates hosted providers.
	APIKey string

	// BaseURL overrides the provider endpoint. For Ollama it is the host;
	// the embeddings path is appended.
	BaseURL string

	// Path is the Ollama embeddings path (default /api/embeddings).
	Path string

	// Timeout bounds each request. Zero selects the provider default.
	Timeout time.Duration
}

// New constructs the Embedder for the named provider.
//
//   - provider: "ollama", "voyage", "openai"
//   - hosted providers fail without an API key
func New(provider string, opts Options) (Embedder, error) {
	switch provider {
	case ProviderOllama:
		return NewOllama(OllamaConfig{
			Host:    opts.BaseURL,
			Path:    opts.Path,
			Model:   opts.Model,
			Timeout: opts.Timeout,
		}), nil
	case ProviderVoyage:
		client, err := NewVoyageClient(opts.APIKey, opts.BaseURL, opts.Timeout)
		if err != nil {
			return nil, err
		}
		return client.Embedder(opts.Model), nil
	case ProviderOpenAI:
		return NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model, opts.Timeout)
	default:
		return nil, fmt.Errorf("adapter: unknown embedder %q; valid embedders: ollama, voyage, openai", provider)
	}
}
