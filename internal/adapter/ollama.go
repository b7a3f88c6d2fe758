package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOllamaHost  = "http://localhost:11434"
	DefaultOllamaPath  = "/api/embeddings"
	DefaultOllamaModel = "nomic-embed-text"

	defaultTimeout = 30 * time.Second
)

// OllamaClient posts embedding requests to a single Ollama endpoint.
type OllamaClient struct {
	endpoint string
	client   *http.Client
}

// NewOllamaClient creates a client for the full embeddings endpoint URL,
// e.g. http://localhost:11434/api/embeddings. A zero timeout selects 30s.
func NewOllamaClient(endpoint string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OllamaClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL requests are sent to.
func (c *OllamaClient) Endpoint() string {
	return c.endpoint
}

// ollamaEmbedRequest is the request body for Ollama's embedding API.
type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaEmbedResponse is the response from Ollama's embedding API.
type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embeddings returns the embedding of prompt under model. Any status other
// than 200 fails with a *RequestError carrying the response body. A response
// without an embedding field yields an empty vector.
func (c *OllamaClient) Embeddings(ctx context.Context, model, prompt string) ([]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{
		Model:  model,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embed marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &RequestError{
			Provider:   ProviderOllama,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ollama embed decode: %w", err)
	}

	if result.Embedding == nil {
		return []float32{}, nil
	}
	return result.Embedding, nil
}

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama API base URL (default: http://localhost:11434).
	Host string

	// Path is appended to Host (default: /api/embeddings).
	Path string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the HTTP request timeout (default: 30s).
	Timeout time.Duration
}

// ollamaEmbedder implements Embedder for a local Ollama instance.
type ollamaEmbedder struct {
	client *OllamaClient
	model  string
}

// NewOllama creates an Ollama embedder.
func NewOllama(cfg OllamaConfig) Embedder {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Path == "" {
		cfg.Path = DefaultOllamaPath
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}

	endpoint := strings.TrimRight(cfg.Host, "/") + "/" + strings.TrimLeft(cfg.Path, "/")

	return &ollamaEmbedder{
		client: NewOllamaClient(endpoint, cfg.Timeout),
		model:  cfg.Model,
	}
}

func (o *ollamaEmbedder) Model() string {
	return o.model
}

func (o *ollamaEmbedder) Embed(ctx context.Context, chunk string) (Embedding, error) {
	vector, err := o.client.Embeddings(ctx, o.model, chunk)
	if err != nil {
		return Embedding{}, err
	}
	return Embedding{Model: o.model, Vector: vector}, nil
}
