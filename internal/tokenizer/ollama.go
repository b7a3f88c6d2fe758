package tokenizer

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/memvra/toolshim/internal/adapter"
)

const (
	DefaultOllamaModel     = "nomic-embed-text"
	DefaultOllamaMaxTokens = 8192
)

// OllamaConfig is fixed when the tokenizer is built.
type OllamaConfig struct {
	Model     string
	MaxTokens int

	// Endpoint is the full embeddings URL. It has no default.
	Endpoint string

	Timeout time.Duration
}

// Ollama approximates token counts by counting characters.
// Its configuration cannot change after construction.
type Ollama struct {
	cfg    OllamaConfig
	client *adapter.OllamaClient
}

var (
	_ Tokenizer        = (*Ollama)(nil)
	_ adapter.Embedder = (*Ollama)(nil)
)

// NewOllama creates an Ollama tokenizer.
func NewOllama(cfg OllamaConfig) *Ollama {
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultOllamaMaxTokens
	}

	t := &Ollama{cfg: cfg}
	if cfg.Endpoint != "" {
		t.client = adapter.NewOllamaClient(cfg.Endpoint, cfg.Timeout)
	}
	return t
}

func (t *Ollama) Model() string    { return t.cfg.Model }
func (t *Ollama) Endpoint() string { return t.cfg.Endpoint }

func (t *Ollama) MaxInputTokens() int  { return t.cfg.MaxTokens }
func (t *Ollama) MaxOutputTokens() int { return 0 }

// CountTokens returns the number of characters in Text. It treats every
// character as one token, which overcounts real tokenization.
// Messages are not supported.
func (t *Ollama) CountTokens(_ context.Context, in Input) (int, error) {
	switch v := in.(type) {
	case Text:
		return utf8.RuneCountInString(string(v)), nil
	case Messages:
		return 0, ErrNotImplemented
	default:
		return 0, ErrInvalidArgument
	}
}

// GetEmbeddings embeds text with model, or the configured model when model
// is empty, against the configured endpoint.
func (t *Ollama) GetEmbeddings(ctx context.Context, text, model string) (adapter.Embedding, error) {
	if t.client == nil {
		return adapter.Embedding{}, ErrNoEndpoint
	}
	if model == "" {
		model = t.cfg.Model
	}

	vector, err := t.client.Embeddings(ctx, model, text)
	if err != nil {
		return adapter.Embedding{}, err
	}
	return adapter.Embedding{Model: model, Vector: vector}, nil
}

// Embed is GetEmbeddings with the configured model.
func (t *Ollama) Embed(ctx context.Context, chunk string) (adapter.Embedding, error) {
	return t.GetEmbeddings(ctx, chunk, "")
}
