// Package tokenizer estimates or computes how many tokens a text or a list
// of chat messages decomposes into.
package tokenizer

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotImplemented is returned for input shapes a tokenizer cannot count.
	ErrNotImplemented = errors.New("tokenizer: not implemented for this input")

	// ErrInvalidArgument is returned when a tokenizer only accepts Text.
	ErrInvalidArgument = errors.New("tokenizer: text must be a string")

	// ErrNoEndpoint is returned when embeddings are requested from a
	// tokenizer that has no endpoint configured.
	ErrNoEndpoint = errors.New("tokenizer: no embedding endpoint configured")
)

// Input is either Text or Messages.
type Input interface {
	input()
}

// Text is plain text input.
type Text string

// Messages is structured chat input.
type Messages []Message

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

func (Text) input()     {}
func (Messages) input() {}

// Tokenizer counts tokens for a model.
type Tokenizer interface {
	CountTokens(ctx context.Context, in Input) (int, error)

	// MaxInputTokens is the model's input budget.
	MaxInputTokens() int

	// MaxOutputTokens is the model's output budget (0 for embedding models).
	MaxOutputTokens() int
}

// Counter is a token-counting capability supplied by a hosted client.
type Counter interface {
	CountTokens(ctx context.Context, texts []string) (int, error)
}

// TokensLeft returns how much of the input budget remains after in,
// never less than zero.
func TokensLeft(ctx context.Context, tok Tokenizer, in Input) (int, error) {
	n, err := tok.CountTokens(ctx, in)
	if err != nil {
		return 0, err
	}
	left := tok.MaxInputTokens() - n
	if left < 0 {
		return 0, nil
	}
	return left, nil
}

// PrefixLimit maps a model-name prefix to a token limit.
type PrefixLimit struct {
	Prefix string
	Tokens int
}

// Limits holds static per-model token tables.
type Limits struct {
	Input  []PrefixLimit
	Output []PrefixLimit

	DefaultInput  int
	DefaultOutput int
}

// lookup returns the limit of the longest prefix of model in table.
func lookup(table []PrefixLimit, model string, fallback int) int {
	best := -1
	value := fallback
	for _, l := range table {
		if strings.HasPrefix(model, l.Prefix) && len(l.Prefix) > best {
			best = len(l.Prefix)
			value = l.Tokens
		}
	}
	return value
}

// MaxInput returns the input budget for model.
func (l Limits) MaxInput(model string) int {
	return lookup(l.Input, model, l.DefaultInput)
}

// MaxOutput returns the output budget for model.
func (l Limits) MaxOutput(model string) int {
	return lookup(l.Output, model, l.DefaultOutput)
}
