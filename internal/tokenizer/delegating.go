package tokenizer

import (
	"context"
	"errors"
)

// Delegating hands token counting to a hosted client. Only Text is
// accepted, and the client is always called with exactly one string.
type Delegating struct {
	model   string
	counter Counter
	limits  Limits
}

var _ Tokenizer = (*Delegating)(nil)

// NewDelegating builds a tokenizer around an already-constructed counter.
func NewDelegating(model string, counter Counter, limits Limits) (*Delegating, error) {
	if counter == nil {
		return nil, errors.New("tokenizer: counter is required")
	}
	return &Delegating{model: model, counter: counter, limits: limits}, nil
}

func (t *Delegating) Model() string { return t.model }

func (t *Delegating) MaxInputTokens() int  { return t.limits.MaxInput(t.model) }
func (t *Delegating) MaxOutputTokens() int { return t.limits.MaxOutput(t.model) }

// CountTokens returns the counter's result for Text unchanged.
func (t *Delegating) CountTokens(ctx context.Context, in Input) (int, error) {
	text, ok := in.(Text)
	if !ok {
		return 0, ErrInvalidArgument
	}
	return t.counter.CountTokens(ctx, []string{string(text)})
}

// VoyageLimits are the Voyage AI model budgets.
var VoyageLimits = Limits{
	Input: []PrefixLimit{
		{"voyage-large-2", 16000},
		{"voyage-code-2", 16000},
		{"voyage-2", 4000},
		{"voyage-lite-02-instruct", 4000},
		{"voyage-3", 32000},
		{"voyage-code-3", 32000},
		{"voyage-multilingual-2", 32000},
	},
	Output: []PrefixLimit{
		{"voyage", 0},
	},
	DefaultInput: DefaultVoyageMaxTokens,
}

// DefaultVoyageMaxTokens is the input budget of Voyage models missing from
// VoyageLimits, the smallest budget in the table.
const DefaultVoyageMaxTokens = 4000

// AnthropicLimits are the Claude model budgets.
var AnthropicLimits = Limits{
	Input: []PrefixLimit{
		{"claude-3", 200000},
		{"claude-sonnet-4", 200000},
		{"claude-opus-4", 200000},
		{"claude-haiku-4", 200000},
		{"claude-2.1", 200000},
		{"claude", 100000},
	},
	Output: []PrefixLimit{
		{"claude-3-5", 8192},
		{"claude-3-7", 64000},
		{"claude-sonnet-4", 64000},
		{"claude-opus-4", 32000},
		{"claude-haiku-4", 64000},
		{"claude", 4096},
	},
}

// NewVoyage creates a Voyage tokenizer for model.
func NewVoyage(model string, counter Counter) (*Delegating, error) {
	return NewDelegating(model, counter, VoyageLimits)
}

// NewAnthropic creates a Claude tokenizer for model.
func NewAnthropic(model string, counter Counter) (*Delegating, error) {
	return NewDelegating(model, counter, AnthropicLimits)
}
