package tokenizer

import (
	"context"
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const (
	DefaultEncoding          = "cl100k_base"
	DefaultTiktokenMaxTokens = 8192

	// ChatML framing costs, per the OpenAI cookbook.
	tokensPerMessage = 3
	tokensPerName    = 1
	replyPriming     = 3
)

// Tiktoken counts BPE tokens locally.
type Tiktoken struct {
	enc       *tiktoken.Tiktoken
	encoding  string
	maxTokens int
}

var _ Tokenizer = (*Tiktoken)(nil)

// NewTiktoken creates a Tiktoken tokenizer for encoding (cl100k_base when
// empty, used by GPT-4 and a good approximation for most providers).
func NewTiktoken(encoding string, maxTokens int) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	if maxTokens <= 0 {
		maxTokens = DefaultTiktokenMaxTokens
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding %s: %w", encoding, err)
	}
	return &Tiktoken{enc: enc, encoding: encoding, maxTokens: maxTokens}, nil
}

func (t *Tiktoken) Encoding() string { return t.encoding }

func (t *Tiktoken) MaxInputTokens() int  { return t.maxTokens }
func (t *Tiktoken) MaxOutputTokens() int { return 0 }

// Count returns the number of tokens in s.
func (t *Tiktoken) Count(s string) int {
	return len(t.enc.Encode(s, nil, nil))
}

// CountTokens counts Text directly and Messages with ChatML framing.
func (t *Tiktoken) CountTokens(_ context.Context, in Input) (int, error) {
	switch v := in.(type) {
	case Text:
		return t.Count(string(v)), nil
	case Messages:
		n := 0
		for _, m := range v {
			n += tokensPerMessage + t.Count(m.Role) + t.Count(m.Content)
			if m.Name != "" {
				n += tokensPerName + t.Count(m.Name)
			}
		}
		return n + replyPriming, nil
	default:
		return 0, ErrInvalidArgument
	}
}

// Truncate truncates s to at most maxTokens tokens, returning the result.
func (t *Tiktoken) Truncate(s string, maxTokens int) string {
	if maxTokens < 0 {
		maxTokens = 0
	}
	tokens := t.enc.Encode(s, nil, nil)
	if len(tokens) <= maxTokens {
		return s
	}
	return t.enc.Decode(tokens[:maxTokens])
}
