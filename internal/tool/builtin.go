package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/memvra/toolshim/internal/adapter"
	"github.com/memvra/toolshim/internal/executor"
	"github.com/memvra/toolshim/internal/tokenizer"
)

// BuiltinName is the name of the builtin tool.
const BuiltinName = "embeddings"

type embedResult struct {
	Model     string    `json:"model"`
	Embedding []float32 `json:"embedding"`
}

type countResult struct {
	Tokens int `json:"tokens"`
}

// Builtin returns the embeddings tool. Either dependency may be nil, in
// which case its action is omitted.
func Builtin(embedder adapter.Embedder, tok tokenizer.Tokenizer) Tool {
	t := Tool{
		Name:        BuiltinName,
		Description: "Embed text and count tokens with the configured providers",
	}
	if dir, err := executor.ToolDir(Builtin); err == nil {
		t.Dir = dir
	}

	if embedder != nil {
		t.Actions = append(t.Actions, Spec{
			Action: executor.Action{
				Name: "embed",
				Dir:  t.Dir,
				Run:  embedAction(embedder),
			},
			Description: fmt.Sprintf("Return the %s embedding of the input text as JSON", embedder.Model()),
			Kind:        KindLocal,
		})
	}
	if tok != nil {
		t.Actions = append(t.Actions, Spec{
			Action: executor.Action{
				Name: "count_tokens",
				Dir:  t.Dir,
				Run:  countAction(tok),
			},
			Description: "Return the number of tokens in the input text as JSON",
			Kind:        KindLocal,
		})
	}
	return t
}

func embedAction(embedder adapter.Embedder) executor.ActionFunc {
	return func(ctx context.Context, input []byte) ([]byte, error) {
		emb, err := embedder.Embed(ctx, string(input))
		if err != nil {
			return nil, err
		}
		return json.Marshal(embedResult{Model: emb.Model, Embedding: emb.Vector})
	}
}

func countAction(tok tokenizer.Tokenizer) executor.ActionFunc {
	return func(ctx context.Context, input []byte) ([]byte, error) {
		n, err := tok.CountTokens(ctx, tokenizer.Text(input))
		if err != nil {
			return nil, err
		}
		return json.Marshal(countResult{Tokens: n})
	}
}
