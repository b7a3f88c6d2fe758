package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/memvra/toolshim/internal/adapter"
)

type embedLine struct {
	Text      string    `json:"text"`
	Model     string    `json:"model"`
	Embedding []float32 `json:"embedding"`
}

func newEmbedCmd() *cobra.Command {
	var (
		provider     string
		viaTokenizer bool
	)

	cmd := &cobra.Command{
		Use:   "embed [text...]",
		Short: "Embed text with the configured provider",
		Long: `Embed each argument, or each non-empty line of stdin when no arguments
are given. Texts are embedded one at a time and written to stdout as JSON
lines of the form {"text", "model", "embedding"}.

With --tokenizer the Ollama tokenizer embeds the texts against
ollama.tokenizer_endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			texts := args
			if len(texts) == 0 {
				texts, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			if len(texts) == 0 {
				return fmt.Errorf("nothing to embed")
			}

			var embedder adapter.Embedder
			if viaTokenizer {
				embedder = tokenizerEmbedder(cfg)
			} else {
				embedder, err = buildEmbedder(cfg, provider)
				if err != nil {
					return err
				}
			}

			var bar *progressbar.ProgressBar
			if len(texts) > 1 && term.IsTerminal(int(os.Stderr.Fd())) {
				bar = progressbar.NewOptions(len(texts),
					progressbar.OptionSetDescription("  Embedding"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, text := range texts {
				emb, err := embedder.Embed(cmd.Context(), text)
				if err != nil {
					return fmt.Errorf("embed: %w", err)
				}
				if err := enc.Encode(embedLine{Text: text, Model: emb.Model, Embedding: emb.Vector}); err != nil {
					return err
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if bar != nil {
				_ = bar.Finish()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "embedder to use: ollama, voyage, openai (default from config)")
	cmd.Flags().BoolVar(&viaTokenizer, "tokenizer", false, "embed through the Ollama tokenizer endpoint")
	cmd.MarkFlagsMutuallyExclusive("provider", "tokenizer")

	return cmd
}

// readLines returns the non-blank lines of r with surrounding whitespace removed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
