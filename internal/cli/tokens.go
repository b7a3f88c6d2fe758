package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memvra/toolshim/internal/tokenizer"
)

func newTokensCmd() *cobra.Command {
	var (
		name     string
		messages bool
		left     bool
	)

	cmd := &cobra.Command{
		Use:   "tokens [text]",
		Short: "Count tokens in text or a message list",
		Long: `Count tokens with the configured tokenizer. Input is the joined arguments,
or stdin when no arguments are given.

With --messages the input is a JSON array of {"role", "content", "name"}
objects. With --left the remaining input budget of the model is printed
instead of the count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			var data []byte
			if len(args) > 0 {
				data = []byte(strings.Join(args, " "))
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
			}

			in, err := parseTokensInput(data, messages)
			if err != nil {
				return err
			}

			tok, err := buildTokenizer(cfg, name)
			if err != nil {
				return err
			}

			var n int
			if left {
				n, err = tokenizer.TokensLeft(cmd.Context(), tok, in)
			} else {
				n, err = tok.CountTokens(cmd.Context(), in)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "tokenizer", "", "tokenizer to use: ollama, voyage, anthropic, tiktoken (default from config)")
	cmd.Flags().BoolVar(&messages, "messages", false, "treat input as a JSON message list")
	cmd.Flags().BoolVar(&left, "left", false, "print tokens left in the model's input budget")

	return cmd
}

// parseTokensInput turns raw input into a tokenizer input. Text input is
// used exactly as given.
func parseTokensInput(data []byte, messages bool) (tokenizer.Input, error) {
	if !messages {
		return tokenizer.Text(data), nil
	}
	var msgs tokenizer.Messages
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}
	return msgs, nil
}
