package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/memvra/toolshim/internal/executor"
)

func newExecCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "exec <action>",
		Short: "Run an action through the executor",
		Long: `Run a builtin or manifest action. Input comes from --input, or stdin when
the flag is absent. The action's configured middleware is applied to the
output before it is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Log.Debug)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			set, err := buildToolSet(cfg, logger)
			if err != nil {
				return err
			}
			spec, err := set.Lookup(args[0])
			if err != nil {
				return err
			}
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			data := []byte(input)
			if !cmd.Flags().Changed("input") {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read input: %w", err)
				}
			}

			e := executorFor(spec.Kind, reg, toolTimeout(cfg))
			out, err := executor.Execute(cmd.Context(), e, spec.Action, data)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if _, err := w.Write(out); err != nil {
				return err
			}
			if len(out) > 0 && out[len(out)-1] != '\n' {
				fmt.Fprintln(w)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "action input (default: read stdin)")

	return cmd
}
