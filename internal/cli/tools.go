package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List registered tools and their actions",
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

			set, err := buildToolSet(cfg, logger.WithOptions(zap.IncreaseLevel(zap.ErrorLevel)))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ACTION\tTOOL\tKIND\tMIDDLEWARE\tDESCRIPTION")
			for _, t := range set.Tools() {
				for _, a := range t.Actions {
					mw := "-"
					if names := cfg.Middleware[a.Name]; len(names) > 0 {
						mw = fmt.Sprint(names)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.Name, t.Name, a.Kind, mw, a.Description)
				}
			}
			return w.Flush()
		},
	}
}
