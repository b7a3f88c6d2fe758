package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memvra/toolshim/internal/config"
	"github.com/memvra/toolshim/internal/mcp"
	"github.com/memvra/toolshim/internal/tool"
)

func newServeCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve registered actions to MCP clients over stdio",
		Long: `Start an MCP server on stdin/stdout. Every action is exposed as a tool
with a single required "input" string argument.

With --watch the tools directory is watched and manifest tools are reloaded
when it changes. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("watch") {
				cfg.Tools.Watch = watch
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
			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(set, mcp.Options{
				Version:    version,
				Middleware: reg,
				Timeout:    toolTimeout(cfg),
				Logger:     logger,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Tools.Watch && cfg.Tools.Dir != "" {
				go watchTools(ctx, cfg, srv, logger)
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ServeStdio() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "reload manifest tools when the tools directory changes")

	return cmd
}

// watchTools reloads srv whenever the tools directory changes. A reload
// that fails keeps the previous set.
func watchTools(ctx context.Context, cfg config.GlobalConfig, srv *mcp.Server, logger *zap.Logger) {
	debounce := time.Duration(cfg.Tools.DebounceMs) * time.Millisecond
	logger.Info("watching tools", zap.String("dir", cfg.Tools.Dir), zap.Duration("debounce", debounce))

	reload := func() {
		set, err := buildToolSet(cfg, logger)
		if err != nil {
			logger.Warn("reload failed", zap.Error(err))
			return
		}
		srv.Reload(set)
	}
	onError := func(err error) {
		logger.Warn("watch error", zap.Error(err))
	}

	if err := tool.Watch(ctx, cfg.Tools.Dir, debounce, reload, onError); err != nil {
		logger.Error("watcher stopped", zap.Error(err))
	}
}
