// Package mcp exposes registered tool actions over the Model Context
// Protocol.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/memvra/toolshim/internal/executor"
	"github.com/memvra/toolshim/internal/tool"
)

const serverName = "toolshim"

// Server serves every action of a tool set as an MCP tool taking a single
// "input" string.
type Server struct {
	mcp    *server.MCPServer
	local  executor.Executor
	sub    executor.Executor
	logger *zap.Logger

	mu    sync.RWMutex
	set   *tool.Set
	names []string
}

// Options configures a Server.
type Options struct {
	Version    string
	Middleware executor.MiddlewareSource
	Timeout    time.Duration
	Logger     *zap.Logger
}

// NewServer creates a server with set registered.
func NewServer(set *tool.Set, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcp:    server.NewMCPServer(serverName, version, server.WithToolCapabilities(true)),
		local:  executor.NewLocal(opts.Middleware),
		sub:    executor.NewSubprocess(opts.Middleware, opts.Timeout),
		logger: logger,
	}
	s.Reload(set)
	return s
}

// Reload replaces the served tool set. Calls in flight finish against the
// set they started with.
func (s *Server) Reload(set *tool.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.names) > 0 {
		s.mcp.DeleteTools(s.names...)
	}
	s.set = set
	s.names = s.names[:0]
	if set == nil {
		return
	}

	for _, a := range set.Actions() {
		s.mcp.AddTool(mcp.NewTool(a.Name,
			mcp.WithDescription(a.Description),
			mcp.WithString("input",
				mcp.Required(),
				mcp.Description("Input passed to the action"),
			),
		), s.handleAction)
		s.names = append(s.names, a.Name)
	}
	s.logger.Info("tools registered", zap.Int("count", len(s.names)))
}

// ServeStdio blocks serving MCP over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// Names returns the registered tool names, sorted.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

func (s *Server) executorFor(kind tool.Kind) executor.Executor {
	if kind == tool.KindSubprocess {
		return s.sub
	}
	return s.local
}

func (s *Server) handleAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: input"), nil
	}

	s.mu.RLock()
	set := s.set
	s.mu.RUnlock()
	if set == nil {
		return mcp.NewToolResultError("no tools loaded"), nil
	}

	name := req.Params.Name
	spec, err := set.Lookup(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	log := s.logger.With(zap.String("call_id", uuid.NewString()), zap.String("action", name))
	start := time.Now()

	out, err := executor.Execute(ctx, s.executorFor(spec.Kind), spec.Action, []byte(input))
	if err != nil {
		log.Warn("action failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", name, err)), nil
	}

	log.Debug("action done", zap.Int("bytes", len(out)), zap.Duration("elapsed", time.Since(start)))
	return mcp.NewToolResultText(string(out)), nil
}
