package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/memvra/toolshim/internal/adapter"
	"github.com/memvra/toolshim/internal/config"
	"github.com/memvra/toolshim/internal/executor"
	"github.com/memvra/toolshim/internal/tokenizer"
	"github.com/memvra/toolshim/internal/tool"
)

const tokenizerTiktoken = "tiktoken"

// findRoot returns the nearest directory at or above cwd holding a
// .toolshim directory, or cwd when there is none.
func findRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return findRootFrom(cwd), nil
}

func findRootFrom(start string) string {
	start, _ = filepath.Abs(start)
	dir := start
	for {
		if info, err := os.Stat(config.ProjectConfigDirPath(dir)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start
		}
		dir = parent
	}
}

// loadConfig resolves the effective configuration for the current project.
func loadConfig() (config.GlobalConfig, string, error) {
	root, err := findRoot()
	if err != nil {
		return config.GlobalConfig{}, "", err
	}

	var cfg config.GlobalConfig
	if cfgFile != "" {
		cfg, err = config.LoadWithFile(cfgFile, root)
	} else {
		cfg, err = config.Load(root)
	}
	if err != nil {
		return cfg, root, err
	}
	if debug {
		cfg.Log.Debug = true
	}
	return cfg, root, nil
}

// buildEmbedder constructs the named embedder. Empty name selects the
// configured default.
func buildEmbedder(cfg config.GlobalConfig, name string) (adapter.Embedder, error) {
	if name == "" {
		name = cfg.DefaultEmbedder
	}

	var opts adapter.Options
	switch name {
	case adapter.ProviderOllama:
		opts = adapter.Options{
			Model:   cfg.Ollama.EmbedModel,
			BaseURL: cfg.Ollama.Host,
			Path:    cfg.Ollama.EmbeddingsPath,
			Timeout: cfg.Ollama.Timeout(),
		}
	case adapter.ProviderVoyage:
		opts = adapter.Options{
			Model:   cfg.Voyage.Model,
			APIKey:  cfg.Keys.Voyage,
			BaseURL: cfg.Voyage.BaseURL,
		}
	case adapter.ProviderOpenAI:
		opts = adapter.Options{
			Model:   cfg.OpenAI.Model,
			APIKey:  cfg.Keys.OpenAI,
			BaseURL: cfg.OpenAI.BaseURL,
		}
	}
	return adapter.New(name, opts)
}

// buildTokenizer constructs the named tokenizer. Empty name selects the
// configured default.
func buildTokenizer(cfg config.GlobalConfig, name string) (tokenizer.Tokenizer, error) {
	if name == "" {
		name = cfg.DefaultTokenizer
	}

	switch name {
	case adapter.ProviderOllama:
		return tokenizerEmbedder(cfg), nil
	case adapter.ProviderVoyage:
		client, err := adapter.NewVoyageClient(cfg.Keys.Voyage, cfg.Voyage.BaseURL, 0)
		if err != nil {
			return nil, err
		}
		tok, err := tokenizer.NewVoyage(cfg.Voyage.Model, client.WithModel(cfg.Voyage.Model))
		if err != nil {
			return nil, err
		}
		return tok, nil
	case adapter.ProviderAnthropic:
		client, err := adapter.NewAnthropicClient(cfg.Keys.Anthropic, "", cfg.Anthropic.Model, 0)
		if err != nil {
			return nil, err
		}
		tok, err := tokenizer.NewAnthropic(client.Model(), client)
		if err != nil {
			return nil, err
		}
		return tok, nil
	case tokenizerTiktoken:
		tok, err := tokenizer.NewTiktoken(cfg.Tiktoken.Encoding, cfg.Tiktoken.MaxTokens)
		if err != nil {
			return nil, err
		}
		return tok, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q; valid tokenizers: ollama, voyage, anthropic, tiktoken", name)
	}
}

// tokenizerEmbedder returns the Ollama tokenizer. Its embeddings fail with
// tokenizer.ErrNoEndpoint until ollama.tokenizer_endpoint is set.
func tokenizerEmbedder(cfg config.GlobalConfig) *tokenizer.Ollama {
	return tokenizer.NewOllama(tokenizer.OllamaConfig{
		Model:     cfg.Ollama.EmbedModel,
		MaxTokens: cfg.Ollama.MaxTokens,
		Endpoint:  cfg.Ollama.TokenizerEndpoint,
		Timeout:   cfg.Ollama.Timeout(),
	})
}

// buildRegistry parses the configured middleware. The tiktoken encoder is
// only loaded when some action truncates.
func buildRegistry(cfg config.GlobalConfig) (executor.Registry, error) {
	var t executor.Truncater
	if needsTruncater(cfg.Middleware) {
		tk, err := tokenizer.NewTiktoken(cfg.Tiktoken.Encoding, cfg.Tiktoken.MaxTokens)
		if err != nil {
			return nil, err
		}
		t = tk
	}
	reg, err := executor.BuildRegistry(cfg.Middleware, t)
	if err != nil {
		return nil, fmt.Errorf("middleware: %w", err)
	}
	return reg, nil
}

func needsTruncater(spec map[string][]string) bool {
	for _, names := range spec {
		for _, n := range names {
			if strings.HasPrefix(strings.TrimSpace(n), "truncate") {
				return true
			}
		}
	}
	return false
}

// buildToolSet registers the builtin tool and every manifest tool under the
// configured tools directory. A builtin dependency that cannot be built is
// logged and its action left out.
func buildToolSet(cfg config.GlobalConfig, logger *zap.Logger) (*tool.Set, error) {
	emb, err := buildEmbedder(cfg, "")
	if err != nil {
		logger.Warn("embed action disabled", zap.Error(err))
	}
	tok, err := buildTokenizer(cfg, "")
	if err != nil {
		logger.Warn("count_tokens action disabled", zap.Error(err))
	}

	tools := []tool.Tool{tool.Builtin(emb, tok)}
	if cfg.Tools.Dir != "" {
		loaded, err := tool.LoadDir(cfg.Tools.Dir)
		if err != nil {
			return nil, err
		}
		tools = append(tools, loaded...)
	}
	return tool.NewSet(tools...)
}

func toolTimeout(cfg config.GlobalConfig) time.Duration {
	return time.Duration(cfg.Tools.TimeoutSeconds) * time.Second
}

// executorFor returns the executor that runs actions of the given kind.
func executorFor(kind tool.Kind, reg executor.MiddlewareSource, timeout time.Duration) executor.Executor {
	if kind == tool.KindSubprocess {
		return executor.NewSubprocess(reg, timeout)
	}
	return executor.NewLocal(reg)
}
