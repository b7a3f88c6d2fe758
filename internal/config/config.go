// Package config manages global (~/.config/toolshim/config.toml) and
// per-project (.toolshim/config.toml) configuration for toolshim.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// GlobalConfig holds user-wide settings.
type GlobalConfig struct {
	DefaultEmbedder  string              `toml:"default_embedder"`
	DefaultTokenizer string              `toml:"default_tokenizer"`
	Keys             KeysConfig          `toml:"keys"`
	Ollama           OllamaConfig        `toml:"ollama"`
	Voyage           VoyageConfig        `toml:"voyage"`
	OpenAI           OpenAIConfig        `toml:"openai"`
	Anthropic        AnthropicConfig     `toml:"anthropic"`
	Tiktoken         TiktokenConfig      `toml:"tiktoken"`
	Tools            ToolsConfig         `toml:"tools"`
	Middleware       map[string][]string `toml:"middleware"`
	Log              LogConfig           `toml:"log"`
}

type KeysConfig struct {
	Voyage    string `toml:"voyage"`
	OpenAI    string `toml:"openai"`
	Anthropic string `toml:"anthropic"`
}

// OllamaConfig configures both the Ollama embedder and the Ollama tokenizer.
// TokenizerEndpoint has no default: the tokenizer only embeds when it is set.
type OllamaConfig struct {
	Host              string `toml:"host"`
	EmbeddingsPath    string `toml:"embeddings_path"`
	EmbedModel        string `toml:"embed_model"`
	MaxTokens         int    `toml:"max_tokens"`
	TokenizerEndpoint string `toml:"tokenizer_endpoint"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
}

// Timeout returns the configured request timeout as a duration.
func (c OllamaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type VoyageConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

type AnthropicConfig struct {
	Model string `toml:"model"`
}

type TiktokenConfig struct {
	Encoding  string `toml:"encoding"`
	MaxTokens int    `toml:"max_tokens"`
}

// ToolsConfig controls where manifest tools are discovered and how they run.
type ToolsConfig struct {
	Dir            string `toml:"dir"`
	Watch          bool   `toml:"watch"`
	DebounceMs     int    `toml:"debounce_ms"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

// ProjectConfig holds per-project overrides stored in .toolshim/config.toml.
type ProjectConfig struct {
	DefaultEmbedder  string              `toml:"default_embedder"`
	DefaultTokenizer string              `toml:"default_tokenizer"`
	ToolsDir         string              `toml:"tools_dir"`
	Middleware       map[string][]string `toml:"middleware"`
}

// DefaultGlobal returns sensible defaults.
func DefaultGlobal() GlobalConfig {
	return GlobalConfig{
		DefaultEmbedder:  "ollama",
		DefaultTokenizer: "ollama",
		Ollama: OllamaConfig{
			Host:           "http://localhost:11434",
			EmbeddingsPath: "/api/embeddings",
			EmbedModel:     "nomic-embed-text",
			MaxTokens:      8192,
			TimeoutSeconds: 30,
		},
		Voyage: VoyageConfig{
			BaseURL: "https://api.voyageai.com/v1",
			Model:   "voyage-2",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "text-embedding-3-small",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-6",
		},
		Tiktoken: TiktokenConfig{
			Encoding:  "cl100k_base",
			MaxTokens: 8192,
		},
		Tools: ToolsConfig{
			DebounceMs:     500,
			TimeoutSeconds: 60,
		},
		Middleware: map[string][]string{},
	}
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "toolshim", "config.toml"), nil
}

// LoadGlobal loads the global config, applying defaults for any missing values.
func LoadGlobal() (GlobalConfig, error) {
	cfg := DefaultGlobal()

	path, err := GlobalConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("config: load global: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LoadFile loads a config from an explicit path on top of the defaults.
func LoadFile(path string) (GlobalConfig, error) {
	cfg := DefaultGlobal()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets env vars override config file values.
func applyEnv(cfg *GlobalConfig) {
	if v := os.Getenv("VOYAGE_API_KEY"); v != "" {
		cfg.Keys.Voyage = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Keys.OpenAI = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Keys.Anthropic = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.Ollama.Host = v
	}
}

// SaveGlobal writes the global config to disk.
func SaveGlobal(cfg GlobalConfig) error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}
	return save(path, cfg)
}

// SaveFile writes cfg to an explicit path.
func SaveFile(path string, cfg GlobalConfig) error {
	return save(path, cfg)
}

// LoadProject loads .toolshim/config.toml from the given project root.
func LoadProject(root string) (ProjectConfig, error) {
	var cfg ProjectConfig
	path := filepath.Join(ProjectConfigDirPath(root), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load project: %w", err)
	}
	return cfg, nil
}

// SaveProject writes the project config to .toolshim/config.toml.
func SaveProject(root string, cfg ProjectConfig) error {
	return save(filepath.Join(ProjectConfigDirPath(root), "config.toml"), cfg)
}

// ProjectConfigDirPath returns the path to the project's .toolshim/ directory.
func ProjectConfigDirPath(root string) string {
	return filepath.Join(root, ".toolshim")
}

// Load returns the effective config for a project root (global merged with project).
// A relative project tools_dir is resolved against root.
func Load(root string) (GlobalConfig, error) {
	global, err := LoadGlobal()
	if err != nil {
		return global, err
	}
	return merge(global, root)
}

// LoadWithFile is Load with an explicit global config file.
func LoadWithFile(path, root string) (GlobalConfig, error) {
	global, err := LoadFile(path)
	if err != nil {
		return global, err
	}
	return merge(global, root)
}

func merge(global GlobalConfig, root string) (GlobalConfig, error) {
	project, err := LoadProject(root)
	if err != nil {
		return global, err
	}

	if project.DefaultEmbedder != "" {
		global.DefaultEmbedder = project.DefaultEmbedder
	}
	if project.DefaultTokenizer != "" {
		global.DefaultTokenizer = project.DefaultTokenizer
	}
	if project.ToolsDir != "" {
		dir := project.ToolsDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		global.Tools.Dir = dir
	}
	if global.Middleware == nil {
		global.Middleware = map[string][]string{}
	}
	for action, names := range project.Middleware {
		global.Middleware[action] = names
	}

	return global, nil
}

func save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(v)
}
