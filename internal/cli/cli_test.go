package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memvra/toolshim/internal/config"
	"github.com/memvra/toolshim/internal/executor"
	"github.com/memvra/toolshim/internal/tokenizer"
	"github.com/memvra/toolshim/internal/tool"
)

// useConfig points the CLI at a temporary global config for one test.
func useConfig(t *testing.T, cfg config.GlobalConfig) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"VOYAGE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_HOST"} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReadLines(t *testing.T) {
	got, err := readLines(strings.NewReader("first\n\n  second  \n\t\nthird"))
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseTokensInput(t *testing.T) {
	in, err := parseTokensInput([]byte(" raw text "), false)
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if text, ok := in.(tokenizer.Text); !ok || text != " raw text " {
		t.Errorf("text input: got %#v", in)
	}

	in, err = parseTokensInput([]byte(`[{"role":"user","content":"hi"},{"role":"assistant","content":"yo","name":"bot"}]`), true)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	msgs, ok := in.(tokenizer.Messages)
	if !ok || len(msgs) != 2 || msgs[1].Name != "bot" {
		t.Errorf("messages input: got %#v", in)
	}

	if _, err := parseTokensInput([]byte("not json"), true); err == nil {
		t.Error("expected error for invalid messages")
	}
}

func TestFindRootFrom(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(config.ProjectConfigDirPath(root), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findRootFrom(nested); got != root {
		t.Errorf("findRootFrom: got %q, want %q", got, root)
	}

	plain := t.TempDir()
	if got := findRootFrom(plain); got != plain {
		t.Errorf("no project dir: got %q, want %q", got, plain)
	}
}

func TestBuildTokenizer(t *testing.T) {
	cfg := config.DefaultGlobal()

	tok, err := buildTokenizer(cfg, "")
	if err != nil {
		t.Fatalf("default tokenizer: %v", err)
	}
	if _, ok := tok.(*tokenizer.Ollama); !ok {
		t.Errorf("default tokenizer: got %T", tok)
	}

	if _, err := buildTokenizer(cfg, "bogus"); err == nil {
		t.Error("expected error for unknown tokenizer")
	}

	cfg.Keys.Voyage = ""
	if _, err := buildTokenizer(cfg, "voyage"); err == nil {
		t.Error("expected error for voyage without key")
	}

	cfg.Keys.Anthropic = "sk-test"
	tok, err = buildTokenizer(cfg, "anthropic")
	if err != nil {
		t.Fatalf("anthropic: %v", err)
	}
	if tok.MaxInputTokens() <= 0 {
		t.Errorf("anthropic max input: got %d", tok.MaxInputTokens())
	}
}

func TestBuildEmbedder(t *testing.T) {
	cfg := config.DefaultGlobal()

	emb, err := buildEmbedder(cfg, "")
	if err != nil {
		t.Fatalf("default embedder: %v", err)
	}
	if emb.Model() != "nomic-embed-text" {
		t.Errorf("model: got %q", emb.Model())
	}

	if _, err := buildEmbedder(cfg, "bogus"); err == nil {
		t.Error("expected error for unknown embedder")
	}
}

func TestNeedsTruncater(t *testing.T) {
	if needsTruncater(map[string][]string{"a": {"trim", "compact_json"}}) {
		t.Error("no truncate configured")
	}
	if !needsTruncater(map[string][]string{"a": {"trim"}, "b": {" truncate:10"}}) {
		t.Error("truncate configured")
	}
}

func TestBuildRegistry_Unknown(t *testing.T) {
	cfg := config.DefaultGlobal()
	cfg.Middleware = map[string][]string{"a": {"shout"}}
	if _, err := buildRegistry(cfg); !errors.Is(err, executor.ErrUnknownMiddleware) {
		t.Errorf("expected ErrUnknownMiddleware, got %v", err)
	}
}

func writeShoutTool(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	toolDir := filepath.Join(dir, "shout")
	if err := os.MkdirAll(toolDir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := "[[actions]]\nname = \"shout\"\ndescription = \"Uppercase input\"\ncommand = [\"/bin/sh\", \"-c\", \"tr a-z A-Z\"]\n"
	if err := os.WriteFile(filepath.Join(toolDir, tool.ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestBuildToolSet(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	cfg := config.DefaultGlobal()
	cfg.Tools.Dir = writeShoutTool(t)

	set, err := buildToolSet(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildToolSet: %v", err)
	}
	for _, name := range []string{"embed", "count_tokens", "shout"} {
		if _, err := set.Lookup(name); err != nil {
			t.Errorf("lookup %s: %v", name, err)
		}
	}

	shout, _ := set.Lookup("shout")
	if _, ok := executorFor(shout.Kind, nil, 0).(*executor.Subprocess); !ok {
		t.Error("manifest action should run as a subprocess")
	}
	embed, _ := set.Lookup("embed")
	if _, ok := executorFor(embed.Kind, nil, 0).(*executor.Local); !ok {
		t.Error("builtin action should run locally")
	}
}

func TestBuildToolSet_MissingKeyDropsAction(t *testing.T) {
	cfg := config.DefaultGlobal()
	cfg.DefaultEmbedder = "voyage"
	cfg.Keys.Voyage = ""

	set, err := buildToolSet(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("buildToolSet: %v", err)
	}
	if _, err := set.Lookup("embed"); !errors.Is(err, tool.ErrActionNotFound) {
		t.Errorf("embed should be disabled, got %v", err)
	}
	if _, err := set.Lookup("count_tokens"); err != nil {
		t.Errorf("count_tokens: %v", err)
	}
}

func TestTokensCmd(t *testing.T) {
	useConfig(t, config.DefaultGlobal())

	out, err := run(t, newTokensCmd(), "", "hello", "world")
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	if strings.TrimSpace(out) != "11" {
		t.Errorf("count: got %q, want 11", out)
	}

	out, err = run(t, newTokensCmd(), "abc", "--left")
	if err != nil {
		t.Fatalf("tokens --left: %v", err)
	}
	if strings.TrimSpace(out) != "8189" {
		t.Errorf("left: got %q, want 8189", out)
	}

	_, err = run(t, newTokensCmd(), `[{"role":"user","content":"hi"}]`, "--messages")
	if !errors.Is(err, tokenizer.ErrNotImplemented) {
		t.Errorf("messages with ollama: expected ErrNotImplemented, got %v", err)
	}
}

func TestEmbedCmd_ViaTokenizer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"embedding": [0.5, 0.25]}`)
	}))
	defer server.Close()

	cfg := config.DefaultGlobal()
	cfg.Ollama.TokenizerEndpoint = server.URL
	useConfig(t, cfg)

	out, err := run(t, newEmbedCmd(), "first\nsecond\n", "--tokenizer")
	if err != nil {
		t.Fatalf("embed --tokenizer: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines: got %d, want 2:\n%s", len(lines), out)
	}
	var line embedLine
	if err := json.Unmarshal([]byte(lines[1]), &line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if line.Text != "second" || line.Model != "nomic-embed-text" || len(line.Embedding) != 2 {
		t.Errorf("line: got %+v", line)
	}
}

func TestEmbedCmd_ViaTokenizerNoEndpoint(t *testing.T) {
	useConfig(t, config.DefaultGlobal())

	_, err := run(t, newEmbedCmd(), "", "--tokenizer", "hello")
	if !errors.Is(err, tokenizer.ErrNoEndpoint) {
		t.Errorf("expected ErrNoEndpoint, got %v", err)
	}
}

func TestExecCmd_Builtin(t *testing.T) {
	useConfig(t, config.DefaultGlobal())

	out, err := run(t, newExecCmd(), "", "count_tokens", "--input", "hello")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if out != "{\"tokens\":5}\n" {
		t.Errorf("got %q", out)
	}
}

func TestExecCmd_ManifestWithMiddleware(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs /bin/sh")
	}
	cfg := config.DefaultGlobal()
	cfg.Tools.Dir = writeShoutTool(t)
	cfg.Middleware = map[string][]string{"shout": {"trim"}}
	useConfig(t, cfg)

	out, err := run(t, newExecCmd(), "  quiet please \n", "shout")
	if err != nil {
		t.Fatalf("exec: %v", err)
	}
	if out != "QUIET PLEASE\n" {
		t.Errorf("got %q", out)
	}
}

func TestExecCmd_UnknownAction(t *testing.T) {
	useConfig(t, config.DefaultGlobal())

	_, err := run(t, newExecCmd(), "", "nope", "--input", "x")
	if !errors.Is(err, tool.ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() { cfgFile = prev })

	if _, err := run(t, newConfigInitCmd(), ""); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DefaultEmbedder != "ollama" {
		t.Errorf("default embedder: got %q", cfg.DefaultEmbedder)
	}

	if _, err := run(t, newConfigInitCmd(), ""); err == nil {
		t.Error("expected error when config exists")
	}
	if _, err := run(t, newConfigInitCmd(), "", "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}
}

func TestConfigShow_MasksKeys(t *testing.T) {
	cfg := config.DefaultGlobal()
	cfg.Keys.OpenAI = "sk-1234567890abcdef"
	useConfig(t, cfg)

	out, err := run(t, newConfigShowCmd(), "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "sk-1234567890abcdef") {
		t.Error("api key printed in clear")
	}
	if !strings.Contains(out, "sk-1****cdef") {
		t.Errorf("masked key missing from output:\n%s", out)
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"short":      "****",
		"abcd123456": "abcd****3456",
	}
	for in, want := range tests {
		if got := maskKey(in); got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, newVersionCmd(), "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "toolshim dev") {
		t.Errorf("got %q", out)
	}
}
