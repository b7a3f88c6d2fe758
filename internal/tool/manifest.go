package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/memvra/toolshim/internal/executor"
)

const (
	ManifestName   = "tool.toml"
	IgnoreFileName = ".toolignore"
)

// manifest is the on-disk shape of tool.toml.
type manifest struct {
	Name        string           `toml:"name"`
	Description string           `toml:"description"`
	Actions     []manifestAction `toml:"actions"`
}

type manifestAction struct {
	Name        string         `toml:"name"`
	Description string         `toml:"description"`
	Command     []string       `toml:"command"`
	Config      map[string]any `toml:"config"`
}

// hardIgnored names are never tool directories and never trigger a reload,
// wherever they appear under the tools dir.
var hardIgnored = map[string]bool{
	".git":         true,
	".toolshim":    true,
	"node_modules": true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// ignoreMatcher decides which paths under a tools dir are skipped: the
// hard-ignored names plus the patterns of <dir>/.toolignore.
type ignoreMatcher struct {
	gi *gitignore.GitIgnore
}

// newIgnoreMatcher loads .toolignore from dir. Without one, only the
// hard-ignored names are skipped.
func newIgnoreMatcher(dir string) *ignoreMatcher {
	path := filepath.Join(dir, IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		return &ignoreMatcher{}
	}
	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return &ignoreMatcher{}
	}
	return &ignoreMatcher{gi: gi}
}

// Match reports whether relPath, relative to the tools dir, is skipped.
func (m *ignoreMatcher) Match(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if hardIgnored[part] {
			return true
		}
	}
	if m.gi == nil {
		return false
	}
	return m.gi.MatchesPath(relPath)
}

// MatchDir is Match for a directory, so patterns ending in / apply.
func (m *ignoreMatcher) MatchDir(relPath string) bool {
	return m.Match(relPath) || m.Match(relPath+"/")
}

// LoadDir reads every <dir>/<tool>/tool.toml. Each manifest action becomes
// a subprocess action that runs in the manifest's directory.
func LoadDir(dir string) ([]Tool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("tool: read %s: %w", dir, err)
	}

	ignore := newIgnoreMatcher(dir)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || ignore.MatchDir(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var tools []Tool
	for _, name := range names {
		toolDir := filepath.Join(dir, name)
		path := filepath.Join(toolDir, ManifestName)
		if _, err := os.Stat(path); err != nil {
			continue
		}

		t, err := loadManifest(path)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func loadManifest(path string) (Tool, error) {
	var m manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return Tool{}, fmt.Errorf("tool: load %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Tool{}, fmt.Errorf("tool: resolve %s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}

	t := Tool{
		Name:        m.Name,
		Description: m.Description,
		Dir:         dir,
	}
	for _, a := range m.Actions {
		if a.Name == "" {
			return Tool{}, fmt.Errorf("tool: %s: action without name", path)
		}
		if len(a.Command) == 0 {
			return Tool{}, fmt.Errorf("tool: %s: action %s has no command", path, a.Name)
		}
		t.Actions = append(t.Actions, Spec{
			Action: executor.Action{
				Name:    a.Name,
				Dir:     dir,
				Command: a.Command,
				Config:  a.Config,
			},
			Description: a.Description,
			Kind:        KindSubprocess,
		})
	}
	return t, nil
}
