// Package tool hosts the actions the executor runs: builtin actions backed
// by the embedding and tokenizer adapters, and manifest tools loaded from
// a directory.
package tool

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/memvra/toolshim/internal/executor"
)

var (
	ErrDuplicateAction = errors.New("tool: action already registered")
	ErrActionNotFound  = errors.New("tool: action not found")
)

// Kind says which executor runs an action.
type Kind string

const (
	KindLocal      Kind = "local"
	KindSubprocess Kind = "subprocess"
)

// Spec is an action plus what callers need to know about it.
type Spec struct {
	executor.Action

	Description string
	Kind        Kind
}

// Tool groups related actions.
type Tool struct {
	Name        string
	Description string
	Dir         string
	Actions     []Spec
}

// Set is a registry of tools, indexed by action name.
type Set struct {
	tools   []Tool
	actions map[string]Spec
}

// NewSet registers tools. Action names must be unique across the set.
func NewSet(tools ...Tool) (*Set, error) {
	s := &Set{actions: make(map[string]Spec)}
	for _, t := range tools {
		if err := s.Add(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers t and its actions. Nothing is registered if any action
// name is blank or already taken, whether by the set or by t itself.
// Names are stored trimmed.
func (s *Set) Add(t Tool) error {
	actions := make([]Spec, len(t.Actions))
	copy(actions, t.Actions)

	seen := make(map[string]bool, len(actions))
	for i, a := range actions {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return fmt.Errorf("tool: %s: action without name", t.Name)
		}
		if _, exists := s.actions[name]; exists || seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateAction, name)
		}
		seen[name] = true
		actions[i].Name = name
	}
	t.Actions = actions
	for _, a := range actions {
		s.actions[a.Name] = a
	}
	s.tools = append(s.tools, t)
	return nil
}

// Lookup returns the action registered under name.
func (s *Set) Lookup(name string) (Spec, error) {
	a, ok := s.actions[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	return a, nil
}

// Tools returns the registered tools in registration order.
func (s *Set) Tools() []Tool {
	return s.tools
}

// Actions returns every action sorted by name.
func (s *Set) Actions() []Spec {
	out := make([]Spec, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
