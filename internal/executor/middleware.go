package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownMiddleware is returned by BuildRegistry for unrecognised names.
var ErrUnknownMiddleware = errors.New("executor: unknown middleware")

// Truncater shortens text to a token budget.
type Truncater interface {
	Truncate(s string, maxTokens int) string
}

// TrimSpace strips leading and trailing whitespace from the output.
func TrimSpace() Middleware {
	return MiddlewareFunc(func(_ context.Context, _ Action, output []byte) ([]byte, error) {
		return bytes.TrimSpace(output), nil
	})
}

// CompactJSON removes insignificant whitespace from JSON output and fails
// on anything that is not valid JSON.
func CompactJSON() Middleware {
	return MiddlewareFunc(func(_ context.Context, action Action, output []byte) ([]byte, error) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, output); err != nil {
			return nil, fmt.Errorf("executor: %s: compact json: %w", action.Name, err)
		}
		return buf.Bytes(), nil
	})
}

// Truncate cuts the output to at most maxTokens tokens.
func Truncate(t Truncater, maxTokens int) Middleware {
	return MiddlewareFunc(func(_ context.Context, _ Action, output []byte) ([]byte, error) {
		return []byte(t.Truncate(string(output), maxTokens)), nil
	})
}

// BuildRegistry builds a Registry from middleware names per action:
//
//	trim            TrimSpace
//	compact_json    CompactJSON
//	truncate:<n>    Truncate to n tokens (needs t)
func BuildRegistry(spec map[string][]string, t Truncater) (Registry, error) {
	reg := Registry{}

	// Deterministic error reporting.
	actions := make([]string, 0, len(spec))
	for action := range spec {
		actions = append(actions, action)
	}
	sort.Strings(actions)

	for _, action := range actions {
		for _, name := range spec[action] {
			m, err := parseMiddleware(name, t)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", action, err)
			}
			reg.Use(action, m)
		}
	}
	return reg, nil
}

func parseMiddleware(name string, t Truncater) (Middleware, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(name), ":")

	switch kind {
	case "trim":
		return TrimSpace(), nil
	case "compact_json":
		return CompactJSON(), nil
	case "truncate":
		if t == nil {
			return nil, fmt.Errorf("%w: truncate needs a tokenizer", ErrUnknownMiddleware)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: truncate needs a token count, got %q", ErrUnknownMiddleware, arg)
		}
		return Truncate(t, n), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, name)
	}
}
