package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// waitDelay bounds how long output pipes may stay open after the process
// has been killed.
const waitDelay = time.Second

// Subprocess runs Action.Command in Action.Dir, feeding the input on stdin
// and returning stdout.
type Subprocess struct {
	Base

	timeout time.Duration
	env     []string
}

// NewSubprocess creates a Subprocess executor. A zero timeout means the
// process runs until ctx is done.
func NewSubprocess(source MiddlewareSource, timeout time.Duration, env ...string) *Subprocess {
	return &Subprocess{
		Base:    NewBase(source),
		timeout: timeout,
		env:     env,
	}
}

func (s *Subprocess) TryExecute(ctx context.Context, action Action, input []byte) ([]byte, error) {
	if len(action.Command) == 0 {
		return nil, ErrNoRunner
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	name := action.Command[0]
	// Relative entrypoints such as ./run.sh resolve against the action dir.
	if action.Dir != "" && strings.ContainsRune(name, filepath.Separator) && !filepath.IsAbs(name) {
		name = filepath.Join(action.Dir, name)
	}

	cmd := exec.CommandContext(ctx, name, action.Command[1:]...)
	cmd.Dir = action.Dir
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), s.env...)
	cmd.Env = append(cmd.Env, "TOOLSHIM_ACTION="+action.Name)
	cmd.Stdin = bytes.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("executor: %s: %w", action.Name, ctxErr)
		}
		return nil, fmt.Errorf("executor: %s: %w: %s", action.Name, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
