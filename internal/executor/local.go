package executor

import "context"

// Local runs actions in-process by calling Action.Run.
type Local struct {
	Base
}

// NewLocal creates a Local executor.
func NewLocal(source MiddlewareSource) *Local {
	return &Local{Base: NewBase(source)}
}

func (l *Local) TryExecute(ctx context.Context, action Action, input []byte) ([]byte, error) {
	if action.Run == nil {
		return nil, ErrNoRunner
	}
	return action.Run(ctx, input)
}
