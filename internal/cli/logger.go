package cli

import "go.uber.org/zap"

// newLogger returns a development logger when debug is set and a
// production logger otherwise. Both write to stderr.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
