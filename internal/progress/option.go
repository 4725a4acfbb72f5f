package progress

import "log/slog"

// Option configures an Iterator.
type Option func(*options)

type options struct {
	logger *slog.Logger
	name   string
}

// WithLogger sets the logger that receives fault diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName labels log entries emitted by the iterator
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
