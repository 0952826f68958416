package partition

import (
	"github.com/datatrails/go-datatrails-common/logger"
)

// Options carries the cross-cutting collaborators of a partition. The zero
// value is usable; a nil Log disables debug logging.
type Options struct {
	Log logger.Logger
}

// Option is a generic option type applied at build and restore time.
// Implementations type assert to the Options target record and ignore the
// option if that fails.
type Option func(any)

// WithLogger injects the logger the partition uses for build and mutation
// debug lines.
func WithLogger(log logger.Logger) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Log = log
		}
	}
}

func newOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
