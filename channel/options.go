package channel

import "go.uber.org/zap"

type options struct {
	name    string
	storage Storage
	logger  *zap.Logger
}

type Option func(*options)

// Name used in log fields and metric labels.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithStorage(s Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// Lifecycle events are logged at debug level. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
