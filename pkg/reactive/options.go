package reactive

import "go.uber.org/zap"

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	logger *zap.Logger
	equal  func(a, b any) bool
}

// WithLogger sets the logger used for action tracing and recovered
// subscriber panics. Default: zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *storeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEqual overrides the change detection used after each action.
// Returning true means "unchanged": no version bump and no notification.
// Default: reflect.DeepEqual.
func WithEqual[S any](fn func(a, b S) bool) Option {
	return func(c *storeConfig) {
		if fn == nil {
			return
		}
		c.equal = func(a, b any) bool {
			return fn(a.(S), b.(S))
		}
	}
}
