package natsbus

import "github.com/xinjiayu/rxbridge/types"

// Option configures a Bus.
type Option func(*Bus)

// WithConfig sets the bus configuration. Zero-valued fields take defaults.
func WithConfig(cfg Config) Option {
	return func(b *Bus) {
		b.cfg = cfg
	}
}

// WithLogger sets the logger used by the bus and its consumers.
func WithLogger(logger types.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector passed to observables built by the
// bus.
func WithMetrics(collector types.MetricsCollector) Option {
	return func(b *Bus) {
		if collector != nil {
			b.metrics = collector
		}
	}
}
