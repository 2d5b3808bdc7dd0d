package buffer

import "github.com/c360/eventbuilder/metric"

// Option configures a TimeIndexedBuffer using the functional options
// pattern.
type Option func(*bufferOptions)

type bufferOptions struct {
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for buffer operations,
// registered under prefix. If registry is nil or prefix is empty, this
// option is ignored.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(o *bufferOptions) {
		if registry != nil && prefix != "" {
			o.metricsReg = registry
			o.metricsPrefix = prefix
		}
	}
}

func applyOptions(opts ...Option) *bufferOptions {
	o := &bufferOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
