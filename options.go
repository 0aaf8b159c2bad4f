package rxbridge

import (
	"github.com/xinjiayu/rxbridge/internal/logging"
	"github.com/xinjiayu/rxbridge/internal/metrics"
	"github.com/xinjiayu/rxbridge/types"
)

// ============================================================================
// 配置选项
// ============================================================================

// Option 配置选项接口
type Option interface {
	Apply(config *Config)
}

// OptionFunc 函数形式的配置选项
type OptionFunc func(config *Config)

// Apply 应用配置
func (f OptionFunc) Apply(config *Config) {
	f(config)
}

// Config 适配器配置
type Config struct {
	// Name 用于日志和指标的适配器名称
	Name    string
	Logger  types.Logger
	Metrics types.MetricsCollector
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Name:    "observable",
		Logger:  logging.NewNop(),
		Metrics: metrics.NewNop(),
	}
}

func newConfig(name string, options []Option) *Config {
	config := DefaultConfig()
	config.Name = name
	for _, opt := range options {
		if opt != nil {
			opt.Apply(config)
		}
	}
	if config.Logger == nil {
		config.Logger = logging.NewNop()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNop()
	}
	return config
}

// WithName 设置适配器名称
func WithName(name string) Option {
	return OptionFunc(func(config *Config) {
		config.Name = name
	})
}

// WithLogger 设置结构化日志
func WithLogger(logger types.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.Logger = logger
	})
}

// WithMetrics 设置指标收集器
func WithMetrics(collector types.MetricsCollector) Option {
	return OptionFunc(func(config *Config) {
		config.Metrics = collector
	})
}
