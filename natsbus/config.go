package natsbus

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultQueueGroup     = "rxbridge"
	defaultRequestTimeout = 30 * time.Second
)

// Config configures a Bus.
type Config struct {
	// QueueGroup is the NATS queue group consumers join, so that each message
	// sent to an address reaches exactly one consumer.
	//
	// Default: "rxbridge"
	QueueGroup string `yaml:"queueGroup"`

	// Broadcast makes consumers subscribe without a queue group: every
	// consumer on an address receives every message.
	Broadcast bool `yaml:"broadcast"`

	// RequestTimeout bounds how long Send waits for a reply when
	// DeliveryOptions.Timeout is zero.
	//
	// Default: 30s
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields with their defaults.
func (c *Config) SetDefaults() {
	if c.QueueGroup == "" {
		c.QueueGroup = defaultQueueGroup
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
}

// LoadConfig parses a YAML document into a Config and applies defaults.
//
// Example document:
//
//	queueGroup: billing
//	requestTimeout: 5s
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse bus config: %w", err)
	}
	cfg.SetDefaults()

	return cfg, nil
}
