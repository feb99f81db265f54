// Package config provides environment configuration management.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jnst/pgq-consumer/internal/model"
)

const (
	// HandlerLog logs every event and accepts it.
	HandlerLog = "log"
	// HandlerRedis relays every event into a Redis stream.
	HandlerRedis = "redis"
)

// Config holds all environment configuration for the application.
type Config struct {
	DatabaseURL         string `env:"DATABASE_URL,required"`
	QueueName           string `env:"QUEUE_NAME"            envDefault:"events"`
	ConsumerName        string `env:"CONSUMER_NAME"         envDefault:"consumer-1"`
	PollIntervalSeconds int    `env:"POLL_INTERVAL_SECONDS" envDefault:"10"`
	RetryDelaySeconds   int    `env:"RETRY_DELAY_SECONDS"   envDefault:"10"`
	Handler             string `env:"HANDLER"               envDefault:"log"`
	RedisAddr           string `env:"REDIS_ADDR"            envDefault:"localhost:6379"`
	RedisStream         string `env:"REDIS_STREAM"          envDefault:"pgq:events"`
	MetricsAddr         string `env:"METRICS_ADDR"          envDefault:":9090"`
	Port                string `env:"PORT"                  envDefault:"8080"`
	LogLevel            string `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string `env:"LOG_FORMAT"            envDefault:"text"`
}

// LoadConfig parses environment variables into Config struct and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values env tags cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return model.ErrDatabaseURLRequired
	}

	if err := c.Identity().Validate(); err != nil {
		return err
	}

	if c.PollIntervalSeconds <= 0 {
		return model.ErrInvalidPollInterval
	}

	if c.RetryDelaySeconds < 0 {
		return model.ErrInvalidRetryDelay
	}

	switch c.Handler {
	case HandlerLog, HandlerRedis:
	default:
		return fmt.Errorf("%w: %q", model.ErrUnknownHandler, c.Handler)
	}

	return nil
}

// Identity returns the queue/consumer pair this process reads as.
func (c *Config) Identity() model.QueueIdentity {
	return model.QueueIdentity{Queue: c.QueueName, Consumer: c.ConsumerName}
}

// PollInterval returns the tick period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
