package redis

import "time"

// Config holds the Redis client settings used by the query result cache.
// Fields map to environment variables so the process can be configured
// without code changes.
type Config struct {
	URL string `env:"PLAIN_REDIS_URL"`

	// Prefix namespaces every key written by the cache.
	Prefix string `env:"PLAIN_REDIS_PREFIX" envDefault:"plain"`

	PoolSize     int           `env:"PLAIN_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"PLAIN_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"PLAIN_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"PLAIN_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"PLAIN_REDIS_WRITE_TIMEOUT" envDefault:"3s"`

	// Startup retries back off linearly: attempt n waits n*RetryInterval.
	RetryAttempts int           `env:"PLAIN_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PLAIN_REDIS_RETRY_INTERVAL" envDefault:"1s"`
}

// Enabled reports whether a Redis URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
