package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrCacheMiss = errors.New("cache miss")
	ErrCacheDown = errors.New("cache unavailable")
)

const opTimeout = 3 * time.Second

type CacheConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	KeyPrefix    string
	Breaker      *CircuitBreakerConfig
}

func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		KeyPrefix:    "todo:",
		Breaker:      DefaultCircuitBreakerConfig(),
	}
}

// RedisCache stores JSON values in redis. Every call goes through a
// circuit breaker; while it is open calls fail fast with ErrCacheDown.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	breaker *CircuitBreaker
	metrics *CacheMetrics
	log     logrus.FieldLogger
}

func NewRedisCache(config *CacheConfig, log logrus.FieldLogger) *RedisCache {
	if config == nil {
		config = DefaultCacheConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	c := &RedisCache{
		client:  rdb,
		prefix:  config.KeyPrefix,
		breaker: NewCircuitBreaker(config.Breaker),
		metrics: NewCacheMetrics(),
		log:     log.WithField("component", "cache"),
	}
	c.breaker.OnStateChange(func(from, to CircuitBreakerState) {
		c.log.WithFields(logrus.Fields{"from": from.String(), "to": to.String()}).Warn("cache circuit breaker state changed")
	})
	return c
}

func (r *RedisCache) key(k string) string {
	return r.prefix + k
}

func (r *RedisCache) do(fn func() error) error {
	if err := r.breaker.Execute(fn); err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("%w: %v", ErrCacheDown, err)
	}
	return nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.do(func() error {
		return r.client.Set(ctx, r.key(key), data, expiration).Err()
	}); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	r.metrics.RecordSet()
	return nil
}

// Get decodes the value stored under key into dest. A missing key is
// ErrCacheMiss and does not count against the breaker.
func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var data []byte
	miss := false
	err := r.do(func() error {
		b, err := r.client.Get(ctx, r.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			miss = true
			return nil
		}
		data = b
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get from cache: %w", err)
	}
	if miss {
		r.metrics.RecordMiss()
		return ErrCacheMiss
	}

	if err := json.Unmarshal(data, dest); err != nil {
		r.metrics.RecordError()
		return fmt.Errorf("failed to unmarshal cached data: %w", err)
	}
	r.metrics.RecordHit()
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.do(func() error {
		return r.client.Del(ctx, full...).Err()
	}); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	r.metrics.RecordDelete()
	return nil
}

func (r *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Stats() map[string]interface{} {
	poolStats := r.client.PoolStats()
	m := r.metrics.GetStats()

	return map[string]interface{}{
		"hits":          m.Hits,
		"misses":        m.Misses,
		"errors":        m.Errors,
		"sets":          m.Sets,
		"deletes":       m.Deletes,
		"hit_rate":      r.metrics.HitRate(),
		"breaker":       r.breaker.GetStats(),
		"pool_hits":     poolStats.Hits,
		"pool_misses":   poolStats.Misses,
		"pool_timeouts": poolStats.Timeouts,
		"pool_total":    poolStats.TotalConns,
		"pool_idle":     poolStats.IdleConns,
	}
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
