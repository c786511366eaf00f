package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"

	"github.com/resumatch/analysis-cache/pkg/observability"
)

// resilientClient wraps the Redis client with a circuit breaker so that a
// backend that died mid-process fails fast instead of costing a dial timeout
// on every request. An open breaker surfaces as an ordinary backend error,
// which the store already absorbs.
type resilientClient struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
}

func newResilientClient(client *redis.Client, logger observability.Logger) *resilientClient {
	settings := gobreaker.Settings{
		Name:        "analysis-cache-redis",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
		// A key that is simply absent is a healthy round trip, not a failure
		IsSuccessful: func(err error) bool {
			return err == nil || err == redis.Nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("cache backend circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}

	return &resilientClient{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Get returns the raw bytes stored under key. A missing key is redis.Nil.
func (c *resilientClient) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Get(ctx, key).Bytes()
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Set stores value under key with the given expiry
func (c *resilientClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, key, value, ttl).Err()
	})
	return err
}

// SAdd adds members to the set stored under key
func (c *resilientClient) SAdd(ctx context.Context, key string, members ...interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.SAdd(ctx, key, members...).Err()
	})
	return err
}

// SMembers returns all members of the set stored under key
func (c *resilientClient) SMembers(ctx context.Context, key string) ([]string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.SMembers(ctx, key).Result()
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Del deletes the given keys and returns how many existed
func (c *resilientClient) Del(ctx context.Context, keys ...string) (int64, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.client.Del(ctx, keys...).Result()
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

// ScanKeys walks the keyspace for keys matching pattern using SCAN
func (c *resilientClient) ScanKeys(ctx context.Context, pattern string, count int64) ([]string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var keys []string
		iter := c.client.Scan(ctx, 0, pattern, count).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// Ping probes backend liveness
func (c *resilientClient) Ping(ctx context.Context) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Ping(ctx).Err()
	})
	return err
}

// Close releases the underlying connection pool
func (c *resilientClient) Close() error {
	return c.client.Close()
}
