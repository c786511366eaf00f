// Package cache implements the content-addressed analysis cache: a Redis
// backed, owner-isolated store that deduplicates expensive AI analysis calls
// by fingerprinting the (resume text, job title, job description) inputs.
//
// The cache is a best-effort side channel. When the backend is unreachable at
// construction it enters a permanent disabled mode in which every lookup is a
// miss and every write is dropped; once constructed, no operation ever
// returns an error to the caller. Correctness of the analysis workflow must
// never depend on the cache being available.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/resumatch/analysis-cache/pkg/fingerprint"
	"github.com/resumatch/analysis-cache/pkg/observability"
)

// keySeparator joins the segments of an entry key
const keySeparator = ":"

// Result is an opaque, JSON-serializable analysis result. The cache stores
// and returns it losslessly without interpreting its structure.
type Result map[string]interface{}

// lookupOutcome distinguishes, internally, a genuine miss from a backend
// failure. The public Get collapses both to "no result".
type lookupOutcome int

const (
	lookupHit lookupOutcome = iota
	lookupMiss
	lookupError
)

// AnalysisCache is the process-wide handle to the analysis cache. Construct
// it once with New and pass it to request-handling code by injection; it is
// safe for concurrent use.
type AnalysisCache struct {
	cfg     Config
	redis   *resilientClient
	logger  observability.Logger
	metrics observability.MetricsClient
	enabled bool

	hits   atomic.Int64
	misses atomic.Int64
}

// New constructs the analysis cache and probes backend liveness exactly once.
// If the probe fails the returned handle is permanently disabled: the event
// is logged here and every subsequent operation degrades to a silent no-op.
// An error is returned only for an invalid configuration, never for an
// unreachable backend.
func New(cfg Config, logger observability.Logger, metrics observability.MetricsClient) (*AnalysisCache, error) {
	if logger == nil {
		logger = observability.NewLogger("cache")
	}
	if metrics == nil {
		metrics = observability.NewNoopMetricsClient()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	c := &AnalysisCache{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		// Disabled for the process lifetime; logged once, not per call
		_ = client.Close()
		logger.Warn("analysis cache disabled: backing store unreachable", map[string]interface{}{
			"addr":  cfg.Addr,
			"error": err.Error(),
		})
		return c, nil
	}

	c.redis = newResilientClient(client, logger)
	c.enabled = true
	logger.Info("analysis cache enabled", map[string]interface{}{
		"addr": cfg.Addr,
		"ttl":  cfg.TTL.String(),
	})
	return c, nil
}

// Enabled reports whether the backing store was reachable at construction
func (c *AnalysisCache) Enabled() bool {
	return c.enabled
}

// Get returns the cached analysis for the given owner and inputs, or
// (nil, false) when no usable entry exists. Backend failures and corrupt
// entries are logged and reported as misses, never as errors.
func (c *AnalysisCache) Get(ctx context.Context, ownerID, resumeText, jobTitle, jobDesc string) (Result, bool) {
	result, outcome := c.lookup(ctx, ownerID, resumeText, jobTitle, jobDesc)
	return result, outcome == lookupHit
}

func (c *AnalysisCache) lookup(ctx context.Context, ownerID, resumeText, jobTitle, jobDesc string) (Result, lookupOutcome) {
	if !c.enabled {
		return nil, lookupError
	}

	start := time.Now()
	key := c.entryKey(ownerID, fingerprint.Resume(resumeText), fingerprint.Request(jobTitle, jobDesc))

	data, err := c.redis.Get(ctx, key)
	if err == redis.Nil {
		c.misses.Add(1)
		c.metrics.RecordCacheOperation("get", true, time.Since(start).Seconds())
		c.logger.Debug("cache miss", map[string]interface{}{"owner_id": ownerID})
		return nil, lookupMiss
	}
	if err != nil {
		c.misses.Add(1)
		c.metrics.RecordCacheOperation("get", false, time.Since(start).Seconds())
		c.logger.Error("cache get failed, treating as miss", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return nil, lookupError
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		// Corrupt entries are misses; the next successful Set overwrites
		// them, or the TTL removes them.
		c.misses.Add(1)
		c.metrics.RecordCacheOperation("get", false, time.Since(start).Seconds())
		c.logger.Warn("corrupt cache entry treated as miss", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return nil, lookupMiss
	}

	c.hits.Add(1)
	c.metrics.RecordCacheOperation("get", true, time.Since(start).Seconds())
	c.logger.Debug("cache hit", map[string]interface{}{"owner_id": ownerID})
	return result, lookupHit
}

// Set stores an analysis result under the fingerprint of its inputs using
// the configured default TTL.
func (c *AnalysisCache) Set(ctx context.Context, ownerID, resumeText, jobTitle, jobDesc string, result Result) {
	c.SetWithTTL(ctx, ownerID, resumeText, jobTitle, jobDesc, result, c.cfg.TTL)
}

// SetWithTTL stores an analysis result with an explicit TTL. A write always
// resets the TTL countdown and overwrites any prior value for the same key.
// Empty results are refused: caching nothing is meaningless. Failed writes
// are logged and dropped.
func (c *AnalysisCache) SetWithTTL(ctx context.Context, ownerID, resumeText, jobTitle, jobDesc string, result Result, ttl time.Duration) {
	if !c.enabled || len(result) == 0 {
		return
	}

	start := time.Now()
	data, err := json.Marshal(result)
	if err != nil {
		c.metrics.RecordCacheOperation("set", false, time.Since(start).Seconds())
		c.logger.Error("cache write dropped: result not serializable", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return
	}

	resumeFP := fingerprint.Resume(resumeText)
	key := c.entryKey(ownerID, resumeFP, fingerprint.Request(jobTitle, jobDesc))

	if err := c.redis.Set(ctx, key, data, ttl); err != nil {
		c.metrics.RecordCacheOperation("set", false, time.Since(start).Seconds())
		c.logger.Error("cache write dropped", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return
	}

	// Entry and index update are two independent operations. A failure here
	// leaves an unindexed entry that outlives invalidation until its TTL
	// expires, which is an accepted leak.
	if err := c.redis.SAdd(ctx, c.ownerIndexKey(ownerID), resumeFP); err != nil {
		c.logger.Warn("owner index update failed", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
	}

	c.metrics.RecordCacheOperation("set", true, time.Since(start).Seconds())
	c.logger.Debug("cached analysis", map[string]interface{}{"owner_id": ownerID})
}

// InvalidateOwner removes every cached analysis belonging to one owner by
// walking the owner's fingerprint index, then deletes the index itself. It
// returns the number of entries removed and is idempotent: invalidating an
// owner with nothing cached is a silent no-op.
func (c *AnalysisCache) InvalidateOwner(ctx context.Context, ownerID string) int {
	if !c.enabled {
		return 0
	}

	start := time.Now()
	indexKey := c.ownerIndexKey(ownerID)

	fingerprints, err := c.redis.SMembers(ctx, indexKey)
	if err != nil {
		c.metrics.RecordCacheOperation("invalidate", false, time.Since(start).Seconds())
		c.logger.Error("cache invalidation failed reading owner index", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
		return 0
	}

	var removed int64
	for _, fp := range fingerprints {
		pattern := c.entryKey(ownerID, fp, "*")
		keys, err := c.redis.ScanKeys(ctx, pattern, c.cfg.ScanCount)
		if err != nil {
			c.logger.Error("cache invalidation scan failed", map[string]interface{}{
				"owner_id": ownerID,
				"error":    err.Error(),
			})
			continue
		}
		for len(keys) > 0 {
			batch := keys
			if int64(len(batch)) > c.cfg.ScanCount {
				batch = keys[:c.cfg.ScanCount]
			}
			keys = keys[len(batch):]

			n, err := c.redis.Del(ctx, batch...)
			if err != nil {
				c.logger.Error("cache invalidation delete failed", map[string]interface{}{
					"owner_id": ownerID,
					"error":    err.Error(),
				})
				continue
			}
			removed += n
		}
	}

	if _, err := c.redis.Del(ctx, indexKey); err != nil {
		c.logger.Error("owner index delete failed", map[string]interface{}{
			"owner_id": ownerID,
			"error":    err.Error(),
		})
	}

	c.metrics.RecordCacheOperation("invalidate", true, time.Since(start).Seconds())
	c.logger.Info("cleared cached analyses for owner", map[string]interface{}{
		"owner_id": ownerID,
		"removed":  removed,
	})
	return int(removed)
}

// Status aggregates over all stored analysis keys. It is intended for
// operational monitoring; backend errors are reported in the Err field, not
// returned.
type Status struct {
	Enabled        bool             `json:"enabled"`
	TotalEntries   int64            `json:"total_entries"`
	DistinctOwners int              `json:"distinct_owners"`
	PerOwner       map[string]int64 `json:"per_owner_counts"`
	Hits           int64            `json:"hits"`
	Misses         int64            `json:"misses"`
	Err            string           `json:"error,omitempty"`
}

// Status reports whether the cache is enabled together with aggregate entry
// counts per owner.
func (c *AnalysisCache) Status(ctx context.Context) Status {
	s := Status{
		Enabled:  c.enabled,
		PerOwner: make(map[string]int64),
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
	if !c.enabled {
		return s
	}

	keys, err := c.redis.ScanKeys(ctx, c.cfg.KeyPrefix+keySeparator+"*", c.cfg.ScanCount)
	if err != nil {
		s.Err = err.Error()
		c.logger.Error("cache status aggregation failed", map[string]interface{}{"error": err.Error()})
		return s
	}

	for _, key := range keys {
		parts := strings.Split(key, keySeparator)
		if len(parts) >= 4 {
			s.PerOwner[parts[1]]++
		}
	}
	s.TotalEntries = int64(len(keys))
	s.DistinctOwners = len(s.PerOwner)
	return s
}

// Close releases the backing connection pool. Safe to call on a disabled
// cache.
func (c *AnalysisCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func (c *AnalysisCache) entryKey(ownerID, resumeFP, requestFP string) string {
	return strings.Join([]string{c.cfg.KeyPrefix, ownerID, resumeFP, requestFP}, keySeparator)
}

func (c *AnalysisCache) ownerIndexKey(ownerID string) string {
	return c.cfg.OwnerIndexPrefix + keySeparator + ownerID
}
