package provider

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"estatewise/server/internal/models"
)

const cacheFileName = "provider_cache.json"

type cacheEntry struct {
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// CachingProvider memoizes another provider's responses. When a cache
// directory is given the cache survives restarts as a JSON file.
type CachingProvider struct {
	inner     PropertyDataProvider
	logger    *logrus.Logger
	cacheDir  string
	ttl       time.Duration
	now       func() time.Time
	cache     map[string]cacheEntry
	cacheLock sync.RWMutex
}

// NewCachingProvider wraps inner. A zero ttl keeps entries forever and an
// empty cacheDir keeps the cache in memory only.
func NewCachingProvider(inner PropertyDataProvider, logger *logrus.Logger, cacheDir string, ttl time.Duration) *CachingProvider {
	if logger == nil {
		logger = logrus.New()
	}
	c := &CachingProvider{
		inner:    inner,
		logger:   logger,
		cacheDir: cacheDir,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]cacheEntry),
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			logger.WithError(err).Warn("Could not create provider cache directory")
		}
		c.loadCache()
	}
	return c
}

func (c *CachingProvider) loadCache() {
	data, err := os.ReadFile(filepath.Join(c.cacheDir, cacheFileName))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warnf("Could not load provider cache: %v", err)
		}
		return
	}
	if err := json.Unmarshal(data, &c.cache); err != nil {
		c.logger.Errorf("Failed to parse provider cache: %v", err)
		return
	}
	c.logger.Infof("Loaded %d cached provider responses", len(c.cache))
}

func (c *CachingProvider) saveCache() {
	if c.cacheDir == "" {
		return
	}
	c.cacheLock.RLock()
	data, err := json.Marshal(c.cache)
	c.cacheLock.RUnlock()
	if err != nil {
		c.logger.Errorf("Failed to marshal provider cache: %v", err)
		return
	}
	if err := os.WriteFile(filepath.Join(c.cacheDir, cacheFileName), data, 0644); err != nil {
		c.logger.Errorf("Failed to save provider cache: %v", err)
	}
}

// Len reports the number of cached responses.
func (c *CachingProvider) Len() int {
	c.cacheLock.RLock()
	defer c.cacheLock.RUnlock()
	return len(c.cache)
}

// cached returns the stored payload for key or calls fetch and stores its
// result. Errors are never cached.
func cached[T any](c *CachingProvider, key string, fetch func() (T, error)) (T, error) {
	var out T

	c.cacheLock.RLock()
	entry, ok := c.cache[key]
	c.cacheLock.RUnlock()
	if ok && (c.ttl == 0 || c.now().Sub(entry.FetchedAt) < c.ttl) {
		if err := json.Unmarshal(entry.Payload, &out); err == nil {
			c.logger.WithField("key", key).Debug("Provider cache hit")
			return out, nil
		}
	}

	out, err := fetch()
	if err != nil {
		return out, err
	}

	payload, err := json.Marshal(out)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Could not cache provider response")
		return out, nil
	}
	c.cacheLock.Lock()
	c.cache[key] = cacheEntry{Payload: payload, FetchedAt: c.now()}
	c.cacheLock.Unlock()
	c.saveCache()

	return out, nil
}

func (c *CachingProvider) FetchProperty(ctx context.Context, address models.Address) (*models.PropertyRecord, error) {
	return cached(c, "property|"+address.Normalized(), func() (*models.PropertyRecord, error) {
		return c.inner.FetchProperty(ctx, address)
	})
}

func (c *CachingProvider) FetchValuations(ctx context.Context, address models.Address) ([]models.ValuationEstimate, error) {
	return cached(c, "valuations|"+address.Normalized(), func() ([]models.ValuationEstimate, error) {
		return c.inner.FetchValuations(ctx, address)
	})
}

func (c *CachingProvider) FetchMarketStats(ctx context.Context, location models.Location) (*models.MarketStats, error) {
	return cached(c, "market|"+location.Key(), func() (*models.MarketStats, error) {
		return c.inner.FetchMarketStats(ctx, location)
	})
}

func (c *CachingProvider) FetchComparables(ctx context.Context, address models.Address) ([]models.Comparable, error) {
	return cached(c, "comparables|"+address.Normalized(), func() ([]models.Comparable, error) {
		return FetchComparables(ctx, c.inner, address)
	})
}
