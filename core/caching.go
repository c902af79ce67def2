package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/timelapse/internal/contract"
	"github.com/huangsam/timelapse/internal/loader"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a parsed table stays valid.
const cacheTTL = 7 * 24 * time.Hour

// cachedRead parses the input table, going through the parse cache when one is configured.
func cachedRead(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*loader.Result, bool, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetParseStore()
	}
	if store == nil {
		// Fallback to direct parsing
		res, err := loader.Read(ctx, cfg.InputPath)
		return res, false, err
	}

	key, err := generateCacheKey(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", loader.ErrLoadFailure, cfg.InputPath, err)
	}

	// Check for cache hit
	if result := checkCacheHit(store, key); result != nil {
		contract.Logger().WithField("key", key[:12]).Debug("parse cache hit")
		return result, true, nil
	}

	// Cache miss: parse and store
	contract.Logger().WithField("key", key[:12]).Debug("parse cache miss")
	res, err := computeAndStore(ctx, cfg, store, key)
	return res, false, err
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *loader.Result {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheTTL {
			var result loader.Result
			if err := json.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore parses the table and stores the result in cache
func computeAndStore(ctx context.Context, cfg *contract.Config, store contract.CacheStore, key string) (*loader.Result, error) {
	result, err := loader.Read(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}

	// Store in cache
	if data, err := json.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.Logger().WithError(err).Warn("failed to store parse cache entry")
		}
	}

	return result, nil
}

// generateCacheKey hashes the input table contents together with everything
// that changes how it is parsed.
func generateCacheKey(cfg *contract.Config) (string, error) {
	f, err := os.Open(cfg.InputPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	_, _ = fmt.Fprintf(h, "loader:%d:url:%s:", loader.Version, cfg.URLPrefix)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
