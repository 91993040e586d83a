package store

import (
	"context"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/models"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DefaultCacheTTL is how long a fetched snapshot is served from cache.
const DefaultCacheTTL = 24 * time.Hour

// SnapshotCache caches fetched fundamentals so repeated valuations of the
// same ticker do not hit SEC EDGAR again.
// Supports DB (primary) + file system (fallback/local).
type SnapshotCache struct {
	pool    *pgxpool.Pool
	fileDir string
	ttl     time.Duration
	now     func() time.Time
}

// CacheEntry is the on-disk form of a cached snapshot.
type CacheEntry struct {
	Ticker    string                      `json:"ticker"`
	Snapshot  models.FundamentalsSnapshot `json:"snapshot"`
	FetchedAt time.Time                   `json:"fetched_at"`
}

// NewSnapshotCache creates a new cache instance.
// If pool is nil, it falls back to a file-based cache in dir.
// If both are empty, it defaults to .cache/fundamentals. ttl <= 0 uses DefaultCacheTTL.
func NewSnapshotCache(pool *pgxpool.Pool, dir string, ttl time.Duration) *SnapshotCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "fundamentals")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check SnapshotCache dir: %v\n", err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &SnapshotCache{pool: pool, fileDir: dir, ttl: ttl, now: time.Now}
}

// Get returns a fresh cached snapshot, or nil on a miss or expired entry.
func (c *SnapshotCache) Get(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	ticker = ingest.NormalizeTicker(ticker)

	var entry CacheEntry

	// 1. Try DB
	if c.pool != nil {
		query := `SELECT data, fetched_at FROM fundamentals_cache WHERE ticker = $1`
		var dataJSON []byte
		err := c.pool.QueryRow(ctx, query, ticker).Scan(&dataJSON, &entry.FetchedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read db cache: %w", err)
		}
		if err := json.Unmarshal(dataJSON, &entry.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to unmarshal db cached data: %w", err)
		}
	} else if c.fileDir != "" {
		// 2. Try File System
		data, err := os.ReadFile(c.path(ticker))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read file cache: %w", err)
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file cached data: %w", err)
		}
	} else {
		return nil, nil
	}

	if c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, nil
	}
	return &entry.Snapshot, nil
}

// Save stores a snapshot in the cache.
func (c *SnapshotCache) Save(ctx context.Context, snap models.FundamentalsSnapshot) error {
	ticker := ingest.NormalizeTicker(snap.Ticker)
	fetchedAt := c.now()

	// 1. Save to DB
	if c.pool != nil {
		dataJSON, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		query := `
			INSERT INTO fundamentals_cache (ticker, data, fetched_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (ticker)
			DO UPDATE SET data = EXCLUDED.data, fetched_at = EXCLUDED.fetched_at
		`
		if _, err := c.pool.Exec(ctx, query, ticker, dataJSON, fetchedAt); err != nil {
			return fmt.Errorf("failed to save to db cache: %w", err)
		}
	}

	// 2. Save to File
	if c.fileDir != "" {
		entry := CacheEntry{Ticker: ticker, Snapshot: snap, FetchedAt: fetchedAt}
		fileBytes, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}
		if err := os.WriteFile(c.path(ticker), fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to save to file cache: %w", err)
		}
	}

	return nil
}

func (c *SnapshotCache) path(ticker string) string {
	return filepath.Join(c.fileDir, ticker+".json")
}

// CachedSource serves snapshots from the cache and falls through to the
// wrapped source on a miss. Cache failures are logged and never fail a fetch.
type CachedSource struct {
	source ingest.Source
	cache  *SnapshotCache
	log    zerolog.Logger
}

// NewCachedSource wraps source with cache.
func NewCachedSource(source ingest.Source, cache *SnapshotCache, log zerolog.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache,
		log:    log.With().Str("component", "snapshot_cache").Logger(),
	}
}

func (s *CachedSource) Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	ticker = ingest.NormalizeTicker(ticker)

	cached, err := s.cache.Get(ctx, ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Cache read failed")
	}
	if cached != nil {
		s.log.Debug().Str("ticker", ticker).Msg("Cache hit")
		return cached, nil
	}

	snap, err := s.source.Fetch(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Save(ctx, *snap); err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Cache write failed")
	}
	return snap, nil
}
