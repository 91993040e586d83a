package pipeline

import (
	"context"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/store"
	"fmt"

	"github.com/rs/zerolog"
)

// BuildSource creates the fundamentals source named by cfg.Source.
//   - edgar: SEC company facts, cached in Postgres when DATABASE_URL is set,
//     otherwise in cfg.CacheDir (no cache when that is empty)
//   - file: snapshot files under cfg.DataDir
//   - postgres: the company_fundamentals table
func BuildSource(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ingest.Source, error) {
	switch cfg.Source {
	case config.SourceEDGAR:
		var src ingest.Source = ingest.NewEDGARSource(ingest.NewEDGARClient(cfg.SECUserAgent))

		if cfg.DatabaseURL != "" {
			if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}
			if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
				return nil, err
			}
			return store.NewCachedSource(src, store.NewSnapshotCache(store.GetPool(), "", cfg.CacheTTL), log), nil
		}
		if cfg.CacheDir != "" {
			return store.NewCachedSource(src, store.NewSnapshotCache(nil, cfg.CacheDir, cfg.CacheTTL), log), nil
		}
		return src, nil

	case config.SourceFile:
		return ingest.NewFileSource(cfg.DataDir), nil

	case config.SourcePostgres:
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
			return nil, err
		}
		return store.NewFundamentalsRepo(store.GetPool()), nil
	}

	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}
