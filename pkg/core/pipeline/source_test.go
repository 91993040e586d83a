package pipeline

import (
	"context"
	"dcf_valuation/pkg/core/config"
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/store"
	"testing"

	"github.com/rs/zerolog"
)

func TestBuildSource(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.Source = config.SourceFile
	cfg.DataDir = t.TempDir()
	src, err := BuildSource(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fs, ok := src.(*ingest.FileSource); !ok || fs.Dir != cfg.DataDir {
		t.Errorf("Expected FileSource on %s, got %T", cfg.DataDir, src)
	}

	cfg = config.Default()
	cfg.DatabaseURL = ""
	cfg.CacheDir = t.TempDir()
	src, err = BuildSource(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := src.(*store.CachedSource); !ok {
		t.Errorf("Expected cached EDGAR source, got %T", src)
	}

	cfg.CacheDir = ""
	src, err = BuildSource(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := src.(*ingest.EDGARSource); !ok {
		t.Errorf("Expected bare EDGAR source, got %T", src)
	}

	cfg.Source = "bloomberg"
	if _, err := BuildSource(ctx, cfg, zerolog.Nop()); err == nil {
		t.Error("Expected error for unknown source")
	}
}
