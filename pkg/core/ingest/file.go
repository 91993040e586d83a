package ingest

import (
	"context"
	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/models"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// snapshotExtensions are tried in order when resolving <dir>/<TICKER>.<ext>.
var snapshotExtensions = []string{".yaml", ".yml", ".hjson", ".json"}

// FileSource reads hand-maintained snapshots from a directory.
type FileSource struct {
	Dir string
}

// NewFileSource creates a Source reading <dir>/<TICKER>.{yaml,yml,hjson,json}.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (f *FileSource) Fetch(ctx context.Context, ticker string) (*models.FundamentalsSnapshot, error) {
	ticker = NormalizeTicker(ticker)

	for _, ext := range snapshotExtensions {
		path := filepath.Join(f.Dir, ticker+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		snap, err := DecodeSnapshot(data, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if snap.Ticker == "" {
			snap.Ticker = ticker
		}
		if snap.Source == "" {
			snap.Source = "file"
		}
		norm := snap.Normalize()
		return &norm, nil
	}

	return nil, fmt.Errorf("%w: no snapshot file for %s in %s", ErrNotFound, ticker, f.Dir)
}

// DecodeSnapshot decodes a snapshot document. ext selects the format:
// ".yaml"/".yml" use YAML, ".hjson" uses Hjson and anything else goes
// through the lenient JSON parser.
func DecodeSnapshot(data []byte, ext string) (models.FundamentalsSnapshot, error) {
	var snap models.FundamentalsSnapshot
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return snap, err
		}
	case ".hjson":
		if err := utils.DecodeHJSON(data, &snap); err != nil {
			return snap, err
		}
	default:
		if _, err := utils.SmartParse(string(data), &snap); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// Save writes snap to <dir>/<TICKER>.yaml, creating the directory if needed.
// It returns the written path.
func (f *FileSource) Save(snap models.FundamentalsSnapshot) (string, error) {
	snap = snap.Normalize()
	if snap.Ticker == "" {
		return "", fmt.Errorf("snapshot has no ticker")
	}

	data, err := yaml.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", f.Dir, err)
	}

	path := filepath.Join(f.Dir, snap.Ticker+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// List returns the tickers with a snapshot file in the directory, sorted.
func (f *FileSource) List() ([]string, error) {
	entries, err := os.ReadDir(f.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Dir, err)
	}

	seen := make(map[string]bool)
	tickers := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !slices.Contains(snapshotExtensions, ext) {
			continue
		}
		t := NormalizeTicker(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}
