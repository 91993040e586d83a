package main

import (
	"dcf_valuation/pkg/core/ingest"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	fetchOut   string
	fetchDelay time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch TICKER...",
	Short: "Download fundamentals from SEC EDGAR into snapshot files",
	Long: `fetch pulls the latest annual XBRL facts for each ticker and writes
<out>/<TICKER>.yaml. Edit the files to add price and beta, then value
them with --source file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "Output directory (default: data_dir from config)")
	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", 200*time.Millisecond, "Pause between SEC requests")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if fetchOut == "" {
		fetchOut = cfg.DataDir
	}
	src := ingest.NewEDGARSource(ingest.NewEDGARClient(cfg.SECUserAgent))
	files := ingest.NewFileSource(fetchOut)

	var failed int
	for i, ticker := range args {
		if i > 0 && fetchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(fetchDelay):
			}
		}

		fmt.Printf("\n=== %s ===\n", ingest.NormalizeTicker(ticker))
		snap, err := src.Fetch(ctx, ticker)
		if err != nil {
			fmt.Printf("  [ERROR] %v\n", err)
			failed++
			continue
		}

		path, err := files.Save(*snap)
		if err != nil {
			fmt.Printf("  [ERROR] %v\n", err)
			failed++
			continue
		}
		fmt.Printf("  [OK] %s (period ending %s) -> %s\n", snap.CompanyName, snap.AsOf, path)
		for _, field := range ingest.MissingFields(*snap) {
			fmt.Printf("  [WARN] %s not reported\n", field)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(args))
	}
	return nil
}
