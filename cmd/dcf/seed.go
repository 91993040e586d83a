package main

import (
	"dcf_valuation/pkg/core/ingest"
	"dcf_valuation/pkg/core/store"
	"fmt"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed DIR",
	Short: "Load snapshot files into Postgres",
	Long: `seed reads every <TICKER>.{yaml,yml,hjson,json} snapshot in DIR and inserts
it into company_fundamentals, so the postgres source can serve it.
DATABASE_URL (or database_url in the config file) must be set.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	files := ingest.NewFileSource(args[0])
	tickers, err := files.List()
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		return fmt.Errorf("no snapshot files in %s", args[0])
	}

	if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.EnsureSchema(ctx, store.GetPool()); err != nil {
		return err
	}
	repo := store.NewFundamentalsRepo(store.GetPool())

	for _, ticker := range tickers {
		snap, err := files.Fetch(ctx, ticker)
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, *snap); err != nil {
			return fmt.Errorf("failed to seed %s: %w", ticker, err)
		}
		log.Info().Str("ticker", ticker).Str("source", snap.Source).Msg("seeded fundamentals")
	}

	fmt.Printf("[OK] Seeded %d snapshots from %s\n", len(tickers), args[0])
	return nil
}
