package main

import (
	"beat0050/internal/repository"
	"beat0050/internal/util"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "beat0050",
	Short: "maintenance commands for the comparison service",
}

var historyStart string

var refreshHistoryCmd = &cobra.Command{
	Use:   "refresh-history",
	Short: "rebuild the local benchmark close-price dataset from Yahoo Finance",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := util.LoadConfig()
		if err != nil {
			return err
		}

		start, err := time.Parse(time.DateOnly, historyStart)
		if err != nil {
			return fmt.Errorf("invalid --start date: %w", err)
		}

		yahooRepository := repository.NewYahooRepository()
		prices, err := yahooRepository.GetDailyHistory(context.Background(), cfg.Benchmark.Symbol, start, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to fetch history for %s: %w", cfg.Benchmark.Symbol, err)
		}

		closes := map[string]float64{}
		for _, p := range prices {
			closes[p.Date.Format(time.DateOnly)] = p.Price.InexactFloat64()
		}

		data, err := json.MarshalIndent(closes, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.Benchmark.HistoryFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", cfg.Benchmark.HistoryFile, err)
		}

		fmt.Printf("wrote %d closes to %s\n", len(closes), cfg.Benchmark.HistoryFile)
		return nil
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "drop all persisted price cache entries",
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := util.LoadConfig()
		if err != nil {
			return err
		}

		store, err := repository.NewPriceCacheStore(cfg.PriceCache.DbFile)
		if err != nil {
			return err
		}
		if err := store.Clear("price_"); err != nil {
			return fmt.Errorf("failed to clear price cache: %w", err)
		}

		fmt.Println("price cache cleared")
		return nil
	},
}

func main() {
	refreshHistoryCmd.Flags().StringVar(&historyStart, "start", "2008-01-01", "first date to fetch, YYYY-MM-DD")
	rootCmd.AddCommand(refreshHistoryCmd)
	rootCmd.AddCommand(clearCacheCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
