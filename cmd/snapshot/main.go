package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"nickel-price-tracker/internal/tracker/config"
	"nickel-price-tracker/internal/tracker/repository"
	"nickel-price-tracker/internal/tracker/service"
	"nickel-price-tracker/pkg/logger"

	"github.com/spf13/cobra"
)

var configPath string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Scrape the source page once and write a JSON snapshot file",
	Run:   runDump,
}

func runDump(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	sink := repository.NewSnapshotSink(cfg.Scraper.SnapshotPath)
	scraperSvc := service.NewScraperService(cfg, sink, appLogger)

	count, err := scraperSvc.RunAllTables(context.Background())
	if err != nil {
		appLogger.Fatal("Snapshot scrape failed", logger.ErrorField(err))
	}

	appLogger.Info("Snapshot written",
		logger.IntField("rows", count),
		logger.StringField("path", cfg.Scraper.SnapshotPath),
	)
}

func main() {
	rootCmd := &cobra.Command{Use: "snapshot"}

	dumpCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")

	rootCmd.AddCommand(dumpCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing snapshot CLI: %s\n", err)
		os.Exit(1)
	}
}
