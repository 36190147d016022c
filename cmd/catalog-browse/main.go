// Package main implements catalog-browse, a command line view over the same
// catalog pipeline the server exposes.
//
// Usage:
//
//	catalog-browse page --q pika --type electric --gen 1
//	catalog-browse detail pikachu
//	catalog-browse evolution eevee
//	catalog-browse moves charizard
//	catalog-browse types
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codyseavey/pokedex/backend/internal/config"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

var (
	envFile    string
	jsonOutput bool
	verbose    bool

	// Set up by PersistentPreRunE
	cfg     config.Config
	logger  *zap.Logger
	browser *services.Browser
	details *services.DetailLoader
)

var newCatalogClient = func(cfg config.Config, logger *zap.Logger) services.CatalogClient {
	return services.NewPokeAPIService(services.PokeAPIOptions{
		BaseURL:           cfg.PokeAPIBaseURL,
		Timeout:           cfg.PokeAPITimeout,
		RequestsPerSecond: cfg.PokeAPIRPS,
		Burst:             cfg.PokeAPIBurst,
		BulkListLimit:     cfg.BulkListLimit,
		Logger:            logger,
	})
}

var rootCmd = &cobra.Command{
	Use:           "catalog-browse",
	Short:         "Browse the PokeAPI catalog from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}

		level := zapcore.WarnLevel
		if verbose {
			level = zapcore.DebugLevel
		}
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		zcfg.OutputPaths = []string{"stderr"}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		client := newCatalogClient(cfg, logger)
		browser = services.NewBrowser(client, services.BrowserOptions{
			PageSize: cfg.PageSize,
			FanOut:   cfg.FanOutConcurrency,
			Thresholds: services.RarityThresholds{
				VeryRareMax: cfg.VeryRareMaxCaptureRate,
				RareMax:     cfg.RareMaxCaptureRate,
			},
			Logger: logger,
		})
		details = services.NewDetailLoader(client, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file layered under the environment")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream requests to stderr")

	rootCmd.AddCommand(pageCmd, detailCmd, evolutionCmd, movesCmd, typesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
