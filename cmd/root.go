package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/rit-tender-bot/pkg/config"
	"github.com/mselser95/rit-tender-bot/pkg/ritapi"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "tenderbot",
	Short: "Automated tender trading bot for the RIT liability trading case",
	Long: `Automated tender trading bot for the RIT liability trading case.

The bot polls the case API for institutional tenders, scores each one with a
multi-factor model (immediate liquidity, spread quality, book balance,
position risk), accepts the profitable ones, and unwinds the resulting
position through a tiered execution plan with automatic repricing.

Operator commands (tenders, securities, positions, orders, cancel, close,
watch-book) talk to the same API for inspection and manual intervention.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// cliSetup loads .env plus environment config and builds the API client the
// operator commands share.
func cliSetup() (*config.Config, *ritapi.Client, *zap.Logger, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return nil, nil, nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	client := ritapi.NewClient(&ritapi.Config{
		BaseURL:      cfg.APIBaseURL,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.APITimeout,
		MaxRetries:   cfg.APIMaxRetries,
		RetryBackoff: cfg.APIRetryBackoff,
		Logger:       logger,
	})

	return cfg, client, logger, nil
}
