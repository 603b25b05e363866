package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mselser95/rit-tender-bot/internal/app"
	"github.com/mselser95/rit-tender-bot/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tender trading bot",
	Long: `Starts the tender trading bot, which will:
1. Connect to the RIT case API and verify the session is active
2. Poll for institutional tenders and score each with the evaluation model
3. Accept profitable tenders and unwind them with a tiered execution plan
4. Reprice stale resting orders and watch position health
5. Liquidate everything when the session clock runs down

The HTTP server exposes /metrics, /health, /ready, /api/state, /api/quote,
and a websocket event feed at /ws/events while the bot runs.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	// Load .env first so config sees it
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
