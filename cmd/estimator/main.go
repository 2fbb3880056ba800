// Estimator is a terminal front end for the estimate data service.
//
// It drives the same modal workflow the embeddable widget uses: browse
// the estimate tree, add a product through the estimate/room selection
// flow, replace or remove products, and manage rooms and estimates.
//
// Usage:
//
//	estimator [flags]
//	estimator --product-id P-100
//
// Running without flags opens the list view. See 'estimator --help'.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"estimator/internal/config"
	"estimator/internal/estimate"
	"estimator/internal/logging"
	"estimator/internal/remote"
	"estimator/internal/telemetry"
	"estimator/internal/ui"
	"estimator/internal/version"
)

var (
	flagServiceURL string
	flagProductID  string
	flagListView   bool
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "estimator",
	Short: "Interactive estimate builder",
	Long: `A terminal front end for the estimate data service.

Browse estimates, rooms, and products, add a product through the
guided selection flow, and replace or remove entries. All changes
round-trip through the service; nothing is edited locally.`,
	Version: version.Full(),
	RunE:    run,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().StringVar(&flagServiceURL, "service-url", "", "estimate service base URL (overrides config)")
	rootCmd.Flags().StringVar(&flagProductID, "product-id", "", "start a product-addition flow for this product")
	rootCmd.Flags().BoolVar(&flagListView, "list-view", false, "open the list view even when --product-id is set")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default: "+logging.LogLevelEnvVar+")")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("estimator %s\n", version.Full())
	},
}

func run(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(flagLogLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		// A broken config file is not fatal; defaults apply.
		logging.Warn("config load failed, using defaults")
	}
	if flagServiceURL != "" {
		cfg.ServiceURL = flagServiceURL
	}

	ctx := context.Background()
	tp, err := telemetry.Setup(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	client := remote.NewClient(cfg.ServiceURL)
	client.SetTimeout(cfg.RequestTimeout)

	app := ui.NewApp(client, cfg, estimate.ProductID(flagProductID), flagListView)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
