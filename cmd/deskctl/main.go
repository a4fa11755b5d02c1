// Command deskctl runs scenarios, projections and backtests against the
// optimization engine from the command line, without the browser.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aristath/scenariodesk/internal/clients/engine"
	"github.com/aristath/scenariodesk/internal/events"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	"github.com/aristath/scenariodesk/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalOptions are shared by every subcommand.
type globalOptions struct {
	engineURL string
	timeout   time.Duration
	format    string
	logLevel  string
	days      int
}

func (o *globalOptions) logger(stderr io.Writer) zerolog.Logger {
	return logger.New(logger.Config{Level: o.logLevel, Pretty: true, Output: stderr})
}

// newDesk builds a single-session desk over an uncached engine client.
func (o *globalOptions) newDesk(log zerolog.Logger) (*desk.Desk, *engine.Client) {
	client := engine.NewClient(engine.Options{BaseURL: o.engineURL, Timeout: o.timeout}, nil, nil, log)
	d := desk.New(client, events.NewBus(log), nil, desk.Options{MonteCarloDays: o.days}, log)
	return d, client
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "deskctl",
		Short: "Scenario desk command line client",
		Long: `deskctl submits sector views to the Black-Litterman engine and prints the
resulting allocation, Monte Carlo projection or historical backtest.

Views come from --view / --pair flags, a --template, or a YAML file:

  as_of: 2020-03-16
  template: recession
  views:
    - {ticker: XLK, value: 0.05, confidence: 0.5}
  pairs:
    - {asset_a: XLV, asset_b: XLY, diff: 0.04, confidence: 0.6}`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&opts.engineURL, "engine-url", envOr("ENGINE_URL", "http://127.0.0.1:8000"), "Engine base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Per-request timeout")
	root.PersistentFlags().StringVar(&opts.format, "format", "table", "Output format (table|json|yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	root.PersistentFlags().IntVar(&opts.days, "days", 252, "Monte Carlo horizon in trading days")

	root.AddCommand(
		newScenarioCmd(opts),
		newMonteCarloCmd(opts),
		newBacktestCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
