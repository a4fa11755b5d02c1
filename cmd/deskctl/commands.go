package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newScenarioCmd(opts *globalOptions) *cobra.Command {
	in := &viewInputs{}
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Compute the allocation for a set of views",
		Long: `Submit the dashboard views and as-of date to the engine and print the
recommended sector weights.

Examples:
  deskctl scenario --template ai_boom
  deskctl scenario --view XLK:0.05:0.5 --pair XLV:XLY:0.04 --as-of 2020-03-16
  deskctl scenario -f views.yaml --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := in.load()
			if err != nil {
				return err
			}
			d, _ := opts.newDesk(opts.logger(cmd.ErrOrStderr()))
			if err := f.applyDashboard(d); err != nil {
				return err
			}

			summary, err := d.RunScenario(cmd.Context())
			if err != nil {
				return fmt.Errorf("scenario failed: %w", err)
			}
			return render(cmd.OutOrStdout(), opts.format, summary, func(w *table) { w.allocation(summary) })
		},
	}
	in.bind(cmd, true)
	return cmd
}

func newMonteCarloCmd(opts *globalOptions) *cobra.Command {
	in := &viewInputs{}
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Project an allocation forward with Monte Carlo simulation",
		Long: `Compute the allocation for the given views, then project its expected return
and volatility over --days trading days.

Examples:
  deskctl montecarlo --template recession
  deskctl montecarlo --view XLE:0.1 --days 504`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := in.load()
			if err != nil {
				return err
			}
			d, _ := opts.newDesk(opts.logger(cmd.ErrOrStderr()))
			if err := f.applyDashboard(d); err != nil {
				return err
			}

			if _, err := d.RunScenario(cmd.Context()); err != nil {
				return fmt.Errorf("scenario failed: %w", err)
			}
			p, err := d.RunMonteCarlo(cmd.Context())
			if err != nil {
				return fmt.Errorf("projection failed: %w", err)
			}
			return render(cmd.OutOrStdout(), opts.format, p, func(w *table) { w.projection(p) })
		},
	}
	in.bind(cmd, true)
	return cmd
}

func newBacktestCmd(opts *globalOptions) *cobra.Command {
	in := &viewInputs{}
	var start, end string
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Simulate views over a historical period",
		Long: `Run a historical backtest of the given views against SPY. Views may carry
their own start and end dates to limit when they apply.

Examples:
  deskctl backtest --view XLF:-0.1:0.9:2008-01-01:2009-06-30
  deskctl backtest -f crisis.yaml --start 2007-01-01 --end 2012-12-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := in.load()
			if err != nil {
				return err
			}
			if start != "" {
				f.StartDate = start
			}
			if end != "" {
				f.EndDate = end
			}
			d, _ := opts.newDesk(opts.logger(cmd.ErrOrStderr()))
			if err := f.applyBacktest(d); err != nil {
				return err
			}

			summary, err := d.RunBacktest(cmd.Context())
			if err != nil {
				return fmt.Errorf("backtest failed: %w", err)
			}
			return render(cmd.OutOrStdout(), opts.format, summary, func(w *table) { w.backtest(summary) })
		},
	}
	in.bind(cmd, false)
	cmd.Flags().StringVar(&start, "start", "", "Backtest start date (default 2006-01-01)")
	cmd.Flags().StringVar(&end, "end", "", "Backtest end date (default 2026-01-06)")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the engine is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client := opts.newDesk(opts.logger(cmd.ErrOrStderr()))
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			st, err := client.Status(ctx)
			if err != nil {
				return fmt.Errorf("engine unreachable: %w", err)
			}
			return render(cmd.OutOrStdout(), opts.format, st, func(w *table) {
				w.row("Status", st.Status)
				w.row("Model", st.Model)
			})
		},
	}
}
