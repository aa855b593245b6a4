package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"condor-trader/internal/logging"
	"condor-trader/internal/paper"
	"condor-trader/internal/store"
	"condor-trader/internal/strategy"
)

func newPaperCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paper",
		Short: "Paper trading portfolio",
		Long:  "Open, close and review paper iron condor trades.",
	}

	cmd.AddCommand(newPaperOpenCmd(app))
	cmd.AddCommand(newPaperCloseCmd(app))
	cmd.AddCommand(newPaperStatsCmd(app))
	cmd.AddCommand(newPaperExportCmd(app))
	return cmd
}

// loadPortfolio restores the persisted portfolio, or starts a fresh one.
func loadPortfolio(app *App, cmd *cobra.Command) *paper.Portfolio {
	if app.Store != nil {
		p, err := app.Store.LoadPortfolio(cmd.Context())
		if err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to load portfolio, starting fresh")
		} else if p != nil {
			return p
		}
	}
	return paper.NewPortfolio(app.Config.Paper.InitialCash)
}

// savePortfolio persists the portfolio. Store failures are logged, never
// fatal; the trade already happened in memory.
func savePortfolio(app *App, cmd *cobra.Command, p *paper.Portfolio) {
	if app.Store == nil {
		return
	}
	if err := app.Store.SavePortfolio(cmd.Context(), p); err != nil {
		app.Logger.Error().Err(err).Msg("Failed to persist portfolio")
	}
}

func newPaperOpenCmd(app *App) *cobra.Command {
	var (
		expiration string
		delta      float64
		quantity   int
	)

	cmd := &cobra.Command{
		Use:   "open [symbol]",
		Short: "Open a paper iron condor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol := app.Config.Market.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}
			if delta <= 0 {
				delta = app.Config.Strategy.TargetDelta
			}

			chain := app.Feed.OptionChain(cmd.Context(), symbol)
			exp, err := resolveExpiration(chain, expiration)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			candidate, err := strategy.SelectIronCondor(chain, exp, chain.SpotPrice, delta)
			if err != nil {
				output.Error("No setup: %v", err)
				return err
			}
			if candidate.DataQualityWarning {
				output.Warning("Setup nets a debit, refusing to open")
				return fmt.Errorf("candidate failed data quality check")
			}

			portfolio := loadPortfolio(app, cmd)
			result := portfolio.Open(candidate, quantity)
			if !result.OK {
				output.Error("%s", result.Message)
				return fmt.Errorf("open rejected: %s", result.Message)
			}
			savePortfolio(app, cmd, portfolio)
			logging.LogTrade(app.Logger, "open", result.Position.ID, quantity, result.Position.EntryCredit)

			if output.IsJSON() {
				return output.JSON(result.Position)
			}
			output.Success("%s", result.Message)
			printCandidate(output, candidate)
			output.Printf("Cash remaining: $%.2f\n", portfolio.Cash())
			return nil
		},
	}

	cmd.Flags().StringVar(&expiration, "expiration", "", "expiration date YYYY-MM-DD (default: nearest)")
	cmd.Flags().Float64Var(&delta, "delta", 0, "target short-leg delta (default from config)")
	cmd.Flags().IntVar(&quantity, "qty", 1, "number of condors")
	return cmd
}

func newPaperCloseCmd(app *App) *cobra.Command {
	var closingCost float64

	cmd := &cobra.Command{
		Use:   "close <position-id>",
		Short: "Close a paper position at a given closing cost",
		Long: `Close buys back both spreads of an open position. The closing cost is
the total dollar amount to exit; P&L is the entry credit minus that cost.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position id %q", args[0])
			}

			portfolio := loadPortfolio(app, cmd)
			result := portfolio.Close(id, closingCost)
			if !result.OK {
				output.Error("%s", result.Message)
				return fmt.Errorf("close rejected: %s", result.Message)
			}
			savePortfolio(app, cmd, portfolio)
			logging.LogTrade(app.Logger, "close", id, result.Position.Quantity, result.Position.RealizedPnL)

			if output.IsJSON() {
				return output.JSON(result.Position)
			}
			output.Success("%s", result.Message)
			output.Printf("P&L: %s   Cash: $%.2f\n",
				output.FormatPnL(result.Position.RealizedPnL), portfolio.Cash())
			return nil
		},
	}

	cmd.Flags().Float64Var(&closingCost, "cost", 0, "total dollar cost to close (default 0, expired worthless)")
	return cmd
}

func newPaperStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show portfolio statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			portfolio := loadPortfolio(app, cmd)
			stats := portfolio.Stats()

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"stats":  stats,
					"open":   portfolio.OpenPositions(),
					"closed": portfolio.ClosedPositions(),
				})
			}

			output.Bold("Portfolio")
			output.Printf("  Account Value: $%.2f\n", stats.AccountValue)
			output.Printf("  Cash:          $%.2f\n", stats.Cash)
			output.Printf("  Total P&L:     %s (%s)\n",
				output.FormatPnL(stats.TotalPnL), output.FormatPercent(stats.ROI))
			output.Printf("  Realized:      %s   Unrealized: %s\n",
				output.FormatPnL(stats.RealizedPnL), output.FormatPnL(stats.UnrealizedPnL))
			output.Println()

			output.Bold("Trades")
			output.Printf("  Open: %d   Closed: %d   Win rate: %.1f%%\n",
				stats.OpenPositions, stats.ClosedTrades, stats.WinRate)
			if stats.WinningTrades > 0 || stats.LosingTrades > 0 {
				output.Printf("  Avg win: %s   Avg loss: %s\n",
					output.FormatPnL(stats.AvgWin), output.FormatPnL(stats.AvgLoss))
			}

			open := portfolio.OpenPositions()
			if len(open) > 0 {
				output.Println()
				table := NewTable(output, "ID", "Expiration", "Qty", "Credit", "Margin", "Unrealized")
				for _, pos := range open {
					table.AddRow(
						fmt.Sprintf("%d", pos.ID),
						pos.Expiration,
						fmt.Sprintf("%d", pos.Quantity),
						fmt.Sprintf("$%.2f", pos.EntryCredit),
						fmt.Sprintf("$%.2f", pos.MarginHeld),
						output.FormatPnL(pos.UnrealizedPnL),
					)
				}
				table.Render()
			}
			return nil
		},
	}
}

func newPaperExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export closed trades to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			portfolio := loadPortfolio(app, cmd)
			closed := portfolio.ClosedPositions()
			if len(closed) == 0 {
				output.Warning("No closed trades to export")
				return nil
			}

			if err := store.ExportTradesCSV(outPath, closed); err != nil {
				output.Error("Export failed: %v", err)
				return err
			}
			output.Success("Exported %d trades to %s", len(closed), outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "trades.csv", "output file path")
	return cmd
}
