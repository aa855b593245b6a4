package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"condor-trader/internal/models"
	"condor-trader/internal/strategy"
)

func newCondorCmd(app *App) *cobra.Command {
	var expiration string

	cmd := &cobra.Command{
		Use:   "condor [symbol]",
		Short: "Select iron condor setups from the option chain",
		Long: `Condor fetches the option chain and selects a four-leg iron condor
for each configured target delta: short legs nearest the target delta,
long legs one strike further out.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol := app.Config.Market.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}

			chain := app.Feed.OptionChain(cmd.Context(), symbol)
			exp, err := resolveExpiration(chain, expiration)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			results := scanChain(app, chain, exp)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     symbol,
					"spot":       chain.SpotPrice,
					"expiration": exp,
					"setups":     results,
				})
			}

			output.Bold("%s  $%.2f  exp %s", symbol, chain.SpotPrice, exp)
			output.Println()

			for _, r := range results {
				output.Info("Target delta %.2f", r.TargetDelta)
				if r.Candidate == nil {
					output.Dim("  no setup available")
					continue
				}
				printCandidate(output, r.Candidate)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&expiration, "expiration", "", "expiration date YYYY-MM-DD (default: nearest)")
	return cmd
}

// scanChain runs the selector for each configured target delta.
func scanChain(app *App, chain models.OptionChain, exp string) []strategy.ScanResult {
	deltas := app.Config.Strategy.ScanDeltas
	if len(deltas) == 0 {
		deltas = strategy.TargetDeltas
	}
	results := make([]strategy.ScanResult, 0, len(deltas))
	for _, d := range deltas {
		c, err := strategy.SelectIronCondor(chain, exp, chain.SpotPrice, d)
		if err != nil {
			app.Logger.Debug().Err(err).Float64("delta", d).Msg("No setup for target delta")
			c = nil
		}
		results = append(results, strategy.ScanResult{TargetDelta: d, Candidate: c})
	}
	return results
}

// resolveExpiration picks the requested expiration, or the nearest one when
// none is requested.
func resolveExpiration(chain models.OptionChain, requested string) (string, error) {
	if requested != "" {
		if _, ok := chain.Expirations[requested]; !ok {
			return "", fmt.Errorf("expiration %s not in chain", requested)
		}
		return requested, nil
	}
	if len(chain.Expirations) == 0 {
		return "", fmt.Errorf("option chain is empty")
	}
	dates := make([]string, 0, len(chain.Expirations))
	for d := range chain.Expirations {
		dates = append(dates, d)
	}
	// ISO dates sort chronologically as strings.
	sort.Strings(dates)
	return dates[0], nil
}

func printCandidate(output *Output, c *models.IronCondorCandidate) {
	output.Printf("  Legs:      -%.0fC / +%.0fC / -%.0fP / +%.0fP\n",
		c.ShortCall.Strike, c.LongCall.Strike, c.ShortPut.Strike, c.LongPut.Strike)
	output.Printf("  Credit:    $%.2f\n", c.Credit)
	output.Printf("  Max P/L:   %s / %s\n",
		output.FormatPnL(c.MaxProfit), output.FormatPnL(-c.MaxLoss))
	output.Printf("  Breakeven: %.2f - %.2f\n", c.BreakevenLower, c.BreakevenUpper)
	output.Printf("  POP:       %.1f%%\n", c.ProbabilityOfProfit)
	if c.DataQualityWarning {
		output.Warning("  setup nets a debit, quotes look stale or crossed")
	}
	output.Println()
}
