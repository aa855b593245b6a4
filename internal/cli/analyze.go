package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"condor-trader/internal/analysis/indicators"
	"condor-trader/internal/analysis/scoring"
	"condor-trader/internal/logging"
	"condor-trader/internal/models"
)

// analyzeResult is the JSON shape of the analyze command output.
type analyzeResult struct {
	Symbol string              `json:"symbol"`
	Price  float64             `json:"price"`
	Bars   int                 `json:"bars"`
	Latest models.IndicatorBar `json:"latest"`
	Score  models.RegimeScore  `json:"score"`
}

func newAnalyzeCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analyze [symbol]",
		Short: "Compute indicators and score the current regime",
		Long: `Analyze fetches the daily price series, computes the indicator set
(SMA, Bollinger bands, RSI, MACD, ATR) and scores how favorable the
current regime is for selling an iron condor.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol := app.Config.Market.Symbol
			if len(args) > 0 {
				symbol = args[0]
			}
			if days <= 0 {
				days = app.Config.Market.HistoryDays
			}
			log := logging.WithSymbol(app.Logger, symbol)

			bars := app.Feed.PriceSeries(cmd.Context(), symbol, days)
			enriched := indicators.Enrich(bars)
			latest := enriched[len(enriched)-1]
			price := latest.Close

			score := scoring.NewScorer().Score(latest, price, len(enriched))
			log.Debug().Int("bars", len(bars)).
				Int("entry_score", score.EntryScore).
				Int("risk_score", score.RiskScore).
				Msg("Regime scored")

			if output.IsJSON() {
				return output.JSON(analyzeResult{
					Symbol: symbol,
					Price:  price,
					Bars:   len(bars),
					Latest: latest,
					Score:  score,
				})
			}

			output.Bold("%s  $%.2f  (%d bars)", symbol, price, len(bars))
			output.Println()

			table := NewTable(output, "Indicator", "Value")
			table.AddRow("SMA(20)", formatF(latest.SMA20))
			table.AddRow("BB Upper", formatF(latest.BBUpper))
			table.AddRow("BB Lower", formatF(latest.BBLower))
			table.AddRow("BB Width %", formatF(latest.BBWidth))
			table.AddRow("RSI(14)", formatF(latest.RSI))
			table.AddRow("MACD", formatF(latest.MACD))
			table.AddRow("MACD Signal", formatF(latest.MACDSignal))
			table.AddRow("ATR(14)", formatF(latest.ATR))
			table.AddRow("ATR %", formatF(latest.ATRPercent))
			table.Render()

			output.Println()
			output.Printf("Entry score: %d/9   Risk score: %d/9\n", score.EntryScore, score.RiskScore)
			output.Printf("Signal: %s\n", output.FormatSignal(score.Signal))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "history length in days (default from config)")
	return cmd
}

func formatF(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
