package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"condor-trader/internal/config"
	"condor-trader/internal/logging"
	"condor-trader/internal/marketdata"
	"condor-trader/internal/pricing"
	"condor-trader/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Feed   *marketdata.Feed
	Store  *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	pricing.SetLogger(logger)
	pricing.SetRiskFreeRate(cfg.Market.RiskFreeRate)

	// No live provider is wired; the feed serves synthetic data.
	app.Feed = marketdata.NewFeedWithOptions(nil, marketdata.FeedOptions{
		BasePrice: cfg.Market.DemoBase,
		DefaultIV: cfg.Market.DefaultIV,
	}, logger)

	dataStore, err := store.NewSQLiteStore(cfg.Paper.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, paper trades will not persist")
	} else {
		app.Store = dataStore
	}

	rootCmd := &cobra.Command{
		Use:   "condor",
		Short: "Iron condor analysis and paper trading CLI",
		Long: `Condor analyzes a price series for range-bound, low-volatility regimes
suited to selling iron condors, selects strikes from an option chain by
target delta, and tracks the resulting trades in a paper portfolio.

Use 'condor help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/condor-trader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newCondorCmd(app))
	rootCmd.AddCommand(newPaperCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("condor v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Market")
	output.Printf("  Symbol:         %s\n", cfg.Market.Symbol)
	output.Printf("  History Days:   %d\n", cfg.Market.HistoryDays)
	output.Printf("  Risk-Free Rate: %.3f\n", cfg.Market.RiskFreeRate)
	output.Printf("  Default IV:     %.2f\n", cfg.Market.DefaultIV)
	output.Println()

	output.Bold("Strategy")
	output.Printf("  Target Delta:   %.2f\n", cfg.Strategy.TargetDelta)
	output.Printf("  Scan Deltas:    %v\n", cfg.Strategy.ScanDeltas)
	output.Println()

	output.Bold("Paper Trading")
	output.Printf("  Initial Cash:   $%.2f\n", cfg.Paper.InitialCash)
	output.Printf("  Database:       %s\n", cfg.Paper.DBPath)
}
