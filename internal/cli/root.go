// Package cli provides the command-line interface for the chart screener.
package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/indicators"
	"github.com/jujojujoju/auto-chart-analysis/internal/config"
	"github.com/jujojujoju/auto-chart-analysis/internal/feed"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
	"github.com/jujojujoju/auto-chart-analysis/internal/notify"
	"github.com/jujojujoju/auto-chart-analysis/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Store    store.DataStore
	Provider feed.BarProvider
	Notifier notify.Notifier
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Feed.CachePath)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialize store, caching and history disabled")
	} else {
		app.Store = dataStore
	}

	provider := feed.BarProvider(feed.NewYahooProvider())
	if app.Store != nil {
		provider = feed.NewCachingProvider(provider, app.Store, 24*time.Hour, logger)
	}
	app.Provider = provider

	if cfg.Notifications.Enabled && cfg.Notifications.Telegram.Enabled {
		app.Notifier = notify.NewTelegramChannel(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		)
	}

	rootCmd := &cobra.Command{
		Use:   "screener",
		Short: "Rule-based daily chart shape screener",
		Long: `screener scans a universe of daily price series for one chart shape:
a prolonged decline or flat stretch, a breakout, a 30-60% retracement, and
renewed consolidation. A cheap funnel bounds the universe, five explainable
gates classify each candidate, and a bounded parameter search tunes the gate
thresholds against a reference archetype.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newTuneCmd(app))
	rootCmd.AddCommand(newFetchCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

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
				output.Printf("chart screener v%s\n", Version)
			}
		},
	}
}

// universe resolves the configured symbol universe.
func (a *App) universe() (*feed.Universe, error) {
	if a.Config.Universe.File != "" {
		return feed.LoadUniverseFile(a.Config.Universe.File)
	}
	return feed.NewUniverse(a.Config.Universe.Symbols, a.Config.Universe.Names), nil
}

// loadEnriched fetches the universe and enriches every series with the
// default indicator set.
func (a *App) loadEnriched(ctx context.Context, u *feed.Universe) []*models.Series {
	raw := feed.FetchAll(ctx, a.Provider, u, a.Config.Feed.HistoryDays, a.Config.Feed.Workers, a.Logger)
	cfg := indicators.DefaultConfig()
	enriched := make([]*models.Series, len(raw))
	for i, s := range raw {
		enriched[i] = indicators.Enrich(s, cfg)
	}
	return enriched
}
