// Package config provides configuration management for the screening
// application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/funnel"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/pattern"
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/tuner"
	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Universe      UniverseConfig     `mapstructure:"universe"`
	Feed          FeedConfig         `mapstructure:"feed"`
	Funnel        FunnelConfig       `mapstructure:"funnel"`
	Pattern       PatternConfig      `mapstructure:"pattern"`
	Tuner         TunerConfig        `mapstructure:"tuner"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// UniverseConfig selects the symbols to screen.
type UniverseConfig struct {
	Symbols []string          `mapstructure:"symbols"`
	Names   map[string]string `mapstructure:"names"`
	File    string            `mapstructure:"file"` // optional CSV: symbol,name
}

// FeedConfig holds bar-feed configuration.
type FeedConfig struct {
	Provider    string `mapstructure:"provider"` // "yahoo"
	HistoryDays int    `mapstructure:"history_days"`
	CachePath   string `mapstructure:"cache_path"`
	Workers     int    `mapstructure:"workers"`
}

// FunnelConfig holds funnel filter thresholds.
type FunnelConfig struct {
	MaxCandidates   int     `mapstructure:"max_candidates"`
	MinBars         int     `mapstructure:"min_bars"`
	DisplacementMin float64 `mapstructure:"displacement_min"`
	DisplacementMax float64 `mapstructure:"displacement_max"`
	SweetSpotMin    float64 `mapstructure:"sweet_spot_min"`
	SweetSpotMax    float64 `mapstructure:"sweet_spot_max"`
	VolumeMult      float64 `mapstructure:"volume_mult"`
	Workers         int     `mapstructure:"workers"`
}

// PatternConfig overrides pattern gate thresholds. Zero values fall back to
// the documented defaults so the resulting ParamSet is always total.
type PatternConfig struct {
	MaxHigherLowCount    int     `mapstructure:"max_higher_low_count"`
	MaxRSI               float64 `mapstructure:"max_rsi"`
	SMALongRatio         float64 `mapstructure:"sma_long_ratio"`
	PullbackMin          float64 `mapstructure:"pullback_min"`
	PullbackMax          float64 `mapstructure:"pullback_max"`
	Lookback             int     `mapstructure:"lookback"`
	HigherLowLookback    int     `mapstructure:"higher_low_lookback"`
	LongOKDays           int     `mapstructure:"long_ok_days"`
	DisplacementSMA20Min float64 `mapstructure:"displacement_sma20_min"`
	DisplacementSMA20Max float64 `mapstructure:"displacement_sma20_max"`
}

// TunerConfig holds parameter-search thresholds.
type TunerConfig struct {
	AvgThreshold float64 `mapstructure:"avg_threshold"`
	MaxThreshold float64 `mapstructure:"max_threshold"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram delivery configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
	Path    string `mapstructure:"path"`
}

// DefaultConfigDir returns the configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chart-screener"
	}
	return filepath.Join(home, ".config", "chart-screener")
}

// Load reads configuration from the config directory and environment,
// falling back to defaults for everything absent.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(DefaultConfigDir())
	v.AddConfigPath(".")

	v.SetEnvPrefix("SCREENER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	fd := funnel.DefaultConfig()
	pd := pattern.Defaults()
	td := tuner.DefaultThresholds()

	v.SetDefault("feed.provider", "yahoo")
	v.SetDefault("feed.history_days", 365*3)
	v.SetDefault("feed.cache_path", filepath.Join(DefaultConfigDir(), "screener.db"))
	v.SetDefault("feed.workers", 8)

	v.SetDefault("funnel.max_candidates", fd.MaxCandidates)
	v.SetDefault("funnel.min_bars", fd.MinBars)
	v.SetDefault("funnel.displacement_min", fd.DisplacementMin)
	v.SetDefault("funnel.displacement_max", fd.DisplacementMax)
	v.SetDefault("funnel.sweet_spot_min", fd.SweetSpotMin)
	v.SetDefault("funnel.sweet_spot_max", fd.SweetSpotMax)
	v.SetDefault("funnel.volume_mult", fd.VolumeMult)
	v.SetDefault("funnel.workers", fd.Workers)

	v.SetDefault("pattern.max_higher_low_count", pd.MaxHigherLowCount)
	v.SetDefault("pattern.max_rsi", pd.MaxRSI)
	v.SetDefault("pattern.sma_long_ratio", pd.SMALongRatio)
	v.SetDefault("pattern.pullback_min", pd.PullbackMin)
	v.SetDefault("pattern.pullback_max", pd.PullbackMax)
	v.SetDefault("pattern.lookback", pd.Lookback)
	v.SetDefault("pattern.higher_low_lookback", pd.HigherLowLookback)
	v.SetDefault("pattern.long_ok_days", pd.LongOKDays)
	v.SetDefault("pattern.displacement_sma20_min", pd.DisplacementSMA20Min)
	v.SetDefault("pattern.displacement_sma20_max", pd.DisplacementSMA20Max)

	v.SetDefault("tuner.avg_threshold", td.Avg)
	v.SetDefault("tuner.max_threshold", td.Max)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
}

// ParamSet converts the pattern overrides into a total ParamSet.
func (p PatternConfig) ParamSet() pattern.ParamSet {
	out := pattern.Defaults()
	if p.MaxHigherLowCount > 0 {
		out.MaxHigherLowCount = p.MaxHigherLowCount
	}
	if p.MaxRSI > 0 {
		out.MaxRSI = p.MaxRSI
	}
	if p.SMALongRatio > 0 {
		out.SMALongRatio = p.SMALongRatio
	}
	if p.PullbackMin > 0 {
		out.PullbackMin = p.PullbackMin
	}
	if p.PullbackMax > 0 {
		out.PullbackMax = p.PullbackMax
	}
	if p.Lookback > 0 {
		out.Lookback = p.Lookback
	}
	if p.HigherLowLookback > 0 {
		out.HigherLowLookback = p.HigherLowLookback
	}
	if p.LongOKDays > 0 {
		out.LongOKDays = p.LongOKDays
	}
	if p.DisplacementSMA20Min > 0 {
		out.DisplacementSMA20Min = p.DisplacementSMA20Min
	}
	if p.DisplacementSMA20Max > 0 {
		out.DisplacementSMA20Max = p.DisplacementSMA20Max
	}
	return out
}

// FunnelConfig converts the funnel overrides into a funnel.Config.
func (f FunnelConfig) FunnelConfig() funnel.Config {
	out := funnel.DefaultConfig()
	if f.MaxCandidates > 0 {
		out.MaxCandidates = f.MaxCandidates
	}
	if f.MinBars > 0 {
		out.MinBars = f.MinBars
	}
	if f.DisplacementMin > 0 {
		out.DisplacementMin = f.DisplacementMin
	}
	if f.DisplacementMax > 0 {
		out.DisplacementMax = f.DisplacementMax
	}
	if f.SweetSpotMin > 0 {
		out.SweetSpotMin = f.SweetSpotMin
	}
	if f.SweetSpotMax > 0 {
		out.SweetSpotMax = f.SweetSpotMax
	}
	if f.VolumeMult > 0 {
		out.VolumeMult = f.VolumeMult
	}
	if f.Workers > 0 {
		out.Workers = f.Workers
	}
	return out
}

// Thresholds converts the tuner overrides into tuner.Thresholds.
func (t TunerConfig) Thresholds() tuner.Thresholds {
	out := tuner.DefaultThresholds()
	if t.AvgThreshold > 0 {
		out.Avg = t.AvgThreshold
	}
	if t.MaxThreshold > 0 {
		out.Max = t.MaxThreshold
	}
	return out
}

// LogConfig converts the logging section into a logging.LogConfig.
func (l LoggingConfig) LogConfig() logging.LogConfig {
	out := logging.DefaultLogConfig()
	if l.Level != "" {
		out.Level = l.Level
	}
	out.Console = l.Console
	out.File = l.File
	if l.Path != "" {
		out.FilePath = l.Path
	}
	return out
}
