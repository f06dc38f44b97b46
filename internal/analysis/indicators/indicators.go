// Package indicators derives per-bar moving averages, an RSI oscillator, and
// the crossover/alignment/displacement facts used by the funnel filter and
// the pattern matcher.
package indicators

import (
	"fmt"
	"math"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Field naming scheme for derived series fields.
const rsiFieldPrefix = "rsi_"

// SMAField returns the field name for a simple moving average window.
func SMAField(window int) string {
	return fmt.Sprintf("sma_%d", window)
}

// EMAField returns the field name for an exponential moving average window.
func EMAField(window int) string {
	return fmt.Sprintf("ema_%d", window)
}

// RSIField returns the field name for the oscillator at the given period.
func RSIField(period int) string {
	return fmt.Sprintf("%s%d", rsiFieldPrefix, period)
}

// Config selects which derived fields Enrich computes.
type Config struct {
	SMAWindows []int
	EMAWindows []int
	RSIPeriod  int
}

// DefaultConfig returns the standard window set: short-horizon 5/20/60 for
// the pattern gates, long-horizon 50/100/200 for the funnel, RSI(14).
func DefaultConfig() Config {
	return Config{
		SMAWindows: []int{5, 20, 60, 50, 100, 200},
		EMAWindows: []int{5, 20, 60},
		RSIPeriod:  14,
	}
}

// Enrich computes the configured derived fields and returns a new series
// carrying them. The input series is never mutated.
func Enrich(s *models.Series, cfg Config) *models.Series {
	closes := closeValues(s.Bars)
	fields := make(map[string][]models.Value)
	for _, w := range cfg.SMAWindows {
		fields[SMAField(w)] = SMA(closes, w)
	}
	for _, w := range cfg.EMAWindows {
		fields[EMAField(w)] = EMA(closes, w)
	}
	if cfg.RSIPeriod > 0 {
		fields[RSIField(cfg.RSIPeriod)] = RSI(closes, cfg.RSIPeriod)
	}
	return s.WithFields(fields)
}

// closeValues extracts close prices, marking malformed bars unknown so that
// a single bad bar degrades only its own derived fields.
func closeValues(bars []models.Bar) []models.Value {
	out := make([]models.Value, len(bars))
	for i, b := range bars {
		if b.Numeric() {
			out[i] = models.Known(b.Close)
		} else {
			out[i] = models.Unknown()
		}
	}
	return out
}

// SMA computes a simple moving average with an expanding window: the first
// value averages a single sample, growing to the full window width. Early
// values are therefore biased toward recent history but always usable.
// The value at a malformed bar is unknown; malformed samples are skipped
// inside the window.
func SMA(closes []models.Value, window int) []models.Value {
	out := make([]models.Value, len(closes))
	if window <= 0 {
		return out
	}
	for i := range closes {
		if !closes[i].Known {
			continue
		}
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, n := 0.0, 0
		for j := start; j <= i; j++ {
			if closes[j].Known {
				sum += closes[j].V
				n++
			}
		}
		if n > 0 {
			out[i] = models.Known(sum / float64(n))
		}
	}
	return out
}

// EMA computes an exponential moving average seeded from the first known
// close, so that like SMA it has usable values from the first bar. A
// malformed bar yields an unknown value without resetting the average.
func EMA(closes []models.Value, window int) []models.Value {
	out := make([]models.Value, len(closes))
	if window <= 0 {
		return out
	}
	multiplier := 2.0 / float64(window+1)
	prev := models.Unknown()
	for i := range closes {
		if !closes[i].Known {
			continue
		}
		if !prev.Known {
			prev = closes[i]
		} else {
			prev = models.Known((closes[i].V-prev.V)*multiplier + prev.V)
		}
		out[i] = prev
	}
	return out
}

// RSI computes the Wilder-smoothed relative strength index. Values are
// unknown until period+1 bars of history exist; any out-of-range or
// non-numeric result stays unknown rather than being clamped.
func RSI(closes []models.Value, period int) []models.Value {
	out := make([]models.Value, len(closes))
	if period <= 0 || len(closes) < period+1 {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if !closes[i].Known || !closes[i-1].Known {
			continue
		}
		change := closes[i].V - closes[i-1].V
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss, closes[period].Known)

	for i := period + 1; i < len(closes); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss, closes[i].Known)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64, barOK bool) models.Value {
	if !barOK {
		return models.Unknown()
	}
	var rsi float64
	if avgLoss == 0 {
		rsi = 100
	} else {
		rs := avgGain / avgLoss
		rsi = 100 - 100/(1+rs)
	}
	if math.IsNaN(rsi) || rsi < 0 || rsi > 100 {
		return models.Unknown()
	}
	return models.Known(rsi)
}
