package pattern

import (
	"fmt"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/indicators"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

const (
	oscillatorWindow = 5
	breakoutWindow   = 10
	alignMinBars     = 60
)

// Evaluate is a pure function of (series, params). The five gates run in a
// fixed order and short-circuit on the first failure, so the returned
// explanation always names the first failing gate and identical inputs
// always produce identical output.
func Evaluate(s *models.Series, p ParamSet) (bool, string) {
	if s.Len() < p.Lookback {
		return false, fmt.Sprintf("insufficient data: %d bars, need %d", s.Len(), p.Lookback)
	}

	hlCount := higherLowCount(s.Bars, p.HigherLowLookback)
	if hlCount > p.MaxHigherLowCount {
		return false, fmt.Sprintf("%d higher lows (at most %d qualify)", hlCount, p.MaxHigherLowCount)
	}

	if !oscillatorBelowCeiling(s, p.MaxRSI) {
		return false, "oscillator overbought"
	}

	if !displacementWithinBand(s, p.DisplacementSMA20Min, p.DisplacementSMA20Max) {
		return false, "stretched too far from 20-day average"
	}

	if !alignmentStillEarly(s, p.LongOKDays, p.SMALongRatio) {
		return false, "already persistently aligned"
	}

	if !pullbackAfterBreakout(s.Bars, p.Lookback, p.PullbackMin, p.PullbackMax) {
		return false, "no pullback-after-breakout shape"
	}

	return true, fmt.Sprintf("transition onset: %d higher lows, pullback within %.0f%%-%.0f%% band",
		hlCount, p.PullbackMin*100, p.PullbackMax*100)
}

// higherLowCount counts bars in the last lookback bars whose low exceeds the
// prior bar's low, requiring the prior low to be positive. Malformed bars
// never produce a transition.
func higherLowCount(bars []models.Bar, lookback int) int {
	if len(bars) < 2 || lookback < 2 {
		return 0
	}
	start := len(bars) - lookback
	if start < 0 {
		start = 0
	}
	recent := bars[start:]
	count := 0
	for i := 1; i < len(recent); i++ {
		if !recent[i].Numeric() || !recent[i-1].Numeric() {
			continue
		}
		if recent[i].Low > recent[i-1].Low && recent[i-1].Low > 0 {
			count++
		}
	}
	return count
}

// oscillatorBelowCeiling averages the oscillator over the last 5 bars,
// ignoring unknown or out-of-range values. When no valid sample exists the
// gate passes: missing data never penalizes a series here.
func oscillatorBelowCeiling(s *models.Series, maxRSI float64) bool {
	rsi := s.Field(indicators.RSIField(14))
	if len(rsi) == 0 {
		return true
	}
	start := len(rsi) - oscillatorWindow
	if start < 0 {
		start = 0
	}
	sum, n := 0.0, 0
	for _, v := range rsi[start:] {
		if v.Known && v.V > 0 && v.V < 100 {
			sum += v.V
			n++
		}
	}
	if n == 0 {
		return true
	}
	return sum/float64(n) <= maxRSI
}

// displacementWithinBand checks close against the 20-bar average on the
// latest bar. Unknown displacement (missing or non-positive average) passes.
func displacementWithinBand(s *models.Series, lo, hi float64) bool {
	disp := indicators.Displacement(s, indicators.SMAField(20))
	if !disp.Known {
		return true
	}
	return disp.V >= lo && disp.V <= hi
}

// alignmentStillEarly reports whether the series has NOT yet been
// persistently aligned: it counts bars in the last longOKDays where
// sma5 > sma20 > sma60 (sma60 positive) held, and passes while that count
// stays below ratio*longOKDays. True means "still early", the passing
// outcome: a series aligned too much of the time is already an established
// uptrend, not an entry. Series under 60 bars pass.
func alignmentStillEarly(s *models.Series, longOKDays int, ratio float64) bool {
	if s.Len() < alignMinBars {
		return true
	}
	short, medium, long := indicators.SMAField(5), indicators.SMAField(20), indicators.SMAField(60)
	start := s.Len() - longOKDays
	if start < 0 {
		start = 0
	}
	count := 0
	for i := start; i < s.Len(); i++ {
		if indicators.AlignedAt(s, short, medium, long, i) {
			count++
		}
	}
	return float64(count) < float64(longOKDays)*ratio
}

// pullbackAfterBreakout splits the last lookback bars at the midpoint. The
// first half defines the pre-breakout range; the max high of the last 10
// bars is the breakout high, which must exceed both the first half's low and
// high. The retracement fraction (breakout high - latest close) over the
// full up-move must land inside [pmin, pmax].
//
// With a short lookback the midpoint split leaves few bars per half and the
// two-sided breakout guard can reject legitimate shapes; that behavior is
// kept as-is deliberately.
func pullbackAfterBreakout(bars []models.Bar, lookback int, pmin, pmax float64) bool {
	if len(bars) < lookback || lookback < 2 {
		return false
	}
	recent := bars[len(bars)-lookback:]

	mid := len(recent) / 2
	firstLow, firstHigh := recent[0].Low, recent[0].High
	if mid > 0 {
		firstLow, firstHigh = rangeOf(recent[:mid])
	}

	breakoutFrom := recent
	if len(recent) >= breakoutWindow {
		breakoutFrom = recent[len(recent)-breakoutWindow:]
	}
	_, breakoutHigh := rangeOf(breakoutFrom)

	lastClose := recent[len(recent)-1].Close
	if breakoutHigh <= firstLow || breakoutHigh <= firstHigh {
		return false
	}
	upMove := breakoutHigh - firstLow
	if upMove <= 0 {
		return false
	}
	retrace := (breakoutHigh - lastClose) / upMove
	return retrace >= pmin && retrace <= pmax
}

// rangeOf returns the minimum low and maximum high over bars, skipping
// malformed bars.
func rangeOf(bars []models.Bar) (low, high float64) {
	first := true
	for _, b := range bars {
		if !b.Numeric() {
			continue
		}
		if first {
			low, high = b.Low, b.High
			first = false
			continue
		}
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	return low, high
}
