// Package pattern implements the rule-based matcher for the target chart
// shape: a prolonged decline or flat stretch, a breakout, a partial
// retracement, and renewed consolidation.
package pattern

// ParamSet is an immutable set of gate thresholds. It fully determines the
// matcher's behavior for one evaluation pass; a tuned set is a new value,
// never a mutation of a shared default.
type ParamSet struct {
	// MaxHigherLowCount caps how many higher-low transitions are allowed in
	// the HigherLowLookback window. Smaller is stricter: 1 admits only the
	// moment of transition, large values barely constrain.
	MaxHigherLowCount int `json:"max_higher_low_count"`
	// MaxRSI is the ceiling on the 5-bar average oscillator, excluding
	// overbought series.
	MaxRSI float64 `json:"max_rsi"`
	// SMALongRatio bounds the fraction of LongOKDays on which the 5/20/60
	// averages were already aligned. Near 1 tolerates long-standing
	// alignment, near 0 admits only the transition onset.
	SMALongRatio float64 `json:"sma_long_ratio"`
	// PullbackMin/PullbackMax bound the retracement fraction from the
	// breakout high, relative to the full up-move.
	PullbackMin float64 `json:"pullback_min"`
	PullbackMax float64 `json:"pullback_max"`
	// Lookback is the window for the breakout/pullback gate and the minimum
	// history a series needs at all.
	Lookback int `json:"lookback"`
	// HigherLowLookback is the window over which higher lows are counted.
	HigherLowLookback int `json:"higher_low_lookback"`
	// LongOKDays is the window over which aligned days are counted.
	LongOKDays int `json:"long_ok_days"`
	// DisplacementSMA20Min/Max bound close relative to the 20-bar average.
	DisplacementSMA20Min float64 `json:"displacement_sma20_min"`
	DisplacementSMA20Max float64 `json:"displacement_sma20_max"`
}

// Defaults returns the documented default thresholds. Every gate key is
// present; a ParamSet is total by construction.
func Defaults() ParamSet {
	return ParamSet{
		MaxHigherLowCount:    1,
		MaxRSI:               50.0,
		SMALongRatio:         0.85,
		PullbackMin:          0.3,
		PullbackMax:          0.6,
		Lookback:             500,
		HigherLowLookback:    100,
		LongOKDays:           300,
		DisplacementSMA20Min: 0.85,
		DisplacementSMA20Max: 1.20,
	}
}
