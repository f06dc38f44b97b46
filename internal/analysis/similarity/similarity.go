// Package similarity scores a matched series against the fixed reference
// archetype: decline, breakout, 30-60% retracement, consolidation. The score
// is a scalar in [0, 1] used only to evaluate and tune parameter sets.
package similarity

import (
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/indicators"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Sub-criterion weights; they sum to 1.
const (
	weightDecline     = 0.25
	weightCrossover   = 0.35
	weightHigherLows  = 0.25
	weightCompression = 0.15
)

const (
	minBars          = 60
	frontSegmentBars = 30
	recentWindow     = 20
	compressWindow   = 5
)

// Score measures how closely the series resembles the reference archetype.
func Score(s *models.Series) float64 {
	if s.Len() < minBars {
		return 0
	}
	return weightDecline*earlyDeclineScore(s) +
		weightCrossover*crossoverDensityScore(s) +
		weightHigherLows*higherLowProximityScore(s) +
		weightCompression*rangeCompressionScore(s)
}

// earlyDeclineScore compares the average low of the first third of the front
// segment with its last third: 1.0 when declining, 0.3 when not, 0.5 when
// too few positive samples exist to compare.
func earlyDeclineScore(s *models.Series) float64 {
	seg := frontSegmentBars
	if half := s.Len() / 2; half < seg {
		seg = half
	}
	var lows, highs []float64
	for _, b := range s.Bars[:seg] {
		if !b.Numeric() {
			continue
		}
		if b.Low > 0 {
			lows = append(lows, b.Low)
		}
		if b.High > 0 {
			highs = append(highs, b.High)
		}
	}
	if len(lows) < 5 || len(highs) < 5 {
		return 0.5
	}
	third := len(lows) / 3
	if len(lows)-third <= third {
		return 0.5
	}
	early := mean(lows[:third])
	late := mean(lows[len(lows)-third:])
	if late < early {
		return 1.0
	}
	return 0.3
}

// crossoverDensityScore counts bars in the last 20 exhibiting short-over-
// medium or medium-over-long ordering (all three averages positive), scaled
// so that 10 qualifying bars saturate the score.
func crossoverDensityScore(s *models.Series) float64 {
	short, medium, long := indicators.SMAField(5), indicators.SMAField(20), indicators.SMAField(60)
	start := s.Len() - recentWindow
	if start < 0 {
		start = 0
	}
	if start == s.Len() {
		return 0
	}
	count := 0
	for i := start; i < s.Len(); i++ {
		sv, mv, lv := s.At(short, i), s.At(medium, i), s.At(long, i)
		if !sv.Known || !mv.Known || !lv.Known {
			continue
		}
		if sv.V <= 0 || mv.V <= 0 || lv.V <= 0 {
			continue
		}
		if sv.V > mv.V || mv.V > lv.V {
			count++
		}
	}
	score := float64(count) / 10.0
	if score > 1 {
		score = 1
	}
	return score
}

// higherLowProximityScore rewards a "just transitioning" signature: 1-5
// higher-low transitions in the last 20 bars score 1.0, zero transitions
// (no turn yet) score 0.3, and each transition above 5 decays the score by
// 0.2, floored at 0.
func higherLowProximityScore(s *models.Series) float64 {
	start := s.Len() - recentWindow
	if start < 0 {
		start = 0
	}
	recent := s.Bars[start:]
	count := 0
	for i := 1; i < len(recent); i++ {
		if !recent[i].Numeric() || !recent[i-1].Numeric() {
			continue
		}
		if recent[i].Low > recent[i-1].Low && recent[i-1].Low > 0 {
			count++
		}
	}
	switch {
	case count >= 1 && count <= 5:
		return 1.0
	case count == 0:
		return 0.3
	default:
		score := 1.0 - float64(count-5)*0.2
		if score < 0 {
			score = 0
		}
		return score
	}
}

// rangeCompressionScore measures recent consolidation: the high-low range of
// the last 5 bars over their mean close. Under 8% scores 1.0, under 15%
// scores 0.6, anything wider 0.2. Fewer than 3 bars score the neutral 0.5.
func rangeCompressionScore(s *models.Series) float64 {
	start := s.Len() - compressWindow
	if start < 0 {
		start = 0
	}
	recent := s.Bars[start:]
	if len(recent) < 3 {
		return 0.5
	}
	var high, low float64
	var closes []float64
	first := true
	for _, b := range recent {
		if !b.Numeric() {
			continue
		}
		if first {
			high, low = b.High, b.Low
			first = false
		} else {
			if b.High > high {
				high = b.High
			}
			if b.Low < low {
				low = b.Low
			}
		}
		closes = append(closes, b.Close)
	}
	if len(closes) == 0 {
		return 0.5
	}
	mid := mean(closes)
	if mid <= 0 {
		return 0.2
	}
	spread := (high - low) / mid
	switch {
	case spread < 0.08:
		return 1.0
	case spread < 0.15:
		return 0.6
	default:
		return 0.2
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
