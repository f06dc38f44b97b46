package indicators

import (
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// CrossedAbove reports whether the short field moved from at-or-below to
// above the long field within the last days bars: scanning the most recent
// days+1 bars, there is a bar where short <= long on the prior bar and
// short > long on the current bar. Bars with unknown values never count.
func CrossedAbove(s *models.Series, short, long string, days int) bool {
	n := s.Len()
	if n < 2 || days < 1 {
		return false
	}
	start := n - days - 1
	if start < 0 {
		start = 0
	}
	for i := start + 1; i < n; i++ {
		ps, pl := s.At(short, i-1), s.At(long, i-1)
		cs, cl := s.At(short, i), s.At(long, i)
		if !ps.Known || !pl.Known || !cs.Known || !cl.Known {
			continue
		}
		if ps.V <= pl.V && cs.V > cl.V {
			return true
		}
	}
	return false
}

// Aligned reports whether short > medium > long holds on the latest bar,
// with the long average required to be positive. Equal averages are not
// aligned; unknown values are not aligned.
func Aligned(s *models.Series, short, medium, long string) bool {
	return AlignedAt(s, short, medium, long, s.Len()-1)
}

// AlignedAt reports the alignment fact at a specific bar index.
func AlignedAt(s *models.Series, short, medium, long string, i int) bool {
	sv, mv, lv := s.At(short, i), s.At(medium, i), s.At(long, i)
	if !sv.Known || !mv.Known || !lv.Known {
		return false
	}
	if lv.V <= 0 {
		return false
	}
	return sv.V > mv.V && mv.V > lv.V
}

// Displacement returns the latest close divided by the latest value of the
// reference average field, unknown when the average is missing or <= 0.
func Displacement(s *models.Series, ref string) models.Value {
	last, ok := s.Last()
	if !ok || !last.Numeric() {
		return models.Unknown()
	}
	avg := s.LastValue(ref)
	if !avg.Known || avg.V <= 0 {
		return models.Unknown()
	}
	return models.Known(last.Close / avg.V)
}
