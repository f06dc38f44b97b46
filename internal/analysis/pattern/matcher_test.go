package pattern

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

func barAt(i int, low, high, close float64) models.Bar {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.Bar{
		Date:   base.AddDate(0, 0, i),
		Open:   close,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: 10000,
	}
}

// shapeSeries builds a 40-bar series with the target shape: a flat base,
// a breakout high of 100 in the last 10 bars, and a close of 75 that
// retraces half of the up-move from the base low of 50.
func shapeSeries(symbol string) *models.Series {
	bars := make([]models.Bar, 0, 40)
	for i := 0; i < 35; i++ {
		bars = append(bars, barAt(i, 50, 60, 55))
	}
	bars = append(bars, barAt(35, 50, 100, 90))
	for i := 36; i < 40; i++ {
		bars = append(bars, barAt(i, 50, 76, 75))
	}
	return &models.Series{Symbol: symbol, Bars: bars}
}

// shapeParams returns thresholds sized to the 40-bar test series.
func shapeParams() ParamSet {
	p := Defaults()
	p.Lookback = 40
	p.HigherLowLookback = 20
	p.MaxHigherLowCount = 5
	p.LongOKDays = 30
	return p
}

func TestEvaluateMatchesTargetShape(t *testing.T) {
	pass, reason := Evaluate(shapeSeries("SHAPE"), shapeParams())
	if !pass {
		t.Fatalf("target shape rejected: %s", reason)
	}
	if !strings.Contains(reason, "transition onset") {
		t.Errorf("unexpected match explanation: %s", reason)
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	s := shapeSeries("SHORT")
	s.Bars = s.Bars[:10]

	pass, reason := Evaluate(s, shapeParams())
	if pass {
		t.Fatal("10-bar series must not match a 40-bar lookback")
	}
	if !strings.Contains(reason, "insufficient data") {
		t.Errorf("explanation should name the data shortfall, got: %s", reason)
	}
}

func TestEvaluateNamesFirstFailingGate(t *testing.T) {
	s := shapeSeries("HL")
	// Rising lows through the recent window trip the higher-low gate before
	// any later gate runs.
	for i := 20; i < 40; i++ {
		s.Bars[i].Low = 50 + float64(i-20)
	}

	pass, reason := Evaluate(s, shapeParams())
	if pass {
		t.Fatal("series with many higher lows must not match")
	}
	if !strings.Contains(reason, "higher lows") {
		t.Errorf("explanation should name the higher-low gate, got: %s", reason)
	}
}

func TestEvaluatePullbackTooDeep(t *testing.T) {
	s := shapeSeries("DEEP")
	// Close back at 60: retrace (100-60)/(100-50) = 0.8, outside [0.3, 0.6].
	for i := 36; i < 40; i++ {
		s.Bars[i].Close = 60
		s.Bars[i].Open = 60
		s.Bars[i].High = 61
	}

	pass, reason := Evaluate(s, shapeParams())
	if pass {
		t.Fatal("80% retracement must not match the 30-60% band")
	}
	if !strings.Contains(reason, "pullback") {
		t.Errorf("explanation should name the pullback gate, got: %s", reason)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	s := shapeSeries("DET")
	p := shapeParams()

	firstPass, firstReason := Evaluate(s, p)
	for i := 0; i < 5; i++ {
		pass, reason := Evaluate(s, p)
		if pass != firstPass || reason != firstReason {
			t.Fatalf("run %d diverged: (%v, %q) vs (%v, %q)", i, pass, reason, firstPass, firstReason)
		}
	}
}

func TestHigherLowCount(t *testing.T) {
	lows := []float64{10, 9, 11, 12, 11, 13}
	bars := make([]models.Bar, len(lows))
	for i, l := range lows {
		bars[i] = barAt(i, l, l+2, l+1)
	}

	// Transitions at 9->11, 11->12, 11->13.
	if got := higherLowCount(bars, len(bars)); got != 3 {
		t.Errorf("higherLowCount = %d, want 3", got)
	}
}

func TestHigherLowCountIgnoresNonPositivePriorLow(t *testing.T) {
	bars := []models.Bar{
		barAt(0, 0, 2, 1),
		barAt(1, 5, 7, 6),
	}
	if got := higherLowCount(bars, 2); got != 0 {
		t.Errorf("higherLowCount = %d, want 0 for non-positive prior low", got)
	}
}

func TestPullbackAfterBreakoutBounds(t *testing.T) {
	mk := func(lastClose float64) []models.Bar {
		s := shapeSeries("X")
		for i := 36; i < 40; i++ {
			s.Bars[i].Close = lastClose
			s.Bars[i].Open = lastClose
			if s.Bars[i].High < lastClose {
				s.Bars[i].High = lastClose + 1
			}
		}
		return s.Bars
	}

	if !pullbackAfterBreakout(mk(75), 40, 0.3, 0.6) {
		t.Error("50% retrace should pass the 30-60% band")
	}
	if pullbackAfterBreakout(mk(60), 40, 0.3, 0.6) {
		t.Error("80% retrace should fail the 30-60% band")
	}
	if pullbackAfterBreakout(mk(95), 40, 0.3, 0.6) {
		t.Error("10% retrace should fail the 30-60% band")
	}
}

func TestPullbackRequiresBreakout(t *testing.T) {
	// Entirely flat: the breakout high never exceeds the first half's high.
	bars := make([]models.Bar, 40)
	for i := range bars {
		bars[i] = barAt(i, 50, 60, 55)
	}
	if pullbackAfterBreakout(bars, 40, 0.3, 0.6) {
		t.Error("flat series has no breakout to pull back from")
	}
}

func TestFilterKeepsCandidateOrder(t *testing.T) {
	cands := []models.Candidate{
		{Symbol: "A", Series: shapeSeries("A")},
		{Symbol: "B", Series: nil}, // no data, never matches
		{Symbol: "C", Series: shapeSeries("C")},
	}
	names := map[string]string{"A": "Alpha"}

	m := NewMatcher(4, zerolog.Nop())
	matches := m.Filter(context.Background(), cands, names, shapeParams())

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Symbol != "A" || matches[1].Symbol != "C" {
		t.Errorf("matches out of candidate order: %v", matches)
	}
	if matches[0].Name != "Alpha" {
		t.Errorf("match name = %q, want display name from the universe", matches[0].Name)
	}
	if matches[1].Name != "C" {
		t.Errorf("match name = %q, want symbol fallback", matches[1].Name)
	}
}
