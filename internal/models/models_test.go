package models

import (
	"math"
	"testing"
	"time"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func TestNewSeriesSortsByDate(t *testing.T) {
	bars := []Bar{
		{Date: day(2), Close: 3},
		{Date: day(0), Close: 1},
		{Date: day(1), Close: 2},
	}
	s, err := NewSeries("AAA", bars)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1, 2, 3} {
		if s.Bars[i].Close != want {
			t.Errorf("bar %d close = %v, want %v", i, s.Bars[i].Close, want)
		}
	}
}

func TestNewSeriesRejectsDuplicateDates(t *testing.T) {
	bars := []Bar{
		{Date: day(0), Close: 1},
		{Date: day(0), Close: 2},
	}
	if _, err := NewSeries("AAA", bars); err == nil {
		t.Fatal("expected an error for duplicate bar dates")
	}
}

func TestBarNumeric(t *testing.T) {
	ok := Bar{Date: day(0), Open: 1, High: 2, Low: 1, Close: 2, Volume: 10}
	if !ok.Numeric() {
		t.Error("finite bar reported as non-numeric")
	}
	bad := ok
	bad.Close = math.NaN()
	if bad.Numeric() {
		t.Error("NaN close reported as numeric")
	}
	inf := ok
	inf.Volume = math.Inf(1)
	if inf.Numeric() {
		t.Error("infinite volume reported as numeric")
	}
}

func TestValueInRange(t *testing.T) {
	if Unknown().InRange(0, 100) {
		t.Error("unknown value must never be in range")
	}
	if !Known(50).InRange(0, 100) {
		t.Error("50 should be within [0, 100]")
	}
	if !Known(100).InRange(0, 100) {
		t.Error("range bounds are inclusive")
	}
	if Known(101).InRange(0, 100) {
		t.Error("101 should be outside [0, 100]")
	}
}

func TestSeriesFieldAccess(t *testing.T) {
	s := &Series{Symbol: "AAA", Bars: []Bar{{Date: day(0), Close: 1}, {Date: day(1), Close: 2}}}
	s = s.WithFields(map[string][]Value{"f": {Known(10), Known(20)}})

	if v := s.At("f", 1); !v.Known || v.V != 20 {
		t.Errorf("At(f, 1) = %+v, want 20", v)
	}
	if s.At("f", 5).Known {
		t.Error("out-of-range index must be unknown")
	}
	if s.At("missing", 0).Known {
		t.Error("absent field must be unknown")
	}
	if v := s.LastValue("f"); !v.Known || v.V != 20 {
		t.Errorf("LastValue(f) = %+v, want 20", v)
	}
}

func TestWithFieldsDoesNotMutateReceiver(t *testing.T) {
	s := &Series{Symbol: "AAA", Bars: []Bar{{Date: day(0)}}}
	first := s.WithFields(map[string][]Value{"a": {Known(1)}})
	second := first.WithFields(map[string][]Value{"b": {Known(2)}})

	if s.Fields != nil {
		t.Error("WithFields mutated the original series")
	}
	if _, ok := first.Fields["b"]; ok {
		t.Error("WithFields leaked a later field into an earlier copy")
	}
	if !second.At("a", 0).Known || !second.At("b", 0).Known {
		t.Error("enrichment chain should accumulate fields")
	}
}

func TestNilSeriesIsEmpty(t *testing.T) {
	var s *Series
	if s.Len() != 0 {
		t.Error("nil series should have zero length")
	}
	if s.Field("f") != nil {
		t.Error("nil series should have no fields")
	}
}
