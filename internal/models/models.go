// Package models provides domain models for the chart screening application.
package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bar represents one trading day of OHLCV data. Immutable once produced.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Numeric reports whether all price and volume fields are finite numbers.
func (b Bar) Numeric() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Value is a nullable numeric. Derived indicator fields are unknown when the
// backing window exceeds available history or the input bar was malformed;
// an unknown value must never be coerced to 0.
type Value struct {
	V     float64
	Known bool
}

// Known wraps a float64 as a known value.
func Known(v float64) Value {
	return Value{V: v, Known: true}
}

// Unknown returns the unknown value.
func Unknown() Value {
	return Value{}
}

// InRange reports whether the value is known and lies within [lo, hi].
func (v Value) InRange(lo, hi float64) bool {
	return v.Known && v.V >= lo && v.V <= hi
}

// Series is an ordered sequence of bars for one symbol, strictly increasing
// by date, plus per-bar derived fields keyed by name (sma_<w>, ema_<w>,
// rsi_14). Enrichment returns a new Series; bars are never mutated in place.
type Series struct {
	Symbol string
	Bars   []Bar
	Fields map[string][]Value
}

// NewSeries builds a Series from bars, sorting by date and rejecting
// duplicate dates.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	sorted := make([]Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for i := 1; i < len(sorted); i++ {
		if !sorted[i].Date.After(sorted[i-1].Date) {
			return nil, fmt.Errorf("series %s: duplicate bar date %s", symbol, sorted[i].Date.Format("2006-01-02"))
		}
	}
	return &Series{Symbol: symbol, Bars: sorted}, nil
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// Last returns the latest bar. The second return is false on an empty series.
func (s *Series) Last() (Bar, bool) {
	if s.Len() == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Field returns the derived field slice by name, or nil if absent.
func (s *Series) Field(name string) []Value {
	if s == nil || s.Fields == nil {
		return nil
	}
	return s.Fields[name]
}

// At returns the derived field value at bar index i, unknown when the field
// is absent or the index is out of range.
func (s *Series) At(name string, i int) Value {
	vals := s.Field(name)
	if i < 0 || i >= len(vals) {
		return Unknown()
	}
	return vals[i]
}

// LastValue returns the derived field value on the latest bar.
func (s *Series) LastValue(name string) Value {
	return s.At(name, s.Len()-1)
}

// WithFields returns a copy of the series carrying the given derived fields.
// The bars slice is shared (bars are immutable); the field map is owned by
// the returned series.
func (s *Series) WithFields(fields map[string][]Value) *Series {
	out := &Series{
		Symbol: s.Symbol,
		Bars:   s.Bars,
		Fields: make(map[string][]Value, len(s.Fields)+len(fields)),
	}
	for name, vals := range s.Fields {
		out.Fields[name] = vals
	}
	for name, vals := range fields {
		out.Fields[name] = vals
	}
	return out
}

// Candidate is a symbol that survived the funnel filter, carrying its
// enriched series and composite funnel score.
type Candidate struct {
	Symbol string
	Series *Series
	Score  int
}

// Match is a candidate that passed every pattern gate.
type Match struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// VolumeLeader is a symbol ranked by recent buying pressure.
type VolumeLeader struct {
	Symbol string
	Name   string
	Score  float64
}
