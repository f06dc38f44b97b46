// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// DataStore defines persistence for the bar cache and run results.
type DataStore interface {
	// Bar cache
	SaveBars(ctx context.Context, symbol string, bars []models.Bar) error
	GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error)
	LastBarDate(ctx context.Context, symbol string) (time.Time, error)

	// Run results
	SaveScan(ctx context.Context, scan *ScanRecord) error
	RecentScans(ctx context.Context, limit int) ([]ScanRecord, error)
	SaveTuningRun(ctx context.Context, run *TuningRecord) error

	Close() error
}

// ScanRecord is one completed screening run.
type ScanRecord struct {
	ID         int64
	RanAt      time.Time
	Universe   int
	Candidates int
	Matches    []models.Match
}

// TuningRecord is one completed parameter search.
type TuningRecord struct {
	ID         int64
	RanAt      time.Time
	ParamsJSON string
	BestAvg    float64
	Iterations int
	Reason     string
	MatchCount int
}
