// Package feed retrieves daily bar series for the screening universe. The
// analysis core only ever sees complete Series values; everything about
// transport and caching stays here.
package feed

import (
	"context"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// BarProvider fetches a daily series for one symbol covering roughly the
// last days calendar days.
type BarProvider interface {
	Name() string
	Daily(ctx context.Context, symbol string, days int) (*models.Series, error)
}
