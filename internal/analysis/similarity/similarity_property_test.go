package similarity

import (
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/indicators"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Property: for any valid series the similarity score is a scalar in [0, 1]
// and is a pure function of its input.

// enrichedSeriesGen generates series of 60-120 bars with positive prices and
// the moving-average fields the scorer consumes.
func enrichedSeriesGen() gopter.Gen {
	return gen.IntRange(60, 120).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gen.SliceOfN(n, gen.Float64Range(10.0, 500.0)).Map(func(closes []float64) *models.Series {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			bars := make([]models.Bar, len(closes))
			for i, c := range closes {
				bars[i] = models.Bar{
					Date:   base.AddDate(0, 0, i),
					Open:   c,
					High:   c * 1.02,
					Low:    c * 0.98,
					Close:  c,
					Volume: 10000,
				}
			}
			s := &models.Series{Symbol: "GEN", Bars: bars}
			return indicators.Enrich(s, indicators.DefaultConfig())
		})
	}, reflect.TypeOf(&models.Series{}))
}

func TestProperty_ScoreWithinUnitInterval(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("similarity score is within [0, 1]", prop.ForAll(
		func(s *models.Series) bool {
			score := Score(s)
			return score >= 0 && score <= 1
		},
		enrichedSeriesGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_ScoreDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("scoring the same series twice yields the same value", prop.ForAll(
		func(s *models.Series) bool {
			return Score(s) == Score(s)
		},
		enrichedSeriesGen(),
	))

	properties.TestingRun(t)
}
