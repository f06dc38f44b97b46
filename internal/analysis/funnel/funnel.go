// Package funnel bounds an unlimited symbol universe to a small ranked
// candidate set using a cheap composite score, ahead of the expensive
// pattern matcher.
package funnel

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/indicators"
	"github.com/jujojujoju/auto-chart-analysis/internal/logging"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Config holds the funnel filter thresholds.
type Config struct {
	MaxCandidates   int
	MinBars         int
	DisplacementMin float64
	DisplacementMax float64
	SweetSpotMin    float64
	SweetSpotMax    float64
	VolumeMult      float64
	VolumeShortDays int
	VolumeLongDays  int
	CrossoverDays   int
	Workers         int
}

// DefaultConfig returns the standard funnel thresholds.
func DefaultConfig() Config {
	return Config{
		MaxCandidates:   50,
		MinBars:         200,
		DisplacementMin: 0.85,
		DisplacementMax: 1.20,
		SweetSpotMin:    0.95,
		SweetSpotMax:    1.08,
		VolumeMult:      1.2,
		VolumeShortDays: 5,
		VolumeLongDays:  20,
		CrossoverDays:   20,
		Workers:         8,
	}
}

// Funnel ranks enriched series by composite score and truncates to a bound.
type Funnel struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a funnel filter.
func New(cfg Config, logger zerolog.Logger) *Funnel {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Funnel{cfg: cfg, logger: logger}
}

type scored struct {
	index int
	score int
	keep  bool
}

// Screen scores every series concurrently and returns at most MaxCandidates
// candidates ranked by score descending. The input slice order is the
// canonical enumeration order: ties keep it, so results are deterministic
// regardless of worker interleaving.
func (f *Funnel) Screen(ctx context.Context, universe []*models.Series) []models.Candidate {
	results := make([]scored, len(universe))

	var wg sync.WaitGroup
	work := make(chan int, len(universe))
	for w := 0; w < f.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}
				score, keep := f.scoreSeries(universe[i])
				results[i] = scored{index: i, score: score, keep: keep}
			}
		}()
	}
	for i := range universe {
		work <- i
	}
	close(work)
	wg.Wait()

	kept := make([]scored, 0, len(results))
	for _, r := range results {
		if r.keep {
			kept = append(kept, r)
		}
	}
	// Stable: equal scores preserve canonical input order.
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})
	if len(kept) > f.cfg.MaxCandidates {
		kept = kept[:f.cfg.MaxCandidates]
	}

	out := make([]models.Candidate, len(kept))
	for i, r := range kept {
		out[i] = models.Candidate{
			Symbol: universe[r.index].Symbol,
			Series: universe[r.index],
			Score:  r.score,
		}
	}
	logging.LogFunnel(f.logger, len(universe), len(out))
	return out
}

// scoreSeries computes the composite score for one series and whether the
// series qualifies at all. At least one structural signal (crossover or
// alignment) is mandatory; a volume spike alone never qualifies.
func (f *Funnel) scoreSeries(s *models.Series) (int, bool) {
	if s.Len() < f.cfg.MinBars {
		f.logger.Debug().Str("symbol", s.Symbol).Int("bars", s.Len()).Msg("insufficient data")
		return 0, false
	}

	short, medium, long := indicators.SMAField(50), indicators.SMAField(100), indicators.SMAField(200)
	crossed := indicators.CrossedAbove(s, short, long, f.cfg.CrossoverDays)
	aligned := indicators.Aligned(s, short, medium, long)
	disp := indicators.Displacement(s, long)

	if disp.Known && (disp.V < f.cfg.DisplacementMin || disp.V > f.cfg.DisplacementMax) {
		return 0, false
	}
	if !crossed && !aligned {
		return 0, false
	}

	score := 0
	if crossed {
		score += 2
	}
	if aligned {
		score += 2
	}
	if volumeSurge(s, f.cfg.VolumeShortDays, f.cfg.VolumeLongDays, f.cfg.VolumeMult) {
		score++
	}
	if disp.InRange(f.cfg.SweetSpotMin, f.cfg.SweetSpotMax) {
		score++
	}
	return score, true
}

// volumeSurge reports whether the trailing shortDays average volume is at
// least mult times the trailing longDays average volume.
func volumeSurge(s *models.Series, shortDays, longDays int, mult float64) bool {
	n := s.Len()
	if n < longDays || shortDays <= 0 || longDays <= 0 {
		return false
	}
	short := meanVolume(s.Bars[n-shortDays:])
	long := meanVolume(s.Bars[n-longDays:])
	if long <= 0 {
		return false
	}
	return short >= mult*long
}

func meanVolume(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var sum float64
	for _, b := range bars {
		if b.Numeric() {
			sum += b.Volume
		}
	}
	return sum / float64(len(bars))
}
