package funnel

import (
	"sort"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// TopByBuyingPressure ranks symbols by up-day volume over the last days bars
// and returns the top n. Up-day volume is the summed volume of bars closing
// above their open; when a symbol has no up-day volume its total volume is
// used instead so thinly traded symbols still rank.
func TopByBuyingPressure(universe []*models.Series, names map[string]string, n, days int) []models.VolumeLeader {
	leaders := make([]models.VolumeLeader, 0, len(universe))
	for _, s := range universe {
		if s == nil || s.Len() == 0 {
			continue
		}
		start := s.Len() - days
		if start < 0 {
			start = 0
		}
		var totalVol, buyVol float64
		for _, b := range s.Bars[start:] {
			if !b.Numeric() {
				continue
			}
			totalVol += b.Volume
			if b.Close > b.Open {
				buyVol += b.Volume
			}
		}
		score := buyVol
		if score <= 0 {
			score = totalVol
		}
		name := names[s.Symbol]
		if name == "" {
			name = s.Symbol
		}
		leaders = append(leaders, models.VolumeLeader{Symbol: s.Symbol, Name: name, Score: score})
	}
	sort.SliceStable(leaders, func(i, j int) bool {
		return leaders[i].Score > leaders[j].Score
	})
	if len(leaders) > n {
		leaders = leaders[:n]
	}
	return leaders
}
