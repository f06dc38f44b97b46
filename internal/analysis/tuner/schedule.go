package tuner

import (
	"github.com/jujojujoju/auto-chart-analysis/internal/analysis/pattern"
)

// Schedule is an ordered, finite sequence of parameter sets. The controller
// walks it entry by entry; swapping in a smarter search strategy only means
// supplying a different Schedule.
type Schedule interface {
	Params() []pattern.ParamSet
}

// ListSchedule is a Schedule backed by a fixed slice.
type ListSchedule struct {
	sets []pattern.ParamSet
}

// ScheduleOf builds a ListSchedule from explicit parameter sets.
func ScheduleOf(sets ...pattern.ParamSet) *ListSchedule {
	return &ListSchedule{sets: sets}
}

// Params returns a copy of the schedule entries.
func (s *ListSchedule) Params() []pattern.ParamSet {
	out := make([]pattern.ParamSet, len(s.sets))
	copy(out, s.sets)
	return out
}

// DefaultSchedule returns the five-step ladder: the first entry is loosened
// so at least some candidates match, later entries tighten toward the
// reference shape.
func DefaultSchedule() *ListSchedule {
	base := pattern.Defaults()

	step1 := base
	step1.MaxHigherLowCount = 18
	step1.PullbackMin = 0.0
	step1.PullbackMax = 1.0
	step1.SMALongRatio = 0.85
	step1.MaxRSI = 75.0

	step2 := base
	step2.MaxHigherLowCount = 4
	step2.PullbackMin = 0.1
	step2.PullbackMax = 0.85
	step2.SMALongRatio = 0.75

	step3 := base
	step3.MaxHigherLowCount = 3
	step3.PullbackMin = 0.15
	step3.PullbackMax = 0.75
	step3.SMALongRatio = 0.7

	step4 := base
	step4.MaxHigherLowCount = 3
	step4.PullbackMin = 0.2
	step4.PullbackMax = 0.7
	step4.SMALongRatio = 0.65

	step5 := base
	step5.MaxHigherLowCount = 4
	step5.PullbackMin = 0.2
	step5.PullbackMax = 0.7
	step5.MaxRSI = 72.0
	step5.SMALongRatio = 0.7

	return ScheduleOf(step1, step2, step3, step4, step5)
}
