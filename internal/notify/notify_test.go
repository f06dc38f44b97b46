package notify

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

func TestFormatEmptyReport(t *testing.T) {
	r := &Report{
		GeneratedAt:  time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		UniverseSize: 120,
		Candidates:   14,
	}
	got := r.Format()

	if !strings.Contains(got, "2024-06-03") {
		t.Errorf("report missing date:\n%s", got)
	}
	if !strings.Contains(got, "universe 120, candidates 14") {
		t.Errorf("report missing counts:\n%s", got)
	}
	if !strings.Contains(got, "no matching symbols") {
		t.Errorf("empty report should say so:\n%s", got)
	}
}

func TestFormatNumbersMatches(t *testing.T) {
	r := &Report{
		GeneratedAt: time.Now(),
		Matches: []models.Match{
			{Symbol: "AAA", Name: "Alpha", Reason: "transition onset"},
			{Symbol: "BBB", Name: "Beta", Reason: "transition onset"},
		},
		VolumeLeaders: []models.VolumeLeader{{Symbol: "CCC", Name: "Gamma", Score: 1}},
	}
	got := r.Format()

	if !strings.Contains(got, "1. Alpha (AAA): transition onset") {
		t.Errorf("first match line missing:\n%s", got)
	}
	if !strings.Contains(got, "2. Beta (BBB)") {
		t.Errorf("second match line missing:\n%s", got)
	}
	if !strings.Contains(got, "1. Gamma (CCC)") {
		t.Errorf("volume leader line missing:\n%s", got)
	}
}

func TestFormatCapsMatchLines(t *testing.T) {
	r := &Report{GeneratedAt: time.Now()}
	for i := 0; i < 25; i++ {
		r.Matches = append(r.Matches, models.Match{
			Symbol: fmt.Sprintf("S%02d", i),
			Name:   fmt.Sprintf("S%02d", i),
			Reason: "x",
		})
	}
	got := r.Format()

	if !strings.Contains(got, "... and 5 more") {
		t.Errorf("overflow line missing:\n%s", got)
	}
	if strings.Contains(got, "21. ") {
		t.Errorf("more than %d match lines rendered:\n%s", maxReportedMatches, got)
	}
}

type fakeChannel struct {
	name string
	err  error
	sent int
}

func (f *fakeChannel) Name() string { return f.name }
func (f *fakeChannel) SendReport(ctx context.Context, r *Report) error {
	f.sent++
	return f.err
}

func TestMultiNotifierAttemptsAllChannels(t *testing.T) {
	bad := &fakeChannel{name: "bad", err: fmt.Errorf("boom")}
	good := &fakeChannel{name: "good"}

	m := NewMultiNotifier(bad, good)
	err := m.SendReport(context.Background(), &Report{GeneratedAt: time.Now()})

	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Errorf("err = %v, want the failing channel named", err)
	}
	if good.sent != 1 {
		t.Error("a failing channel must not stop later channels")
	}
}
