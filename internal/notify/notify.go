// Package notify delivers screening reports to downstream channels.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
)

// Notifier delivers a finished report.
type Notifier interface {
	Name() string
	SendReport(ctx context.Context, r *Report) error
}

// Report is the daily screening output handed to delivery.
type Report struct {
	GeneratedAt   time.Time
	UniverseSize  int
	Candidates    int
	Matches       []models.Match
	VolumeLeaders []models.VolumeLeader
	TuningSummary string
}

const maxReportedMatches = 20

// Format renders the report as plain text, one numbered line per match.
func (r *Report) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Daily chart screen %s\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "universe %d, candidates %d\n\n", r.UniverseSize, r.Candidates)

	b.WriteString("-- Pattern matches --\n")
	if len(r.Matches) == 0 {
		b.WriteString("no matching symbols\n")
	} else {
		for i, m := range r.Matches {
			if i == maxReportedMatches {
				fmt.Fprintf(&b, "... and %d more\n", len(r.Matches)-maxReportedMatches)
				break
			}
			fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, m.Name, m.Symbol, m.Reason)
		}
	}

	if len(r.VolumeLeaders) > 0 {
		b.WriteString("\n-- Buying pressure leaders --\n")
		for i, l := range r.VolumeLeaders {
			fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, l.Name, l.Symbol)
		}
	}

	if r.TuningSummary != "" {
		b.WriteString("\n-- Parameter search --\n")
		b.WriteString(r.TuningSummary)
		b.WriteString("\n")
	}
	return b.String()
}

// MultiNotifier fans a report out to several channels, returning the first
// error after attempting all of them.
type MultiNotifier struct {
	channels []Notifier
}

// NewMultiNotifier creates a fan-out notifier.
func NewMultiNotifier(channels ...Notifier) *MultiNotifier {
	return &MultiNotifier{channels: channels}
}

func (m *MultiNotifier) Name() string { return "multi" }

// SendReport sends to every channel; one channel failing does not stop the
// others.
func (m *MultiNotifier) SendReport(ctx context.Context, r *Report) error {
	var firstErr error
	for _, ch := range m.channels {
		if err := ch.SendReport(ctx, r); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", ch.Name(), err)
		}
	}
	return firstErr
}
