package feed

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jujojujoju/auto-chart-analysis/internal/models"
	"github.com/jujojujoju/auto-chart-analysis/internal/store"
)

func TestDecodeChartSkipsHaltedDays(t *testing.T) {
	body := []byte(`{
		"chart": {
			"result": [{
				"timestamp": [1704067200, 1704153600, 1704240000],
				"indicators": {
					"quote": [{
						"open":   [100.0, null, 102.0],
						"high":   [101.0, null, 103.0],
						"low":    [99.0,  null, 101.0],
						"close":  [100.5, null, 102.5],
						"volume": [10000, null, 12000]
					}]
				}
			}],
			"error": null
		}
	}`)

	s, err := decodeChart("AAA", body)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d bars, want 2 with the halted day dropped", s.Len())
	}
	if s.Bars[0].Close != 100.5 || s.Bars[1].Close != 102.5 {
		t.Errorf("closes = %v, %v; want 100.5, 102.5", s.Bars[0].Close, s.Bars[1].Close)
	}
}

func TestDecodeChartAPIError(t *testing.T) {
	body := []byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`)
	if _, err := decodeChart("MISSING", body); err == nil {
		t.Fatal("expected an error for an API error payload")
	}
}

func TestDecodeChartEmptyResult(t *testing.T) {
	body := []byte(`{"chart":{"result":[],"error":null}}`)
	if _, err := decodeChart("EMPTY", body); err == nil {
		t.Fatal("expected an error for an empty result")
	}
}

func TestRangeParam(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{10, "1mo"},
		{90, "6mo"},
		{365, "1y"},
		{730, "2y"},
		{1095, "5y"},
		{3650, "10y"},
	}
	for _, c := range cases {
		if got := rangeParam(c.days); got != c.want {
			t.Errorf("rangeParam(%d) = %s, want %s", c.days, got, c.want)
		}
	}
}

// fakeProvider serves canned series and records failures.
type fakeProvider struct {
	fail map[string]bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Daily(ctx context.Context, symbol string, days int) (*models.Series, error) {
	if f.fail[symbol] {
		return nil, fmt.Errorf("%s: unavailable", symbol)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 5)
	for i := range bars {
		bars[i] = models.Bar{
			Date: base.AddDate(0, 0, i),
			Open: 100, High: 101, Low: 99, Close: 100, Volume: 1000,
		}
	}
	return models.NewSeries(symbol, bars)
}

func TestFetchAllKeepsCanonicalOrder(t *testing.T) {
	u := NewUniverse([]string{"AAA", "BBB", "CCC", "DDD"}, nil)
	provider := &fakeProvider{fail: map[string]bool{"BBB": true}}

	got := FetchAll(context.Background(), provider, u, 30, 3, zerolog.Nop())

	want := []string{"AAA", "CCC", "DDD"}
	if len(got) != len(want) {
		t.Fatalf("got %d series, want %d", len(got), len(want))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("series[%d] = %s, want %s: canonical order must hold", i, got[i].Symbol, sym)
		}
	}
}

// fakeStore is an in-memory DataStore for cache tests.
type fakeStore struct {
	bars     map[string][]models.Bar
	lastDate map[string]time.Time
	saves    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{bars: map[string][]models.Bar{}, lastDate: map[string]time.Time{}}
}

func (f *fakeStore) SaveBars(ctx context.Context, symbol string, bars []models.Bar) error {
	f.saves++
	f.bars[symbol] = bars
	if len(bars) > 0 {
		f.lastDate[symbol] = bars[len(bars)-1].Date
	}
	return nil
}

func (f *fakeStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	return f.bars[symbol], nil
}

func (f *fakeStore) LastBarDate(ctx context.Context, symbol string) (time.Time, error) {
	return f.lastDate[symbol], nil
}

func (f *fakeStore) SaveScan(ctx context.Context, scan *store.ScanRecord) error      { return nil }
func (f *fakeStore) RecentScans(ctx context.Context, limit int) ([]store.ScanRecord, error) {
	return nil, nil
}
func (f *fakeStore) SaveTuningRun(ctx context.Context, run *store.TuningRecord) error { return nil }
func (f *fakeStore) Close() error                                                     { return nil }

func TestCachingProviderServesFreshCache(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	inner := &fakeProvider{}

	// Seed the cache with a current bar.
	now := time.Now().UTC()
	st.bars["AAA"] = []models.Bar{{Date: now.Add(-time.Hour), Open: 1, High: 2, Low: 1, Close: 2, Volume: 10}}
	st.lastDate["AAA"] = now.Add(-time.Hour)

	p := NewCachingProvider(inner, st, 24*time.Hour, zerolog.Nop())
	s, err := p.Daily(ctx, "AAA", 30)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Errorf("got %d bars, want the 1 cached bar", s.Len())
	}
	if st.saves != 0 {
		t.Error("a fresh cache hit must not trigger a fetch and re-save")
	}
}

func TestCachingProviderFetchesWhenStale(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	inner := &fakeProvider{}

	p := NewCachingProvider(inner, st, 24*time.Hour, zerolog.Nop())
	s, err := p.Daily(ctx, "AAA", 30)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 5 {
		t.Errorf("got %d bars, want 5 freshly fetched", s.Len())
	}
	if st.saves != 1 {
		t.Errorf("saves = %d, want the fetched bars cached once", st.saves)
	}
}

func TestCachingProviderServesStaleOnFetchError(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	inner := &fakeProvider{fail: map[string]bool{"AAA": true}}

	stale := time.Now().UTC().AddDate(0, 0, -10)
	st.bars["AAA"] = []models.Bar{{Date: stale, Open: 1, High: 2, Low: 1, Close: 2, Volume: 10}}
	st.lastDate["AAA"] = stale

	p := NewCachingProvider(inner, st, 24*time.Hour, zerolog.Nop())
	s, err := p.Daily(ctx, "AAA", 30)
	if err != nil {
		t.Fatalf("stale cache should be served when the fetch fails, got error: %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("got %d bars, want the 1 stale bar", s.Len())
	}
}
