package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jujojujoju/auto-chart-analysis/internal/errors"
	"github.com/jujojujoju/auto-chart-analysis/internal/models"
	"github.com/jujojujoju/auto-chart-analysis/pkg/utils"
)

// YahooProvider implements BarProvider using the Yahoo Finance chart API.
type YahooProvider struct {
	client *http.Client
	retry  utils.RetryConfig
}

// NewYahooProvider creates a Yahoo Finance bar provider.
func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		client: &http.Client{Timeout: 30 * time.Second},
		retry:  utils.DefaultRetryConfig(),
	}
}

func (p *YahooProvider) Name() string { return "yahoo" }

// yahooChart is the response structure from the Yahoo Finance chart API.
// Price arrays carry null for halted days, hence the interface{} elements.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Daily fetches a daily bar series covering roughly the last days calendar
// days, with retry on transient failures.
func (p *YahooProvider) Daily(ctx context.Context, symbol string, days int) (*models.Series, error) {
	rng := rangeParam(days)
	body, err := utils.RetryWithResult(ctx, p.retry, func() ([]byte, error) {
		return p.fetchChart(ctx, symbol, "1d", rng)
	})
	if err != nil {
		return nil, errors.NewDataError("ohlcv", symbol, "fetch failed", err)
	}
	return decodeChart(symbol, body)
}

func rangeParam(days int) string {
	switch {
	case days <= 31:
		return "1mo"
	case days <= 186:
		return "6mo"
	case days <= 366:
		return "1y"
	case days <= 732:
		return "2y"
	case days <= 1830:
		return "5y"
	default:
		return "10y"
	}
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, interval, rng string) ([]byte, error) {
	u := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=%s&range=%s",
		url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	return body, nil
}

func decodeChart(symbol string, body []byte) (*models.Series, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errors.NewDataError("ohlcv", symbol, "no data returned", errors.ErrDataNotFound)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.NewDataError("ohlcv", symbol, "no quote data", errors.ErrDataNotFound)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o, okO := at(quote.Open, i)
		h, okH := at(quote.High, i)
		l, okL := at(quote.Low, i)
		c, okC := at(quote.Close, i)
		v, okV := at(quote.Volume, i)
		if !okO || !okH || !okL || !okC || !okV {
			continue // halted or padded day
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: v,
		})
	}
	return models.NewSeries(symbol, bars)
}

func at(arr []interface{}, i int) (float64, bool) {
	if i >= len(arr) || arr[i] == nil {
		return 0, false
	}
	return toFloat(arr[i])
}
