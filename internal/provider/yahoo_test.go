package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func chartJSON(t *testing.T, closes []float64, volume float64) string {
	t.Helper()
	timestamps := make([]int64, len(closes))
	volumes := make([]float64, len(closes))
	for i := range closes {
		timestamps[i] = 1756100000 + int64(i)*86400
		volumes[i] = volume
	}
	payload := map[string]any{
		"chart": map[string]any{
			"result": []any{map[string]any{
				"timestamp": timestamps,
				"indicators": map[string]any{
					"quote": []any{map[string]any{
						"open":   closes,
						"high":   closes,
						"low":    closes,
						"close":  closes,
						"volume": volumes,
					}},
				},
			}},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal chart fixture: %v", err)
	}
	return string(raw)
}

func TestYahooDailyBars(t *testing.T) {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/v8/finance/chart/AAPL" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if got := req.URL.Query().Get("range"); got != "3mo" {
			t.Fatalf("expected 3mo range for 90 days, got %s", got)
		}
		body := `{"chart":{"result":[{"timestamp":[1756100000,1756186400,1756272800],
			"indicators":{"quote":[{"open":[99,0,101],"high":[101,0,103],"low":[98,0,100],
			"close":[100,0,102],"volume":[1000000,0,1200000]}]}}]}}`
		return jsonResponse(body), nil
	})}

	bars, err := p.DailyBars(context.Background(), "AAPL", 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected the zero close to be dropped, got %d bars", len(bars))
	}
	if bars[0].Close != 100 || bars[1].Close != 102 {
		t.Fatalf("unexpected closes: %+v", bars)
	}
	if bars[1].Volume != 1200000 {
		t.Fatalf("unexpected volume: %f", bars[1].Volume)
	}
}

func TestYahooDailyBarsRangeSelection(t *testing.T) {
	var gotRange string
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotRange = req.URL.Query().Get("range")
		return jsonResponse(chartJSON(t, []float64{100, 101}, 1e6)), nil
	})}

	for _, tc := range []struct {
		days int
		want string
	}{
		{60, "3mo"}, {180, "6mo"}, {365, "1y"},
	} {
		if _, err := p.DailyBars(context.Background(), "MSFT", tc.days); err != nil {
			t.Fatalf("unexpected error for %d days: %v", tc.days, err)
		}
		if gotRange != tc.want {
			t.Fatalf("days=%d: expected range %s, got %s", tc.days, tc.want, gotRange)
		}
	}
}

func TestYahooDailyBarsChartError(t *testing.T) {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"chart":{"result":[],"error":{"description":"No data found"}}}`), nil
	})}

	if _, err := p.DailyBars(context.Background(), "NOPE", 90); err == nil {
		t.Fatal("expected chart error to surface")
	} else if !strings.Contains(err.Error(), "No data found") {
		t.Fatalf("expected upstream description in error, got %v", err)
	}
}

func TestYahooMarketContextRiskLabels(t *testing.T) {
	// QQQ closing below its 20-day average with a -3% five-day slide, VIX
	// at 28: both legs should label HIGH.
	qqqCloses := make([]float64, 30)
	for i := range qqqCloses {
		qqqCloses[i] = 500
	}
	copy(qqqCloses[25:], []float64{498, 496, 494, 490, 485})
	vixCloses := []float64{18, 19, 22, 26, 28}

	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.Path, "QQQ"):
			return jsonResponse(chartJSON(t, qqqCloses, 5e7)), nil
		case strings.Contains(req.URL.Path, "^VIX"):
			return jsonResponse(chartJSON(t, vixCloses, 0)), nil
		default:
			return nil, fmt.Errorf("unexpected path %s", req.URL.Path)
		}
	})}

	mc, err := p.MarketContext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.QQQRisk != domain.RiskHigh {
		t.Fatalf("expected HIGH QQQ risk, got %s", mc.QQQRisk)
	}
	if mc.VIXRisk != domain.RiskHigh {
		t.Fatalf("expected HIGH VIX risk at 28, got %s", mc.VIXRisk)
	}
	if mc.QQQRet5D > -2.9 || mc.QQQRet5D < -3.1 {
		t.Fatalf("expected five-day return near -3%%, got %f", mc.QQQRet5D)
	}
	if mc.VIXLevel != 28 {
		t.Fatalf("unexpected VIX level: %f", mc.VIXLevel)
	}
}

func TestYahooMarketContextCalmRegime(t *testing.T) {
	qqqCloses := make([]float64, 30)
	for i := range qqqCloses {
		qqqCloses[i] = 500 + float64(i) // steady uptrend keeps price above MA20
	}
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if strings.Contains(req.URL.Path, "QQQ") {
			return jsonResponse(chartJSON(t, qqqCloses, 5e7)), nil
		}
		return jsonResponse(chartJSON(t, []float64{14, 14.5, 15}, 0)), nil
	})}

	mc, err := p.MarketContext(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.QQQRisk != domain.RiskLow || mc.VIXRisk != domain.RiskLow {
		t.Fatalf("expected LOW/LOW, got %s/%s", mc.QQQRisk, mc.VIXRisk)
	}
}

func TestYahooFetchProfile(t *testing.T) {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.HasPrefix(req.URL.Path, "/v10/finance/quoteSummary/NVDA") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"quoteSummary":{"result":[{
			"price":{"longName":"NVIDIA Corporation"},
			"assetProfile":{"sector":"Technology","industry":"Semiconductors"},
			"summaryDetail":{"trailingPE":{"raw":55.2},"marketCap":{"raw":3.1e12}},
			"financialData":{"revenueGrowth":{"raw":0.62},"earningsGrowth":{"raw":0.78},
			"profitMargins":{"raw":0.49},"returnOnEquity":{"raw":0.91},"debtToEquity":{"raw":17.2}}}]}}`
		return jsonResponse(body), nil
	})}

	profile, err := p.fetchProfile(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.name != "NVIDIA Corporation" || profile.sector != "Technology" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.fundamentals.PERatio != 55.2 || profile.fundamentals.RevenueGrowth != 0.62 {
		t.Fatalf("unexpected fundamentals: %+v", profile.fundamentals)
	}
}

func TestYahooFetchProfileEmptyResult(t *testing.T) {
	p := NewYahooProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, nil)
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"quoteSummary":{"result":[]}}`), nil
	})}

	if _, err := p.fetchProfile(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for empty profile result")
	}
}
