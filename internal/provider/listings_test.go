package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

const nasdaqListedSample = `Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares
AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N
ZXZZT|NASDAQ TEST STOCK|G|Y|N|100|N|N
QQQ|Invesco QQQ Trust, Series 1|G|N|N|100|Y|N
BROKENLINE|only two fields
File Creation Time: 0829202522:01|||||||
`

const otherListedSample = `ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol
A|Agilent Technologies Inc.|N|A|N|100|N|A
BRK.B|Berkshire Hathaway Inc.|N|BRK B|N|100|N|BRK.B
SPY|SPDR S&P 500 ETF Trust|P|SPY|Y|100|N|SPY
`

func TestParsePipeTextNasdaqLayout(t *testing.T) {
	rows := parsePipeText(nasdaqListedSample, []string{"Symbol"}, nil, "Q")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Symbol != "AAPL" || rows[0].Exchange != "Q" || rows[0].IsETF {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].Symbol != "QQQ" || !rows[1].IsETF {
		t.Fatalf("expected QQQ flagged as ETF, got %+v", rows[1])
	}
}

func TestParsePipeTextOtherLayout(t *testing.T) {
	rows := parsePipeText(otherListedSample,
		[]string{"NASDAQ Symbol", "CQS Symbol", "ACT Symbol"}, []string{"Exchange"}, "")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Symbol != "A" || rows[0].Exchange != "N" {
		t.Fatalf("unexpected NYSE row: %+v", rows[0])
	}
	if rows[1].Symbol != "BRK.B" {
		t.Fatalf("expected the NASDAQ Symbol column to win, got %+v", rows[1])
	}
	if rows[2].Symbol != "SPY" || rows[2].Exchange != "P" || !rows[2].IsETF {
		t.Fatalf("unexpected Arca ETF row: %+v", rows[2])
	}
}

func TestParsePipeTextDegenerateInput(t *testing.T) {
	if rows := parsePipeText("", []string{"Symbol"}, nil, "Q"); rows != nil {
		t.Fatalf("expected nil for empty feed, got %+v", rows)
	}
	if rows := parsePipeText("Symbol|ETF\n", []string{"Symbol"}, nil, "Q"); rows != nil {
		t.Fatalf("expected nil for header-only feed, got %+v", rows)
	}
}

func TestNasdaqListedFetch(t *testing.T) {
	p := NewListingsProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client.SetTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/dynamic/symdir/nasdaqlisted.txt" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(nasdaqListedSample)),
			Header:     make(http.Header),
		}, nil
	}))

	rows, err := p.NasdaqListed(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 || rows[0].Symbol != "AAPL" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestListingsFetchBadStatus(t *testing.T) {
	p := NewListingsProvider(trace.NewNoopTracerProvider().Tracer("test"))
	p.client.SetRetryCount(0)
	p.client.SetTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(bytes.NewBufferString("maintenance")),
			Header:     make(http.Header),
		}, nil
	}))

	if _, err := p.OtherListed(context.Background()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
