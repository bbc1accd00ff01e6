package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"LeverageGauge/internal/logger"
	"LeverageGauge/internal/metrics"

	"github.com/sirupsen/logrus"
)

const (
	FunctionDailySeries = "TIME_SERIES_DAILY"
	FunctionOverview    = "OVERVIEW"

	// DailySeriesKey is where TIME_SERIES_DAILY keeps its dated price map.
	DailySeriesKey = "Time Series (Daily)"
)

var (
	ErrNoCredential = errors.New("no API credential configured")
	ErrRateLimited  = errors.New("provider rate limit or notice")
)

// markerFields signal a rate limit or error even on HTTP 200.
var markerFields = []string{"Note", "Information", "Error Message"}

// AlphaVantageFetcher implements Fetcher against an Alpha Vantage style
// query API authenticated by an apikey query parameter.
type AlphaVantageFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Metrics *metrics.Metrics
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration, m *metrics.Metrics) *AlphaVantageFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AlphaVantageFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		Metrics: m,
	}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

func (f *AlphaVantageFetcher) HasCredential() bool { return f.APIKey != "" }

// Query performs one call. The failure reason is logged and counted, never
// returned.
func (f *AlphaVantageFetcher) Query(ctx context.Context, req Request) (Payload, bool) {
	payload, err := f.fetch(ctx, req)
	if err != nil {
		result := "error"
		switch {
		case errors.Is(err, ErrNoCredential):
			result = "no_credential"
		case errors.Is(err, ErrRateLimited):
			result = "rate_limited"
		}
		f.Metrics.ObserveProvider(req.Function, result)
		logger.WithFields(logrus.Fields{
			"function": req.Function,
			"symbol":   req.Symbol,
		}).Warnf("provider call failed: %v", err)
		return nil, false
	}
	f.Metrics.ObserveProvider(req.Function, "ok")
	return payload, true
}

func (f *AlphaVantageFetcher) fetch(ctx context.Context, req Request) (Payload, error) {
	if !f.HasCredential() {
		return nil, ErrNoCredential
	}

	q := url.Values{}
	for k, vs := range req.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("function", req.Function)
	if req.Symbol != "" {
		q.Set("symbol", req.Symbol)
	}
	q.Set("apikey", f.APIKey)

	endpoint := f.BaseURL + "/query?" + q.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", redactKey(err, f.APIKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for _, field := range markerFields {
		if msg, ok := payload[field]; ok {
			return nil, fmt.Errorf("%w: %s: %v", ErrRateLimited, field, msg)
		}
	}
	return payload, nil
}

func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "***"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
