package gasreport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PriceFetcher reads token quotes from the CoinMarketCap API.
type PriceFetcher struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPriceFetcher creates a fetcher for the API at baseURL.
func NewPriceFetcher(baseURL, apiKey string, logger *slog.Logger) *PriceFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceFetcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type quotesResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data map[string]struct {
		Quote map[string]struct {
			Price float64 `json:"price"`
		} `json:"quote"`
	} `json:"data"`
}

// Price returns the price of token in currency.
func (p *PriceFetcher) Price(ctx context.Context, token, currency string) (float64, error) {
	token = strings.ToUpper(token)
	currency = strings.ToUpper(currency)

	q := url.Values{}
	q.Set("symbol", token)
	q.Set("convert", currency)
	endpoint := p.baseURL + "/v1/cryptocurrency/quotes/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var out quotesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return 0, fmt.Errorf("price request returned HTTP %d", resp.StatusCode)
		}
		return 0, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if out.Status.ErrorCode != 0 || resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("coinmarketcap error %d: %s", out.Status.ErrorCode, out.Status.ErrorMessage)
	}

	quote, ok := out.Data[token].Quote[currency]
	if !ok {
		return 0, fmt.Errorf("no %s quote for %s", currency, token)
	}

	p.logger.Debug("fetched token price",
		slog.String("token", token),
		slog.String("currency", currency),
		slog.Float64("price", quote.Price),
	)
	return quote.Price, nil
}
