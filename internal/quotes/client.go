package quotes

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/ledger"
)

// Source provides the latest market price for an instrument. Implementations
// own their own retry and staleness policy.
type Source interface {
	Quote(ctx context.Context, symbol string) (ledger.Quote, error)
}

// Client fetches quotes from the Yahoo Finance chart API.
// It implements Source.
type Client struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter
}

var _ Source = (*Client)(nil)

// NewClient creates a new quote client.
func NewClient(cfg *config.Quotes, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.TimeoutSec) * time.Second)

	// Initialize the rate limiter
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		logger:  logger,
		limiter: limiter,
	}
}

// NormalizeTicker maps common shorthand to Yahoo's symbol conventions,
// e.g. "$VIX" -> "^VIX". Anything that does not look like a ticker is
// passed through unchanged and left to fail at fetch time.
func NormalizeTicker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if len(symbol) > 15 || strings.Contains(symbol, " ") {
		return symbol
	}
	if symbol == "VIX" {
		return "^VIX"
	}
	if strings.HasPrefix(symbol, "$") {
		return "^" + symbol[1:]
	}
	return symbol
}

// chartResponse is the subset of the Yahoo chart payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote fetches the latest price for a symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (ledger.Quote, error) {
	normalized := NormalizeTicker(symbol)

	var payload chartResponse
	req := c.client.R().
		SetContext(ctx).
		SetResult(&payload).
		SetHeader("Accept", "application/json")

	resp, err := c.doRequest(ctx, "GET", "/v8/finance/chart/"+normalized, req)
	if err != nil {
		return ledger.Quote{}, &PriceUnavailableError{Symbol: symbol, Err: err}
	}

	result := resp.Result().(*chartResponse)
	if apiErr := result.Chart.Error; apiErr != nil {
		return ledger.Quote{}, &PriceUnavailableError{
			Symbol: symbol,
			Err:    fmt.Errorf("%s: %s", apiErr.Code, apiErr.Description),
		}
	}
	if len(result.Chart.Result) == 0 || result.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return ledger.Quote{}, &PriceUnavailableError{
			Symbol: symbol,
			Err:    fmt.Errorf("no data for %s", normalized),
		}
	}

	meta := result.Chart.Result[0].Meta
	quote := ledger.Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(meta.RegularMarketPrice),
		AsOf:   time.Unix(meta.RegularMarketTime, 0).UTC(),
	}
	c.logger.Debug("Fetched quote",
		zap.String("symbol", symbol),
		zap.String("price", quote.Price.String()),
	)
	return quote, nil
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.RawResponse != nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
