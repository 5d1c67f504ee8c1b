// Package yahoo fetches OHLCV candles from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	drepo "MarketDash/internal/domain/repository"
	xhttp "MarketDash/pkg/http"
	applogger "MarketDash/pkg/logger"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const providerName = "yahoo"

type Config struct {
	BaseURL        string
	ExchangeSuffix string
	Aliases        map[string]string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RequestsPerSec float64
	Burst          int
	// MockFallback serves synthetic candles after upstream failure.
	MockFallback bool
	UserAgent    string
}

// Client implements repository.MarketDataProvider.
type Client struct {
	cfg       Config
	http      *xhttp.Client
	limiter   *rate.Limiter
	symbols   *SymbolMapper
	synthetic Synthetic
	logger    *applogger.Logger
	metrics   drepo.Metrics
	now       func() time.Time
}

var _ drepo.MarketDataProvider = (*Client)(nil)

func New(cfg Config, logger *applogger.Logger, metrics drepo.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	if metrics == nil {
		metrics = drepo.NopMetrics{}
	}
	return &Client{
		cfg:     cfg,
		http:    xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		symbols: NewSymbolMapper(cfg.Aliases, cfg.ExchangeSuffix),
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// GetHistory returns candles with timestamps in [from, to].
func (c *Client) GetHistory(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	params := url.Values{
		"period1":        {strconv.FormatInt(from.Unix(), 10)},
		"period2":        {strconv.FormatInt(to.Unix(), 10)},
		"interval":       {Interval(tf)},
		"includePrePost": {"false"},
	}
	candles, err := c.fetch(ctx, symbol, tf, params)
	if err != nil {
		if c.useFallback(err) {
			c.logger.Warn("serving synthetic history",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			c.metrics.RecordUpstream(providerName, "synthetic")
			return c.synthetic.History(symbol, tf, from, to), nil
		}
		return nil, err
	}

	out := candles[:0]
	for _, k := range candles {
		if !k.Timestamp.Before(from) && !k.Timestamp.After(to) {
			out = append(out, k)
		}
	}
	return out, nil
}

// GetQuote returns the most recent bar at the given resolution.
func (c *Client) GetQuote(ctx context.Context, symbol string, tf models.Timeframe) (*models.Candle, error) {
	params := url.Values{
		"range":          {quoteRange(tf)},
		"interval":       {Interval(tf)},
		"includePrePost": {"false"},
	}
	candles, err := c.fetch(ctx, symbol, tf, params)
	if err == nil && len(candles) == 0 {
		err = fmt.Errorf("no recent %s bars for %s: %w", tf, symbol, domain.ErrDataUnavailable)
	}
	if err != nil {
		if !c.useFallback(err) {
			return nil, err
		}
		c.logger.Warn("serving synthetic quote",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		c.metrics.RecordUpstream(providerName, "synthetic")
		now := c.now().UTC()
		candles = c.synthetic.History(symbol, tf, now.Add(-tf.LookbackFor(5)), now)
		if len(candles) == 0 {
			return nil, err
		}
	}
	last := candles[len(candles)-1]
	return &last, nil
}

func (c *Client) useFallback(err error) bool {
	return c.cfg.MockFallback && errors.Is(err, domain.ErrDataUnavailable)
}

// fetch calls the chart endpoint with a constant-delay retry. Transport
// errors, 5xx and 429 are retried; everything else fails immediately.
func (c *Client) fetch(ctx context.Context, symbol string, tf models.Timeframe, params url.Values) ([]models.Candle, error) {
	yahooSymbol := c.symbols.Resolve(symbol)
	opts := &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.cfg.BaseURL + "/v8/finance/chart/" + url.PathEscape(yahooSymbol),
		QueryParams: params,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	}
	if c.cfg.UserAgent != "" {
		opts.Headers["User-Agent"] = c.cfg.UserAgent
	}

	start := time.Now()
	attempt := 0
	var resp chartResponse
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		resp = chartResponse{}
		err := c.http.SendAndParse(ctx, opts, &resp)
		if err == nil {
			return nil
		}

		var se *xhttp.StatusError
		if errors.As(err, &se) {
			if se.StatusCode == http.StatusNotFound {
				return backoff.Permanent(fmt.Errorf("%s: %w", yahooSymbol, domain.ErrSymbolNotFound))
			}
			if !se.Temporary() {
				return backoff.Permanent(err)
			}
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		c.logger.Debug("chart request failed, retrying",
			applogger.String("symbol", yahooSymbol),
			applogger.Int("attempt", attempt),
			applogger.Error(err),
		)
		return err
	}

	var policy backoff.BackOff = backoff.NewConstantBackOff(c.cfg.RetryDelay)
	policy = backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.cfg.MaxRetries)), ctx)
	err := backoff.Retry(operation, policy)
	c.metrics.RecordLatency("yahoo_chart", time.Since(start).Seconds())

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSymbolNotFound):
			c.metrics.RecordUpstream(providerName, "not_found")
			return nil, err
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		}
		c.metrics.RecordUpstream(providerName, "error")
		c.logger.Error("chart request failed",
			applogger.String("symbol", yahooSymbol),
			applogger.Int("attempts", attempt),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch %s: %w: %w", yahooSymbol, domain.ErrDataUnavailable, err)
	}

	if e := resp.Chart.Error; e != nil {
		if e.Code == "Not Found" {
			c.metrics.RecordUpstream(providerName, "not_found")
			return nil, fmt.Errorf("%s: %s: %w", yahooSymbol, e.Description, domain.ErrSymbolNotFound)
		}
		c.metrics.RecordUpstream(providerName, "error")
		return nil, fmt.Errorf("fetch %s: %s: %w", yahooSymbol, e.Description, domain.ErrDataUnavailable)
	}
	c.metrics.RecordUpstream(providerName, "ok")
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	candles := resp.Chart.Result[0].candles(symbol, tf)
	c.logger.Debug("chart fetched",
		applogger.String("symbol", yahooSymbol),
		applogger.String("interval", Interval(tf)),
		applogger.Int("candles", len(candles)),
		applogger.Duration("duration", time.Since(start)),
	)
	return candles, nil
}
