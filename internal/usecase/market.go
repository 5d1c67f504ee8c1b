package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
	domrepo "MarketDash/internal/domain/repository"
	"MarketDash/pkg/cache"
	applogger "MarketDash/pkg/logger"
)

const (
	defaultHistoryWindow = 30 * 24 * time.Hour
	defaultQuoteTTL      = time.Minute
	// maxQuoteFanout bounds concurrent provider calls for one watchlist.
	maxQuoteFanout = 4
)

// MarketConfig tunes caching for market data reads.
type MarketConfig struct {
	QuoteTTL time.Duration
}

// MarketUseCase serves quotes and candle history. Fresh provider data is
// written through to the candle store; the store answers when the provider
// is unavailable.
type MarketUseCase struct {
	provider domrepo.MarketDataProvider
	store    domrepo.CandleStore
	cache    cache.Service
	metrics  domrepo.Metrics
	logger   *applogger.Logger
	cfg      MarketConfig
	now      func() time.Time
}

func NewMarketUseCase(provider domrepo.MarketDataProvider, store domrepo.CandleStore, c cache.Service,
	metrics domrepo.Metrics, logger *applogger.Logger, cfg MarketConfig) *MarketUseCase {
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = defaultQuoteTTL
	}
	if metrics == nil {
		metrics = domrepo.NopMetrics{}
	}
	if logger == nil {
		logger = applogger.Nop()
	}
	return &MarketUseCase{
		provider: provider,
		store:    store,
		cache:    c,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// GetQuote returns the latest bar for symbol at resolution tf.
func (uc *MarketUseCase) GetQuote(ctx context.Context, symbol string, tf models.Timeframe) (*models.Candle, error) {
	key := cache.GenerateKeyWithParams("quote", symbol, tf)
	q, hit, err := cache.GetOrLoad(ctx, uc.cache, key, uc.cfg.QuoteTTL, func(ctx context.Context) (models.Candle, error) {
		c, err := uc.provider.GetQuote(ctx, symbol, tf)
		if err == nil {
			uc.persist(ctx, []models.Candle{*c})
			return *c, nil
		}
		if !errors.Is(err, domain.ErrDataUnavailable) || uc.store == nil {
			return models.Candle{}, err
		}
		stored, serr := uc.store.GetLatestCandles(ctx, symbol, tf, 1)
		if serr != nil || len(stored) == 0 {
			return models.Candle{}, err
		}
		uc.logger.Warn("market.quote served from store",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		stored[0].Source = models.SourceStore
		return stored[0], nil
	}, uc.cacheError)
	uc.metrics.RecordCache("quote", hit)
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordLastPrice(symbol, q.Close)
	uc.logger.Debug("market.quote",
		applogger.String("symbol", symbol),
		applogger.String("timeframe", string(tf)),
		applogger.Bool("cache_hit", hit),
	)
	return &q, nil
}

// GetQuotes quotes every symbol concurrently. A symbol that fails is
// reported in Errors; the call only fails when no symbol could be quoted.
func (uc *MarketUseCase) GetQuotes(ctx context.Context, symbols []string, tf models.Timeframe) (*models.MultiQuote, error) {
	type result struct {
		symbol string
		quote  *models.Candle
		err    error
	}
	results := make([]result, len(symbols))
	sem := make(chan struct{}, maxQuoteFanout)
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			q, err := uc.GetQuote(ctx, sym, tf)
			results[i] = result{symbol: sym, quote: q, err: err}
		}(i, sym)
	}
	wg.Wait()

	out := &models.MultiQuote{
		Timeframe:   tf,
		Quotes:      make(map[string]models.Candle, len(symbols)),
		GeneratedAt: uc.now().UTC(),
	}
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			if out.Errors == nil {
				out.Errors = make(map[string]string)
			}
			out.Errors[r.symbol] = quoteFailure(r.err)
			continue
		}
		out.Quotes[r.symbol] = *r.quote
	}
	out.Count = len(out.Quotes)
	if out.Count == 0 && firstErr != nil {
		return nil, firstErr
	}
	if len(out.Errors) > 0 {
		uc.logger.Warn("market.quotes partial",
			applogger.Int("quoted", out.Count),
			applogger.Int("failed", len(out.Errors)),
		)
	}
	return out, nil
}

func quoteFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrSymbolNotFound):
		return "symbol not found"
	case errors.Is(err, domain.ErrDataUnavailable):
		return "market data unavailable"
	default:
		return "quote failed"
	}
}

// MarketStatus reports the NSE session state at the current time.
func (uc *MarketUseCase) MarketStatus() models.MarketStatus {
	return nseStatus(uc.now())
}

// persist writes observed, completed candles to the store. Stored bars are
// never updated, so a bar still forming is skipped. Failures are logged and
// never fail the read.
func (uc *MarketUseCase) persist(ctx context.Context, candles []models.Candle) {
	if uc.store == nil || len(candles) == 0 || candles[0].Source != models.SourceProvider {
		return
	}
	now := uc.now()
	closed := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if c.Closed(now) {
			closed = append(closed, c)
		}
	}
	if len(closed) == 0 {
		return
	}
	candles = closed
	n, err := uc.store.SaveCandles(ctx, candles)
	if err != nil {
		uc.metrics.RecordError("candle_store")
		uc.logger.Error("save candles failed",
			applogger.String("symbol", candles[0].Symbol),
			applogger.Error(err),
		)
		return
	}
	if n > 0 {
		uc.logger.Debug("candles stored",
			applogger.String("symbol", candles[0].Symbol),
			applogger.Int("inserted", n),
		)
	}
}

func (uc *MarketUseCase) cacheError(op string, err error) {
	uc.metrics.RecordError("cache_" + op)
	uc.logger.Warn("cache "+op+" failed", applogger.Error(err))
}

var ist = time.FixedZone("IST", 5*3600+30*60)

// nseStatus ignores exchange holidays.
func nseStatus(now time.Time) models.MarketStatus {
	local := now.In(ist)
	y, m, d := local.Date()
	open := time.Date(y, m, d, 9, 15, 0, 0, ist)
	closeAt := time.Date(y, m, d, 15, 30, 0, 0, ist)
	tradingDay := isWeekday(local)

	st := models.MarketStatus{Exchange: "NSE", Session: "closed", LocalTime: local}
	switch {
	case tradingDay && !local.Before(open) && local.Before(closeAt):
		st.IsOpen = true
		st.Session = "open"
	case tradingDay && local.Before(open) && !local.Before(open.Add(-15*time.Minute)):
		st.Session = "pre-open"
	}

	next := open
	if !local.Before(open) || !tradingDay {
		next = open.AddDate(0, 0, 1)
	}
	for !isWeekday(next) {
		next = next.AddDate(0, 0, 1)
	}
	st.NextOpen = next
	return st
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
