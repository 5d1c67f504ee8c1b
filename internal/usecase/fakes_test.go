package usecase

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func series(closes []float64, source string) []models.Candle {
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Symbol:    "RELIANCE",
			Timeframe: models.TF1D,
			Timestamp: t0.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    1000,
			Source:    source,
		}
	}
	return out
}

func geometric(n int, start, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start * math.Pow(1+rate, float64(i))
	}
	return out
}

func walk(n int, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	p := 100.0
	for i := range out {
		p *= 1 + r.NormFloat64()*0.01
		out[i] = p
	}
	return out
}

type fakeProvider struct {
	mu       sync.Mutex
	candles  []models.Candle
	err      error
	calls    int
	from, to time.Time
}

func (f *fakeProvider) GetHistory(_ context.Context, _ string, _ models.Timeframe, from, to time.Time) ([]models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Candle(nil), f.candles...), nil
}

func (f *fakeProvider) GetQuote(_ context.Context, _ string, _ models.Timeframe) (*models.Candle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.candles) == 0 {
		return nil, domain.ErrDataUnavailable
	}
	c := f.candles[len(f.candles)-1]
	return &c, nil
}

type fakeCandleStore struct {
	mu     sync.Mutex
	saved  []models.Candle
	stored []models.Candle
	err    error
}

func (f *fakeCandleStore) SaveCandles(_ context.Context, candles []models.Candle) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, candles...)
	return len(candles), nil
}

func (f *fakeCandleStore) GetCandles(_ context.Context, _ string, _ models.Timeframe, _, _ time.Time) ([]models.Candle, error) {
	return append([]models.Candle(nil), f.stored...), nil
}

func (f *fakeCandleStore) GetLatestCandles(_ context.Context, _ string, _ models.Timeframe, n int) ([]models.Candle, error) {
	out := f.stored
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return append([]models.Candle(nil), out...), nil
}

type fakeSignalStore struct {
	created []models.TradingSignal
	err     error
}

func (f *fakeSignalStore) CreateSignal(_ context.Context, s *models.TradingSignal) error {
	if f.err != nil {
		return f.err
	}
	s.ID = int64(len(f.created) + 1)
	s.CreatedAt = t0
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeSignalStore) ListSignals(_ context.Context, symbol string, _ models.Timeframe, limit int) ([]models.TradingSignal, error) {
	var out []models.TradingSignal
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		if f.created[i].Symbol == symbol {
			out = append(out, f.created[i])
		}
	}
	return out, nil
}

type fakePredictionStore struct {
	created []models.Prediction
}

func (f *fakePredictionStore) CreatePrediction(_ context.Context, p *models.Prediction) error {
	p.ID = int64(len(f.created) + 1)
	p.CreatedAt = t0
	f.created = append(f.created, *p)
	return nil
}

func (f *fakePredictionStore) ListPredictions(_ context.Context, _ string, _ models.Timeframe, limit int) ([]models.Prediction, error) {
	if len(f.created) > limit {
		return f.created[:limit], nil
	}
	return f.created, nil
}

type fakePublisher struct {
	signals     int
	predictions int
	err         error
}

func (f *fakePublisher) PublishSignal(context.Context, *models.TradingSignal) error {
	f.signals++
	return f.err
}

func (f *fakePublisher) PublishPrediction(context.Context, *models.Prediction) error {
	f.predictions++
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

type fakeUserStore struct {
	byName map[string]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byName: map[string]*models.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *models.User) error {
	for _, existing := range f.byName {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrConflict
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = t0
	cp := *u
	f.byName[u.Username] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeTokens struct{}

func (fakeTokens) Issue(u *models.User) (string, time.Time, error) {
	return "token-" + u.Username, t0.Add(time.Hour), nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) Health(context.Context) error { return f.err }
