package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var ts = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func candle(source string, day int) models.Candle {
	return models.Candle{
		Symbol: "RELIANCE", Timeframe: models.TF1D, Timestamp: ts.AddDate(0, 0, day),
		Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10, Source: source,
	}
}

func TestSaveCandlesSkipsSynthetic(t *testing.T) {
	db, mock := newMock(t)
	store := NewPGCandleStore(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candles")).
		WithArgs("RELIANCE", "1D", ts, 1.0, 2.0, 0.5, 1.5, 10.0, models.SourceProvider).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.SaveCandles(context.Background(), []models.Candle{
		candle(models.SourceProvider, 0),
		candle(models.SourceSynthetic, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveCandlesOnlySyntheticIsNoop(t *testing.T) {
	db, _ := newMock(t)
	n, err := NewPGCandleStore(db, nil).SaveCandles(context.Background(), []models.Candle{candle(models.SourceSynthetic, 0)})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSaveCandlesDuplicateCountsZero(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("ON CONFLICT \\(symbol, timeframe, ts\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := NewPGCandleStore(db, nil).SaveCandles(context.Background(), []models.Candle{candle(models.SourceProvider, 0)})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetLatestCandlesAscending(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"symbol", "timeframe", "ts", "open", "high", "low", "close", "volume", "source"}
	mock.ExpectQuery("ORDER BY ts DESC").
		WithArgs("RELIANCE", "1D", 2).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("RELIANCE", "1D", ts.AddDate(0, 0, 1), 1, 2, 0.5, 1.6, 10, "yahoo").
			AddRow("RELIANCE", "1D", ts, 1, 2, 0.5, 1.5, 10, "yahoo"))

	out, err := NewPGCandleStore(db, nil).GetLatestCandles(context.Background(), "RELIANCE", models.TF1D, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].Timestamp.Before(out[1].Timestamp))
	assert.Equal(t, models.TF1D, out[0].Timeframe)
}

func TestCreateUserConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

	err := NewPGUserStore(db).CreateUser(context.Background(), &models.User{Username: "asha", Email: "a@x.io"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "users_username_key")
}

func TestCreateUserFillsID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("asha", "a@x.io", "hash", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, ts))

	u := &models.User{Username: "asha", Email: "a@x.io", PasswordHash: "hash", IsActive: true}
	require.NoError(t, NewPGUserStore(db).CreateUser(context.Background(), u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, ts, u.CreatedAt)
}

func TestGetUserNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewPGUserStore(db).GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateSignalWithNullLevels(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO trading_signals")).
		WithArgs("TCS", "1D", "HOLD", 0.5, 3500.0, nil, nil, nil, nil, "Moderate hold signal. x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, ts))

	s := &models.TradingSignal{
		Symbol: "TCS", Timeframe: models.TF1D, SignalType: models.SignalHold,
		Strength: 0.5, CurrentPrice: 3500, Reasoning: "Moderate hold signal. x",
	}
	require.NoError(t, NewPGSignalStore(db, nil).CreateSignal(context.Background(), s))
	assert.Equal(t, int64(11), s.ID)
}

func TestListPredictions(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "symbol", "timeframe", "predicted_price", "current_price", "confidence_score",
		"time_horizon", "model_used", "created_at"}
	mock.ExpectQuery("FROM predictions").
		WithArgs("INFY", "", 10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(2, "INFY", "1D", 1410.5, 1400.0, 0.61, "short", "ensemble", ts))

	out, err := NewPGPredictionStore(db, nil).ListPredictions(context.Background(), "INFY", "", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, models.ModelEnsemble, out[0].ModelUsed)
	assert.Equal(t, models.HorizonShort, out[0].TimeHorizon)
}

func TestClickHouseSchemaNamesDatabase(t *testing.T) {
	stmts := ClickHouseSchema("md")
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[1], "md.candles")
	assert.Contains(t, stmts[1], "ReplacingMergeTree")
}

func TestEventsCarryIdentity(t *testing.T) {
	target := 110.0
	ev := NewSignalEvent(&models.TradingSignal{ID: 3, Symbol: "SBIN", SignalType: models.SignalBuy, PriceTarget: &target})
	assert.Equal(t, "BUY", ev.SignalType)
	assert.Equal(t, &target, ev.Target)

	pe := NewPredictionEvent(&models.Prediction{ID: 4, ModelUsed: models.ModelKernel, TimeHorizon: models.HorizonLong})
	assert.Equal(t, "kernel", pe.Model)
	assert.Equal(t, "long", pe.Horizon)
}
