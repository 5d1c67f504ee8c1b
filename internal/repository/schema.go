package repository

import "fmt"

// PostgresSchema is the idempotent bootstrap for the relational store.
var PostgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(50)  NOT NULL UNIQUE,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS candles (
		symbol    VARCHAR(20)      NOT NULL,
		timeframe VARCHAR(4)       NOT NULL,
		ts        TIMESTAMPTZ      NOT NULL,
		open      DOUBLE PRECISION NOT NULL,
		high      DOUBLE PRECISION NOT NULL,
		low       DOUBLE PRECISION NOT NULL,
		close     DOUBLE PRECISION NOT NULL,
		volume    DOUBLE PRECISION NOT NULL DEFAULT 0,
		source    VARCHAR(16)      NOT NULL DEFAULT 'yahoo',
		PRIMARY KEY (symbol, timeframe, ts)
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id               BIGSERIAL PRIMARY KEY,
		symbol           VARCHAR(20)      NOT NULL,
		timeframe        VARCHAR(4)       NOT NULL,
		predicted_price  DOUBLE PRECISION NOT NULL,
		current_price    DOUBLE PRECISION NOT NULL,
		confidence_score DOUBLE PRECISION NOT NULL CHECK (confidence_score BETWEEN 0 AND 1),
		time_horizon     VARCHAR(10)      NOT NULL,
		model_used       VARCHAR(20)      NOT NULL,
		created_at       TIMESTAMPTZ      NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_symbol_created ON predictions (symbol, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS trading_signals (
		id               BIGSERIAL PRIMARY KEY,
		symbol           VARCHAR(20)      NOT NULL,
		timeframe        VARCHAR(4)       NOT NULL,
		signal_type      VARCHAR(4)       NOT NULL CHECK (signal_type IN ('BUY', 'SELL', 'HOLD')),
		strength         DOUBLE PRECISION NOT NULL CHECK (strength BETWEEN 0 AND 1),
		current_price    DOUBLE PRECISION NOT NULL,
		price_target     DOUBLE PRECISION,
		stop_loss        DOUBLE PRECISION,
		support_level    DOUBLE PRECISION,
		resistance_level DOUBLE PRECISION,
		reasoning        VARCHAR(500)     NOT NULL,
		created_at       TIMESTAMPTZ      NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_signals_symbol_created ON trading_signals (symbol, created_at DESC)`,
}

// ClickHouseSchema returns the candle table bootstrap for database db.
// ReplacingMergeTree collapses rows sharing (symbol, timeframe, ts).
func ClickHouseSchema(db string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.candles (
			symbol      LowCardinality(String),
			timeframe   LowCardinality(String),
			ts          DateTime64(3, 'UTC'),
			open        Float64,
			high        Float64,
			low         Float64,
			close       Float64,
			volume      Float64,
			source      LowCardinality(String),
			inserted_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(inserted_at)
		ORDER BY (symbol, timeframe, ts)`, db),
	}
}
