package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
environment: test
database:
  url: postgres://localhost/marketdash?sslmode=disable
auth:
  jwt_secret: 0123456789abcdef0123
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, "postgres", c.Storage.Candles)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.Equal(t, 300*time.Second, c.Cache.SignalTTL)
	assert.Equal(t, 600*time.Second, c.Cache.PredictionTTL)
	assert.Equal(t, ".NS", c.Market.ExchangeSuffix)
	assert.Equal(t, 3, c.Market.MaxRetries)
	assert.False(t, c.Market.MockFallback)
	assert.InDelta(t, 0.05, c.Signals.TargetPct, 1e-12)
	assert.InDelta(t, 0.03, c.Signals.StopPct, 1e-12)
	assert.Equal(t, 100, c.RateLimit.Requests)
	assert.Equal(t, 8*time.Hour, c.Auth.TokenTTL)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing database": "environment: x\nauth:\n  jwt_secret: 0123456789abcdef0123\n",
		"short secret":     "environment: x\ndatabase:\n  url: pg\nauth:\n  jwt_secret: short\n",
		"bad store":        minimalYAML + "storage:\n  candles: mongo\n",
		"bad cache":        minimalYAML + "cache:\n  backend: disk\n",
		"kafka no brokers": minimalYAML + "kafka:\n  enabled: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	env := map[string]string{
		"DATABASE_URL":         "postgres://db/other",
		"KAFKA_BROKERS":        "k1:9092,k2:9092",
		"PORT":                 "9100",
		"MARKET_MOCK_FALLBACK": "true",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "postgres://db/other", c.Database.URL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, 9100, c.Server.Port)
	assert.True(t, c.Market.MockFallback)
	assert.NoError(t, c.Validate())
}
