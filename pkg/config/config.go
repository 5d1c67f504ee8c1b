package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowRequest     time.Duration `yaml:"slow_request" default:"2s"`
		CORSOrigins     []string      `yaml:"cors_origins"`
		CORSMaxAge      time.Duration `yaml:"cors_max_age" default:"10m"`
	} `yaml:"server"`
	RateLimit struct {
		Disabled bool          `yaml:"disabled"`
		Requests int           `yaml:"requests" default:"100"`
		Window   time.Duration `yaml:"window" default:"60s"`
	} `yaml:"rate_limit"`
	Auth struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		Issuer     string        `yaml:"issuer" default:"marketdash"`
		TokenTTL   time.Duration `yaml:"token_ttl" default:"8h"`
		BcryptCost int           `yaml:"bcrypt_cost" default:"10"`
	} `yaml:"auth"`
	Database struct {
		URL             string        `yaml:"url"`
		MaxOpenConns    int           `yaml:"max_open_conns" default:"20"`
		MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
		SkipSchemaInit  bool          `yaml:"skip_schema_init"`
	} `yaml:"database"`
	Storage struct {
		// Candles selects the candle store backend: postgres or clickhouse.
		Candles string `yaml:"candles" default:"postgres"`
	} `yaml:"storage"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"marketdash"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime" default:"5m"`
	} `yaml:"clickhouse"`
	Cache struct {
		// Backend is one of memory, redis, layered.
		Backend       string        `yaml:"backend" default:"memory"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"2000"`
		QuoteTTL      time.Duration `yaml:"quote_ttl" default:"60s"`
		SignalTTL     time.Duration `yaml:"signal_ttl" default:"300s"`
		PredictionTTL time.Duration `yaml:"prediction_ttl" default:"600s"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"marketdash"`
			PoolSize int    `yaml:"pool_size" default:"10"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled         bool     `yaml:"enabled"`
		Brokers         []string `yaml:"brokers"`
		SignalsTopic    string   `yaml:"signals_topic" default:"marketdash.signals"`
		PredictionTopic string   `yaml:"predictions_topic" default:"marketdash.predictions"`
		RequiredAcks    int      `yaml:"required_acks" default:"-1"`
		Compression     string   `yaml:"compression" default:"gzip"`
		Producer        struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Market struct {
		BaseURL        string            `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		ExchangeSuffix string            `yaml:"exchange_suffix" default:".NS"`
		Aliases        map[string]string `yaml:"aliases"`
		Timeout        time.Duration     `yaml:"timeout" default:"10s"`
		MaxRetries     int               `yaml:"max_retries" default:"3"`
		RetryDelay     time.Duration     `yaml:"retry_delay" default:"500ms"`
		RequestsPerSec float64           `yaml:"requests_per_sec" default:"5"`
		Burst          int               `yaml:"burst" default:"5"`
		// MockFallback serves synthetic candles when the provider is down.
		MockFallback bool   `yaml:"mock_fallback"`
		UserAgent    string `yaml:"user_agent" default:"Mozilla/5.0 (compatible; MarketDash/1.0)"`
	} `yaml:"market"`
	Signals struct {
		TargetPct       float64 `yaml:"target_pct" default:"0.05"`
		StopPct         float64 `yaml:"stop_pct" default:"0.03"`
		Lookback        int     `yaml:"lookback" default:"200"`
		MaxPositionSize float64 `yaml:"max_position_size" default:"0.1"`
	} `yaml:"signals"`
	Prediction struct {
		Lookback     int    `yaml:"lookback" default:"500"`
		DefaultModel string `yaml:"default_model" default:"ensemble"`
		Trees        int    `yaml:"trees" default:"25"`
		TreeDepth    int    `yaml:"tree_depth" default:"4"`
		Seed         int64  `yaml:"seed" default:"42"`
	} `yaml:"prediction"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes, fills defaults and validates.
func Parse(b []byte) (*Config, error) {
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Validation runs after the overrides so secrets may live only in the environment.
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := decode(b)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func decode(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ENVIRONMENT"); v != "" {
		c.Environment = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("CANDLE_STORE"); v != "" {
		c.Storage.Candles = v
	}
	if v := getenv("MARKET_MOCK_FALLBACK"); v != "" {
		c.Market.MockFallback = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	switch c.Storage.Candles {
	case "postgres", "clickhouse":
	default:
		return fmt.Errorf("storage.candles must be 'postgres' or 'clickhouse', got '%s'", c.Storage.Candles)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Market.MaxRetries < 0 {
		return fmt.Errorf("market.max_retries cannot be negative")
	}
	if c.Signals.TargetPct <= 0 || c.Signals.StopPct <= 0 {
		return fmt.Errorf("signals.target_pct and signals.stop_pct must be positive")
	}
	return nil
}
