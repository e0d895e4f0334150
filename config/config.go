package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log        Logger           `mapstructure:"logger"`
	DB         Database         `mapstructure:"database"`
	API        API              `mapstructure:"api"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	MarketData MarketDataConfig `mapstructure:"market_data"`
	Signal     SignalConfig     `mapstructure:"signal"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Cache      Cache            `mapstructure:"cache"`
	Scheduler  Scheduler        `mapstructure:"scheduler"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port       int    `mapstructure:"port"`
	AdminToken string `mapstructure:"admin_token"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	AdminID                   int64         `mapstructure:"admin_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
	RatelimitExpireDuration   time.Duration `mapstructure:"ratelimit_expire_duration"`
	RateLimitCleanupDuration  time.Duration `mapstructure:"rate_limit_cleanup_duration"`
	StateExpDuration          time.Duration `mapstructure:"state_exp_duration"`
}

type MarketDataConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MaxRequestPerMin int           `mapstructure:"max_request_per_min"`
	Interval         string        `mapstructure:"interval"`
	OutputSize       int           `mapstructure:"output_size"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

// SignalConfig holds the decision policy thresholds. Mode selects the active
// rule tiers: "strict" only issues pullback entries, "permissive" also allows
// trend-only entries at reduced confidence.
type SignalConfig struct {
	Mode              string  `mapstructure:"mode"`
	FastSpan          int     `mapstructure:"fast_span"`
	SlowSpan          int     `mapstructure:"slow_span"`
	RSIWindow         int     `mapstructure:"rsi_window"`
	PullbackThreshold float64 `mapstructure:"pullback_threshold"`
	BaseConfidence    int     `mapstructure:"base_confidence"`
	TrendBonus        int     `mapstructure:"trend_bonus"`
	RSIBonus          int     `mapstructure:"rsi_bonus"`
	BuyRSILow         float64 `mapstructure:"buy_rsi_low"`
	BuyRSIHigh        float64 `mapstructure:"buy_rsi_high"`
	SellRSILow        float64 `mapstructure:"sell_rsi_low"`
	SellRSIHigh       float64 `mapstructure:"sell_rsi_high"`
	ExpiryMinutes     int     `mapstructure:"expiry_minutes"`
}

type RiskConfig struct {
	Table          []float64 `mapstructure:"table"`
	DefaultBalance float64   `mapstructure:"default_balance"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Scheduler struct {
	ExpiryReminderCron  string        `mapstructure:"expiry_reminder_cron"`
	ExpiryReminderAhead time.Duration `mapstructure:"expiry_reminder_ahead"`
	SignalCleanupCron   string        `mapstructure:"signal_cleanup_cron"`
	SignalRetentionDays int           `mapstructure:"signal_retention_days"`
	MaxConcurrency      int           `mapstructure:"max_concurrency"`
	TimeoutDuration     time.Duration `mapstructure:"timeout_duration"`
}

type GeminiConfig struct {
	Enabled             bool          `mapstructure:"enabled"`
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
}

func Load() (*Config, error) {
	// .env is optional, local development only.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Signal.Mode == "" {
		c.Signal.Mode = "permissive"
	}
	if c.Signal.FastSpan == 0 {
		c.Signal.FastSpan = 20
	}
	if c.Signal.SlowSpan == 0 {
		c.Signal.SlowSpan = 50
	}
	if c.Signal.RSIWindow == 0 {
		c.Signal.RSIWindow = 14
	}
	if c.Signal.PullbackThreshold == 0 {
		c.Signal.PullbackThreshold = 0.002
	}
	if c.Signal.BaseConfidence == 0 {
		c.Signal.BaseConfidence = 50
	}
	if c.Signal.TrendBonus == 0 {
		c.Signal.TrendBonus = 20
	}
	if c.Signal.RSIBonus == 0 {
		c.Signal.RSIBonus = 20
	}
	if c.Signal.BuyRSILow == 0 {
		c.Signal.BuyRSILow = 45
	}
	if c.Signal.BuyRSIHigh == 0 {
		c.Signal.BuyRSIHigh = 65
	}
	if c.Signal.SellRSILow == 0 {
		c.Signal.SellRSILow = 35
	}
	if c.Signal.SellRSIHigh == 0 {
		c.Signal.SellRSIHigh = 55
	}
	if c.Signal.ExpiryMinutes == 0 {
		c.Signal.ExpiryMinutes = 5
	}
	if len(c.Risk.Table) == 0 {
		c.Risk.Table = []float64{2, 3, 5}
	}
	if c.Risk.DefaultBalance == 0 {
		c.Risk.DefaultBalance = 100
	}
	if c.MarketData.Interval == "" {
		c.MarketData.Interval = "5min"
	}
	if c.MarketData.OutputSize == 0 {
		c.MarketData.OutputSize = 120
	}
	if c.MarketData.MaxRequestPerMin == 0 {
		c.MarketData.MaxRequestPerMin = 8
	}
	if c.Gemini.MaxRequestPerMinute == 0 {
		c.Gemini.MaxRequestPerMinute = 10
	}
	if c.Gemini.MaxTokenPerMinute == 0 {
		c.Gemini.MaxTokenPerMinute = 100000
	}
	if c.Scheduler.MaxConcurrency == 0 {
		c.Scheduler.MaxConcurrency = 5
	}
	if c.Scheduler.SignalRetentionDays == 0 {
		c.Scheduler.SignalRetentionDays = 90
	}
}
