package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string        `mapstructure:"ENV"`
	DatabaseURL      string        `mapstructure:"DATABASE_URL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`
	LogLevel         string        `mapstructure:"LOG_LEVEL"`
	MetricsAddr      string        `mapstructure:"METRICS_ADDR"`
	OrgID            string        `mapstructure:"ORG_ID"`
	Mode             string        `mapstructure:"MODE"`
	ClientID         string        `mapstructure:"CLIENT_ID"`
	WindowStart      string        `mapstructure:"WINDOW_START"`
	WindowDays       int           `mapstructure:"WINDOW_DAYS"`
	TuningFile       string        `mapstructure:"TUNING_FILE"`
	NotifyRatePerSec float64       `mapstructure:"NOTIFY_RATE_PER_SEC"`
	RunEvery         time.Duration `mapstructure:"RUN_EVERY"`
	Migrate          bool          `mapstructure:"DB_MIGRATE"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MODE", "optimize")
	v.SetDefault("WINDOW_DAYS", 7)
	v.SetDefault("NOTIFY_RATE_PER_SEC", 50)
	v.SetDefault("DB_MIGRATE", true)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Window resolves the optimization window. WINDOW_START defaults to the
// start of today in UTC.
func (c Config) Window(now time.Time) (time.Time, time.Time, error) {
	start := now.UTC().Truncate(24 * time.Hour)
	if c.WindowStart != "" {
		t, err := time.Parse("2006-01-02", c.WindowStart)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t.UTC()
	}
	days := c.WindowDays
	if days <= 0 {
		days = 7
	}
	return start, start.AddDate(0, 0, days), nil
}
