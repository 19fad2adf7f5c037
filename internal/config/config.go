package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App   AppConfig   `mapstructure:"app"`
	Log   LogConfig   `mapstructure:"log"`
	Store StoreConfig `mapstructure:"store"`
	Cron  CronConfig  `mapstructure:"cron"`

	Executor    ExecutorConfig    `mapstructure:"executor"`
	Permissions PermissionsConfig `mapstructure:"permissions"`
	Agents      AgentsConfig      `mapstructure:"agents"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
	// Output is a zap sink path: "stdout", "stderr" or a file path.
	Output            string `mapstructure:"output"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type StoreConfig struct {
	// Backend selects the state store: "memory" (default) or "redis".
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

type CronConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	PermissionCleanup string `mapstructure:"permission_cleanup"`
	PositionRefresh   string `mapstructure:"position_refresh"`
}

type ExecutorConfig struct {
	PriceCheckInterval time.Duration `mapstructure:"price_check_interval"`
	PriceCacheTTL      time.Duration `mapstructure:"price_cache_ttl"`
	PausePollInterval  time.Duration `mapstructure:"pause_poll_interval"`
	DefaultStepTimeout time.Duration `mapstructure:"default_step_timeout"`
	DefaultSlippagePct float64       `mapstructure:"default_slippage_pct"`
	DryRun             bool          `mapstructure:"dry_run"`
}

type PermissionsConfig struct {
	DefaultMaxTransactionSOL float64       `mapstructure:"default_max_transaction_sol"`
	DefaultDailyLimitSOL     float64       `mapstructure:"default_daily_limit_sol"`
	DefaultWeeklyLimitSOL    float64       `mapstructure:"default_weekly_limit_sol"`
	DefaultTTL               time.Duration `mapstructure:"default_ttl"`
}

type AgentsConfig struct {
	MaxPerUser int `mapstructure:"max_per_user"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.dial_timeout", "5s")
	v.SetDefault("store.redis.read_timeout", "3s")
	v.SetDefault("store.redis.write_timeout", "3s")
	v.SetDefault("store.redis.key_prefix", "tradeplan")

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.permission_cleanup", "@every 5m")
	v.SetDefault("cron.position_refresh", "@every 30s")

	v.SetDefault("executor.price_check_interval", "1s")
	v.SetDefault("executor.price_cache_ttl", "5s")
	v.SetDefault("executor.pause_poll_interval", "100ms")
	v.SetDefault("executor.default_step_timeout", "1h")
	v.SetDefault("executor.default_slippage_pct", 1.0)
	v.SetDefault("executor.dry_run", false)

	v.SetDefault("permissions.default_max_transaction_sol", 1.0)
	v.SetDefault("permissions.default_daily_limit_sol", 10.0)
	v.SetDefault("permissions.default_weekly_limit_sol", 50.0)
	v.SetDefault("permissions.default_ttl", "720h")

	v.SetDefault("agents.max_per_user", 10)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
