package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
)

// Config — конфигурация процесса, неизменяемая после загрузки.
type Config struct {
	Service struct {
		Host       string `mapstructure:"host"`
		PublicPort int    `mapstructure:"public_port"`
		AdminPort  int    `mapstructure:"admin_port"`
	} `mapstructure:"service"`

	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`

	Bybit struct {
		APIKey      string        `mapstructure:"api_key"`
		APISecret   string        `mapstructure:"api_secret"`
		BaseURL     string        `mapstructure:"base_url"`
		WSURL       string        `mapstructure:"ws_url"`
		RecvWindow  int           `mapstructure:"recv_window"`
		AccountType string        `mapstructure:"account_type"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"bybit"`

	Sizing struct {
		MinNotional     string `mapstructure:"min_notional"`
		BalanceFraction string `mapstructure:"balance_fraction"`
	} `mapstructure:"sizing"`

	Webhook struct {
		Path          string `mapstructure:"path"`
		Secret        string `mapstructure:"secret"`
		DefaultSymbol string `mapstructure:"default_symbol"`
		SynonymsFile  string `mapstructure:"synonyms_file"`
	} `mapstructure:"webhook"`

	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`

	DB string `mapstructure:"db_dsn"`

	Tracing struct {
		Enabled     bool   `mapstructure:"enabled"`
		Host        string `mapstructure:"host"`
		Port        int    `mapstructure:"port"`
		ServiceName string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`

	// Символы для прогрева правил лота и стрима тикеров.
	Symbols []string `mapstructure:"symbols"`

	minNotional     decimal.Decimal
	balanceFraction decimal.Decimal
}

func (c *Config) MinNotional() decimal.Decimal     { return c.minNotional }
func (c *Config) BalanceFraction() decimal.Decimal { return c.balanceFraction }

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.public_port", 8000)
	v.SetDefault("service.admin_port", 8081)

	v.SetDefault("log.level", "info")

	v.SetDefault("bybit.base_url", "https://api.bybit.com")
	v.SetDefault("bybit.ws_url", "wss://stream.bybit.com/v5/public/linear")
	v.SetDefault("bybit.recv_window", 5000)
	v.SetDefault("bybit.account_type", "UNIFIED")
	v.SetDefault("bybit.timeout", 10*time.Second)

	v.SetDefault("sizing.min_notional", "5")
	v.SetDefault("sizing.balance_fraction", "1")

	v.SetDefault("webhook.path", "/webhook")
	v.SetDefault("webhook.default_symbol", "ETHUSDT")

	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
	v.SetDefault("tracing.service_name", "signal_trader")
}

// bindLegacyEnv — имена переменных из старого .env.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("bybit.api_key", "BYBIT_API_KEY", "API_KEY")
	_ = v.BindEnv("bybit.api_secret", "BYBIT_API_SECRET", "API_SECRET")
	_ = v.BindEnv("bybit.base_url", "BYBIT_BASE_URL", "BASE_URL")
	_ = v.BindEnv("telegram.token", "TELEGRAM_TOKEN")
	_ = v.BindEnv("telegram.chat_id", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("db_dsn", "DATABASE_DSN")
	_ = v.BindEnv("webhook.secret", "WEBHOOK_SECRET")
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	bindLegacyEnv(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	dir := os.Getenv(configDirENV)
	if dir == "" {
		dir = "configs"
	}
	v.SetConfigFile(dir + "/" + configFileName)
	if err := v.ReadInConfig(); err != nil {
		// без файла работаем на дефолтах и env
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", configFileName, err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Bybit.APIKey == "" || c.Bybit.APISecret == "" {
		return fmt.Errorf("bybit api_key/api_secret are required")
	}

	var err error
	if c.minNotional, err = decimal.NewFromString(c.Sizing.MinNotional); err != nil {
		return fmt.Errorf("sizing.min_notional: %w", err)
	}
	if c.minNotional.IsNegative() {
		return fmt.Errorf("sizing.min_notional must be >= 0")
	}
	if c.balanceFraction, err = decimal.NewFromString(c.Sizing.BalanceFraction); err != nil {
		return fmt.Errorf("sizing.balance_fraction: %w", err)
	}
	if !c.balanceFraction.IsPositive() || c.balanceFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("sizing.balance_fraction must be in (0, 1]")
	}

	for i, s := range c.Symbols {
		c.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	c.Webhook.DefaultSymbol = strings.ToUpper(strings.TrimSpace(c.Webhook.DefaultSymbol))
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		c.Webhook.Path = "/" + c.Webhook.Path
	}
	return nil
}
