package configs

import (
	"errors"
	"fmt"
	"time"

	"github.com/mgelashvili/ledger_service/internal/logger"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
	DB struct {
		DSN             string        `mapstructure:"dsn"`
		MaxOpenConns    int           `mapstructure:"max_open_conns"`
		MaxIdleConns    int           `mapstructure:"max_idle_conns"`
		ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
		ConnectAttempts int           `mapstructure:"connect_attempts"`
		ConnectInterval time.Duration `mapstructure:"connect_interval"`
		QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	} `mapstructure:"db"`
	Ledger struct {
		MinAccountID int64 `mapstructure:"min_account_id"`
		MaxAccountID int64 `mapstructure:"max_account_id"`
	} `mapstructure:"ledger"`
	Extract struct {
		Limit        int  `mapstructure:"limit"`
		EmptyAsError bool `mapstructure:"empty_as_error"`
	} `mapstructure:"extract"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("db.max_open_conns", 10)
	viper.SetDefault("db.max_idle_conns", 5)
	viper.SetDefault("db.conn_max_lifetime", "5m")
	viper.SetDefault("db.connect_attempts", 10)
	viper.SetDefault("db.connect_interval", "2s")
	viper.SetDefault("db.query_timeout", "5s")
	viper.SetDefault("ledger.min_account_id", 1)
	viper.SetDefault("ledger.max_account_id", 5)
	viper.SetDefault("extract.limit", 10)
	viper.SetDefault("extract.empty_as_error", true)
}

func LoadConfig() {
	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	setDefaults()
	viper.AutomaticEnv()

	var fileLookupError viper.ConfigFileNotFoundError
	if err := viper.ReadInConfig(); err != nil {
		if errors.As(err, &fileLookupError) {
			logger.Log.Fatal("config file not found", zap.Error(err))
		}
		logger.Log.Fatal("failed to read config", zap.Error(err))
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		logger.Log.Fatal("failed to unmarshal config", zap.Error(err))
	}

	if err := validate(&AppConfig); err != nil {
		logger.Log.Fatal("invalid config", zap.Error(err))
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}
	// With zero attempts the store would skip the connect loop entirely and
	// hand out a nil handle.
	if cfg.DB.ConnectAttempts < 1 {
		return fmt.Errorf("db.connect_attempts must be at least 1, got %d", cfg.DB.ConnectAttempts)
	}
	return nil
}
