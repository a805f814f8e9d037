package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress    string `env:"RUN_ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_URI"`
	MigrationsDir string `env:"MIGRATIONS_DIR"`
	JWTSecret     string `env:"JWT_SECRET"`
	// RedisAddr если пуст, защита от повторов redeem не включается.
	RedisAddr string `env:"REDIS_ADDR"`
	// NatsURL если пуст, уведомления пишутся в лог.
	NatsURL string `env:"NATS_URL"`

	LockTimeout    time.Duration `env:"LOCK_TIMEOUT" envDefault:"2s"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	ExpirySweepEnabled  bool          `env:"EXPIRY_SWEEP_ENABLED" envDefault:"false"`
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"1m"`
	ExpirySweepBatch    uint          `env:"EXPIRY_SWEEP_BATCH" envDefault:"50"`
	ExpirySweepWorkers  uint          `env:"EXPIRY_SWEEP_WORKERS" envDefault:"4"`
}

func LoadConfig() (*Config, error) {
	return loadConfig(flag.CommandLine, os.Args[1:])
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		panic(err)
	}
	return config
}

func loadConfig(fset *flag.FlagSet, args []string) (*Config, error) {
	// .env не обязателен, переменные окружения имеют приоритет над ним.
	if dotenvErr := godotenv.Load(); dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %s", dotenvErr.Error())
	}

	var flagsConfig, envConfig Config

	if envParseErr := env.Parse(&envConfig); envParseErr != nil {
		return nil, fmt.Errorf("parse env config: %s", envParseErr.Error())
	}

	if flagsErr := loadFlags(fset, args, &flagsConfig); flagsErr != nil {
		return nil, fmt.Errorf("parse flags: %s", flagsErr.Error())
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if conf.DatabaseDSN == "" {
		return nil, errors.New("database DSN is not set")
	}
	if conf.JWTSecret == "" {
		return nil, errors.New("jwt secret is not set")
	}
	return conf, nil
}

func loadFlags(fset *flag.FlagSet, args []string, flagConfig *Config) error {
	fset.StringVar(&flagConfig.RunAddress, "a", "localhost:8080", "Run address in format host:port")
	fset.StringVar(&flagConfig.DatabaseDSN, "d", "", "Database DSN")
	fset.StringVar(&flagConfig.MigrationsDir, "m", "internal/db/migrations", "Database migrations directory")
	fset.StringVar(&flagConfig.JWTSecret, "j", "", "Secret of the auth service JWT tokens")
	fset.StringVar(&flagConfig.RedisAddr, "r", "", "Redis address for idempotency keys")
	fset.StringVar(&flagConfig.NatsURL, "n", "", "NATS url for redemption notifications")

	return fset.Parse(args) //nolint:wrapcheck
}

// mergeConfig строковые значения из env приоритетнее флагов. Остальные поля задаются только через env.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := *envConfig
	conf.RunAddress = defaultIfBlank(envConfig.RunAddress, flagsConfig.RunAddress)
	conf.DatabaseDSN = defaultIfBlank(envConfig.DatabaseDSN, flagsConfig.DatabaseDSN)
	conf.MigrationsDir = defaultIfBlank(envConfig.MigrationsDir, flagsConfig.MigrationsDir)
	conf.JWTSecret = defaultIfBlank(envConfig.JWTSecret, flagsConfig.JWTSecret)
	conf.RedisAddr = defaultIfBlank(envConfig.RedisAddr, flagsConfig.RedisAddr)
	conf.NatsURL = defaultIfBlank(envConfig.NatsURL, flagsConfig.NatsURL)
	return &conf
}

func defaultIfBlank(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
