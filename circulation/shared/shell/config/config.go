package config

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/AntonStoeckl/library-circulation/circulation/shared/core"
)

const envPrefix = "CIRCULATION"

var (
	ErrReadingConfigFailed  = errors.New("reading config failed")
	ErrDecodingConfigFailed = errors.New("decoding config failed")
	ErrInvalidConfig        = errors.New("invalid config")
)

// Store engines.
const (
	EngineMemory   = "memory"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
)

// Postgres adapters.
const (
	AdapterPGX  = "pgx"
	AdapterSQL  = "sql"
	AdapterSQLX = "sqlx"
)

type Config struct {
	Store         StoreConfig         `mapstructure:"store"`
	Policy        PolicyConfig        `mapstructure:"policy"`
	Sweep         SweepConfig         `mapstructure:"sweep"`
	Log           LogConfig           `mapstructure:"log"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type StoreConfig struct {
	Engine     string         `mapstructure:"engine" validate:"oneof=memory sqlite postgres"`
	SQLitePath string         `mapstructure:"sqlite_path" validate:"required_if=Engine sqlite"`
	Postgres   PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN               string        `mapstructure:"dsn"`
	Adapter           string        `mapstructure:"adapter" validate:"oneof=pgx sql sqlx"`
	MaxConns          int32         `mapstructure:"max_conns" validate:"gte=1"`
	MinConns          int32         `mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	ConnectTimeout    time.Duration `mapstructure:"connect_timeout"`
}

// PolicyConfig keeps amounts as strings so they reach decimal.Decimal without a float in between.
type PolicyConfig struct {
	LoanPeriod          time.Duration `mapstructure:"loan_period" validate:"gt=0"`
	RenewalCap          int           `mapstructure:"renewal_cap" validate:"gte=0"`
	DailyFineRate       string        `mapstructure:"daily_fine_rate" validate:"required,numeric"`
	CurrencyPrecision   int32         `mapstructure:"currency_precision" validate:"gte=0,lte=8"`
	PickupWindow        time.Duration `mapstructure:"pickup_window" validate:"gt=0"`
	SuspensionThreshold string        `mapstructure:"suspension_threshold" validate:"required,numeric"`
	MaxOpenLoans        int           `mapstructure:"max_open_loans" validate:"gte=0"`
	LostCopyFee         string        `mapstructure:"lost_copy_fee" validate:"required,numeric"`
}

type SweepConfig struct {
	Interval    time.Duration `mapstructure:"interval" validate:"gt=0"`
	Concurrency int           `mapstructure:"concurrency" validate:"gte=1,lte=64"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
}

// Observability exporters.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// ObservabilityConfig selects where spans, metrics and logs go once Enabled.
// The stdout exporter writes to the CLI's error stream, otlp sends to a collector over gRPC.
type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name" validate:"required_if=Enabled true"`
	Exporter       string        `mapstructure:"exporter" validate:"oneof=stdout otlp"`
	Endpoint       string        `mapstructure:"endpoint" validate:"required_if=Exporter otlp"`
	Insecure       bool          `mapstructure:"insecure"`
	MetricInterval time.Duration `mapstructure:"metric_interval" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.engine", EngineSQLite)
	v.SetDefault("store.sqlite_path", "circulation.db")
	v.SetDefault("store.postgres.dsn", "")
	v.SetDefault("store.postgres.adapter", AdapterPGX)
	v.SetDefault("store.postgres.max_conns", 8)
	v.SetDefault("store.postgres.min_conns", 2)
	v.SetDefault("store.postgres.max_conn_lifetime", time.Hour)
	v.SetDefault("store.postgres.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("store.postgres.health_check_period", time.Minute)
	v.SetDefault("store.postgres.connect_timeout", 5*time.Second)

	v.SetDefault("policy.loan_period", 14*24*time.Hour)
	v.SetDefault("policy.renewal_cap", 2)
	v.SetDefault("policy.daily_fine_rate", "0.50")
	v.SetDefault("policy.currency_precision", 2)
	v.SetDefault("policy.pickup_window", 72*time.Hour)
	v.SetDefault("policy.suspension_threshold", "10.00")
	v.SetDefault("policy.max_open_loans", 5)
	v.SetDefault("policy.lost_copy_fee", "25.00")

	v.SetDefault("sweep.interval", time.Hour)
	v.SetDefault("sweep.concurrency", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.service_name", "library-circulation")
	v.SetDefault("observability.exporter", ExporterStdout)
	v.SetDefault("observability.endpoint", "localhost:4317")
	v.SetDefault("observability.insecure", true)
	v.SetDefault("observability.metric_interval", 30*time.Second)
}

// Load reads the configuration. An empty path means defaults plus environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Join(ErrReadingConfigFailed, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Join(ErrDecodingConfigFailed, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the struct tags and that the policy amounts are usable.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	if _, err := c.Policy.CorePolicy(); err != nil {
		return err
	}

	return nil
}

// CorePolicy converts the configured policy into the domain's core.Policy.
func (p PolicyConfig) CorePolicy() (core.Policy, error) {
	amounts := make(map[string]decimal.Decimal, 3)

	for name, raw := range map[string]string{
		"daily_fine_rate":      p.DailyFineRate,
		"suspension_threshold": p.SuspensionThreshold,
		"lost_copy_fee":        p.LostCopyFee,
	} {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return core.Policy{}, errors.Join(ErrInvalidConfig, errors.New("policy."+name), err)
		}

		if amount.IsNegative() {
			return core.Policy{}, errors.Join(ErrInvalidConfig, errors.New("policy."+name+" must not be negative"))
		}

		amounts[name] = amount
	}

	return core.Policy{
		LoanPeriod:          p.LoanPeriod,
		RenewalCap:          p.RenewalCap,
		DailyFineRate:       amounts["daily_fine_rate"],
		CurrencyPrecision:   p.CurrencyPrecision,
		PickupWindow:        p.PickupWindow,
		SuspensionThreshold: amounts["suspension_threshold"],
		MaxOpenLoans:        p.MaxOpenLoans,
		LostCopyFee:         amounts["lost_copy_fee"],
	}, nil
}

// DefaultPolicy is the policy Load yields without file and environment.
func DefaultPolicy() core.Policy {
	return core.Policy{
		LoanPeriod:          14 * 24 * time.Hour,
		RenewalCap:          2,
		DailyFineRate:       decimal.RequireFromString("0.50"),
		CurrencyPrecision:   2,
		PickupWindow:        72 * time.Hour,
		SuspensionThreshold: decimal.RequireFromString("10.00"),
		MaxOpenLoans:        5,
		LostCopyFee:         decimal.RequireFromString("25.00"),
	}
}
