package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/gajian-cli/internal/model"
	"github.com/sells-group/gajian-cli/internal/store"
	"github.com/sells-group/gajian-cli/internal/tariff"
	"github.com/sells-group/gajian-cli/internal/voucher"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig      `yaml:"store" mapstructure:"store"`
	Rates   tariff.RatePaths `yaml:"rates" mapstructure:"rates"`
	Tariff  TariffConfig     `yaml:"tariff" mapstructure:"tariff"`
	Voucher VoucherConfig    `yaml:"voucher" mapstructure:"voucher"`
	Server  ServerConfig     `yaml:"server" mapstructure:"server"`
	Log     LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// TariffConfig holds the arithmetic tariff constants in rupiah.
type TariffConfig struct {
	BackfillPerMeter float64 `yaml:"backfill_per_meter" mapstructure:"backfill_per_meter"`
	CompensationFlat float64 `yaml:"compensation_flat" mapstructure:"compensation_flat"`
	RelayPerUnit     float64 `yaml:"relay_per_unit" mapstructure:"relay_per_unit"`
	TransportPerUnit float64 `yaml:"transport_per_unit" mapstructure:"transport_per_unit"`
}

// Rules converts the constants for the tariff calculator.
func (c TariffConfig) Rules() tariff.Rules {
	return tariff.Rules{
		BackfillPerMeter: decimal.NewFromFloat(c.BackfillPerMeter),
		CompensationFlat: decimal.NewFromFloat(c.CompensationFlat),
		RelayPerUnit:     decimal.NewFromFloat(c.RelayPerUnit),
		TransportPerUnit: decimal.NewFromFloat(c.TransportPerUnit),
	}
}

// VoucherConfig holds the free text printed on payment vouchers.
type VoucherConfig struct {
	PayerOrg  string         `yaml:"payer_org" mapstructure:"payer_org"`
	Place     string         `yaml:"place" mapstructure:"place"`
	License   string         `yaml:"license" mapstructure:"license"`
	Payer     voucher.Signer `yaml:"payer" mapstructure:"payer"`
	Officer   voucher.Signer `yaml:"officer" mapstructure:"officer"`
	OutputDir string         `yaml:"output_dir" mapstructure:"output_dir"`
	Profile   string         `yaml:"profile" mapstructure:"profile"`
}

// Document builds the voucher document for date, applying the configured
// profile file when one is set.
func (c VoucherConfig) Document(date model.Date) (voucher.Document, error) {
	doc := voucher.Document{
		PayerOrg: c.PayerOrg,
		Place:    c.Place,
		License:  c.License,
		Date:     date,
		Payer:    c.Payer,
		Officer:  c.Officer,
	}
	if c.Profile == "" {
		return doc, nil
	}
	p, err := voucher.LoadProfile(c.Profile)
	if err != nil {
		return doc, err
	}
	return p.Apply(doc)
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	MaxUploadMB int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GAJIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "gajian.db")
	v.SetDefault("rates.galian_lokal", "hg_galian_lokal.csv")
	v.SetDefault("rates.galian_luar", "hg_galian_luar.csv")
	v.SetDefault("rates.samplingan_lokal", "hg_samplingan_lokal.csv")
	v.SetDefault("rates.samplingan_luar", "hg_samplingan_luar.csv")
	v.SetDefault("tariff.backfill_per_meter", 12000)
	v.SetDefault("tariff.compensation_flat", 90000)
	v.SetDefault("tariff.relay_per_unit", 1000)
	v.SetDefault("tariff.transport_per_unit", 1000)
	v.SetDefault("voucher.payer_org", "Tim Eksplorasi Bauksit Kalbar")
	v.SetDefault("voucher.place", "Setabar")
	v.SetDefault("voucher.license", "BEST")
	v.SetDefault("voucher.payer.name", "Chandra Ardiansyah")
	v.SetDefault("voucher.payer.title", "Keu. / Umum")
	v.SetDefault("voucher.officer.name", "Rizky Lambas")
	v.SetDefault("voucher.officer.title", "Geologist")
	v.SetDefault("voucher.output_dir", ".")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the fields a command mode needs and reports every
// problem at once. Modes: session, calculate, vouchers, serve.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "session":
		errs = append(errs, c.validateStore()...)
	case "calculate":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateRates()...)
	case "vouchers":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateRates()...)
		if c.Voucher.OutputDir == "" {
			errs = append(errs, "voucher.output_dir is required")
		}
	case "serve":
		errs = append(errs, c.validateStore()...)
		errs = append(errs, c.validateRates()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			errs = append(errs, "server.rate_burst must be >= 1 when rate_limit is set")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateStore() []string {
	var errs []string
	switch c.Store.Driver {
	case "memory":
	case "sqlite", "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("store.driver %q must be sqlite, postgres or memory", c.Store.Driver))
	}
	return errs
}

func (c *Config) validateRates() []string {
	var errs []string
	for key, path := range map[string]string{
		"rates.galian_lokal":     c.Rates.ExcavationLocal,
		"rates.galian_luar":      c.Rates.ExcavationExternal,
		"rates.samplingan_lokal": c.Rates.SamplingLocal,
		"rates.samplingan_luar":  c.Rates.SamplingExternal,
	} {
		if path == "" {
			errs = append(errs, key+" is required")
		}
	}
	for key, v := range map[string]float64{
		"tariff.backfill_per_meter": c.Tariff.BackfillPerMeter,
		"tariff.compensation_flat":  c.Tariff.CompensationFlat,
		"tariff.relay_per_unit":     c.Tariff.RelayPerUnit,
		"tariff.transport_per_unit": c.Tariff.TransportPerUnit,
	} {
		if v < 0 {
			errs = append(errs, key+" must be >= 0")
		}
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
