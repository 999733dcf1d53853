package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/gajian-cli/internal/model"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "gajian.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "hg_galian_lokal.csv", cfg.Rates.ExcavationLocal)
	assert.Equal(t, "hg_samplingan_luar.csv", cfg.Rates.SamplingExternal)
	assert.InDelta(t, 12000, cfg.Tariff.BackfillPerMeter, 0.001)
	assert.InDelta(t, 90000, cfg.Tariff.CompensationFlat, 0.001)
	assert.Equal(t, "Tim Eksplorasi Bauksit Kalbar", cfg.Voucher.PayerOrg)
	assert.Equal(t, "Geologist", cfg.Voucher.Officer.Title)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/gajian
rates:
  galian_lokal: rates/lokal.csv
tariff:
  compensation_flat: 100000
voucher:
  license: "77/2025"
  payer:
    name: Dewi
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/gajian", cfg.Store.DatabaseURL)
	assert.Equal(t, "rates/lokal.csv", cfg.Rates.ExcavationLocal)
	assert.InDelta(t, 100000, cfg.Tariff.CompensationFlat, 0.001)
	assert.Equal(t, "77/2025", cfg.Voucher.License)
	assert.Equal(t, "Dewi", cfg.Voucher.Payer.Name)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, "hg_galian_luar.csv", cfg.Rates.ExcavationExternal)
	assert.Equal(t, "Keu. / Umum", cfg.Voucher.Payer.Title)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("GAJIAN_STORE_DRIVER", "memory")
	t.Setenv("GAJIAN_LOG_LEVEL", "warn")
	t.Setenv("GAJIAN_VOUCHER_PLACE", "Sandai")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "Sandai", cfg.Voucher.Place)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestTariffConfig_Rules(t *testing.T) {
	rules := TariffConfig{BackfillPerMeter: 12000, CompensationFlat: 90000, RelayPerUnit: 1000, TransportPerUnit: 1500}.Rules()
	assert.Equal(t, "12000", rules.BackfillPerMeter.String())
	assert.Equal(t, "1500", rules.TransportPerUnit.String())
}

func TestVoucherConfig_Document(t *testing.T) {
	c := VoucherConfig{PayerOrg: "Tim", Place: "Setabar", License: "BEST"}
	doc, err := c.Document(model.NewDate(2025, time.June, 26))
	require.NoError(t, err)
	assert.Equal(t, "Setabar, 26 Juni 2025", doc.DateText())
	assert.Equal(t, "BEST", doc.License)
}

func TestVoucherConfig_DocumentWithProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("voucher:\n  place: Sandai\n"), 0644))

	c := VoucherConfig{Place: "Setabar", Profile: path}
	doc, err := c.Document(model.NewDate(2025, time.June, 26))
	require.NoError(t, err)
	assert.Equal(t, "Sandai", doc.Place)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "gajian.db"
	cfg.Rates.ExcavationLocal = "a.csv"
	cfg.Rates.ExcavationExternal = "b.csv"
	cfg.Rates.SamplingLocal = "c.csv"
	cfg.Rates.SamplingExternal = "d.csv"
	cfg.Tariff = TariffConfig{BackfillPerMeter: 12000, CompensationFlat: 90000, RelayPerUnit: 1000, TransportPerUnit: 1000}
	cfg.Voucher.OutputDir = "."
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 10
	cfg.Server.RateBurst = 20
	return cfg
}

func TestValidate_AllModesPass(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"session", "calculate", "vouchers", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateSession_BadDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("session")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mysql" must be sqlite, postgres or memory`)
}

func TestValidateSession_MemoryNeedsNoURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "memory"
	cfg.Store.DatabaseURL = ""

	assert.NoError(t, cfg.Validate("session"))
}

func TestValidateCalculate_MissingFields(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""
	cfg.Rates.SamplingExternal = ""
	cfg.Tariff.RelayPerUnit = -1

	err := cfg.Validate("calculate")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "rates.samplingan_luar is required")
	assert.Contains(t, err.Error(), "tariff.relay_per_unit must be >= 0")
}

func TestValidateVouchers_NoOutputDir(t *testing.T) {
	cfg := validDefaults()
	cfg.Voucher.OutputDir = ""

	err := cfg.Validate("vouchers")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "voucher.output_dir is required")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_RateLimit(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RateBurst = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate_burst")

	cfg.Server.RateLimit = 0
	assert.NoError(t, cfg.Validate("serve"), "limiter disabled")

	cfg.Server.RateLimit = -1
	assert.Error(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
