package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gajian-cli/internal/config"
	"github.com/sells-group/gajian-cli/internal/store"
)

func TestAppEnv_Close_Nil(t *testing.T) {
	env := &appEnv{}
	assert.NotPanics(t, func() {
		env.Close()
	})
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "gajian.db"),
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &store.SQLiteStore{}, st)
	require.NoError(t, st.Close())
}

func TestInitStore_Memory(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "memory"}}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, st)
}

func TestInitStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "mysql"}}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitEnv_FailsValidation(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "postgres"}}

	env, err := initEnv(context.Background(), "session")
	assert.Nil(t, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
}

func TestInitEnv_SessionModeSkipsRates(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "memory"}}

	env, err := initEnv(context.Background(), "session")
	require.NoError(t, err)
	defer env.Close()
	assert.NotNil(t, env.Service)
}

func TestInitEnv_MissingRateFile(t *testing.T) {
	dir := t.TempDir()
	cfg = &config.Config{Store: config.StoreConfig{Driver: "memory"}}
	cfg.Rates.ExcavationLocal = filepath.Join(dir, "a.csv")
	cfg.Rates.ExcavationExternal = filepath.Join(dir, "b.csv")
	cfg.Rates.SamplingLocal = filepath.Join(dir, "c.csv")
	cfg.Rates.SamplingExternal = filepath.Join(dir, "d.csv")

	env, err := initEnv(context.Background(), "calculate")
	assert.Nil(t, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load rate tables")
}
