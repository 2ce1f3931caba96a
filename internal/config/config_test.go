package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Petronorm/internal/calc/cipw"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"TOKEN_KEY": "secret"}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, DriverSQLite, c.DatabaseDriver)
	assert.Equal(t, "petronorm.db", c.SQLitePath)
	assert.Equal(t, 1.0, c.RateLimit)
	assert.Equal(t, 3, c.RateBurst)
	assert.Zero(t, c.NormWorkers)
	assert.False(t, c.TLS())
	assert.Equal(t, cipw.DefaultOptions(), c.Norm)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no token", map[string]string{}},
		{"driver", map[string]string{"TOKEN_KEY": "k", "DATABASE_DRIVER": "mysql"}},
		{"rate", map[string]string{"TOKEN_KEY": "k", "RATE_LIMIT": "fast"}},
		{"burst", map[string]string{"TOKEN_KEY": "k", "RATE_BURST": "0"}},
		{"workers", map[string]string{"TOKEN_KEY": "k", "NORM_WORKERS": "-2"}},
		{"norm file", map[string]string{"TOKEN_KEY": "k", "NORM_CONFIG": "/nonexistent/norm.toml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.env))
			assert.Error(t, err)
		})
	}
	_, err := FromEnv(env(nil))
	assert.ErrorIs(t, err, ErrMissingTokenKey)
	_, err = FromEnv(env(map[string]string{"TOKEN_KEY": "k", "DATABASE_DRIVER": "mysql"}))
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	norm := filepath.Join(dir, "norm.toml")
	require.NoError(t, os.WriteFile(norm, []byte("[norm]\nminor_included = true\nto_round = 2\n"), 0o600))

	path := filepath.Join(dir, ".env")
	content := "TOKEN_KEY=abc\nADDR=:9443\nTLS_CERT=server.crt\nTLS_KEY=server.key\n" +
		"DATABASE_DRIVER=postgres\nDATABASE_URL=postgres://u@localhost/petro\nNORM_WORKERS=4\n" +
		"NORM_CONFIG=" + norm + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":9443", c.Addr)
	assert.True(t, c.TLS())
	assert.Equal(t, DriverPostgres, c.DatabaseDriver)
	assert.Equal(t, "postgres://u@localhost/petro", c.DatabaseURL)
	assert.Equal(t, 4, c.NormWorkers)
	assert.True(t, c.Norm.MinorIncluded)
	assert.Equal(t, 2, c.Norm.ToRound)

	_, err = LoadFile(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestParseNorm(t *testing.T) {
	base := cipw.DefaultOptions()

	o, err := ParseNorm([]byte(`
[norm]
skip_cols = 2
normalize_entry = true
co2_cancrinite = 0.25
co2_calcite = 0.75
`), base)
	require.NoError(t, err)
	assert.Equal(t, cipw.Options{SkipCols: 2, NormalizeEntry: true, ToRound: 4, CO2Cancrinite: 0.25, CO2Calcite: 0.75}, o)

	o, err = ParseNorm(nil, base)
	require.NoError(t, err)
	assert.Equal(t, base, o)

	_, err = ParseNorm([]byte("[norm]\nco2_calcite = 0.5\n"), base)
	assert.ErrorIs(t, err, cipw.ErrInvalidCO2Split)

	_, err = ParseNorm([]byte("[norm]\nrounding = 3\n"), base)
	assert.Error(t, err)

	_, err = ParseNorm([]byte("[norm\n"), base)
	assert.Error(t, err)
}
