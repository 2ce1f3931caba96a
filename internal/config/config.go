// Package config reads process settings from the environment and norm
// defaults from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"Petronorm/internal/calc/cipw"
)

var (
	ErrMissingTokenKey = errors.New("TOKEN_KEY environment variable is not set")
	ErrUnknownDriver   = errors.New("unknown DATABASE_DRIVER")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Addr    string
	TLSCert string
	TLSKey  string

	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	TokenKey  string
	RateLimit float64
	RateBurst int

	NormWorkers int
	NormConfig  string
	Norm        cipw.Options
}

// TLS reports whether both a certificate and a key are configured.
func (c *Config) TLS() bool { return c.TLSCert != "" && c.TLSKey != "" }

// Load reads .env when present, then the process environment, then the
// norm defaults file named by NORM_CONFIG.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// LoadFile is Load for an explicit env file that does not touch the
// process environment.
func LoadFile(path string) (*Config, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return FromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
}

// FromEnv builds a Config from lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(k, def string) string {
		if v, ok := lookup(k); ok && v != "" {
			return v
		}
		return def
	}

	c := &Config{
		Addr:           get("ADDR", ":8080"),
		TLSCert:        get("TLS_CERT", ""),
		TLSKey:         get("TLS_KEY", ""),
		DatabaseDriver: get("DATABASE_DRIVER", DriverSQLite),
		DatabaseURL:    get("DATABASE_URL", ""),
		SQLitePath:     get("SQLITE_PATH", "petronorm.db"),
		TokenKey:       get("TOKEN_KEY", ""),
		NormConfig:     get("NORM_CONFIG", ""),
	}
	if c.TokenKey == "" {
		return nil, ErrMissingTokenKey
	}
	if c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, c.DatabaseDriver)
	}

	var err error
	if c.RateLimit, err = strconv.ParseFloat(get("RATE_LIMIT", "1"), 64); err != nil || c.RateLimit < 0 {
		return nil, fmt.Errorf("RATE_LIMIT: invalid value %q", get("RATE_LIMIT", ""))
	}
	if c.RateBurst, err = strconv.Atoi(get("RATE_BURST", "3")); err != nil || c.RateBurst < 1 {
		return nil, fmt.Errorf("RATE_BURST: invalid value %q", get("RATE_BURST", ""))
	}
	if c.NormWorkers, err = strconv.Atoi(get("NORM_WORKERS", "0")); err != nil || c.NormWorkers < 0 {
		return nil, fmt.Errorf("NORM_WORKERS: invalid value %q", get("NORM_WORKERS", ""))
	}

	c.Norm = cipw.DefaultOptions()
	if c.NormConfig != "" {
		if c.Norm, err = LoadNorm(c.NormConfig, c.Norm); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type normFile struct {
	Norm cipw.Options `toml:"norm"`
}

// LoadNorm reads the [norm] table of a TOML file over base. Keys the file
// omits keep the value from base.
func LoadNorm(path string, base cipw.Options) (cipw.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("norm config: %w", err)
	}
	return ParseNorm(data, base)
}

func ParseNorm(data []byte, base cipw.Options) (cipw.Options, error) {
	f := normFile{Norm: base}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return base, fmt.Errorf("norm config: %w", err)
	}
	if err := f.Norm.Validate(); err != nil {
		return base, fmt.Errorf("norm config: %w", err)
	}
	return f.Norm, nil
}
