package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment overrides, applied over the config file.
const (
	EnvDBDriver = "SPEEDTYPE_DB_DRIVER"
	EnvDBDSN    = "SPEEDTYPE_DB_DSN"
	EnvAddr     = "SPEEDTYPE_ADDR"
	EnvUser     = "SPEEDTYPE_USER"
)

// LoadDotEnv loads variables from the given .env files without overriding
// variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides file values with environment variables when set.
func ApplyEnv(cfg *FileConfig) {
	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.Store.Driver = &v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		cfg.Store.DSN = &v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = &v
	}
	if v := os.Getenv(EnvUser); v != "" {
		cfg.Practice.User = &v
	}
}
