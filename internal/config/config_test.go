package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
	if cfg.Practice.Words != nil {
		t.Fatalf("expected empty config")
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
lang = "en"
words = 25
duration = "30s"
tick = "50ms"
focus-weak = true

[store]
driver = "postgres"
dsn = "postgres://localhost/speedtype"

[server]
addr = ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != 25 {
		t.Fatalf("unexpected words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.Duration == nil || cfg.Practice.Duration.Duration != 30*time.Second {
		t.Fatalf("unexpected duration: %v", cfg.Practice.Duration)
	}
	if cfg.Practice.Tick == nil || cfg.Practice.Tick.Duration != 50*time.Millisecond {
		t.Fatalf("unexpected tick: %v", cfg.Practice.Tick)
	}
	if cfg.Practice.FocusWeak == nil || !*cfg.Practice.FocusWeak {
		t.Fatalf("expected focus-weak true")
	}
	if *cfg.Store.Driver != "postgres" || *cfg.Server.Addr != ":9000" {
		t.Fatalf("unexpected store/server config: %+v %+v", cfg.Store, cfg.Server)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"bad-duration.toml": "[practice]\nduration = \"soon\"\n",
		"unknown-key.toml":  "[practice]\nspeed = 3\n",
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Fatalf("%s: expected decode error", name)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDBDriver, "postgres")
	t.Setenv(EnvDBDSN, "postgres://db/typing")
	t.Setenv(EnvAddr, "")
	var cfg FileConfig
	ApplyEnv(&cfg)
	if cfg.Store.Driver == nil || *cfg.Store.Driver != "postgres" {
		t.Fatalf("expected driver from env")
	}
	if cfg.Store.DSN == nil || *cfg.Store.DSN != "postgres://db/typing" {
		t.Fatalf("expected dsn from env")
	}
	if cfg.Server.Addr != nil {
		t.Fatalf("expected empty env var to be ignored")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SPEEDTYPE_USER=from-file\nSPEEDTYPE_ADDR=:7000\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvUser, "already-set")
	t.Setenv(EnvAddr, "")
	os.Unsetenv(EnvAddr)
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv(EnvUser); got != "already-set" {
		t.Fatalf("expected existing variable kept, got %q", got)
	}
	if got := os.Getenv(EnvAddr); got != ":7000" {
		t.Fatalf("expected variable from file, got %q", got)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "speedtype", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "speedtype", "speedtype.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultWordListDir(); got != filepath.Join("/cfg", "speedtype", "wordlists") {
		t.Fatalf("unexpected wordlist dir %q", got)
	}
}
