package config

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.DBPath != "./data/warsha.db" {
		t.Errorf("expected default db path, got %s", cfg.DBPath)
	}
	if cfg.ExportDir != "." {
		t.Errorf("expected default export dir, got %s", cfg.ExportDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WARSHA_DB_PATH", "/tmp/custom.db")
	t.Setenv("WARSHA_EXPORT_DIR", "/tmp/exports")
	t.Setenv("WARSHA_LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("db path not taken from env: %s", cfg.DBPath)
	}
	if cfg.ExportDir != "/tmp/exports" {
		t.Errorf("export dir not taken from env: %s", cfg.ExportDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level not taken from env: %s", cfg.LogLevel)
	}
}

func TestValidateCreatesDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := &Config{
		DBPath:    filepath.Join(base, "nested", "ledger.db"),
		ExportDir: filepath.Join(base, "exports"),
		LogLevel:  "info",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "empty db path",
			cfg:  Config{DBPath: "", ExportDir: ".", LogLevel: "info"},
			want: "database path",
		},
		{
			name: "empty export dir",
			cfg:  Config{DBPath: "ledger.db", ExportDir: "", LogLevel: "info"},
			want: "export directory",
		},
		{
			name: "bad log level",
			cfg:  Config{DBPath: "ledger.db", ExportDir: ".", LogLevel: "verbose"},
			want: "invalid log level",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"anything else", slog.LevelInfo},
	}
	for _, tc := range cases {
		cfg := &Config{LogLevel: tc.level}
		if got := cfg.SlogLevel(); got != tc.want {
			t.Errorf("level %q: expected %v, got %v", tc.level, tc.want, got)
		}
	}
}
