package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	siteerrors "website/internal/errors"
)

// clearEnv blanks the variables LoadConfig consults so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "MAINTENANCE_MODE", "SITE_HOST", "SITE_LOGFILE", "SITE_PUBLICDIR"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.LogFile != "server.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "server.log")
	}
	if cfg.PartialsDir != filepath.Join("views", "partials") {
		t.Errorf("PartialsDir = %q", cfg.PartialsDir)
	}
	if cfg.MaintenanceEnabled() {
		t.Error("maintenance mode should be off by default")
	}
	if !cfg.Server.Gzip {
		t.Error("gzip should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.ViewsDir != "views" || cfg.PublicDir != "public" {
		t.Errorf("unexpected dirs: views=%q public=%q", cfg.ViewsDir, cfg.PublicDir)
	}
	if cfg.Server.ShutdownTimeoutSec != 10 {
		t.Errorf("ShutdownTimeoutSec = %d, want 10", cfg.Server.ShutdownTimeoutSec)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("Addr() = %q, want %q", cfg.Addr(), ":3000")
	}
}

func TestLoadConfig_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("MAINTENANCE_MODE", "on")
	t.Setenv("SITE_LOGFILE", "access.log")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != 8081 {
		t.Errorf("Port = %d, want 8081", cfg.Port)
	}
	if !cfg.MaintenanceEnabled() {
		t.Error("MAINTENANCE_MODE=on should enable maintenance mode")
	}
	if cfg.LogFile != "access.log" {
		t.Errorf("LogFile = %q, want %q", cfg.LogFile, "access.log")
	}
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	content := `{"port": 4000, "publicDir": "assets", "server": {"gzip": false}}`
	if err := os.WriteFile(filepath.Join(root, "site.json"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != 4000 {
		t.Errorf("Port = %d, want 4000", cfg.Port)
	}
	if cfg.PublicDir != "assets" {
		t.Errorf("PublicDir = %q, want %q", cfg.PublicDir, "assets")
	}
	if cfg.Server.Gzip {
		t.Error("gzip should be disabled by the file")
	}
	// Untouched keys keep their defaults.
	if cfg.LogFile != "server.log" {
		t.Errorf("LogFile = %q, want default", cfg.LogFile)
	}

	// Environment beats the file.
	t.Setenv("PORT", "5000")
	cfg, err = LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAINTENANCE_MODE", "sometimes")

	_, err := LoadConfig(t.TempDir())
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Field != "maintenanceMode" {
		t.Errorf("Field = %q, want maintenanceMode", cfgErr.Field)
	}
	if code := siteerrors.CodeOf(err); code != siteerrors.ConfigInvalid {
		t.Errorf("CodeOf = %s, want %s", code, siteerrors.ConfigInvalid)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"ON", true, false},
		{"true", true, false},
		{"off", false, false},
		{"", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero port", func(c *Config) { c.Port = 0 }, "port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port"},
		{"empty log file", func(c *Config) { c.LogFile = "" }, "logFile"},
		{"empty views", func(c *Config) { c.ViewsDir = "" }, "viewsDir"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.maxBackups"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if code := siteerrors.CodeOf(err); code != siteerrors.ConfigInvalid {
				t.Errorf("CodeOf = %s, want %s", code, siteerrors.ConfigInvalid)
			}
		})
	}
}

func TestSave(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Port = 4242
	path, err := cfg.Save(root)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "site.toml" {
		t.Errorf("Save wrote %q, want site.toml", path)
	}

	var decoded Config
	if _, err := toml.DecodeFile(path, &decoded); err != nil {
		t.Fatalf("decoding saved file: %v", err)
	}
	if decoded.Port != 4242 {
		t.Errorf("decoded Port = %d, want 4242", decoded.Port)
	}

	// The saved file is picked up by LoadConfig.
	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.Port != 4242 {
		t.Errorf("loaded Port = %d, want 4242", loaded.Port)
	}
}

func TestEncode(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("json", func(t *testing.T) {
		out, err := cfg.Encode("json")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(out), `"port": 3000`) {
			t.Errorf("json output missing port: %s", out)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := cfg.Encode("yaml")
		if err != nil {
			t.Fatal(err)
		}
		var decoded Config
		if err := yaml.Unmarshal(out, &decoded); err != nil {
			t.Fatalf("yaml output does not parse: %v", err)
		}
		if decoded.LogFile != "server.log" {
			t.Errorf("LogFile = %q", decoded.LogFile)
		}
	})

	t.Run("toml", func(t *testing.T) {
		out, err := cfg.Encode("toml")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(out), "port = 3000") {
			t.Errorf("toml output missing port: %s", out)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := cfg.Encode("xml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}
