package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	siteerrors "website/internal/errors"
)

// DefaultPort is used when neither PORT nor the config file sets one.
const DefaultPort = 3000

// FileName is the base name (without extension) of the optional site config file.
const FileName = "site"

// Config represents the complete website configuration
type Config struct {
	Host            string `json:"host" yaml:"host" toml:"host" mapstructure:"host"`
	Port            int    `json:"port" yaml:"port" toml:"port" mapstructure:"port"`
	ViewsDir        string `json:"viewsDir" yaml:"viewsDir" toml:"viewsDir" mapstructure:"viewsDir"`
	PartialsDir     string `json:"partialsDir" yaml:"partialsDir" toml:"partialsDir" mapstructure:"partialsDir"`
	PublicDir       string `json:"publicDir" yaml:"publicDir" toml:"publicDir" mapstructure:"publicDir"`
	LogFile         string `json:"logFile" yaml:"logFile" toml:"logFile" mapstructure:"logFile"`
	MaintenanceMode string `json:"maintenanceMode" yaml:"maintenanceMode" toml:"maintenanceMode" mapstructure:"maintenanceMode"`

	Server  ServerConfig  `json:"server" yaml:"server" toml:"server" mapstructure:"server"`
	Watch   WatchConfig   `json:"watch" yaml:"watch" toml:"watch" mapstructure:"watch"`
	Logging LoggingConfig `json:"logging" yaml:"logging" toml:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server tuning
type ServerConfig struct {
	Gzip               bool `json:"gzip" yaml:"gzip" toml:"gzip" mapstructure:"gzip"`
	ReadTimeoutSec     int  `json:"readTimeoutSec" yaml:"readTimeoutSec" toml:"readTimeoutSec" mapstructure:"readTimeoutSec"`
	WriteTimeoutSec    int  `json:"writeTimeoutSec" yaml:"writeTimeoutSec" toml:"writeTimeoutSec" mapstructure:"writeTimeoutSec"`
	IdleTimeoutSec     int  `json:"idleTimeoutSec" yaml:"idleTimeoutSec" toml:"idleTimeoutSec" mapstructure:"idleTimeoutSec"`
	ShutdownTimeoutSec int  `json:"shutdownTimeoutSec" yaml:"shutdownTimeoutSec" toml:"shutdownTimeoutSec" mapstructure:"shutdownTimeoutSec"`
}

// WatchConfig contains template watcher configuration
type WatchConfig struct {
	Enabled        bool `json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	PollIntervalMs int  `json:"pollIntervalMs" yaml:"pollIntervalMs" toml:"pollIntervalMs" mapstructure:"pollIntervalMs"`
	DebounceMs     int  `json:"debounceMs" yaml:"debounceMs" toml:"debounceMs" mapstructure:"debounceMs"`
}

// LoggingConfig contains diagnostics logging configuration.
// The request log (LogFile) is separate and never rotated.
type LoggingConfig struct {
	Level      string          `json:"level" yaml:"level" toml:"level" mapstructure:"level"`
	File       string          `json:"file" yaml:"file" toml:"file" mapstructure:"file"`
	MaxSize    string          `json:"maxSize" yaml:"maxSize" toml:"maxSize" mapstructure:"maxSize"`
	MaxBackups int             `json:"maxBackups" yaml:"maxBackups" toml:"maxBackups" mapstructure:"maxBackups"`
	Remote     RemoteLogConfig `json:"remote" yaml:"remote" toml:"remote" mapstructure:"remote"`
}

// RemoteLogConfig configures the Loki push sink. Empty Endpoint disables it.
type RemoteLogConfig struct {
	Endpoint      string            `json:"endpoint" yaml:"endpoint" toml:"endpoint" mapstructure:"endpoint"`
	Labels        map[string]string `json:"labels,omitempty" yaml:"labels,omitempty" toml:"labels,omitempty" mapstructure:"labels"`
	BatchSize     int               `json:"batchSize" yaml:"batchSize" toml:"batchSize" mapstructure:"batchSize"`
	FlushInterval string            `json:"flushInterval" yaml:"flushInterval" toml:"flushInterval" mapstructure:"flushInterval"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Port:            DefaultPort,
		ViewsDir:        "views",
		PartialsDir:     filepath.Join("views", "partials"),
		PublicDir:       "public",
		LogFile:         "server.log",
		MaintenanceMode: "off",
		Server: ServerConfig{
			Gzip:               true,
			ReadTimeoutSec:     15,
			WriteTimeoutSec:    15,
			IdleTimeoutSec:     60,
			ShutdownTimeoutSec: 10,
		},
		Watch: WatchConfig{
			Enabled:        false,
			PollIntervalMs: 1000,
			DebounceMs:     250,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxBackups: 3,
			Remote: RemoteLogConfig{
				BatchSize:     100,
				FlushInterval: "5s",
			},
		},
	}
}

// setDefaults mirrors DefaultConfig into viper so every key is known for env lookups.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("host", d.Host)
	v.SetDefault("port", d.Port)
	v.SetDefault("viewsDir", d.ViewsDir)
	v.SetDefault("partialsDir", d.PartialsDir)
	v.SetDefault("publicDir", d.PublicDir)
	v.SetDefault("logFile", d.LogFile)
	v.SetDefault("maintenanceMode", d.MaintenanceMode)

	v.SetDefault("server.gzip", d.Server.Gzip)
	v.SetDefault("server.readTimeoutSec", d.Server.ReadTimeoutSec)
	v.SetDefault("server.writeTimeoutSec", d.Server.WriteTimeoutSec)
	v.SetDefault("server.idleTimeoutSec", d.Server.IdleTimeoutSec)
	v.SetDefault("server.shutdownTimeoutSec", d.Server.ShutdownTimeoutSec)

	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.pollIntervalMs", d.Watch.PollIntervalMs)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("logging.remote.endpoint", d.Logging.Remote.Endpoint)
	v.SetDefault("logging.remote.batchSize", d.Logging.Remote.BatchSize)
	v.SetDefault("logging.remote.flushInterval", d.Logging.Remote.FlushInterval)
}

// LoadConfig loads configuration for the site rooted at root.
//
// Sources, lowest precedence first: defaults, site.{json,yaml,toml} in root,
// SITE_* environment variables, and the bare PORT and MAINTENANCE_MODE variables.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.AddConfigPath(root)

	v.SetEnvPrefix("SITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "PORT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("maintenanceMode", "MAINTENANCE_MODE"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading site config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding site config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/site.toml
func (c *Config) Save(root string) (string, error) {
	path := filepath.Join(root, FileName+".toml")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}
	return path, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaintenanceEnabled reports whether maintenance mode is switched on.
// Validate has already rejected unknown values.
func (c *Config) MaintenanceEnabled() bool {
	on, _ := ParseMode(c.MaintenanceMode)
	return on
}

// ParseMode parses an on/off toggle. The empty string means off.
func ParseMode(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no", "":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

// Validate checks if the configuration is valid. Failures carry the
// CONFIG_INVALID code and wrap a *ConfigError naming the field.
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return siteerrors.New(siteerrors.ConfigInvalid, "invalid site config", err)
	}
	return nil
}

func (c *Config) validate() *ConfigError {
	if c.Port <= 0 || c.Port > 65535 {
		return &ConfigError{Field: "port", Message: fmt.Sprintf("must be between 1 and 65535, got %d", c.Port)}
	}
	if _, err := ParseMode(c.MaintenanceMode); err != nil {
		return &ConfigError{Field: "maintenanceMode", Message: err.Error()}
	}
	if c.ViewsDir == "" {
		return &ConfigError{Field: "viewsDir", Message: "must not be empty"}
	}
	if c.PublicDir == "" {
		return &ConfigError{Field: "publicDir", Message: "must not be empty"}
	}
	if c.LogFile == "" {
		return &ConfigError{Field: "logFile", Message: "must not be empty"}
	}
	if c.Logging.MaxBackups < 0 {
		return &ConfigError{Field: "logging.maxBackups", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
