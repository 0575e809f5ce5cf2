package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	AppDirName = "opskit"

	// Env var pointing at an alternate config file (--config still wins).
	ConfigEnvVar = "OPSKIT_CONFIG"

	DefaultGrafanaDir = "./grafana-dash-backup/"
	DefaultLogLevel   = "info"
)

// Config is built once per run and handed to every command.
type Config struct {
	LogLevel string        `toml:"log_level"`
	AWS      AWSConfig     `toml:"aws"`
	Grafana  GrafanaConfig `toml:"grafana"`
	Alias    Aliases       `toml:"alias"`

	// Path is the config file that was read, empty if none existed.
	Path string `toml:"-"`
}

type AWSConfig struct {
	Profile string `toml:"profile"`
	Region  string `toml:"region"`
}

type GrafanaConfig struct {
	Host   string `toml:"host"`
	APIKey string `toml:"api_key"`
	Dir    string `toml:"dir"`
}

// Aliases is a map of alias name to target command.
type Aliases map[string]string

// envOverrides are the environment variables that override the file.
type envOverrides struct {
	LogLevel      string `env:"OPSKIT_LOG_LEVEL"`
	AWSProfile    string `env:"AWS_PROFILE"`
	AWSRegion     string `env:"AWS_REGION"`
	GrafanaHost   string `env:"GRAFANA_API_URL"`
	GrafanaAPIKey string `env:"GRAFANA_API_KEY"`
	GrafanaDir    string `env:"GRAFANA_BACKUP_DIR"`
}

// ConfigPath returns the config file path:
//
//	$XDG_CONFIG_HOME/opskit/config.toml
//
// or
//
//	~/.config/opskit/config.toml
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(home, ".config")
	}

	return filepath.Join(base, AppDirName, "config.toml"), nil
}

// ResolvePath picks the config file based on precedence:
// custom CLI path > env var > XDG default
func ResolvePath(custom string) (path string, explicit bool, err error) {
	if strings.TrimSpace(custom) != "" {
		p, err := ExpandUser(custom)
		return p, true, err
	}
	if env := strings.TrimSpace(os.Getenv(ConfigEnvVar)); env != "" {
		p, err := ExpandUser(env)
		return p, true, err
	}
	p, err := ConfigPath()
	return p, false, err
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// replacing variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the config file (see ResolvePath), applies defaults and then
// environment overrides. A missing default file yields the defaults; a
// missing file that was asked for explicitly is an error. Malformed TOML is
// always an error.
func Load(custom string) (*Config, error) {
	path, explicit, err := ResolvePath(custom)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, err
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.applyEnv(ov)
	cfg.applyDefaults()

	if cfg.Grafana.Dir, err = ExpandUser(cfg.Grafana.Dir); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(ov envOverrides) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&c.LogLevel, ov.LogLevel)
	set(&c.AWS.Profile, ov.AWSProfile)
	set(&c.AWS.Region, ov.AWSRegion)
	set(&c.Grafana.Host, ov.GrafanaHost)
	set(&c.Grafana.APIKey, ov.GrafanaAPIKey)
	set(&c.Grafana.Dir, ov.GrafanaDir)
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Grafana.Dir == "" {
		c.Grafana.Dir = DefaultGrafanaDir
	}
	if c.Alias == nil {
		c.Alias = make(Aliases)
	}
}

// ExpandUser expands a leading "~/" to the user home directory.
// If the path doesn't start with "~", it returns it unchanged.
func ExpandUser(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if p == "~" {
			return home, nil
		}
		return filepath.Join(home, p[2:]), nil
	}
	return p, nil
}
