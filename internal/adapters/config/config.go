// Package config loads client settings from ~/.sana/config.toml with SANA_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".sana"

	configFileMode = 0o600
	configDirMode  = 0o700
	tempPattern    = ".config-*.toml.tmp"
)

type Server struct {
	BaseURL string        `mapstructure:"base_url" toml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
}

type Auth struct {
	// RefreshSkew refreshes the access token proactively when it expires
	// within this window. Zero disables proactive refresh.
	RefreshSkew time.Duration `mapstructure:"refresh_skew" toml:"refresh_skew"`
}

type Availability struct {
	TTL             time.Duration `mapstructure:"ttl" toml:"ttl"`
	StaleAfter      time.Duration `mapstructure:"stale_after" toml:"stale_after"`
	SelfServicePoll time.Duration `mapstructure:"self_service_poll" toml:"self_service_poll"`
	AssignedPoll    time.Duration `mapstructure:"assigned_poll" toml:"assigned_poll"`
}

type Booking struct {
	// Cutoff is the client-side "too close to start" booking policy.
	Cutoff time.Duration `mapstructure:"cutoff" toml:"cutoff"`
}

type Treatment struct {
	StatusTTL time.Duration `mapstructure:"status_ttl" toml:"status_ttl"`
}

type Config struct {
	Server       Server       `mapstructure:"server" toml:"server"`
	Auth         Auth         `mapstructure:"auth" toml:"auth"`
	Availability Availability `mapstructure:"availability" toml:"availability"`
	Booking      Booking      `mapstructure:"booking" toml:"booking"`
	Treatment    Treatment    `mapstructure:"treatment" toml:"treatment"`
	Verbose      bool         `mapstructure:"verbose" toml:"verbose"`
}

func Default() Config {
	return Config{
		Server:       Server{BaseURL: "https://api.sana.care", Timeout: 30 * time.Second},
		Auth:         Auth{RefreshSkew: 30 * time.Second},
		Availability: Availability{TTL: 2 * time.Minute, StaleAfter: time.Minute, SelfServicePoll: time.Minute, AssignedPoll: 15 * time.Second},
		Booking:      Booking{Cutoff: 5 * time.Minute},
		Treatment:    Treatment{StatusTTL: 5 * time.Minute},
	}
}

// Load reads the config file when present and falls back to defaults
// otherwise. Environment variables such as SANA_SERVER_BASE_URL win over
// both.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix("SANA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Server.BaseURL == "" {
		return Config{}, errors.New("server.base_url is empty")
	}

	return cfg, nil
}

// Dir is the sana config directory, ~/.sana.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// SecretsDir is where the file secret store keeps tokens when no password
// manager is available.
func SecretsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "secrets"), nil
}

// Path is the config file location, whether or not it exists yet.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configName+"."+configType), nil
}

// WriteDefault writes the default config scaffold. It refuses to overwrite
// an existing file and writes atomically via a temp file in the same
// directory.
func WriteDefault() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat config file: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	payload, err := toml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encode default config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("write config scaffold: %w", err)
	}
	if err := tmp.Chmod(configFileMode); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("chmod config scaffold: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("install config scaffold: %w", err)
	}

	return path, nil
}

func setDefaults(v *viper.Viper, def Config) {
	v.SetDefault("server.base_url", def.Server.BaseURL)
	v.SetDefault("server.timeout", def.Server.Timeout)
	v.SetDefault("auth.refresh_skew", def.Auth.RefreshSkew)
	v.SetDefault("availability.ttl", def.Availability.TTL)
	v.SetDefault("availability.stale_after", def.Availability.StaleAfter)
	v.SetDefault("availability.self_service_poll", def.Availability.SelfServicePoll)
	v.SetDefault("availability.assigned_poll", def.Availability.AssignedPoll)
	v.SetDefault("booking.cutoff", def.Booking.Cutoff)
	v.SetDefault("treatment.status_ttl", def.Treatment.StatusTTL)
	v.SetDefault("verbose", false)
}
