package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DeviceConfig stores per-device settings.
type DeviceConfig struct {
	Nickname string `yaml:"nickname,omitempty"`
	WiFiAddr string `yaml:"wifi_addr,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	ADBPath string `yaml:"adb_path,omitempty"`
	// Banner is the host identity used for the debug handshake.
	Banner string `yaml:"banner"`
	// Device is the serial to use when several devices are attached.
	Device string `yaml:"device,omitempty"`
	// AuthTimeout bounds the wait for the user to accept the debug prompt.
	// Zero waits indefinitely.
	AuthTimeout time.Duration `yaml:"auth_timeout,omitempty"`
	// CommandTimeout bounds each shell command. Zero waits indefinitely.
	CommandTimeout time.Duration `yaml:"command_timeout,omitempty"`
	// Packages is the default list for `wearctl disable`.
	Packages []string                `yaml:"packages"`
	Devices  map[string]DeviceConfig `yaml:"devices,omitempty"`
}

// Environment variables that override the config file.
const (
	EnvADBPath        = "WEARCTL_ADB_PATH"
	EnvDevice         = "WEARCTL_DEVICE"
	EnvAuthTimeout    = "WEARCTL_AUTH_TIMEOUT"
	EnvCommandTimeout = "WEARCTL_COMMAND_TIMEOUT"
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Banner: "host::",
		Packages: []string{
			"com.mobvoi.wear.fitness.aw",
		},
		Devices: make(map[string]DeviceConfig),
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "wearctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "wearctl")
}

// ConfigPath returns the config file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies .env files and WEARCTL_* environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read config: %w", err)
	}
	if cfg.Devices == nil {
		cfg.Devices = make(map[string]DeviceConfig)
	}

	for _, path := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if err := loadDotEnv(path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvADBPath); v != "" {
		c.ADBPath = v
	}
	if v := os.Getenv(EnvDevice); v != "" {
		c.Device = v
	}
	for env, dst := range map[string]*time.Duration{
		EnvAuthTimeout:    &c.AuthTimeout,
		EnvCommandTimeout: &c.CommandTimeout,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = d
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := ConfigPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Nicknames returns serial -> nickname for every device that has one.
func (c *Config) Nicknames() map[string]string {
	names := make(map[string]string, len(c.Devices))
	for serial, dc := range c.Devices {
		if dc.Nickname != "" {
			names[serial] = dc.Nickname
		}
	}
	return names
}

// ResolveDevice maps a nickname to the device's wireless address when one is
// configured, otherwise to its serial. Anything else is returned unchanged.
func (c *Config) ResolveDevice(name string) string {
	for serial, dc := range c.Devices {
		if dc.Nickname == "" || dc.Nickname != name {
			continue
		}
		if dc.WiFiAddr != "" {
			return dc.WiFiAddr
		}
		return serial
	}
	return name
}

// SerialFor maps a nickname or a configured wireless address to the device's
// serial, so the same watch is recognized over USB and wireless.
func (c *Config) SerialFor(name string) string {
	for serial, dc := range c.Devices {
		if name != "" && (dc.Nickname == name || dc.WiFiAddr == name) {
			return serial
		}
	}
	return name
}
