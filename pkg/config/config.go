package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for scriptcat
type Config struct {
	Manifest     string       `mapstructure:"manifest"`
	IndexFile    string       `mapstructure:"index_file"`
	ScriptSuffix string       `mapstructure:"script_suffix"`
	ExcludeDirs  []string     `mapstructure:"exclude_dirs"`
	Exclude      []string     `mapstructure:"exclude"`
	Header       HeaderConfig `mapstructure:"header"`
	Device       DeviceConfig `mapstructure:"device"`
}

// HeaderConfig controls standard header synthesis
type HeaderConfig struct {
	WrapWidth int    `mapstructure:"wrap_width"`
	LinkBase  string `mapstructure:"link_base"`
}

// DeviceConfig holds settings for the device RPC uploader
type DeviceConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	ChunkSize int           `mapstructure:"chunk_size"`
}

var defaultConfig = Config{
	Manifest:     "examples-manifest.json",
	IndexFile:    "SHELLY_MJS.md",
	ScriptSuffix: ".shelly.js",
	ExcludeDirs:  []string{"node_modules", ".git", "tools", "_backup"},
	Exclude:      []string{},
	Header: HeaderConfig{
		WrapWidth: 70,
		LinkBase:  "https://github.com/ALLTERCO/shelly-script-examples/blob/main/",
	},
	Device: DeviceConfig{
		Timeout:   2 * time.Second,
		ChunkSize: 1024,
	},
}

// Default returns a copy of the built-in configuration
func Default() *Config {
	c := defaultConfig
	c.ExcludeDirs = append([]string(nil), defaultConfig.ExcludeDirs...)
	c.Exclude = append([]string(nil), defaultConfig.Exclude...)
	return &c
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("manifest", defaultConfig.Manifest)
	v.SetDefault("index_file", defaultConfig.IndexFile)
	v.SetDefault("script_suffix", defaultConfig.ScriptSuffix)
	v.SetDefault("exclude_dirs", defaultConfig.ExcludeDirs)
	v.SetDefault("exclude", defaultConfig.Exclude)
	v.SetDefault("header.wrap_width", defaultConfig.Header.WrapWidth)
	v.SetDefault("header.link_base", defaultConfig.Header.LinkBase)
	v.SetDefault("device.timeout", defaultConfig.Device.Timeout)
	v.SetDefault("device.chunk_size", defaultConfig.Device.ChunkSize)

	v.SetEnvPrefix("SCRIPTCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from defaults, the environment and an
// optional scriptcat.{yaml,json,toml} found in the working directory, the
// user config directory or $HOME. An explicit path must exist and parse.
func LoadConfig(explicitPath string) (*Config, error) {
	v := newViper()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", explicitPath, err)
		}
	} else {
		v.SetConfigName("scriptcat")
		v.AddConfigPath(".")
		if dir, err := GetConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("$HOME")

		// A missing file is normal; a broken one is not.
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// LoadProjectConfig loads global configuration, then merges the first
// dot-file project config found in the working directory.
func LoadProjectConfig(explicitPath string) (*Config, error) {
	config, err := LoadConfig(explicitPath)
	if err != nil {
		return nil, err
	}
	if explicitPath != "" {
		return config, nil
	}

	projectConfigs := []string{
		".scriptcat.yaml",
		".scriptcat.yml",
		".scriptcat.json",
		".scriptcat.toml",
	}

	for _, configFile := range projectConfigs {
		if _, err := os.Stat(configFile); err != nil {
			continue
		}
		v := viper.New()
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", configFile, err)
		}
		if err := v.Unmarshal(config); err != nil {
			return nil, fmt.Errorf("error unmarshaling %s: %w", configFile, err)
		}
		break
	}

	return config, nil
}

// GetConfigDir returns the user-level config directory, honoring
// SCRIPTCAT_HOME and then XDG_CONFIG_HOME.
func GetConfigDir() (string, error) {
	if home := os.Getenv("SCRIPTCAT_HOME"); home != "" {
		return home, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scriptcat"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "scriptcat"), nil
}

// printable mirrors Config with durations rendered as strings, so every
// encoder emits the same human form.
type printable struct {
	Manifest     string          `json:"manifest" yaml:"manifest" toml:"manifest"`
	IndexFile    string          `json:"index_file" yaml:"index_file" toml:"index_file"`
	ScriptSuffix string          `json:"script_suffix" yaml:"script_suffix" toml:"script_suffix"`
	ExcludeDirs  []string        `json:"exclude_dirs" yaml:"exclude_dirs" toml:"exclude_dirs"`
	Exclude      []string        `json:"exclude" yaml:"exclude" toml:"exclude"`
	Header       printableHeader `json:"header" yaml:"header" toml:"header"`
	Device       printableDevice `json:"device" yaml:"device" toml:"device"`
}

type printableHeader struct {
	WrapWidth int    `json:"wrap_width" yaml:"wrap_width" toml:"wrap_width"`
	LinkBase  string `json:"link_base" yaml:"link_base" toml:"link_base"`
}

type printableDevice struct {
	Timeout   string `json:"timeout" yaml:"timeout" toml:"timeout"`
	ChunkSize int    `json:"chunk_size" yaml:"chunk_size" toml:"chunk_size"`
}

// Encode renders the configuration as yaml, json or toml.
func (c *Config) Encode(format string) ([]byte, error) {
	p := printable{
		Manifest:     c.Manifest,
		IndexFile:    c.IndexFile,
		ScriptSuffix: c.ScriptSuffix,
		ExcludeDirs:  c.ExcludeDirs,
		Exclude:      c.Exclude,
		Header:       printableHeader{WrapWidth: c.Header.WrapWidth, LinkBase: c.Header.LinkBase},
		Device:       printableDevice{Timeout: c.Device.Timeout.String(), ChunkSize: c.Device.ChunkSize},
	}
	if p.Exclude == nil {
		p.Exclude = []string{}
	}

	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		return yaml.Marshal(p)
	case "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "toml":
		return toml.Marshal(p)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}
}
