package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from strings like "30s" or
// "5m" in both YAML files and environment variables.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Decode implements envconfig.Decoder.
func (d *Duration) Decode(value string) error {
	dur, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Tools    ToolsConfig    `yaml:"tools"`
	Download DownloadConfig `yaml:"download"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string   `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int      `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string   `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

// ToolsConfig holds the commands for the external collaborators.
type ToolsConfig struct {
	FetchTool  string `yaml:"fetch_tool" envconfig:"FETCH_TOOL"`
	Transcoder string `yaml:"transcoder" envconfig:"TRANSCODER"`
}

// DownloadConfig holds fetch orchestration configuration.
type DownloadConfig struct {
	WorkDir        string   `yaml:"work_dir" envconfig:"WORK_DIR"`
	DefaultQuality int      `yaml:"default_quality" envconfig:"DEFAULT_QUALITY"`
	Timeout        Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         1000,
			ReadTimeout:  Duration(30 * time.Second),
			WriteTimeout: Duration(30 * time.Minute),
		},
		Tools: ToolsConfig{
			FetchTool:  "yt-dlp",
			Transcoder: "ffmpeg",
		},
		Download: DownloadConfig{
			WorkDir:        "downloads",
			DefaultQuality: 720,
			Timeout:        Duration(20 * time.Minute),
		},
	}
}

// Load reads configuration starting from the built-in defaults, overlaying
// the YAML file and then environment variables, so env values win over file
// values and file values win over defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Overlay YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables. The struct tags carry no
	// defaults, so an unset variable leaves the field untouched.
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}
	if c.Tools.FetchTool == "" {
		return fmt.Errorf("FETCH_TOOL is required")
	}
	if c.Tools.Transcoder == "" {
		return fmt.Errorf("TRANSCODER is required")
	}
	if c.Download.WorkDir == "" {
		return fmt.Errorf("WORK_DIR is required")
	}
	if c.Download.DefaultQuality <= 0 {
		return fmt.Errorf("DEFAULT_QUALITY must be positive")
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
