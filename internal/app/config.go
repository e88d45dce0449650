package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable parameters for the application.
type Config struct {
	Port      int    `yaml:"port"`
	LogLevel  string `yaml:"log_level"`
	TraceSize int    `yaml:"trace_size"`

	// Backend is "github" or "filesystem".
	Backend   string `yaml:"backend"`
	Directory string `yaml:"directory"`
	RootDir   string `yaml:"root_dir"` // filesystem backend only

	GitHub    GitHubConfig    `yaml:"github"`
	Commit    CommitConfig    `yaml:"commit"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// GitHubConfig selects the repository holding the scenarios.
type GitHubConfig struct {
	BaseURL string `yaml:"base_url"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	Branch  string `yaml:"branch"`

	// Token never comes from the config file; see TokenFile.
	Token         string        `yaml:"-"`
	TokenFile     string        `yaml:"token_file"`
	TokenDebounce time.Duration `yaml:"token_debounce"`
}

// CommitConfig controls the commit messages attached to writes and deletes.
type CommitConfig struct {
	Engine        string `yaml:"engine"` // "jinja2" or "expr"
	SaveMessage   string `yaml:"save_message"`
	DeleteMessage string `yaml:"delete_message"`
}

// RateLimitConfig limits catalog requests per client address. A zero rate
// disables limiting.
type RateLimitConfig struct {
	Rate  float64       `yaml:"rate"`
	Burst int           `yaml:"burst"`
	TTL   time.Duration `yaml:"ttl"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Port:      8080,
		LogLevel:  "info",
		TraceSize: 100,

		Backend:   "github",
		Directory: "scenarios",
		RootDir:   "./data",

		GitHub: GitHubConfig{
			BaseURL:       "https://api.github.com",
			TokenDebounce: 500 * time.Millisecond,
		},
		Commit: CommitConfig{Engine: "jinja2"},
		RateLimit: RateLimitConfig{
			Rate:  10,
			Burst: 20,
			TTL:   10 * time.Minute,
		},

		UpstreamTimeout: 15 * time.Second,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values; unknown keys are an error.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.TraceSize <= 0 {
		return fmt.Errorf("trace_size must be positive")
	}
	switch c.Backend {
	case "github":
		if c.GitHub.Owner == "" || c.GitHub.Repo == "" {
			return fmt.Errorf("github.owner and github.repo are required for the github backend")
		}
	case "filesystem":
		if c.RootDir == "" {
			return fmt.Errorf("root_dir is required for the filesystem backend")
		}
	default:
		return fmt.Errorf("unknown backend %q (supported: github, filesystem)", c.Backend)
	}
	switch c.Commit.Engine {
	case "jinja2", "expr":
	default:
		return fmt.Errorf("unknown commit.engine %q (supported: jinja2, expr)", c.Commit.Engine)
	}
	if c.RateLimit.Rate < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must not be negative")
	}
	return nil
}
