package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	rerr "github.com/recall-oss/recall/internal/errors"
)

// Load loads the service configuration from recall.yaml in dir.
// A missing file yields the default configuration.
func Load(dir string) (*Config, error) {
	configFile := filepath.Join(dir, "recall.yaml")

	content, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, rerr.Wrap(rerr.CodeConfigInvalid, "failed to read config file", err)
	}

	// Interpolate environment variables
	content = []byte(interpolateEnv(string(content)))

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, rerr.Wrap(rerr.CodeConfigInvalid, "failed to parse config", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for startup-fatal mistakes.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return rerr.New(rerr.CodeConfigInvalid, "store.path is required for the sqlite driver").
				WithSuggestion("set store.path in recall.yaml, e.g. .recall/memories.db")
		}
	default:
		return rerr.New(rerr.CodeConfigInvalid, fmt.Sprintf("unsupported store driver: %s", c.Store.Driver)).
			WithSuggestion("use one of: sqlite, memory")
	}

	switch c.Index.Driver {
	case "", "none", "chromem":
	default:
		return rerr.New(rerr.CodeConfigInvalid, fmt.Sprintf("unsupported index driver: %s", c.Index.Driver)).
			WithSuggestion("use one of: chromem, none")
	}

	if c.Limits.SearchDefault < 1 || c.Limits.HistoryDefault < 1 {
		return rerr.New(rerr.CodeConfigInvalid, "limits must be positive integers")
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return rerr.New(rerr.CodeConfigInvalid, fmt.Sprintf("unsupported logging format: %s", c.Logging.Format)).
			WithSuggestion("use one of: text, json")
	}

	for _, h := range c.Hooks.Hooks {
		switch h.Type {
		case "webhook":
			if h.URL == "" {
				return rerr.New(rerr.CodeConfigInvalid, fmt.Sprintf("hook %s: webhook hooks require a url", h.Name))
			}
		case "log":
		default:
			return rerr.New(rerr.CodeConfigInvalid, fmt.Sprintf("hook %s: unsupported hook type: %s", h.Name, h.Type)).
				WithSuggestion("use one of: webhook, log")
		}
	}

	return nil
}

// interpolateEnv replaces ${env.VAR} and ${VAR} with environment values.
func interpolateEnv(content string) string {
	// Match ${env.VAR} pattern
	envPattern := regexp.MustCompile(`\$\{env\.([^}]+)\}`)
	content = envPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // keep original if not found
	})

	// Match ${VAR} pattern
	varPattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	content = varPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := varPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return content
}

func defaultConfig() *Config {
	cfg := &Config{
		Name:    "recall",
		Version: "1.0.0",
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Name == "" {
		cfg.Name = "recall"
	}
	if cfg.Version == "" {
		cfg.Version = "1.0.0"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sqlite"
	}
	if cfg.Store.Driver == "sqlite" && cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(".recall", "memories.db")
	}
	if cfg.Index.Driver == "" {
		cfg.Index.Driver = "chromem"
	}
	if cfg.Index.Dimensions == 0 {
		cfg.Index.Dimensions = 384
	}
	if cfg.Limits.SearchDefault == 0 {
		cfg.Limits.SearchDefault = 10
	}
	if cfg.Limits.HistoryDefault == 0 {
		cfg.Limits.HistoryDefault = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
