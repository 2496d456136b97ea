package config

// Config represents the main service configuration (recall.yaml).
type Config struct {
	Name    string        `yaml:"name" json:"name"`
	Version string        `yaml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server" json:"server"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Limits  LimitsConfig  `yaml:"limits" json:"limits"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Hooks   HooksConfig   `yaml:"hooks" json:"hooks"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

// StoreConfig configures record storage.
type StoreConfig struct {
	Driver string `yaml:"driver" json:"driver"` // sqlite, memory
	Path   string `yaml:"path" json:"path"`     // file path (sqlite)
}

// IndexConfig configures the semantic search engine.
type IndexConfig struct {
	Driver     string `yaml:"driver" json:"driver"`         // chromem, none
	Dimensions int    `yaml:"dimensions" json:"dimensions"` // embedding vector size
}

// LimitsConfig sets the defaults applied when a request omits a limit.
type LimitsConfig struct {
	SearchDefault  int `yaml:"search_default" json:"search_default"`
	HistoryDefault int `yaml:"history_default" json:"history_default"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format string `yaml:"format" json:"format"` // text, json
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// HooksConfig configures lifecycle event hooks.
type HooksConfig struct {
	Enabled bool         `yaml:"enabled" json:"enabled"`
	Hooks   []HookConfig `yaml:"hooks" json:"hooks"`
}

// HookConfig defines a single hook.
type HookConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Type     string   `yaml:"type" json:"type"`     // webhook, log
	Events   []string `yaml:"events" json:"events"` // event types to match
	Blocking bool     `yaml:"blocking" json:"blocking"`
	URL      string   `yaml:"url,omitempty" json:"url,omitempty"`     // for webhook hooks
	Level    string   `yaml:"level,omitempty" json:"level,omitempty"` // for log hooks
}
