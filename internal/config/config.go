// Package config provides configuration types, defaults, and
// persistence for propwire.
package config

import "time"

// TracingConfig controls the OpenTelemetry tracing subsystem.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled" yaml:"enabled"`
	Exporter     string  `mapstructure:"exporter" yaml:"exporter"` // "none", "file", "stdout", "otlp"
	FilePath     string  `mapstructure:"file_path" yaml:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// Config holds all configuration options for propwire.
type Config struct {
	// Version is the active protocol revision used for new sessions.
	Version string `mapstructure:"version" yaml:"version"`
	// ObjectType is the default schema applied when a command gets no
	// --type flag.
	ObjectType string `mapstructure:"object_type" yaml:"object_type"`
	// StorePath locates the local baseline database.
	StorePath string `mapstructure:"store_path" yaml:"store_path"`
	// Debug enables the structured debug log.
	Debug bool `mapstructure:"debug" yaml:"debug"`
	// LogPath locates the debug log file.
	LogPath string `mapstructure:"log_path" yaml:"log_path"`
	// WatchDebounce coalesces file watcher events.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`

	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() Config {
	return Config{
		Version:       "v4",
		ObjectType:    "Contact",
		StorePath:     ".propwire/baselines.db",
		Debug:         false,
		LogPath:       ".propwire/debug.log",
		WatchDebounce: time.Second,
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     ".propwire/traces.jsonl",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}
