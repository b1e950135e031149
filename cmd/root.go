// Package cmd wires the propwire CLI: schema inspection, document
// diffing, roundtrip checks and the local baseline store.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/propwire/propwire/internal/config"
	"github.com/propwire/propwire/internal/item"
	"github.com/propwire/propwire/internal/log"
	"github.com/propwire/propwire/internal/schema"
	"github.com/propwire/propwire/internal/tracing"
)

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config

	registry *schema.Registry
	tracer   *tracing.Provider
	logClose func()
)

var rootCmd = &cobra.Command{
	Use:   "propwire",
	Short: "Schema-driven property diffing over the wire format",
	Long: `propwire loads wire documents into schema-backed property bags,
tracks edits against the loaded baseline, and renders the minimal
update operations a server would need to apply them.`,
	Version:           version,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
	SilenceUsage:      true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .propwire/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable the structured debug log")
	rootCmd.PersistentFlags().StringP("protocol", "P", "",
		"protocol version to run at (v1..v4)")

	_ = viper.BindPFlag("version", rootCmd.PersistentFlags().Lookup("protocol"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("version", defaults.Version)
	viper.SetDefault("object_type", defaults.ObjectType)
	viper.SetDefault("store_path", defaults.StorePath)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("log_path", defaults.LogPath)
	viper.SetDefault("watch_debounce", defaults.WatchDebounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix("PROPWIRE")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .propwire/config.yaml (current directory)
		// 2. ~/.config/propwire/config.yaml (user config)
		if _, err := os.Stat(".propwire/config.yaml"); err == nil {
			viper.SetConfigFile(".propwire/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "propwire"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".propwire/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If the write fails, continue on defaults.
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func setup(cmd *cobra.Command, args []string) error {
	if debug || cfg.Debug {
		cleanup, err := log.Init(cfg.LogPath)
		if err != nil {
			return fmt.Errorf("initializing debug log: %w", err)
		}
		logClose = cleanup
		log.SetEnabled(true)
	}

	var err error
	registry, err = item.NewRegistry()
	if err != nil {
		return fmt.Errorf("building schema registry: %w", err)
	}

	tracer, err = tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	log.Info(log.CatCLI, "Starting", "command", cmd.Name(), "version", cfg.Version)
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if tracer != nil {
		_ = tracer.Shutdown(context.Background())
	}
	if logClose != nil {
		logClose()
	}
}

// activeVersion resolves the protocol version from config.
func activeVersion() (schema.Version, error) {
	v, err := schema.ParseVersion(cfg.Version)
	if err != nil {
		return 0, fmt.Errorf("config version: %w", err)
	}
	return v, nil
}

// activeSchema resolves the schema named by --type or the config.
func activeSchema(objectType string) (*schema.Schema, error) {
	if objectType == "" {
		objectType = cfg.ObjectType
	}
	s, ok := registry.Schema(objectType)
	if !ok {
		return nil, fmt.Errorf("unknown object type %q (have %v)",
			objectType, registry.ObjectTypes())
	}
	return s, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
