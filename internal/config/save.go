package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const fileHeader = `# propwire configuration
# Generated with defaults; edit freely.
`

// WriteDefaultConfig writes the default configuration to path,
// creating parent directories as needed. Refuses to overwrite an
// existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("marshalling defaults: %w", err)
	}
	return os.WriteFile(path, append([]byte(fileHeader), data...), 0644)
}
