package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MergeFile overlays the yaml project config at path onto c. A missing
// file is not an error; a malformed one is, so a typo does not silently
// fall back to defaults.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
