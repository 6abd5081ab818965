package cli

import (
	"fmt"
	"mortify/models"
	"os"

	"gopkg.in/yaml.v3"
)

// ExportSettings writes settings to path as YAML
func ExportSettings(path string, settings models.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %v", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ImportSettings reads a YAML settings file into a write request. Keys
// missing from the file are left untouched on the server.
func ImportSettings(path string) (models.SettingsInput, error) {
	var input models.SettingsInput

	data, err := os.ReadFile(path)
	if err != nil {
		return input, err
	}
	if err := yaml.Unmarshal(data, &input); err != nil {
		return input, fmt.Errorf("invalid settings file %s: %v", path, err)
	}
	if input.AppSlug == nil && input.Brand == nil && input.Tabs == nil && input.PWA == nil {
		return input, fmt.Errorf("no settings found in %s", path)
	}
	return input, nil
}
