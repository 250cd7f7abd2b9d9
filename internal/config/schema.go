package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the settings file.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Settings{})

	schema.Title = "mac-sysclean configuration"
	schema.Description = "Settings read from ~/.maccleanerrc or ~/.config/mac-cleaner-cli/config.json"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
