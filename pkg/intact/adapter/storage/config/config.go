// Package config defines storage connection settings.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type" mapstructure:"type"`                         // "local" or "gcs".
	BucketName      string `yaml:"bucket_name" mapstructure:"bucket_name"`           // Default bucket for operations.
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"` // Service account key for GCS.
	BaseDir         string `yaml:"base_dir" mapstructure:"base_dir"`                 // Root directory for local storage.
}

// Decode converts a raw connection map into a StorageConfig.
func Decode(raw interface{}) (StorageConfig, error) {
	var cfg StorageConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("decode storage config: %w", err)
	}
	return cfg, nil
}

// Lookup finds and decodes the named connection in a connections map.
func Lookup(connections map[string]interface{}, name string) (StorageConfig, error) {
	raw, ok := connections[name]
	if !ok {
		return StorageConfig{}, fmt.Errorf("storage configuration '%s' not found", name)
	}
	return Decode(raw)
}
