package config

import (
	"os"
	"strings"
)

// EnvironmentExpander expands environment variable placeholders within configuration data.
type EnvironmentExpander interface {
	// Expand replaces ${VAR}, $VAR and ${VAR:-default} placeholders in input.
	Expand(input []byte) ([]byte, error)
}

// OsEnvironmentExpander resolves placeholders against the process environment.
type OsEnvironmentExpander struct{}

// NewOsEnvironmentExpander creates and returns a new instance of OsEnvironmentExpander.
func NewOsEnvironmentExpander() *OsEnvironmentExpander {
	return &OsEnvironmentExpander{}
}

// Expand implements EnvironmentExpander. Unset variables without a default expand to "".
func (e *OsEnvironmentExpander) Expand(input []byte) ([]byte, error) {
	expanded := os.Expand(string(input), func(key string) string {
		name, def, hasDefault := strings.Cut(key, ":-")
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	})
	return []byte(expanded), nil
}
