package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/intactdb/pkg/intact/support/util/exception"
	"github.com/tigerroll/intactdb/pkg/intact/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig
	EnvFilePath    string              `name:"envFilePath" optional:"true"`
	ConfigFilePath string              `name:"configFilePath" optional:"true"`
	Expander       EnvironmentExpander `optional:"true"`
}

// LoadConfig builds the configuration in layers: defaults, the embedded YAML, an optional
// user YAML file, then environment variables. A missing .env file is not an error.
func LoadConfig(envFilePath, configFilePath string, embeddedConfig EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else if err := godotenv.Load(); err != nil {
		logger.Debugf(".env file not found or could not be loaded: %v", err)
	}
	if expander == nil {
		expander = NewOsEnvironmentExpander()
	}

	cfg := NewConfig()

	layers := [][]byte{embeddedConfig}
	if configFilePath != "" {
		data, err := os.ReadFile(configFilePath)
		if err != nil {
			return nil, exception.NewConfigError(moduleName, fmt.Sprintf("failed to read config file %s", configFilePath), err)
		}
		layers = append(layers, data)
	}

	for _, raw := range layers {
		if len(raw) == 0 {
			continue
		}
		expanded, err := expander.Expand(raw)
		if err != nil {
			return nil, exception.NewConfigError(moduleName, "failed to expand environment placeholders", err)
		}
		var layer Config
		if err := yaml.Unmarshal(expanded, &layer); err != nil {
			return nil, exception.NewConfigError(moduleName, "failed to unmarshal config", err)
		}
		mergeConfig(cfg, &layer)
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewConfigError(moduleName, "failed to load config from environment variables", err)
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	cfg.EmbeddedConfig = embeddedConfig
	return cfg, nil
}

// NewConfigProvider is an Fx provider that loads *Config and applies the logging settings.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := LoadConfig(params.EnvFilePath, params.ConfigFilePath, params.EmbeddedConfig, params.Expander)
	if err != nil {
		return nil, err
	}

	logging := cfg.Intact.System.Logging
	logger.Configure(logger.Options{
		Level:      logging.Level,
		Format:     logging.Format,
		File:       logging.File,
		MaxSizeMB:  logging.MaxSizeMB,
		MaxBackups: logging.MaxBackups,
		MaxAgeDays: logging.MaxAgeDays,
	})
	logger.Debugf("Log level set to: %s", logging.Level)
	return cfg, nil
}

func validate(cfg *Config) error {
	s := cfg.Intact.Synchronizer
	if s.PageSize <= 0 {
		return exception.NewConfigError(moduleName, fmt.Sprintf("synchronizer.page_size must be positive, got %d", s.PageSize), nil)
	}
	if s.SequenceAttempts <= 0 {
		return exception.NewConfigError(moduleName, fmt.Sprintf("synchronizer.sequence_attempts must be positive, got %d", s.SequenceAttempts), nil)
	}
	if strings.TrimSpace(s.ACPrefix) == "" {
		return exception.NewConfigError(moduleName, "synchronizer.ac_prefix must not be empty", nil)
	}
	return nil
}

// mergeConfig copies every non-zero value of source over dest.
func mergeConfig(dest, source *Config) {
	d, s := &dest.Intact, &source.Intact

	mergeSystemConfig(&d.System, &s.System)

	if s.Infrastructure.StoreDBRef != "" {
		d.Infrastructure.StoreDBRef = s.Infrastructure.StoreDBRef
	}

	if s.Synchronizer.ACPrefix != "" {
		d.Synchronizer.ACPrefix = s.Synchronizer.ACPrefix
	}
	if s.Synchronizer.SequenceName != "" {
		d.Synchronizer.SequenceName = s.Synchronizer.SequenceName
	}
	if s.Synchronizer.SequenceAttempts != 0 {
		d.Synchronizer.SequenceAttempts = s.Synchronizer.SequenceAttempts
	}
	if s.Synchronizer.PageSize != 0 {
		d.Synchronizer.PageSize = s.Synchronizer.PageSize
	}

	if s.Metrics.Enabled {
		d.Metrics.Enabled = true
	}
	if s.Metrics.Async {
		d.Metrics.Async = true
	}
	if s.Metrics.AsyncBufferSize != 0 {
		d.Metrics.AsyncBufferSize = s.Metrics.AsyncBufferSize
	}
	if s.Metrics.ListenAddress != "" {
		d.Metrics.ListenAddress = s.Metrics.ListenAddress
	}

	if s.Tracing.Enabled {
		d.Tracing.Enabled = true
	}
	if s.Tracing.Insecure {
		d.Tracing.Insecure = true
	}
	if s.Tracing.Endpoint != "" {
		d.Tracing.Endpoint = s.Tracing.Endpoint
	}
	if s.Tracing.ServiceName != "" {
		d.Tracing.ServiceName = s.Tracing.ServiceName
	}

	if s.Export.Compression != "" {
		d.Export.Compression = s.Export.Compression
	}
	if s.Export.Parallelism != 0 {
		d.Export.Parallelism = s.Export.Parallelism
	}
	if s.Export.StorageRef != "" {
		d.Export.StorageRef = s.Export.StorageRef
	}
	if s.Export.OutputBaseDir != "" {
		d.Export.OutputBaseDir = s.Export.OutputBaseDir
	}

	if s.AdaptorConfigs != nil {
		if d.AdaptorConfigs == nil {
			d.AdaptorConfigs = make(map[string]interface{})
		}
		for key, value := range s.AdaptorConfigs {
			d.AdaptorConfigs[key] = value
		}
	}
	if s.StorageConfigs != nil {
		if d.StorageConfigs == nil {
			d.StorageConfigs = make(map[string]interface{})
		}
		for key, value := range s.StorageConfigs {
			d.StorageConfigs[key] = value
		}
	}
}

func mergeSystemConfig(dest, source *SystemConfig) {
	if source.Timezone != "" {
		dest.Timezone = source.Timezone
	}
	l := source.Logging
	if l.Level != "" {
		dest.Logging.Level = l.Level
	}
	if l.Format != "" {
		dest.Logging.Format = l.Format
	}
	if l.File != "" {
		dest.Logging.File = l.File
	}
	if l.MaxSizeMB != 0 {
		dest.Logging.MaxSizeMB = l.MaxSizeMB
	}
	if l.MaxBackups != 0 {
		dest.Logging.MaxBackups = l.MaxBackups
	}
	if l.MaxAgeDays != 0 {
		dest.Logging.MaxAgeDays = l.MaxAgeDays
	}
}

// loadStructFromEnv recursively loads configuration values into a struct from environment variables.
// It uses the "yaml" tag to derive the variable name, e.g. INTACT_SYNCHRONIZER_PAGE_SIZE.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		switch field.Kind() {
		case reflect.Struct:
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		case reflect.Map:
			if field.Type().Key().Kind() == reflect.String && field.Type().Elem().Kind() == reflect.Interface {
				loadConnectionMapFromEnv(field, envVarName+"_")
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// loadConnectionMapFromEnv overlays INTACT_DATABASE_<NAME>_<FIELD>=value onto the named connection maps.
// Values stay strings; mapstructure converts them when the connection is decoded.
func loadConnectionMapFromEnv(mapField reflect.Value, prefix string) {
	if mapField.IsNil() {
		mapField.Set(reflect.MakeMap(mapField.Type()))
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix) {
			continue
		}
		keyAndField, envValue, ok := strings.Cut(strings.TrimPrefix(env, prefix), "=")
		if !ok {
			continue
		}
		name, field, ok := strings.Cut(keyAndField, "_")
		if !ok || name == "" || field == "" {
			continue
		}
		name = strings.ToLower(name)

		conn := map[string]interface{}{}
		if existing := mapField.MapIndex(reflect.ValueOf(name)); existing.IsValid() {
			if m, ok := existing.Interface().(map[string]interface{}); ok {
				conn = m
			}
		}
		conn[strings.ToLower(field)] = envValue
		mapField.SetMapIndex(reflect.ValueOf(name), reflect.ValueOf(conn))
	}
}

// setField sets the value of a reflect.Value field based on its kind.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
