package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is the optional YAML file read from the working directory.
const DefaultFile = "config.yaml"

// listKeys hold comma-separated values when supplied through the environment.
var listKeys = []string{
	"api.retry.statuscodes",
	"api.retry.methods",
	"reporting.ignoredmessages",
}

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration files
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFile(DefaultFile)
}

// LoadFile behaves like Load but reads the base YAML file from path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	known := leafKeys(k)

	if err := loadOptionalFile(k, path); err != nil {
		return nil, err
	}

	// Environment-specific YAML (if exists); APP_ENV may select it
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = k.String("app.env")
	}
	if env != "" {
		envFile := strings.TrimSuffix(path, ".yaml") + "." + env + ".yaml"
		if err := loadOptionalFile(k, envFile); err != nil {
			return nil, err
		}
	}

	if err := loadEnv(k, known); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays environment variables that name a known leaf key.
// Anything else is dropped so unrelated variables such as API_TIMEOUT_MS
// cannot turn a scalar into a map.
func loadEnv(k *koanf.Koanf, known map[string]struct{}) error {
	return k.Load(envprovider.Provider(".", envprovider.Opt{
		TransformFunc: func(key, value string) (string, any) {
			// Convert UPPER_CASE to lower.case for koanf
			key = strings.ReplaceAll(strings.ToLower(key), "_", ".")
			if _, ok := known[key]; !ok {
				return "", nil
			}
			if slices.Contains(listKeys, key) {
				return key, splitList(value)
			}
			return key, value
		},
	}), nil)
}

func leafKeys(k *koanf.Koanf) map[string]struct{} {
	keys := k.Keys()
	out := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		out[key] = struct{}{}
	}
	return out
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":   "kyb-app",
		"app.env":    EnvDevelopment,
		"app.origin": "",

		"api.url":               "",
		"api.timeout":           "30s",
		"api.retry.limit":       1,
		"api.retry.delay":       "300ms",
		"api.retry.statuscodes": []int{500, 408, 404, 403, 401},
		"api.retry.methods":     []string{"GET"},
		"api.ratelimit.rps":     0,
		"api.ratelimit.burst":   0,
		"api.tracing":           false,

		"reporting.ignoredmessages": []string{},

		"sentry.dsn":         "",
		"sentry.environment": "",
		"sentry.release":     "",
		"sentry.samplerate":  1.0,
		"sentry.debug":       false,

		"tracing.endpoint":   "stdout",
		"tracing.protocol":   "http",
		"tracing.insecure":   false,
		"tracing.samplerate": 1.0,

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// normalize applies derived defaults that depend on other loaded values.
func normalize(cfg *Config) {
	for i, m := range cfg.API.Retry.Methods {
		cfg.API.Retry.Methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	if cfg.Sentry.Environment == "" {
		cfg.Sentry.Environment = cfg.App.Env
	}
	cfg.Tracing.Protocol = strings.ToLower(cfg.Tracing.Protocol)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
}
