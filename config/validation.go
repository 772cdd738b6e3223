package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their koanf key so errors match config.yaml paths.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks struct constraints and the cross-field rule that a base URL
// can always be resolved. The first failure is returned as a *ConfigError.
func Validate(cfg *Config) error {
	if err := structValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if cfg.API.URL == "" && cfg.App.Origin == "" {
		return NewMissingFieldError("api.url", "API_URL or APP_ORIGIN", "api.url or app.origin")
	}

	return nil
}

func fieldError(fe validator.FieldError) *ConfigError {
	// Namespace is "Config.api.retry.limit"; drop the root type name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid value %v", fe.Value()), strings.Fields(fe.Param()))
	case "required":
		return NewMissingFieldError(field, envName(field), field)
	case "url":
		return NewInvalidFieldError(field, fmt.Sprintf("invalid url %q", fe.Value()), nil)
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("must satisfy %s=%s (got %v)", fe.Tag(), fe.Param(), fe.Value()), nil)
	}
}

// envName maps a koanf key back to its environment variable, dropping slice indexes.
func envName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	return strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
}
