// Package config loads the runtime settings of a sync run.
//
// The loading sequence is:
//  1. Load the dotenv file via godotenv. Existing environment variables win.
//  2. Use envconfig to populate the Config struct from the environment.
//  3. Apply command-line overrides (done by the caller).
//  4. Validate the struct using go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings for one sync run. The API key is not part of it;
// it is resolved through the keyring chain.
type Config struct {
	// ServiceID is the Render service whose variables are synchronized.
	ServiceID string `envconfig:"RENDER_SERVICE_ID" validate:"required"`
	// BaseURL is the Render REST API root.
	BaseURL string `envconfig:"RENDER_API_URL" default:"https://api.render.com/v1" validate:"required,url"`
	// Timeout bounds each HTTP request.
	Timeout time.Duration `envconfig:"RENDER_TIMEOUT" default:"30s" validate:"gt=0"`
	// VarsFile is the variables file read when --file is not given.
	VarsFile string `envconfig:"RENDERENV_VARS_FILE" default:"renderenv.toml"`
}

// ConfigErrorType categorizes configuration loading failures.
type ConfigErrorType string

const (
	// ErrParsing indicates a failure reading the dotenv file or parsing
	// environment values into their target types.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
	// ErrValidation indicates the configuration failed struct validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
)

// ConfigError is a diagnostic error returned by Load and Validate.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// EnvFile is a dotenv file loaded before the environment is processed.
	// Empty disables dotenv loading.
	EnvFile string
	// EnvFileRequired makes a missing EnvFile an error instead of a no-op.
	EnvFileRequired bool
}

// Load reads the dotenv file (if any) and the process environment into a
// Config. The result is not validated; call Validate once overrides are applied.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		err := godotenv.Load(opts.EnvFile)
		if err != nil && (opts.EnvFileRequired || !errors.Is(err, fs.ErrNotExist)) {
			return nil, &ConfigError{
				Type:    ErrParsing,
				Message: fmt.Sprintf("failed to load env file %s", opts.EnvFile),
				Err:     err,
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}
	return &cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their environment variable name so messages
// point at what the operator has to set.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("envconfig"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// Validate checks the populated struct.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ConfigError{Type: ErrValidation, Message: "configuration validation failed", Err: err}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &ConfigError{Type: ErrValidation, Message: strings.Join(msgs, "; ")}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fmt.Sprintf("%s must be a URL, got %q", fe.Field(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
	}
}
