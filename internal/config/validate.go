package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their YAML path rather than the Go field name.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("duration", validateDuration)
	_ = validate.RegisterValidation("loglevel", validateLogLevel)
}

func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= 0
}

func validateLogLevel(fl validator.FieldLevel) bool {
	return validLogLevels[fl.Field().String()]
}

// Validate checks a parsed Config and returns an error naming the first
// invalid field by its YAML path, for example "exec.timeout".
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate config: %w", err)
	}
	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) error {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "duration":
		return fmt.Errorf("%s: invalid duration %q", field, fe.Value())
	case "loglevel":
		return fmt.Errorf("%s: invalid value %q, must be one of: debug, info, warn, error", field, fe.Value())
	case "semver":
		return fmt.Errorf("%s: invalid version %q, expected MAJOR.MINOR.PATCH", field, fe.Value())
	case "gte":
		return fmt.Errorf("%s: must be non-negative, got %v", field, fe.Value())
	case "alphanum":
		return fmt.Errorf("%s: invalid value %q, must be alphanumeric", field, fe.Value())
	default:
		return fmt.Errorf("%s: invalid value %v (%s)", field, fe.Value(), fe.Tag())
	}
}

// TimeoutDuration returns exec.timeout as a duration. Zero means no timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Exec.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// DebounceDuration returns watch.debounce as a duration.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}
