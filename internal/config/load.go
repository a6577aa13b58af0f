package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MATCHER_"

// PathEnvVar names an explicit config file.
const PathEnvVar = "CONFIG_PATH"

// DefaultPaths are searched when no path is given.
var DefaultPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/playlist-matcher/config.yaml",
}

// nested lists sub-sections whose keys contain underscores after the
// section name, so MATCHER_ANALYSIS_BREAKER_MIN_REQUESTS maps to
// analysis.breaker.min_requests.
var nested = map[string][]string{
	"analysis": {"breaker", "oauth"},
}

// Load reads configuration with precedence env > file > defaults.
// An empty path searches $CONFIG_PATH and DefaultPaths; a missing file is
// not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Layer 2: optional file
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps MATCHER_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return section
	}
	for _, sub := range nested[section] {
		if key, found := strings.CutPrefix(rest, sub+"_"); found {
			return section + "." + sub + "." + key
		}
	}
	return section + "." + rest
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ValidationError lists every invalid field.
type ValidationError struct {
	Fields []string // "analysis.base_url: required"
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Fields, "; ")
}

var validate = newValidator()

// newValidator reports fields by their koanf keys.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct constraints and profile weight overrides.
func (c *Config) Validate() error {
	var fields []string

	err := validate.Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
	} else if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	for profile, weights := range c.Matching.ProfileWeights {
		for name, w := range weights {
			if w < 0 {
				fields = append(fields, fmt.Sprintf("matching.profile_weights.%s.%s: must be >= 0", profile, name))
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// fieldMessage renders "Config.analysis.base_url" as "analysis.base_url: url".
func fieldMessage(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s: %s=%s", ns, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: %s", ns, fe.Tag())
}
