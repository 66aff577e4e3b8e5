// Package config loads the YAML file describing the fields and validators
// the formally command evaluates.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/peterlsmith/FormAlly/internal/expr"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Config is the top-level configuration.
type Config struct {
	Log Log `yaml:"log"`

	// Metrics enables the Prometheus text dump after each evaluation.
	Metrics bool `yaml:"metrics"`

	// Debounce is applied to every validator without its own debounce.
	Debounce time.Duration `yaml:"debounce"`

	Fields     []Field     `yaml:"fields"`
	Validators []Validator `yaml:"validators"`
}

// Log configures the logger of the command.
type Log struct {
	// Level is a zerolog level: trace | debug | info | warn | error | disabled.
	Level string `yaml:"level"`

	// Format is one of: console | json.
	Format string `yaml:"format"`
}

// Field is a named input validators can refer to with field(name).
type Field struct {
	Name string `yaml:"name"`

	// Value is the initial value.
	Value string `yaml:"value"`

	// File, if set, makes the field follow the contents of that file.
	// A relative path is resolved against the directory of the config file.
	File string `yaml:"file"`
}

// Validator is a named graph expression.
type Validator struct {
	Name string `yaml:"name"`

	// Expr is either a predicate, whose state is printed under Name,
	// or a validator(...) call with its own actions.
	Expr string `yaml:"expr"`

	// Debounce delays the printed state, overriding Config.Debounce.
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	dir := filepath.Dir(path)
	for i := range cfg.Fields {
		if f := &cfg.Fields[i]; f.File != "" && !filepath.IsAbs(f.File) {
			f.File = filepath.Join(dir, f.File)
		}
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Log.Format)
	}
	if cfg.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}

	fields := map[string]bool{}
	for i, f := range cfg.Fields {
		if f.Name == "" {
			return fmt.Errorf("fields[%d]: name is required", i)
		}
		if fields[f.Name] {
			return fmt.Errorf("fields[%d] %q: duplicate name", i, f.Name)
		}
		if f.Value != "" && f.File != "" {
			return fmt.Errorf("fields[%d] %q: value and file are exclusive", i, f.Name)
		}
		fields[f.Name] = true
	}

	validators := map[string]bool{}
	for i, v := range cfg.Validators {
		if v.Name == "" {
			return fmt.Errorf("validators[%d]: name is required", i)
		}
		if validators[v.Name] {
			return fmt.Errorf("validators[%d] %q: duplicate name", i, v.Name)
		}
		if v.Expr == "" {
			return fmt.Errorf("validators[%d] %q: expr is required", i, v.Name)
		}
		if _, err := expr.Parse(v.Expr); err != nil {
			return fmt.Errorf("validators[%d] %q: %w", i, v.Name, err)
		}
		if v.Debounce < 0 {
			return fmt.Errorf("validators[%d] %q: debounce must not be negative", i, v.Name)
		}
		validators[v.Name] = true
	}

	return nil
}

// DebounceOf returns the debounce delay of v.
func (c *Config) DebounceOf(v Validator) time.Duration {
	if v.Debounce > 0 {
		return v.Debounce
	}
	return c.Debounce
}

// NewLogger returns a logger writing to w in the configured format and level.
func (l Log) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if l.Format == "json" {
		return zerolog.New(w).Level(level).With().Timestamp().Logger()
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
}
