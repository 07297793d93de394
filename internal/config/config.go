// Package config holds the tool's settings file, config.yaml, which lives
// next to portfolio.json.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/bettertrack/bettertrack/internal/price"
)

const (
	FileName = "config.yaml"

	EnvAPIKey   = "ALPHAVANTAGE_API_KEY"
	EnvLogLevel = "BETTERTRACK_LOG_LEVEL"
)

var ErrUnknownKey = errors.New("unknown settings key")

// Settings represents the top-level config.yaml.
type Settings struct {
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage"`
	Prices       PricesConfig       `yaml:"prices"`
	Log          LogConfig          `yaml:"log"`
}

// AlphaVantageConfig configures the quote client.
type AlphaVantageConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// PricesConfig controls the price cache.
type PricesConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" validate:"gt=0"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Default returns Settings with the values a fresh portfolio starts with.
func Default() *Settings {
	return &Settings{
		AlphaVantage: AlphaVantageConfig{
			BaseURL: price.DefaultBaseURL,
			Timeout: 10 * time.Second,
		},
		Prices: PricesConfig{
			CacheTTL: price.DefaultTTL,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads a config.yaml file from disk. Keys missing from the file keep
// their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Settings, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes Settings to a YAML file.
func Save(path string, cfg *Settings) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve returns the effective settings for the portfolio in dir:
// config.yaml (or defaults), then .env files in dir and the working
// directory, then the process environment. Variables already set in the
// environment win over .env files.
func Resolve(dir string) (*Settings, error) {
	cfg, err := LoadOrDefault(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}

	for _, env := range []string{filepath.Join(dir, ".env"), ".env"} {
		if _, err := os.Stat(env); err != nil {
			continue
		}
		if err := godotenv.Load(env); err != nil {
			return nil, fmt.Errorf("loading %s: %w", env, err)
		}
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", strings.TrimPrefix(fe.Namespace(), "Settings."), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

type field struct {
	get func(*Settings) string
	set func(*Settings, string) error
}

var fields = map[string]field{
	"alphavantage.api_key": {
		get: func(s *Settings) string { return s.AlphaVantage.APIKey },
		set: func(s *Settings, v string) error { s.AlphaVantage.APIKey = v; return nil },
	},
	"alphavantage.base_url": {
		get: func(s *Settings) string { return s.AlphaVantage.BaseURL },
		set: func(s *Settings, v string) error { s.AlphaVantage.BaseURL = v; return nil },
	},
	"alphavantage.timeout": {
		get: func(s *Settings) string { return s.AlphaVantage.Timeout.String() },
		set: func(s *Settings, v string) error { return setDuration(&s.AlphaVantage.Timeout, v) },
	},
	"prices.cache_ttl": {
		get: func(s *Settings) string { return s.Prices.CacheTTL.String() },
		set: func(s *Settings, v string) error { return setDuration(&s.Prices.CacheTTL, v) },
	},
	"log.level": {
		get: func(s *Settings) string { return s.Log.Level },
		set: func(s *Settings, v string) error { s.Log.Level = strings.ToLower(v); return nil },
	},
}

func setDuration(d *time.Duration, v string) error {
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", v, err)
	}
	*d = parsed
	return nil
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Environment variable names are accepted as keys too.
var aliases = map[string]string{
	EnvAPIKey:   "alphavantage.api_key",
	EnvLogLevel: "log.level",
}

func lookup(key string) (field, bool) {
	if k, ok := aliases[strings.ToUpper(key)]; ok {
		key = k
	}
	f, ok := fields[strings.ToLower(key)]
	return f, ok
}

// Get returns the value of a dotted key such as "prices.cache_ttl".
func (s *Settings) Get(key string) (string, error) {
	f, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(s), nil
}

// Set parses value into a dotted key and validates the result. On error s is
// left unchanged.
func (s *Settings) Set(key, value string) error {
	f, ok := lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	next := *s
	if err := f.set(&next, value); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}
