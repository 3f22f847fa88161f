// Package config loads the application settings from the process environment,
// optionally seeded from a .env.local or .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Default values
const (
	DefaultModel       = "gpt-4.1"
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
	DefaultMaxRetries  = 2
	DefaultMaxAttempts = 1
	DefaultLanguage    = "Korean"
	DefaultAddr        = ":5000"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// Environment variable names
const (
	EnvAPIKey        = "OPENAI_API_KEY" // #nosec G101 -- variable name, not a credential
	EnvBaseURL       = "OPENAI_API_BASE_URL"
	EnvModel         = "TOONBOARD_MODEL"
	EnvMaxTokens     = "TOONBOARD_MAX_TOKENS"
	EnvTemperature   = "TOONBOARD_TEMPERATURE"
	EnvTimeout       = "TOONBOARD_TIMEOUT"
	EnvMaxRetries    = "TOONBOARD_MAX_RETRIES"
	EnvRateLimit     = "TOONBOARD_RATE_LIMIT"
	EnvInputPrice    = "TOONBOARD_INPUT_PRICE"
	EnvOutputPrice   = "TOONBOARD_OUTPUT_PRICE"
	EnvMaxAttempts   = "TOONBOARD_MAX_ATTEMPTS"
	EnvLenientRepair = "TOONBOARD_LENIENT_REPAIR"
	EnvLanguage      = "TOONBOARD_LANGUAGE"
	EnvAddr          = "TOONBOARD_ADDR"
	EnvOutputDir     = "TOONBOARD_OUTPUT_DIR"
	EnvLogLevel      = "TOONBOARD_LOG_LEVEL"
	EnvLogFormat     = "TOONBOARD_LOG_FORMAT"
)

// DefaultEnvFiles are tried in order; only the first one found is loaded.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Config holds every setting the CLI and server need.
type Config struct {
	// --- Upstream model ---
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64

	// --- Client policy ---
	Timeout       time.Duration
	MaxRetries    int
	RateLimit     int // requests per minute, 0 = unlimited
	MaxAttempts   int
	LenientRepair bool

	// USD per million prompt and completion tokens, 0 = not priced
	InputPrice  float64
	OutputPrice float64

	// --- Storyboard ---
	Language string

	// --- Server ---
	Addr      string
	OutputDir string

	// --- Logging ---
	LogLevel  string
	LogFormat string

	// EnvFile is the file the environment was seeded from, empty if none.
	EnvFile string
}

// Default returns a Config populated with the default values.
func Default() Config {
	return Config{
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		MaxAttempts: DefaultMaxAttempts,
		Language:    DefaultLanguage,
		Addr:        DefaultAddr,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
	}
}

// Load seeds the environment from the first existing file of envFiles
// (DefaultEnvFiles when none are given) and reads the configuration.
// Variables already set in the environment are not overridden.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = DefaultEnvFiles
	}

	var loaded string
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", file, err)
		}
		loaded = file
		break
	}

	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return Config{}, err
	}
	cfg.EnvFile = loaded
	return cfg, nil
}

// FromEnv reads the configuration through getenv. Unset or blank variables
// keep their defaults; malformed values are errors.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	p := parser{getenv: getenv}

	cfg.APIKey = p.getString(EnvAPIKey, "")
	cfg.BaseURL = p.getString(EnvBaseURL, "")
	cfg.Model = p.getString(EnvModel, cfg.Model)
	cfg.MaxTokens = p.getInt(EnvMaxTokens, cfg.MaxTokens)
	cfg.Temperature = p.getFloat(EnvTemperature, cfg.Temperature)
	cfg.Timeout = p.getDuration(EnvTimeout, cfg.Timeout)
	cfg.MaxRetries = p.getInt(EnvMaxRetries, cfg.MaxRetries)
	cfg.RateLimit = p.getInt(EnvRateLimit, cfg.RateLimit)
	cfg.MaxAttempts = p.getInt(EnvMaxAttempts, cfg.MaxAttempts)
	cfg.InputPrice = p.getFloat(EnvInputPrice, cfg.InputPrice)
	cfg.OutputPrice = p.getFloat(EnvOutputPrice, cfg.OutputPrice)
	cfg.LenientRepair = p.getBool(EnvLenientRepair, cfg.LenientRepair)
	cfg.Language = p.getString(EnvLanguage, cfg.Language)
	cfg.Addr = p.getString(EnvAddr, cfg.Addr)
	cfg.OutputDir = p.getString(EnvOutputDir, cfg.OutputDir)
	cfg.LogLevel = p.getString(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = p.getString(EnvLogFormat, cfg.LogFormat)

	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the ranges of numeric settings.
func (c Config) Validate() error {
	var errs []error
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxTokens, c.MaxTokens))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("%s must be within [0, 2], got %g", EnvTemperature, c.Temperature))
	}
	if c.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", EnvMaxRetries, c.MaxRetries))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative, got %d", EnvRateLimit, c.RateLimit))
	}
	if c.InputPrice < 0 || c.OutputPrice < 0 {
		errs = append(errs, fmt.Errorf("%s and %s must not be negative", EnvInputPrice, EnvOutputPrice))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvMaxAttempts, c.MaxAttempts))
	}
	return errors.Join(errs...)
}

// HasAPIKey reports whether an upstream API key is configured.
func (c Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// SaveAPIKey writes key as OPENAI_API_KEY into the env file at path, keeping
// every other entry. The file is created when missing.
func SaveAPIKey(path, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		env = map[string]string{}
	}
	env[EnvAPIKey] = key

	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// parser accumulates conversion errors so all of them are reported at once.
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) lookup(key string) (string, bool) {
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *parser) getString(key, def string) string {
	if v, ok := p.lookup(key); ok {
		return v
	}
	return def
}

func (p *parser) getInt(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (p *parser) getFloat(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (p *parser) getBool(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

// getDuration accepts Go duration syntax or a bare number of seconds.
func (p *parser) getDuration(key string, def time.Duration) time.Duration {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}
