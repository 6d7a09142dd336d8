package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/LukeThoma5/mortar/internal/sdkgen"
)

// Config represents the mortar configuration.
type Config struct {
	Debug                  bool     `json:"debug" yaml:"debug"`
	SwaggerEndpoint        string   `json:"swaggerEndpoint" yaml:"swaggerEndpoint"` // URL or local path of the OpenAPI document
	OutputDir              string   `json:"outputDir" yaml:"outputDir"`             // relative to the working directory
	SkipEndpointGeneration bool     `json:"skipEndpointGeneration" yaml:"skipEndpointGeneration"`
	NoFormat               bool     `json:"noFormat" yaml:"noFormat"`
	StrictOrNull           bool     `json:"strictOrNull" yaml:"strictOrNull"`
	TargetLibrary          string   `json:"targetLibrary" yaml:"targetLibrary"`
	RuntimeLibrary         string   `json:"runtimeLibrary" yaml:"runtimeLibrary"`
	BannedNamespaces       []string `json:"bannedNamespaces" yaml:"bannedNamespaces"`
	PollInterval           Duration `json:"pollInterval" yaml:"pollInterval"` // watch mode, remote documents
	Formatter              string   `json:"formatter" yaml:"formatter"`       // auto, prettier, biome, dprint or none
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Formatters lists the accepted formatter values.
var Formatters = []string{"auto", "prettier", "biome", "dprint", "none"}

// FileNames lists the config files Discover looks for, in priority order.
var FileNames = []string{"mortar.json", "mortar.yaml", "mortar.yml"}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MORTAR_"

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	opts := sdkgen.DefaultOptions()
	return Config{
		TargetLibrary:  opts.TargetLibrary,
		RuntimeLibrary: opts.RuntimeLibrary,
		PollInterval:   Duration(5 * time.Second),
		Formatter:      "auto",
	}
}

// Load reads a config file, applies environment overrides and validates the
// result. JSON and YAML are chosen by extension.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %q: %w", path, err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	config := DefaultConfig()
	switch ext := filepath.Ext(path); ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return nil, fmt.Errorf("config file %q: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}
	return &config, nil
}

// Discover returns the first config file in dir, or "" when there is none.
func Discover(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// Result holds a resolved configuration and where it came from.
type Result struct {
	Config *Config
	Path   string // config file used, empty when none was found
	Dir    string // directory containing the config file (defaults to cwd)
}

// Resolve loads .env from cwd, then the config at configPath (or the one
// Discover finds, or the defaults), then applies MORTAR_* overrides. The result
// is not validated so callers can apply flag overrides first.
func Resolve(configPath, cwd string) (*Result, error) {
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	result := &Result{Dir: cwd}
	path := configPath
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if path == "" {
		path = Discover(cwd)
	}

	if path != "" {
		cfg, err := readFile(path)
		if err != nil {
			return nil, err
		}
		result.Config = cfg
		result.Path = path
		result.Dir = filepath.Dir(path)
	} else {
		cfg := DefaultConfig()
		result.Config = &cfg
	}

	if err := result.Config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return result, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from MORTAR_<SETTING> variables, e.g.
// MORTAR_OUTPUT_DIR or MORTAR_STRICT_OR_NULL. Banned namespaces are comma
// separated.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	for _, o := range c.envOverrides() {
		v, ok := lookup(EnvPrefix + o.name)
		if !ok {
			continue
		}
		if err := o.set(v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, o.name, err)
		}
	}
	return nil
}

type envOverride struct {
	name string
	set  func(string) error
}

func (c *Config) envOverrides() []envOverride {
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}
	flag := func(dst *bool) func(string) error {
		return func(v string) error {
			b, err := parseBool(v)
			if err != nil {
				return err
			}
			*dst = b
			return nil
		}
	}
	return []envOverride{
		{"DEBUG", flag(&c.Debug)},
		{"SWAGGER_ENDPOINT", str(&c.SwaggerEndpoint)},
		{"OUTPUT_DIR", str(&c.OutputDir)},
		{"SKIP_ENDPOINT_GENERATION", flag(&c.SkipEndpointGeneration)},
		{"NO_FORMAT", flag(&c.NoFormat)},
		{"STRICT_OR_NULL", flag(&c.StrictOrNull)},
		{"TARGET_LIBRARY", str(&c.TargetLibrary)},
		{"RUNTIME_LIBRARY", str(&c.RuntimeLibrary)},
		{"BANNED_NAMESPACES", func(v string) error {
			c.BannedNamespaces = nil
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					c.BannedNamespaces = append(c.BannedNamespaces, part)
				}
			}
			return nil
		}},
		{"POLL_INTERVAL", func(v string) error { return c.PollInterval.UnmarshalText([]byte(v)) }},
		{"FORMATTER", str(&c.Formatter)},
	}
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	if c.SwaggerEndpoint == "" {
		return fmt.Errorf("swaggerEndpoint must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir must not be empty")
	}
	if filepath.IsAbs(c.OutputDir) {
		return fmt.Errorf("outputDir must be relative, got %q", c.OutputDir)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("pollInterval must be positive")
	}
	if !isFormatter(c.Formatter) {
		return fmt.Errorf("formatter: invalid value %q", c.Formatter)
	}
	return c.validateBanned()
}

func (c *Config) validateBanned() error {
	for _, ns := range c.BannedNamespaces {
		if _, err := regexp.Compile(ns); err != nil {
			return fmt.Errorf("bannedNamespaces: %q: %w", ns, err)
		}
	}
	return nil
}

func isFormatter(name string) bool {
	for _, f := range Formatters {
		if f == name {
			return true
		}
	}
	return false
}

// Options converts the generation settings.
func (c *Config) Options() sdkgen.Options {
	return sdkgen.Options{
		TargetLibrary:     c.TargetLibrary,
		RuntimeLibrary:    c.RuntimeLibrary,
		StrictNullability: c.StrictOrNull,
		BannedNamespaces:  c.BannedNamespaces,
		EndpointsOnly:     c.SkipEndpointGeneration,
	}
}

// FormatterName returns the formatter to run, "none" when formatting is off.
func (c *Config) FormatterName() string {
	if c.NoFormat {
		return "none"
	}
	return c.Formatter
}
