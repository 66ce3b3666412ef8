// Package config handles configuration loading and validation for nuktatestify.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile is the default configuration file name (without extension).
	DefaultConfigFile = ".nuktatestify"
	// DefaultConfigType is the default configuration file type.
	DefaultConfigType = "yaml"
	// EnvPrefix prefixes environment variable overrides, e.g. NUKTATESTIFY_OUT.
	EnvPrefix = "NUKTATESTIFY"
)

// Supported test file extensions. The first entry is the fallback for
// unrecognised values.
var TestFileExts = []string{"test.ts", "test.js", "spec.ts", "spec.js"}

// Accepted labels for the test framework and database options.
var (
	TestFrameworks = []string{"jest", "mocha"}
	DatabaseTypes  = []string{"mongodb", "postgresql", "mysql"}
)

// Config holds all configuration for nuktatestify.
type Config struct {
	// Src is the directory scanned for route files.
	Src string `mapstructure:"src" yaml:"src" toml:"src"`
	// Out is the directory generated tests are written to.
	Out string `mapstructure:"out" yaml:"out" toml:"out"`
	// Ext is the test file extension (test.ts, test.js, spec.ts or spec.js).
	Ext string `mapstructure:"ext" yaml:"ext" toml:"ext"`
	// Mock adds request/response stubs to generated tests.
	Mock bool `mapstructure:"mock" yaml:"mock" toml:"mock"`
	// DryRun reports the planned files without writing them.
	DryRun bool `mapstructure:"dry_run" yaml:"dry_run" toml:"dry_run"`
	// Verbose enables progress logging.
	Verbose bool `mapstructure:"verbose" yaml:"verbose" toml:"verbose"`
	// Modular writes one test module per source file.
	Modular bool `mapstructure:"modular" yaml:"modular" toml:"modular"`
	// Exclude lists gitignore-style patterns skipped during the scan.
	Exclude []string `mapstructure:"exclude" yaml:"exclude" toml:"exclude"`
	// Tests selects the generated test variants.
	Tests TestsConfig `mapstructure:"tests" yaml:"tests" toml:"tests"`
	// TestFramework labels the target framework (jest or mocha).
	TestFramework string `mapstructure:"test_framework" yaml:"test_framework" toml:"test_framework"`
	// Database describes the database the generated tests bootstrap.
	Database DatabaseConfig `mapstructure:"database" yaml:"database" toml:"database"`
	// Generate selects the shared support files.
	Generate GenerateConfig `mapstructure:"generate" yaml:"generate" toml:"generate"`
	// CoverageThreshold is the minimum coverage percentage stamped into helpers.
	CoverageThreshold int `mapstructure:"coverage_threshold" yaml:"coverage_threshold" toml:"coverage_threshold"`
}

// TestsConfig toggles test variants.
type TestsConfig struct {
	Auth        bool `mapstructure:"auth" yaml:"auth" toml:"auth"`
	Validation  bool `mapstructure:"validation" yaml:"validation" toml:"validation"`
	Error       bool `mapstructure:"error" yaml:"error" toml:"error"`
	Integration bool `mapstructure:"integration" yaml:"integration" toml:"integration"`
	Performance bool `mapstructure:"performance" yaml:"performance" toml:"performance"`
}

// DatabaseConfig holds database options.
type DatabaseConfig struct {
	// Type is mongodb, postgresql or mysql.
	Type string `mapstructure:"type" yaml:"type" toml:"type"`
	// Mock uses an in-memory server instead of a real connection.
	Mock bool `mapstructure:"mock" yaml:"mock" toml:"mock"`
}

// GenerateConfig toggles the shared helper and fixture files.
type GenerateConfig struct {
	Fixtures bool `mapstructure:"fixtures" yaml:"fixtures" toml:"fixtures"`
	Helpers  bool `mapstructure:"helpers" yaml:"helpers" toml:"helpers"`
}

// FlagKeys maps configuration keys to the CLI flags that override them.
var FlagKeys = map[string]string{
	"src":                "src",
	"out":                "out",
	"ext":                "ext",
	"mock":               "mock",
	"dry_run":            "dry-run",
	"verbose":            "verbose",
	"modular":            "modular",
	"exclude":            "exclude",
	"tests.auth":         "auth-tests",
	"tests.validation":   "validation-tests",
	"tests.error":        "error-tests",
	"tests.integration":  "integration-tests",
	"tests.performance":  "performance-tests",
	"test_framework":     "test-framework",
	"database.type":      "database-type",
	"database.mock":      "mock-database",
	"generate.fixtures":  "generate-fixtures",
	"generate.helpers":   "generate-helpers",
	"coverage_threshold": "coverage-threshold",
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// ConfigFile is an explicit config file; empty searches the working
	// directory for .nuktatestify.{yaml,toml,...}.
	ConfigFile string
	// EnvFile is loaded into the environment first when present. Empty uses
	// ".env"; a missing file is ignored.
	EnvFile string
	// Flags overrides settings for every flag in FlagKeys that was set.
	Flags *pflag.FlagSet
}

// Load loads configuration from defaults, config file, environment
// variables, and flags, in increasing precedence.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Existing environment variables win over .env entries.
	_ = godotenv.Load(envFile)

	v := viper.New()

	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(DefaultConfigFile)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if opts.Flags != nil {
		for key, name := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Ext = NormalizeExt(cfg.Ext)

	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// NormalizeExt maps unrecognised extensions to test.ts.
func NormalizeExt(ext string) string {
	for _, e := range TestFileExts {
		if ext == e {
			return ext
		}
	}
	return TestFileExts[0]
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Src == "" {
		return &ConfigurationError{Field: "src", Value: c.Src, Reason: "source directory is required"}
	}
	if c.Out == "" {
		return &ConfigurationError{Field: "out", Value: c.Out, Reason: "output directory is required"}
	}
	if !oneOf(c.TestFramework, TestFrameworks) {
		return &ConfigurationError{
			Field:  "test_framework",
			Value:  c.TestFramework,
			Reason: "must be one of " + strings.Join(TestFrameworks, ", "),
		}
	}
	if !oneOf(c.Database.Type, DatabaseTypes) {
		return &ConfigurationError{
			Field:  "database.type",
			Value:  c.Database.Type,
			Reason: "must be one of " + strings.Join(DatabaseTypes, ", "),
		}
	}
	if c.CoverageThreshold < 0 || c.CoverageThreshold > 100 {
		return &ConfigurationError{
			Field:  "coverage_threshold",
			Value:  fmt.Sprint(c.CoverageThreshold),
			Reason: "must be between 0 and 100",
		}
	}
	return nil
}

// Generation resolves the source and output directories against the working
// directory and returns the options consumed by the generation pipeline.
func (c *Config) Generation() (GenerationConfig, error) {
	srcRoot, err := filepath.Abs(c.Src)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("resolve source directory: %w", err)
	}
	outDir, err := filepath.Abs(c.Out)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("resolve output directory: %w", err)
	}

	return GenerationConfig{
		SrcRoot:                 srcRoot,
		OutputDir:               outDir,
		TestFileExt:             NormalizeExt(c.Ext),
		UseMockData:             c.Mock,
		DryRun:                  c.DryRun,
		Verbose:                 c.Verbose,
		Modular:                 c.Modular,
		Exclude:                 c.Exclude,
		IncludeAuthTests:        c.Tests.Auth,
		IncludeValidationTests:  c.Tests.Validation,
		IncludeErrorTests:       c.Tests.Error,
		IncludeIntegrationTests: c.Tests.Integration,
		IncludePerformanceTests: c.Tests.Performance,
		TestFramework:           c.TestFramework,
		DatabaseType:            c.Database.Type,
		MockDatabase:            c.Database.Mock,
		GenerateFixtures:        c.Generate.Fixtures,
		GenerateHelpers:         c.Generate.Helpers,
		CoverageThreshold:       c.CoverageThreshold,
	}, nil
}

func oneOf(s string, list []string) bool {
	for _, v := range list {
		if s == v {
			return true
		}
	}
	return false
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("src", "src")
	v.SetDefault("out", "tests")
	v.SetDefault("ext", "test.ts")
	v.SetDefault("mock", false)
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
	v.SetDefault("modular", false)
	v.SetDefault("exclude", []string{})

	v.SetDefault("tests.auth", true)
	v.SetDefault("tests.validation", true)
	v.SetDefault("tests.error", true)
	v.SetDefault("tests.integration", true)
	v.SetDefault("tests.performance", false)

	v.SetDefault("test_framework", "jest")
	v.SetDefault("database.type", "mongodb")
	v.SetDefault("database.mock", false)

	v.SetDefault("generate.fixtures", true)
	v.SetDefault("generate.helpers", true)

	v.SetDefault("coverage_threshold", 80)
}
