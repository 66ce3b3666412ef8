package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Src != "src" {
		t.Errorf("Src = %q, want %q", cfg.Src, "src")
	}
	if cfg.Out != "tests" {
		t.Errorf("Out = %q, want %q", cfg.Out, "tests")
	}
	if cfg.Ext != "test.ts" {
		t.Errorf("Ext = %q, want %q", cfg.Ext, "test.ts")
	}
	if cfg.Mock || cfg.DryRun || cfg.Verbose || cfg.Modular {
		t.Errorf("boolean switches should default to false: %+v", cfg)
	}
	wantTests := TestsConfig{Auth: true, Validation: true, Error: true, Integration: true, Performance: false}
	if cfg.Tests != wantTests {
		t.Errorf("Tests = %+v, want %+v", cfg.Tests, wantTests)
	}
	if cfg.TestFramework != "jest" {
		t.Errorf("TestFramework = %q, want %q", cfg.TestFramework, "jest")
	}
	if cfg.Database.Type != "mongodb" || cfg.Database.Mock {
		t.Errorf("Database = %+v, want {mongodb false}", cfg.Database)
	}
	if !cfg.Generate.Fixtures || !cfg.Generate.Helpers {
		t.Errorf("Generate = %+v, want both true", cfg.Generate)
	}
	if cfg.CoverageThreshold != 80 {
		t.Errorf("CoverageThreshold = %d, want 80", cfg.CoverageThreshold)
	}
	if len(cfg.Exclude) != 0 {
		t.Errorf("Exclude = %v, want empty", cfg.Exclude)
	}

	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() without sources = %+v, want Default() %+v", cfg, Default())
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	configContent := `src: app
out: spec
ext: spec.js
modular: true
exclude:
  - "legacy/"
tests:
  auth: false
  performance: true
database:
  type: postgresql
  mock: true
coverage_threshold: 95
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".nuktatestify.yaml"), []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Src != "app" {
		t.Errorf("Src = %q, want %q", cfg.Src, "app")
	}
	if cfg.Out != "spec" {
		t.Errorf("Out = %q, want %q", cfg.Out, "spec")
	}
	if cfg.Ext != "spec.js" {
		t.Errorf("Ext = %q, want %q", cfg.Ext, "spec.js")
	}
	if !cfg.Modular {
		t.Error("Modular = false, want true")
	}
	if !reflect.DeepEqual(cfg.Exclude, []string{"legacy/"}) {
		t.Errorf("Exclude = %v, want [legacy/]", cfg.Exclude)
	}
	if cfg.Tests.Auth {
		t.Error("Tests.Auth = true, want false")
	}
	if !cfg.Tests.Performance {
		t.Error("Tests.Performance = false, want true")
	}
	// Unset keys keep their defaults.
	if !cfg.Tests.Validation {
		t.Error("Tests.Validation = false, want default true")
	}
	if cfg.Database.Type != "postgresql" || !cfg.Database.Mock {
		t.Errorf("Database = %+v, want {postgresql true}", cfg.Database)
	}
	if cfg.CoverageThreshold != 95 {
		t.Errorf("CoverageThreshold = %d, want 95", cfg.CoverageThreshold)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NUKTATESTIFY_OUT", "generated")
	t.Setenv("NUKTATESTIFY_TESTS_PERFORMANCE", "true")
	t.Setenv("NUKTATESTIFY_DATABASE_TYPE", "mysql")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Out != "generated" {
		t.Errorf("Out = %q, want %q", cfg.Out, "generated")
	}
	if !cfg.Tests.Performance {
		t.Error("Tests.Performance = false, want true")
	}
	if cfg.Database.Type != "mysql" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "mysql")
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	// Registers a cleanup that unsets the variable godotenv exports.
	t.Setenv("NUKTATESTIFY_SRC", "")
	os.Unsetenv("NUKTATESTIFY_SRC")

	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("NUKTATESTIFY_SRC=server\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Src != "server" {
		t.Errorf("Src = %q, want %q", cfg.Src, "server")
	}
}

func TestLoadFlagsOverride(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	if err := os.WriteFile(filepath.Join(tmpDir, ".nuktatestify.yaml"), []byte("out: from-file\nsrc: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("out", "tests", "")
	fs.String("src", "src", "")
	fs.Bool("auth-tests", true, "")
	fs.Int("coverage-threshold", 80, "")
	if err := fs.Parse([]string{"--out", "from-flag", "--auth-tests=false"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Flags: fs})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Out != "from-flag" {
		t.Errorf("Out = %q, want %q", cfg.Out, "from-flag")
	}
	// Flags that were not set do not mask the config file.
	if cfg.Src != "from-file" {
		t.Errorf("Src = %q, want %q", cfg.Src, "from-file")
	}
	if cfg.Tests.Auth {
		t.Error("Tests.Auth = true, want false")
	}
	if cfg.CoverageThreshold != 80 {
		t.Errorf("CoverageThreshold = %d, want 80", cfg.CoverageThreshold)
	}
}

func TestLoadCoercesUnknownExt(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NUKTATESTIFY_EXT", "tests.coffee")

	cfg, err := Load(LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Ext != "test.ts" {
		t.Errorf("Ext = %q, want %q", cfg.Ext, "test.ts")
	}
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(LoadOptions{ConfigFile: "does-not-exist.yaml"})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestNormalizeExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"test.ts", "test.ts"},
		{"test.js", "test.js"},
		{"spec.ts", "spec.ts"},
		{"spec.js", "spec.js"},
		{"", "test.ts"},
		{"ts", "test.ts"},
		{"TEST.JS", "test.ts"},
	}
	for _, tt := range tests {
		if got := NormalizeExt(tt.in); got != tt.want {
			t.Errorf("NormalizeExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(c *Config)
		wantField string
	}{
		{
			name:   "defaults",
			modify: func(c *Config) {},
		},
		{
			name:   "mocha and mysql",
			modify: func(c *Config) { c.TestFramework = "mocha"; c.Database.Type = "mysql" },
		},
		{
			name:   "threshold bounds",
			modify: func(c *Config) { c.CoverageThreshold = 100 },
		},
		{
			name:      "unknown framework",
			modify:    func(c *Config) { c.TestFramework = "vitest" },
			wantField: "test_framework",
		},
		{
			name:      "unknown database",
			modify:    func(c *Config) { c.Database.Type = "redis" },
			wantField: "database.type",
		},
		{
			name:      "threshold too high",
			modify:    func(c *Config) { c.CoverageThreshold = 101 },
			wantField: "coverage_threshold",
		},
		{
			name:      "threshold negative",
			modify:    func(c *Config) { c.CoverageThreshold = -1 },
			wantField: "coverage_threshold",
		},
		{
			name:      "empty src",
			modify:    func(c *Config) { c.Src = "" },
			wantField: "src",
		},
		{
			name:      "empty out",
			modify:    func(c *Config) { c.Out = "" },
			wantField: "out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Fatalf("Validate() error = %v, want *ConfigurationError", err)
			}
			if ce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ce.Field, tt.wantField)
			}
		})
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &ConfigurationError{Field: "test_framework", Value: "vitest", Reason: "must be one of jest, mocha"}
	want := `invalid test_framework "vitest": must be one of jest, mocha`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestGeneration(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	cfg := Default()
	cfg.Ext = "bogus"
	cfg.Modular = true
	cfg.Tests.Performance = true

	gen, err := cfg.Generation()
	if err != nil {
		t.Fatalf("Generation() error: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if gen.SrcRoot != filepath.Join(wd, "src") {
		t.Errorf("SrcRoot = %q, want %q", gen.SrcRoot, filepath.Join(wd, "src"))
	}
	if gen.OutputDir != filepath.Join(wd, "tests") {
		t.Errorf("OutputDir = %q, want %q", gen.OutputDir, filepath.Join(wd, "tests"))
	}
	if gen.TestFileExt != "test.ts" {
		t.Errorf("TestFileExt = %q, want %q", gen.TestFileExt, "test.ts")
	}
	if !gen.Modular || !gen.IncludePerformanceTests || !gen.IncludeAuthTests {
		t.Errorf("flags not carried over: %+v", gen)
	}
	if gen.CoverageThreshold != 80 {
		t.Errorf("CoverageThreshold = %d, want 80", gen.CoverageThreshold)
	}
}

func TestGenerationTypeScript(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{"test.ts", true},
		{"spec.ts", true},
		{"test.js", false},
		{"spec.js", false},
	}
	for _, tt := range tests {
		if got := (GenerationConfig{TestFileExt: tt.ext}).TypeScript(); got != tt.want {
			t.Errorf("TypeScript() for %q = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestWriteConfigReloads(t *testing.T) {
	for _, name := range []string{"custom.yaml", "custom.toml"} {
		t.Run(name, func(t *testing.T) {
			tmpDir := t.TempDir()
			chdir(t, tmpDir)

			cfg := Default()
			cfg.Out = "generated"
			cfg.Modular = true
			cfg.Exclude = []string{"legacy/"}
			cfg.Database.Type = "postgresql"
			cfg.CoverageThreshold = 70

			path := filepath.Join(tmpDir, name)
			if err := WriteConfig(cfg, path); err != nil {
				t.Fatalf("WriteConfig() error: %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(data), "# nuktatestify configuration\n") {
				t.Errorf("missing header comment:\n%s", data)
			}

			loaded, err := Load(LoadOptions{ConfigFile: path})
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if !reflect.DeepEqual(loaded, cfg) {
				t.Errorf("reloaded config = %+v, want %+v", loaded, cfg)
			}
		})
	}
}

func TestMarshalUnsupportedFormat(t *testing.T) {
	if _, err := Marshal(Default(), "ini"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
