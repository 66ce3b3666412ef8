package config

// GenerationConfig is the resolved, read-only option set for one generation
// run.
type GenerationConfig struct {
	// SrcRoot is the absolute source directory.
	SrcRoot string
	// OutputDir is the absolute directory tests are written under.
	OutputDir string
	// TestFileExt is one of TestFileExts.
	TestFileExt string

	UseMockData bool
	DryRun      bool
	Verbose     bool
	Modular     bool
	Exclude     []string

	IncludeAuthTests        bool
	IncludeValidationTests  bool
	IncludeErrorTests       bool
	IncludeIntegrationTests bool
	IncludePerformanceTests bool

	TestFramework string
	DatabaseType  string
	MockDatabase  bool

	GenerateFixtures  bool
	GenerateHelpers   bool
	CoverageThreshold int
}

// TypeScript reports whether generated tests are TypeScript sources.
func (g GenerationConfig) TypeScript() bool {
	return len(g.TestFileExt) >= 3 && g.TestFileExt[len(g.TestFileExt)-3:] == ".ts"
}
