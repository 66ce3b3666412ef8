// Package generator renders Jest test scaffolding for detected Express
// routes.
package generator

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/imyousuf/nuktatestify/internal/config"
	"github.com/imyousuf/nuktatestify/internal/route"
)

// Defaults stamped into the performance variant.
const (
	PerformanceThresholdMS = 1000
	ConcurrentRequests     = 10
)

// Fixed locations of the shared support files, relative to the output
// directory.
const (
	HelpersPath  = "helpers/testHelper.js"
	FixturesPath = "fixtures/testData.js"
)

// FileKind distinguishes route tests from the shared support files.
type FileKind string

const (
	KindTest     FileKind = "test"
	KindHelpers  FileKind = "helpers"
	KindFixtures FileKind = "fixtures"
)

// RenderedTest is one generated file. Path is slash-separated and relative
// to the output directory.
type RenderedTest struct {
	Path    string
	Content string
	// Routes counts the descriptors rendered into the file.
	Routes int
	Kind   FileKind
	// Modular marks files holding every route of one source file.
	Modular bool
}

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"json": jsonAt,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Generator renders test files for one configuration.
type Generator struct {
	cfg config.GenerationConfig
}

// New creates a Generator.
func New(cfg config.GenerationConfig) *Generator {
	return &Generator{cfg: cfg}
}

// Render produces the helpers and fixtures files (when enabled) followed by
// one test file per descriptor, or one per source file in modular mode.
func (g *Generator) Render(descs []route.Descriptor) ([]RenderedTest, error) {
	var out []RenderedTest

	if g.cfg.GenerateHelpers {
		content, err := execute("helpers", g.supportData())
		if err != nil {
			return nil, err
		}
		out = append(out, RenderedTest{Path: HelpersPath, Content: content, Kind: KindHelpers})
	}
	if g.cfg.GenerateFixtures {
		content, err := execute("fixtures", g.supportData())
		if err != nil {
			return nil, err
		}
		out = append(out, RenderedTest{Path: FixturesPath, Content: content, Kind: KindFixtures})
	}

	if g.cfg.Modular {
		for _, group := range GroupBySource(descs) {
			path := ModularFileName(g.cfg.SrcRoot, group[0].SourceFile, g.cfg.TestFileExt)
			content, err := g.RenderModule(path, group)
			if err != nil {
				return nil, err
			}
			out = append(out, RenderedTest{
				Path:    path,
				Content: content,
				Routes:  len(group),
				Kind:    KindTest,
				Modular: true,
			})
		}
		return out, nil
	}

	for _, d := range descs {
		path := FlatFileName(d, g.cfg.TestFileExt)
		content, err := g.RenderModule(path, []route.Descriptor{d})
		if err != nil {
			return nil, err
		}
		out = append(out, RenderedTest{Path: path, Content: content, Routes: 1, Kind: KindTest})
	}
	return out, nil
}

// RenderModule renders a complete test file at path (relative to the output
// directory) covering routes, which must share a source file.
func (g *Generator) RenderModule(path string, routes []route.Descriptor) (string, error) {
	if len(routes) == 0 {
		return "", fmt.Errorf("no routes provided for %s", path)
	}
	first := routes[0]

	data := moduleData{
		Source:       singleLine(g.displaySource(first.SourceFile)),
		Title:        jsQuote(ModuleName(first.SourceFile) + " Module"),
		AppImport:    jsQuote(AppImport(filepath.Join(g.cfg.OutputDir, filepath.FromSlash(path)), first.SourceFile)),
		TS:           g.cfg.TypeScript(),
		Jest:         g.cfg.TestFramework == "jest",
		Mongo:        g.cfg.DatabaseType == "mongodb",
		MockDatabase: g.cfg.MockDatabase,
		DatabaseType: g.cfg.DatabaseType,
	}
	for _, d := range routes {
		body, err := g.RenderRoute(d)
		if err != nil {
			return "", err
		}
		data.Routes = append(data.Routes, routeBlock{Comment: annotationComment(d), Body: body})
	}
	return execute("module", data)
}

// RenderRoute renders the enabled variants for d, separated by blank lines.
func (g *Generator) RenderRoute(d route.Descriptor) (string, error) {
	data := g.routeData(d)
	var blocks []string
	for _, kind := range Variants(d, g.cfg) {
		block, err := execute(kind.String(), data)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

type routeData struct {
	Title        string
	Verb         string
	Path         string
	PathTemplate string
	MockBody     any
	InvalidBody  any
	TestData     any
	UseMockData  bool
	TS           bool
	ThresholdMS  int
	Concurrency  int
}

type routeBlock struct {
	Comment string
	Body    string
}

type moduleData struct {
	Source       string
	Title        string
	AppImport    string
	TS           bool
	Jest         bool
	Mongo        bool
	MockDatabase bool
	DatabaseType string
	Routes       []routeBlock
}

type supportData struct {
	Mongo             bool
	TestFramework     string
	DatabaseType      string
	CoverageThreshold int
	ValidID           string
}

func (g *Generator) routeData(d route.Descriptor) routeData {
	return routeData{
		Title:        jsQuote(strings.ToUpper(d.Method) + " " + d.Path),
		Verb:         d.Verb(),
		Path:         jsQuote(d.Path),
		PathTemplate: jsTemplate(d.Path),
		MockBody:     mockBody(d.Path),
		InvalidBody:  invalidBody(),
		TestData:     integrationData(),
		UseMockData:  g.cfg.UseMockData,
		TS:           g.cfg.TypeScript(),
		ThresholdMS:  PerformanceThresholdMS,
		Concurrency:  ConcurrentRequests,
	}
}

func (g *Generator) supportData() supportData {
	mongo := g.cfg.DatabaseType == "mongodb"
	validID := "00000000-0000-4000-8000-000000000001"
	if mongo {
		validID = "507f1f77bcf86cd799439011"
	}
	return supportData{
		Mongo:             mongo,
		TestFramework:     jsQuote(g.cfg.TestFramework),
		DatabaseType:      jsQuote(g.cfg.DatabaseType),
		CoverageThreshold: g.cfg.CoverageThreshold,
		ValidID:           validID,
	}
}

// displaySource returns the source path relative to the source root when
// possible.
func (g *Generator) displaySource(sourceFile string) string {
	if g.cfg.SrcRoot != "" {
		if rel, ok := relativeTo(g.cfg.SrcRoot, sourceFile); ok {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Base(sourceFile))
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return strings.Trim(buf.String(), "\n"), nil
}

// jsonAt encodes v as indented JSON whose continuation lines start at the
// given column.
func jsonAt(indent int, v any) (string, error) {
	data, err := json.MarshalIndent(v, strings.Repeat(" ", indent), "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func annotationComment(d route.Descriptor) string {
	codes := make([]string, len(d.ExpectedStatusCodes))
	for i, c := range d.ExpectedStatusCodes {
		codes[i] = fmt.Sprint(c)
	}
	text := fmt.Sprintf("%s (%s). Tags: %s. Expected status codes: %s.",
		d.Description, handlerLabel(d), strings.Join(d.Tags, ", "), strings.Join(codes, ", "))
	return singleLine(text)
}

func handlerLabel(d route.Descriptor) string {
	if d.IsInline() {
		return "inline handler"
	}
	return d.Handler
}

var jsQuoter = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// jsQuote escapes s for a single-quoted JavaScript string.
func jsQuote(s string) string {
	return jsQuoter.Replace(s)
}

var jsTemplater = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)

// jsTemplate escapes s for a JavaScript template literal.
func jsTemplate(s string) string {
	return jsTemplater.Replace(s)
}

var lineBreaks = regexp.MustCompile(`[\r\n]+`)

func singleLine(s string) string {
	return lineBreaks.ReplaceAllString(s, " ")
}
