package generator

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/imyousuf/nuktatestify/internal/route"
)

var nonWord = regexp.MustCompile(`\W+`)

var sourceExt = regexp.MustCompile(`\.[jt]s$`)

// FlatFileName names the test file for one descriptor:
// {handler}_{method}_{sanitized path}.{ext}. Inline handlers use the method
// in place of the handler name. Descriptors sharing handler, method and path
// map to the same name.
func FlatFileName(d route.Descriptor, ext string) string {
	prefix := d.Handler
	if prefix == "" || d.IsInline() {
		prefix = d.Method
	}
	return prefix + "_" + d.Method + "_" + nonWord.ReplaceAllString(d.Path, "_") + "." + ext
}

// ModularFileName mirrors sourceFile's location under srcRoot, swapping the
// source extension for the test extension. Files outside srcRoot are placed
// at the top level.
func ModularFileName(srcRoot, sourceFile, ext string) string {
	rel, ok := relativeTo(srcRoot, sourceFile)
	if !ok {
		rel = filepath.Base(sourceFile)
	}
	rel = filepath.ToSlash(rel)
	if sourceExt.MatchString(rel) {
		return sourceExt.ReplaceAllString(rel, "."+ext)
	}
	return rel + "." + ext
}

// ModuleName is the source file's base name without its extension and
// without a ".route" marker.
func ModuleName(sourceFile string) string {
	base := filepath.Base(sourceFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Replace(base, ".route", "", 1)
}

// GroupBySource groups descriptors by source file, keeping the order in
// which files and routes were first seen.
func GroupBySource(descs []route.Descriptor) [][]route.Descriptor {
	index := make(map[string]int)
	var groups [][]route.Descriptor
	for _, d := range descs {
		i, ok := index[d.SourceFile]
		if !ok {
			i = len(groups)
			index[d.SourceFile] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], d)
	}
	return groups
}

// AppImport is the require path from the test file at testPath to
// sourceFile, without extension and always starting with "./" or "../".
func AppImport(testPath, sourceFile string) string {
	from := absPath(filepath.Dir(testPath))
	to := absPath(sourceFile)

	rel, err := filepath.Rel(from, to)
	if err != nil {
		rel = to
	}
	rel = filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
	if !strings.HasPrefix(rel, "./") && !strings.HasPrefix(rel, "../") && !filepath.IsAbs(rel) {
		rel = "./" + rel
	}
	return rel
}

func relativeTo(root, path string) (string, bool) {
	rel, err := filepath.Rel(absPath(root), absPath(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
