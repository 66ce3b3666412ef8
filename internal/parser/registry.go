package parser

import (
	"path/filepath"
	"sort"
	"sync"
)

// Registry manages the grammars available for scanning.
type Registry struct {
	mu       sync.RWMutex
	grammars map[Language]Grammar
	extIndex map[string]Grammar
	order    []Language
}

// NewRegistry creates an empty grammar registry.
func NewRegistry() *Registry {
	return &Registry{
		grammars: make(map[Language]Grammar),
		extIndex: make(map[string]Grammar),
		order:    make([]Language, 0),
	}
}

// NewDefaultRegistry creates a registry holding the JavaScript and TypeScript grammars.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, g := range DefaultGrammars() {
		r.Register(g)
	}
	return r
}

// Register adds a grammar, indexing it by language and file extensions.
func (r *Registry) Register(g Grammar) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.grammars[g.Language]; !exists {
		r.order = append(r.order, g.Language)
	}
	r.grammars[g.Language] = g
	for _, ext := range g.Extensions {
		r.extIndex[ext] = g
	}
}

// GetByExtension retrieves a grammar by file extension (e.g. ".ts").
func (r *Registry) GetByExtension(ext string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.extIndex[ext]
	return g, ok
}

// ForFile retrieves the grammar for a file path.
func (r *Registry) ForFile(path string) (Grammar, bool) {
	return r.GetByExtension(filepath.Ext(path))
}

// Supports reports whether path has a registered extension.
func (r *Registry) Supports(path string) bool {
	_, ok := r.ForFile(path)
	return ok
}

// SupportedExtensions returns all registered file extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extIndex))
	for ext := range r.extIndex {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
