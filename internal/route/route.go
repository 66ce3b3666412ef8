// Package route defines the descriptor produced for every detected Express
// route registration and the heuristics that annotate it.
package route

import "strings"

// InlineHandler is recorded as the handler name when the handler argument is
// a function literal rather than a named reference.
const InlineHandler = "<inline>"

// HTTP verbs recognised as route registrations.
var Methods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
}

// Middleware names that are accumulated when called as bare identifiers.
var MiddlewareNames = map[string]bool{
	"auth": true, "hasPermission": true, "validate": true, "rateLimit": true, "cors": true,
}

const (
	MiddlewareAuth       = "auth"
	MiddlewarePermission = "hasPermission"
	MiddlewareValidate   = "validate"
)

// Descriptor is one detected route registration. Build it with New; it is
// not modified afterwards.
type Descriptor struct {
	Method     string   `json:"method" yaml:"method"`
	Path       string   `json:"path" yaml:"path"`
	Handler    string   `json:"handler" yaml:"handler"`
	SourceFile string   `json:"file" yaml:"file"`
	Line       int      `json:"line,omitempty" yaml:"line,omitempty"`
	Middleware []string `json:"middleware" yaml:"middleware"`

	Authenticated bool     `json:"is_authenticated" yaml:"is_authenticated"`
	Permissions   []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`

	Description         string   `json:"description" yaml:"description"`
	ExpectedStatusCodes []int    `json:"expected_status_codes" yaml:"expected_status_codes"`
	Tags                []string `json:"tags" yaml:"tags"`
}

// New builds an annotated descriptor. The middleware chain is copied, so the
// caller may keep appending to its accumulator.
func New(method, path, handler, sourceFile string, line int, chain []string) Descriptor {
	mw := make([]string, len(chain))
	copy(mw, chain)

	var perms []string
	if contains(mw, MiddlewarePermission) {
		// Placeholder: permission arguments are not inspected.
		perms = []string{"admin"}
	}

	return Descriptor{
		Method:              method,
		Path:                path,
		Handler:             handler,
		SourceFile:          sourceFile,
		Line:                line,
		Middleware:          mw,
		Authenticated:       contains(mw, MiddlewareAuth),
		Permissions:         perms,
		Description:         Describe(method, path),
		ExpectedStatusCodes: ExpectedStatusCodes(method),
		Tags:                CategoryTags(method, path, mw),
	}
}

// Verb returns the lower-cased HTTP method.
func (d Descriptor) Verb() string {
	return strings.ToLower(d.Method)
}

// HasMiddleware reports whether name was observed before the route.
func (d Descriptor) HasMiddleware(name string) bool {
	return contains(d.Middleware, name)
}

// IsInline reports whether the handler is a function literal.
func (d Descriptor) IsInline() bool {
	return d.Handler == InlineHandler
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
