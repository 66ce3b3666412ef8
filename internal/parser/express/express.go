// Package express extracts Express route registrations from JavaScript and
// TypeScript sources using tree-sitter.
package express

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/imyousuf/nuktatestify/internal/parser"
	"github.com/imyousuf/nuktatestify/internal/route"
)

// ParseError reports a source file that could not be parsed.
type ParseError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (%d:%d)", e.Msg, e.Line, e.Column)
}

// Extractor finds `<obj>.<verb>("<path>", <handler>)` call sites.
type Extractor struct {
	registry *parser.Registry
	log      func(format string, args ...any)
}

// NewExtractor creates an extractor. log receives informational messages and
// may be nil.
func NewExtractor(registry *parser.Registry, log func(format string, args ...any)) *Extractor {
	if log == nil {
		log = func(string, ...any) {}
	}
	return &Extractor{registry: registry, log: log}
}

// ExtractRoutes parses content and returns one descriptor per recognised
// route registration, in document order. A file with syntax errors yields a
// *ParseError and no descriptors.
func (x *Extractor) ExtractRoutes(filePath string, content []byte) ([]route.Descriptor, error) {
	g, ok := x.registry.ForFile(filePath)
	if !ok {
		return nil, fmt.Errorf("no grammar registered for %s", filePath)
	}

	psr := sitter.NewParser()
	psr.SetLanguage(g.Tree())

	tree, err := psr.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, &ParseError{File: filePath, Msg: err.Error()}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(filePath, content, root)
	}

	e := &extractor{
		filePath: filePath,
		content:  content,
		log:      x.log,
	}
	st := &walkState{}
	e.walk(root, st)
	return st.routes, nil
}

// walkState is the per-file accumulator threaded through the walk. Each
// emitted descriptor receives a copy of chain.
type walkState struct {
	chain  []string
	routes []route.Descriptor
}

type extractor struct {
	filePath string
	content  []byte
	log      func(format string, args ...any)
}

// walk visits nodes depth-first in document order.
func (e *extractor) walk(node *sitter.Node, st *walkState) {
	switch node.Type() {
	case "call_expression":
		e.visitCall(node, st)
	case "import_statement":
		e.visitImport(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		e.walk(node.Child(i), st)
	}
}

func (e *extractor) visitCall(node *sitter.Node, st *walkState) {
	fnNode := node.ChildByFieldName("function")
	if fnNode == nil {
		return
	}

	switch fnNode.Type() {
	case "identifier":
		name := e.nodeText(fnNode)
		if route.MiddlewareNames[name] {
			st.chain = append(st.chain, name)
		}
	case "member_expression":
		e.checkForRoute(node, fnNode, st)
	}
}

func (e *extractor) checkForRoute(node, fnNode *sitter.Node, st *walkState) {
	propertyNode := fnNode.ChildByFieldName("property")
	if propertyNode == nil || propertyNode.Type() != "property_identifier" {
		return
	}
	method := e.nodeText(propertyNode)
	if !route.Methods[strings.ToLower(method)] {
		return
	}

	argNodes := e.argumentNodes(node)
	if len(argNodes) < 2 {
		return
	}
	if argNodes[0].Type() != "string" {
		return
	}
	path := e.stringValue(argNodes[0])

	var handler string
	switch argNodes[1].Type() {
	case "identifier":
		handler = e.nodeText(argNodes[1])
	case "arrow_function", "function", "function_expression", "generator_function":
		handler = route.InlineHandler
	default:
		return
	}

	d := route.New(method, path, handler, e.filePath, startLine(node), st.chain)
	st.routes = append(st.routes, d)

	e.log("Found route: [%s] %s (%s) in %s", strings.ToUpper(method), path, handler, e.filePath)
	if len(d.Middleware) > 0 {
		e.log("  Middleware: %s", strings.Join(d.Middleware, ", "))
	}
}

func (e *extractor) visitImport(node *sitter.Node) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	modulePath := e.stringValue(source)
	if strings.Contains(modulePath, "middleware") || strings.Contains(modulePath, "auth") {
		e.log("Found middleware import: %s", modulePath)
	}
}

// argumentNodes returns the call's argument expressions, skipping punctuation
// and comments.
func (e *extractor) argumentNodes(call *sitter.Node) []*sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "arguments" {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// stringValue returns the decoded contents of a string literal node.
func (e *extractor) stringValue(node *sitter.Node) string {
	if node.NamedChildCount() == 0 {
		return stripQuotes(e.nodeText(node))
	}
	var sb strings.Builder
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "string_fragment":
			sb.WriteString(e.nodeText(child))
		case "escape_sequence":
			sb.WriteString(unescape(e.nodeText(child)))
		}
	}
	return sb.String()
}

func (e *extractor) nodeText(node *sitter.Node) string {
	return node.Content(e.content)
}

func syntaxError(filePath string, content []byte, root *sitter.Node) *ParseError {
	pe := &ParseError{File: filePath, Msg: "syntax error"}
	bad := firstErrorNode(root)
	if bad == nil {
		return pe
	}
	pe.Line = int(bad.StartPoint().Row) + 1
	pe.Column = int(bad.StartPoint().Column)
	if bad.IsMissing() {
		pe.Msg = fmt.Sprintf("missing %s", bad.Type())
	} else {
		pe.Msg = fmt.Sprintf("unexpected token %q", firstLine(bad.Content(content)))
	}
	return pe
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := firstErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

// unescape decodes one JavaScript escape sequence, including the forms Go
// rejects: code point escapes, legacy octal and line continuations.
func unescape(seq string) string {
	if len(seq) < 2 || seq[0] != '\\' {
		return seq
	}
	body := seq[1:]

	switch {
	case body == "\n" || body == "\r\n" || body == "\r" || body == "\u2028" || body == "\u2029":
		return ""
	case strings.HasPrefix(body, "u{") && strings.HasSuffix(body, "}"):
		n, err := strconv.ParseUint(body[2:len(body)-1], 16, 32)
		if err == nil && utf8.ValidRune(rune(n)) {
			return string(rune(n))
		}
		return body
	case body[0] >= '0' && body[0] <= '7':
		if n, err := strconv.ParseUint(body, 8, 8); err == nil {
			return string(rune(n))
		}
	}

	if s, err := strconv.Unquote(`"` + seq + `"`); err == nil {
		return s
	}
	return body
}

func startLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
