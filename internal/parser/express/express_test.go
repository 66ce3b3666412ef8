package express

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/imyousuf/nuktatestify/internal/parser"
	"github.com/imyousuf/nuktatestify/internal/route"
)

func newTestExtractor(lines *[]string) *Extractor {
	var log func(string, ...any)
	if lines != nil {
		log = func(format string, args ...any) {
			*lines = append(*lines, fmt.Sprintf(format, args...))
		}
	}
	return NewExtractor(parser.NewDefaultRegistry(), log)
}

func extract(t *testing.T, file, src string) []route.Descriptor {
	t.Helper()
	routes, err := newTestExtractor(nil).ExtractRoutes(file, []byte(src))
	if err != nil {
		t.Fatalf("ExtractRoutes(%s) returned error: %v", file, err)
	}
	return routes
}

func TestExtractNamedHandler(t *testing.T) {
	routes := extract(t, "src/users.js", `router.get("/users/:id", getUser);`)

	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	r := routes[0]
	if r.Method != "get" {
		t.Errorf("Method = %q, want %q", r.Method, "get")
	}
	if r.Path != "/users/:id" {
		t.Errorf("Path = %q, want %q", r.Path, "/users/:id")
	}
	if r.Handler != "getUser" {
		t.Errorf("Handler = %q, want %q", r.Handler, "getUser")
	}
	if r.SourceFile != "src/users.js" {
		t.Errorf("SourceFile = %q, want %q", r.SourceFile, "src/users.js")
	}
	if r.Line != 1 {
		t.Errorf("Line = %d, want 1", r.Line)
	}
	if len(r.Middleware) != 0 {
		t.Errorf("Middleware = %v, want empty", r.Middleware)
	}
	if r.Authenticated {
		t.Error("Authenticated = true, want false")
	}
	if r.Description != "Retrieve :id" {
		t.Errorf("Description = %q, want %q", r.Description, "Retrieve :id")
	}
	if !reflect.DeepEqual(r.ExpectedStatusCodes, []int{200, 400, 401, 403, 404, 500}) {
		t.Errorf("ExpectedStatusCodes = %v", r.ExpectedStatusCodes)
	}
	if !reflect.DeepEqual(r.Tags, []string{"GET", "user"}) {
		t.Errorf("Tags = %v, want [GET user]", r.Tags)
	}
}

func TestExtractMiddlewareAccumulates(t *testing.T) {
	src := `
router.get('/health', health);
auth();
router.post("/users", createUser);
hasPermission('admin');
router.delete('/users/:id', removeUser);
`
	routes := extract(t, "src/users.js", src)
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}

	if len(routes[0].Middleware) != 0 {
		t.Errorf("routes[0].Middleware = %v, want empty", routes[0].Middleware)
	}
	if !reflect.DeepEqual(routes[1].Middleware, []string{"auth"}) {
		t.Errorf("routes[1].Middleware = %v, want [auth]", routes[1].Middleware)
	}
	if !routes[1].Authenticated {
		t.Error("routes[1].Authenticated = false, want true")
	}
	if !reflect.DeepEqual(routes[2].Middleware, []string{"auth", "hasPermission"}) {
		t.Errorf("routes[2].Middleware = %v, want [auth hasPermission]", routes[2].Middleware)
	}
	if !reflect.DeepEqual(routes[2].Permissions, []string{"admin"}) {
		t.Errorf("routes[2].Permissions = %v, want [admin]", routes[2].Permissions)
	}

	// Later appends must not leak into earlier descriptors.
	if len(routes[1].Middleware) != 1 {
		t.Errorf("routes[1].Middleware mutated to %v", routes[1].Middleware)
	}
}

func TestExtractMiddlewareIsFileScoped(t *testing.T) {
	src := `
function setup() {
  cors();
}
router.get('/a', a);
`
	routes := extract(t, "src/a.js", src)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if !reflect.DeepEqual(routes[0].Middleware, []string{"cors"}) {
		t.Errorf("Middleware = %v, want [cors]", routes[0].Middleware)
	}
}

func TestExtractIgnoresUnknownMiddleware(t *testing.T) {
	src := `
helmet();
rateLimit({ windowMs: 1000 });
app.use(cors());
router.get('/x', handler);
`
	routes := extract(t, "src/x.js", src)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	want := []string{"rateLimit", "cors"}
	if !reflect.DeepEqual(routes[0].Middleware, want) {
		t.Errorf("Middleware = %v, want %v", routes[0].Middleware, want)
	}
}

func TestExtractInlineHandlers(t *testing.T) {
	src := `
router.get('/a', (req, res) => res.json({}));
router.post('/b', async (req, res) => { res.sendStatus(201); });
router.put('/c', function (req, res) { res.end(); });
router.patch('/d', function named(req, res) { res.end(); });
`
	routes := extract(t, "src/inline.js", src)
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4", len(routes))
	}
	for i, r := range routes {
		if r.Handler != route.InlineHandler {
			t.Errorf("routes[%d].Handler = %q, want %q", i, r.Handler, route.InlineHandler)
		}
		if !r.IsInline() {
			t.Errorf("routes[%d].IsInline() = false, want true", i)
		}
	}
}

func TestExtractSkipsNonMatchingCalls(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"single argument", `app.get('env');`},
		{"template literal path", "router.get(`/users`, list);"},
		{"variable path", `router.get(usersPath, list);`},
		{"member handler", `router.get('/users', controller.list);`},
		{"call handler", `router.post('/users', validate(schema), create);`},
		{"unknown verb", `router.options('/users', list);`},
		{"computed member", `router['get']('/users', list);`},
		{"bare call", `get('/users', list);`},
		{"object handler", `router.get('/users', { handler: list });`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := extract(t, "src/skip.js", tt.src)
			if len(routes) != 0 {
				t.Errorf("got %d routes, want 0: %+v", len(routes), routes)
			}
		})
	}
}

func TestExtractCallHandlerStillAccumulatesMiddleware(t *testing.T) {
	src := `
router.post('/users', validate(schema), create);
router.put('/users/:id', update);
`
	routes := extract(t, "src/users.js", src)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if routes[0].Path != "/users/:id" {
		t.Errorf("Path = %q, want %q", routes[0].Path, "/users/:id")
	}
	if !reflect.DeepEqual(routes[0].Middleware, []string{"validate"}) {
		t.Errorf("Middleware = %v, want [validate]", routes[0].Middleware)
	}
}

func TestExtractVerbCaseInsensitive(t *testing.T) {
	routes := extract(t, "src/upper.js", `router.GET('/shout', shout);`)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	if routes[0].Method != "GET" {
		t.Errorf("Method = %q, want %q", routes[0].Method, "GET")
	}
	if routes[0].Verb() != "get" {
		t.Errorf("Verb() = %q, want %q", routes[0].Verb(), "get")
	}
}

func TestExtractDocumentOrder(t *testing.T) {
	src := `
const r = express.Router();

r.get('/one', one);

module.exports = function register(app) {
  app.post('/two', two);
  if (enabled) {
    app.delete('/three', three);
  }
};

r.patch('/four', four);
`
	routes := extract(t, "src/order.js", src)
	var paths []string
	for _, r := range routes {
		paths = append(paths, r.Path)
	}
	want := []string{"/one", "/two", "/three", "/four"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if routes[0].Line != 4 {
		t.Errorf("routes[0].Line = %d, want 4", routes[0].Line)
	}
}

func TestExtractTypeScript(t *testing.T) {
	src := `
import { Router, Request, Response } from 'express';
import { auth } from '../middleware/auth';

interface User {
  id: string;
}

const router: Router = Router();

const listUsers = async (req: Request, res: Response): Promise<void> => {
  const users: User[] = [];
  res.json(users);
};

auth();
router.get('/api/users', listUsers);

export default router;
`
	routes := extract(t, "src/users.route.ts", src)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
	r := routes[0]
	if r.Handler != "listUsers" {
		t.Errorf("Handler = %q, want %q", r.Handler, "listUsers")
	}
	if !r.Authenticated {
		t.Error("Authenticated = false, want true")
	}
}

func TestExtractJSXInJavaScript(t *testing.T) {
	src := `
const page = () => <div className="x">hi</div>;
router.get('/page', page);
`
	routes := extract(t, "src/page.js", src)
	if len(routes) != 1 {
		t.Fatalf("got %d routes, want 1", len(routes))
	}
}

func TestExtractStringEscapes(t *testing.T) {
	routes := extract(t, "src/esc.js", `router.get('/it\'s', h); router.get("/tab\tx", h);`)
	if len(routes) != 2 {
		t.Fatalf("got %d routes, want 2", len(routes))
	}
	if routes[0].Path != "/it's" {
		t.Errorf("routes[0].Path = %q, want %q", routes[0].Path, "/it's")
	}
	if routes[1].Path != "/tab\tx" {
		t.Errorf("routes[1].Path = %q, want %q", routes[1].Path, "/tab\tx")
	}
}

func TestExtractJSOnlyEscapes(t *testing.T) {
	src := "router.get('/a\\u{41}\\0b', h);\n" +
		"router.get('/long\\\n/path', h);\n" +
		"router.get('/oct\\101', h);\n"
	routes := extract(t, "src/escapes.js", src)
	if len(routes) != 3 {
		t.Fatalf("got %d routes, want 3", len(routes))
	}

	want := []string{"/aA\x00b", "/long/path", "/octA"}
	for i, w := range want {
		if routes[i].Path != w {
			t.Errorf("routes[%d].Path = %q, want %q", i, routes[i].Path, w)
		}
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		seq  string
		want string
	}{
		{`\n`, "\n"},
		{`\t`, "\t"},
		{`\'`, "'"},
		{`\"`, `"`},
		{`\\`, `\`},
		{`\x41`, "A"},
		{`\u0041`, "A"},
		{`\u{1F600}`, "\U0001F600"},
		{`\u{110000}`, "u{110000}"},
		{`\0`, "\x00"},
		{`\7`, "\a"},
		{"\\\n", ""},
		{"\\\r\n", ""},
		{`\q`, "q"},
	}
	for _, tt := range tests {
		if got := unescape(tt.seq); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.seq, got, tt.want)
		}
	}
}

func TestExtractParseError(t *testing.T) {
	src := "router.get('/ok', ok);\nrouter.get('/broken', (\n"
	routes, err := newTestExtractor(nil).ExtractRoutes("src/broken.js", []byte(src))
	if err == nil {
		t.Fatal("expected error for malformed source")
	}
	if len(routes) != 0 {
		t.Errorf("got %d routes, want 0", len(routes))
	}

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if pe.File != "src/broken.js" {
		t.Errorf("File = %q, want %q", pe.File, "src/broken.js")
	}
	if pe.Line == 0 {
		t.Error("Line = 0, want error position")
	}
}

func TestExtractUnsupportedExtension(t *testing.T) {
	_, err := newTestExtractor(nil).ExtractRoutes("src/readme.md", []byte("# hi"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestExtractLogsDiscoveries(t *testing.T) {
	var lines []string
	src := `
import { auth } from './middleware/auth';
import express from 'express';
auth();
router.get('/me', (req, res) => res.json(req.user));
`
	_, err := newTestExtractor(&lines).ExtractRoutes("src/me.js", []byte(src))
	if err != nil {
		t.Fatalf("ExtractRoutes returned error: %v", err)
	}

	want := []string{
		"Found middleware import: ./middleware/auth",
		"Found route: [GET] /me (<inline>) in src/me.js",
		"  Middleware: auth",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("log lines:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}
