package route

import "strings"

var actionByMethod = map[string]string{
	"get":    "Retrieve",
	"post":   "Create",
	"put":    "Update",
	"patch":  "Partially update",
	"delete": "Delete",
}

var statusCodesByMethod = map[string][]int{
	"post":   {201, 400, 401, 403, 409, 422, 500},
	"put":    {200, 400, 401, 403, 404, 422, 500},
	"patch":  {200, 400, 401, 403, 404, 422, 500},
	"delete": {200, 204, 400, 401, 403, 404, 500},
	"get":    {200, 400, 401, 403, 404, 500},
}

var defaultStatusCodes = []int{200, 400, 404, 500}

// Path substrings checked in order.
var pathTags = []struct {
	substr string
	tag    string
}{
	{"auth", "authentication"},
	{"admin", "admin"},
	{"user", "user"},
	{"api", "api"},
}

var middlewareTags = []struct {
	name string
	tag  string
}{
	{MiddlewareAuth, "protected"},
	{MiddlewarePermission, "authorized"},
	{MiddlewareValidate, "validated"},
}

// Describe returns a short English description such as "Retrieve users".
func Describe(method, path string) string {
	action, ok := actionByMethod[strings.ToLower(method)]
	if !ok {
		action = "Handle"
	}
	return action + " " + lastSegment(path)
}

// ExpectedStatusCodes returns the status codes a route with the given method
// may plausibly answer with. The path does not influence the result.
func ExpectedStatusCodes(method string) []int {
	codes, ok := statusCodesByMethod[strings.ToLower(method)]
	if !ok {
		codes = defaultStatusCodes
	}
	out := make([]int, len(codes))
	copy(out, codes)
	return out
}

// CategoryTags derives categorisation tags from the method, path and chain.
func CategoryTags(method, path string, chain []string) []string {
	tags := []string{strings.ToUpper(method)}
	for _, pt := range pathTags {
		if strings.Contains(path, pt.substr) {
			tags = append(tags, pt.tag)
		}
	}
	for _, mt := range middlewareTags {
		if contains(chain, mt.name) {
			tags = append(tags, mt.tag)
		}
	}
	return tags
}

func lastSegment(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return "resource"
}
