package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		method, path, want string
	}{
		{"get", "/users", "Retrieve users"},
		{"post", "/users", "Create users"},
		{"put", "/users/:id", "Update :id"},
		{"patch", "/users/:id/", "Partially update :id"},
		{"delete", "/posts/:postId", "Delete :postId"},
		{"options", "/health", "Handle health"},
		{"GET", "/api/items", "Retrieve items"},
		{"get", "/", "Retrieve resource"},
		{"get", "", "Retrieve resource"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.method, tt.path))
		})
	}
}

func TestExpectedStatusCodes(t *testing.T) {
	assert.Equal(t, []int{201, 400, 401, 403, 409, 422, 500}, ExpectedStatusCodes("post"))
	assert.Equal(t, []int{200, 400, 401, 403, 404, 422, 500}, ExpectedStatusCodes("put"))
	assert.Equal(t, []int{200, 400, 401, 403, 404, 422, 500}, ExpectedStatusCodes("patch"))
	assert.Equal(t, []int{200, 204, 400, 401, 403, 404, 500}, ExpectedStatusCodes("delete"))
	assert.Equal(t, []int{200, 400, 401, 403, 404, 500}, ExpectedStatusCodes("get"))
	assert.Equal(t, []int{200, 400, 404, 500}, ExpectedStatusCodes("head"))
}

func TestExpectedStatusCodesReturnsFreshSlice(t *testing.T) {
	codes := ExpectedStatusCodes("post")
	codes[0] = 999

	assert.Equal(t, 201, ExpectedStatusCodes("post")[0])
}

func TestCategoryTags(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		chain  []string
		want   []string
	}{
		{"method only", "get", "/health", nil, []string{"GET"}},
		{"auth path", "post", "/auth/login", nil, []string{"POST", "authentication"}},
		{"admin user api path", "get", "/api/admin/users", nil, []string{"GET", "admin", "user", "api"}},
		{"case sensitive", "get", "/API/Users", nil, []string{"GET"}},
		{"middleware", "put", "/items/:id", []string{"auth", "hasPermission", "validate", "cors"},
			[]string{"PUT", "protected", "authorized", "validated"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryTags(tt.method, tt.path, tt.chain))
		})
	}
}
