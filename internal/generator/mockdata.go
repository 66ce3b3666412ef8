package generator

import "strings"

// Request bodies are structs so that keys keep their declaration order in
// the generated JSON.

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type genericRecord struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type invalidRecord struct {
	Email    string `json:"email"`
	Password int    `json:"password"`
	Name     int    `json:"name"`
	Age      string `json:"age"`
}

type integrationRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}

// fixedTimestamp keeps generated files identical across runs.
const fixedTimestamp = "2024-01-01T00:00:00.000Z"

const (
	testEmail    = "test@example.com"
	testPassword = "password123"
)

// mockBody picks a request body by substring match on the route path.
func mockBody(path string) any {
	switch {
	case strings.Contains(path, "auth"):
		return credentials{Email: testEmail, Password: testPassword}
	case strings.Contains(path, "user"):
		return userProfile{Name: "Test User", Email: testEmail, Role: "user"}
	default:
		return genericRecord{
			Name:        "Test Name",
			Email:       testEmail,
			Password:    testPassword,
			Description: "Test description",
			Status:      "active",
			CreatedAt:   fixedTimestamp,
			UpdatedAt:   fixedTimestamp,
		}
	}
}

func invalidBody() any {
	return invalidRecord{Email: "invalid-email", Password: 123, Name: 456, Age: "not-a-number"}
}

func integrationData() any {
	return integrationRecord{ID: "test-id-123", Name: "Test Data", Email: testEmail, CreatedAt: fixedTimestamp}
}
