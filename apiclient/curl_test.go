package apiclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurlCommand(t *testing.T) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer eyJhbGciOi")

	cmd := CurlCommand("POST", "http://localhost:5000/api/products?page=1", headers, []byte(`{"name":"It's"}`))

	assert.Equal(t,
		`curl -X POST -H 'Authorization: Bearer <redacted>' -H 'Content-Type: application/json' `+
			`--data '{"name":"It'"'"'s"}' 'http://localhost:5000/api/products?page=1'`,
		cmd)
}

func TestCurlCommandWithoutBody(t *testing.T) {
	assert.Equal(t, "curl -X GET http://localhost/health", CurlCommand("GET", "http://localhost/health", nil, nil))
}
