package ratelimit

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultErrorHandler(t *testing.T) {
	cases := []struct {
		status int
		body   string
	}{
		{429, "Rate limit exceeded\n"},
		{500, "Internal server error\n"},
		{413, "Request body too large\n"},
		{404, "Not Found\n"},
	}

	for _, c := range cases {
		w := httptest.NewRecorder()
		DefaultErrorHandler(w, httptest.NewRequest("GET", "/", nil), c.status, nil)
		assert.Equal(t, c.status, w.Code)
		assert.Equal(t, c.body, w.Body.String())
	}
}
