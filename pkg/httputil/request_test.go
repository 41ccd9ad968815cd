package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{
			name:        "valid JSON",
			body:        `{"name": "test"}`,
			expectError: false,
		},
		{
			name:        "invalid JSON",
			body:        `{invalid}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(tt.body))
			var dest map[string]string

			err := ParseJSON(req, &dest)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "test", dest["name"])
			}
		})
	}
}

func TestParseJSONOrError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		expectOK   bool
		expectCode int
	}{
		{
			name:     "valid JSON",
			body:     `{"name": "test"}`,
			expectOK: true,
		},
		{
			name:       "invalid JSON",
			body:       `{invalid}`,
			expectOK:   false,
			expectCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/test", bytes.NewBufferString(tt.body))
			var dest map[string]string

			ok := ParseJSONOrError(w, req, &dest)

			assert.Equal(t, tt.expectOK, ok)
			if !tt.expectOK {
				assert.Equal(t, tt.expectCode, w.Code)
			}
		})
	}
}

func TestParsePathInt64(t *testing.T) {
	tests := []struct {
		name        string
		pathValue   string
		expectValue int64
		expectError bool
	}{
		{
			name:        "valid int64",
			pathValue:   "9223372036854775807",
			expectValue: 9223372036854775807,
			expectError: false,
		},
		{
			name:        "invalid integer",
			pathValue:   "abc",
			expectError: true,
		},
		{
			name:        "empty value",
			pathValue:   "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test/"+tt.pathValue, nil)
			req = mux.SetURLVars(req, map[string]string{"id": tt.pathValue})

			val, err := ParsePathInt64(req, "id")

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectValue, val)
			}
		})
	}
}

func TestParsePathInt64OrError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test/abc", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "abc"})

	_, ok := ParsePathInt64OrError(w, req, "id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseQueryInt(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		defaultVal  int
		expectValue int
		expectError bool
	}{
		{
			name:        "present",
			url:         "/test?days=7",
			defaultVal:  30,
			expectValue: 7,
		},
		{
			name:        "absent uses default",
			url:         "/test",
			defaultVal:  30,
			expectValue: 30,
		},
		{
			name:        "invalid",
			url:         "/test?days=week",
			defaultVal:  30,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)

			val, err := ParseQueryInt(req, "days", tt.defaultVal)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectValue, val)
			}
		})
	}
}

func TestParseQueryString(t *testing.T) {
	req := httptest.NewRequest("GET", "/test?search=summer", nil)
	assert.Equal(t, "summer", ParseQueryString(req, "search", ""))
	assert.Equal(t, "all", ParseQueryString(req, "fields", "all"))
}

func TestRequireNonEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	assert.True(t, RequireNonEmpty(w, "value", "name"))

	w = httptest.NewRecorder()
	assert.False(t, RequireNonEmpty(w, "", "name"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "name is required")
}

func TestRequirePositive(t *testing.T) {
	w := httptest.NewRecorder()
	assert.True(t, RequirePositive(w, 5, "video_id"))

	w = httptest.NewRecorder()
	assert.False(t, RequirePositive(w, 0, "video_id"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	assert.False(t, RequirePositive(w, -4, "video_id"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
