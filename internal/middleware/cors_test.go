package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/backend/internal/middleware"
)

func TestCORS_OptionsPreflight(t *testing.T) {
	nextCalled := false
	h := middleware.CORS(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/process-document", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.False(t, nextCalled)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "authorization")
}

func TestCORS_HeadersOnEveryResponse(t *testing.T) {
	h := middleware.CORS(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/process-document", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
