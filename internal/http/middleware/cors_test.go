package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	t.Run("default origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORSMiddleware("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/amp.status", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	})

	t.Run("custom origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORSMiddleware("https://studio.example.com")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "https://studio.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight stops the chain", func(t *testing.T) {
		rec := httptest.NewRecorder()
		CORSMiddleware("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/amp.send", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
