package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/health"
)

func serve(mux *http.ServeMux, path string) int {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code
}

func TestMuxWithoutChecker(t *testing.T) {
	mux := NewMux(nil)
	assert.Equal(t, http.StatusOK, serve(mux, "/metrics"))
	assert.Equal(t, http.StatusNotFound, serve(mux, "/readyz"))
	assert.Equal(t, http.StatusNotFound, serve(mux, "/"))
}

func TestMuxServesHealthProbes(t *testing.T) {
	checker := health.NewChecker()
	checker.Register("redis", health.PingCheck(func(context.Context) error { return errors.New("refused") }))
	mux := NewMux(checker)

	assert.Equal(t, http.StatusOK, serve(mux, "/healthz"))
	assert.Equal(t, http.StatusServiceUnavailable, serve(mux, "/readyz"))
}
