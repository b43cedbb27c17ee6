package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal server error") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
	if !strings.Contains(logs.String(), "panic recovered") || !strings.Contains(logs.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %s", logs.String())
	}
}

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, `"level":"info"`},
		{http.StatusNotFound, `"level":"warn"`},
		{http.StatusBadGateway, `"level":"error"`},
	}

	for _, tt := range tests {
		var logs bytes.Buffer
		mw := NewLoggingMiddleware(zerolog.New(&logs))

		mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))

		if !strings.Contains(logs.String(), tt.level) {
			t.Fatalf("status %d: expected %s in %s", tt.status, tt.level, logs.String())
		}
		if !strings.Contains(logs.String(), `"path":"/api/v1/summary"`) {
			t.Fatalf("expected path in log line, got %s", logs.String())
		}
	}
}
