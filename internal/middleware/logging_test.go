package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	status := http.StatusOK
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/rest/lists", http.StatusOK, "level=INFO"},
		{"/rest/lists", http.StatusNotFound, "level=WARN"},
		{"/rest/lists", http.StatusInternalServerError, "level=ERROR"},
		{"/health", http.StatusOK, ""},
	}
	for _, tt := range tests {
		buf.Reset()
		status = tt.status
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

		got := buf.String()
		if tt.want == "" {
			if got != "" {
				t.Errorf("%s %d: expected no log at info, got %q", tt.path, tt.status, got)
			}
			continue
		}
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s %d: log %q missing %s", tt.path, tt.status, got, tt.want)
		}
	}
}

func TestRequestLoggerRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}
