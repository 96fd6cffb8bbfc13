package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// captureLogOutput redirects the package logger to a buffer for the
// duration of f and returns what was written.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer
	oldLogger := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	f()
	defaultLogger = oldLogger
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.name); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAnalyzerFault(t *testing.T) {
	out := captureLogOutput(func() {
		AnalyzerFault("hex", "parse", "boom", "input_len", 12)
	})

	var entry map[string]any
	if err := json.Unmarshal([]byte(out), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, out)
	}
	if entry["format"] != "hex" || entry["operation"] != "parse" {
		t.Errorf("entry = %v", entry)
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, faults must log at warn", entry["level"])
	}
}

func TestRateRefresh(t *testing.T) {
	out := captureLogOutput(func() {
		RateRefresh("cache", 42)
	})
	if !strings.Contains(out, `"source":"cache"`) || !strings.Contains(out, `"rate_count":42`) {
		t.Errorf("output = %s", out)
	}
}

func TestServerStartup(t *testing.T) {
	out := captureLogOutput(func() {
		ServerStartup("rest_api", ":8517")
	})
	if !strings.Contains(out, `"server_type":"rest_api"`) || !strings.Contains(out, `"addr":":8517"`) {
		t.Errorf("output = %s", out)
	}
}

func TestCombinedMiddleware(t *testing.T) {
	var sawRequestID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRequestID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	out := captureLogOutput(func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/formats", nil)
		CombinedMiddleware(inner).ServeHTTP(rec, req)
		if rec.Code != http.StatusTeapot {
			t.Errorf("status = %d", rec.Code)
		}
	})

	if sawRequestID == "" {
		t.Error("no request ID in the handler context")
	}
	if !strings.Contains(out, `"status_code":418`) || !strings.Contains(out, `"path":"/api/v1/formats"`) {
		t.Errorf("output = %s", out)
	}
}

// hijackRecorder is a ResponseRecorder that also supports hijacking,
// like the real server's writer does for connection upgrades.
type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestResponseWriterHijack(t *testing.T) {
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("wrapped writer does not implement http.Hijacker")
		}
		if _, _, err := hj.Hijack(); err != nil {
			t.Fatalf("Hijack() error: %v", err)
		}
	})

	captureLogOutput(func() {
		CombinedMiddleware(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	})
	if !rec.hijacked {
		t.Error("Hijack did not reach the underlying writer")
	}

	// A plain recorder cannot be hijacked; the wrapper must say so
	// instead of panicking.
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("expected an error for a non-hijackable writer")
	}
}
