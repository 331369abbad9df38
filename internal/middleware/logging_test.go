package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rec map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	return rec
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		level  string
	}{
		{name: "success", status: http.StatusOK, body: "hello", level: "INFO"},
		{name: "implicit 200", status: 0, body: "hi", level: "INFO"},
		{name: "client error", status: http.StatusNotFound, level: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, level: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
				w.Write([]byte(tt.body))
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/outfits", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			want := tt.status
			if want == 0 {
				want = http.StatusOK
			}
			if rr.Code != want {
				t.Errorf("status: got %d, want %d", rr.Code, want)
			}

			rec := lastRecord(t, buf)
			if rec["level"] != tt.level {
				t.Errorf("level: got %v, want %s", rec["level"], tt.level)
			}
			if rec["status"] != float64(want) {
				t.Errorf("logged status: got %v, want %d", rec["status"], want)
			}
			if rec["bytes"] != float64(len(tt.body)) {
				t.Errorf("logged bytes: got %v, want %d", rec["bytes"], len(tt.body))
			}
			if rec["path"] != "/api/outfits" {
				t.Errorf("logged path: got %v", rec["path"])
			}
		})
	}
}

func TestLoggerRequestContext(t *testing.T) {
	buf := captureLogs(t)
	user := uuid.New()

	handler := chimw.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	req := httptest.NewRequest(http.MethodDelete, "/api/outfits/x", nil)
	req = req.WithContext(WithUser(req.Context(), user))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := lastRecord(t, buf)
	if id, _ := rec["request_id"].(string); id == "" {
		t.Error("request_id should be logged")
	}
	if rec["user_id"] != user.String() {
		t.Errorf("user_id: got %v, want %s", rec["user_id"], user)
	}
}

func TestResponseWriter(t *testing.T) {
	t.Run("WriteHeader only captures first call", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusInternalServerError)

		if rw.statusCode != http.StatusNotFound {
			t.Errorf("statusCode: got %d, want 404 (first call)", rw.statusCode)
		}
	})

	t.Run("Write counts bytes and keeps explicit status", func(t *testing.T) {
		rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte("created"))
		rw.Write([]byte("!"))

		if rw.statusCode != http.StatusCreated {
			t.Errorf("statusCode: got %d, want 201", rw.statusCode)
		}
		if rw.bytes != 8 {
			t.Errorf("bytes: got %d, want 8", rw.bytes)
		}
	})
}
