package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/nlpolicy/pkg/telemetry/health"
)

func newTestHandler(probeErr error) http.Handler {
	checker := health.New(time.Second)
	checker.Register("schema", func(context.Context) error { return nil })
	checker.Register("probe", func(context.Context) error { return probeErr })
	checker.Register("history", nil)
	return NewHandler(Routes{
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "nlpolicy_compile_total 0\n")
		}),
		Health: checker,
		Logger: testLogger(),
	})
}

func TestOperationalEndpoints(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		probeErr error
		wantCode int
		wantBody string
	}{
		{"metrics", "/metrics", nil, http.StatusOK, "nlpolicy_compile_total"},
		{"liveness", "/healthz", nil, http.StatusOK, `"ok"`},
		{"ready", "/readyz", nil, http.StatusOK, `"ready"`},
		{"degraded", "/readyz", errors.New("connection refused"), http.StatusServiceUnavailable, "connection refused"},
		{"unknown path", "/v1/compile", nil, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			newTestHandler(tt.probeErr).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("GET %s status = %d, want %d", tt.path, w.Code, tt.wantCode)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("GET %s body = %q, want it to contain %q", tt.path, w.Body.String(), tt.wantBody)
			}
			if w.Header().Get(RequestIDHeader) == "" {
				t.Error("missing request ID header")
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "client-id" || w.Header().Get(RequestIDHeader) != "client-id" {
		t.Errorf("client request ID not preserved: ctx=%q header=%q", seen, w.Header().Get(RequestIDHeader))
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Errorf("generated request ID = %q, want a UUID", seen)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Error("panic value leaked to the client")
	}
}

func TestServerLifecycle(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	srv := New(Config{ShutdownTimeout: time.Second}, newTestHandler(nil))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
