package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestServer_New(t *testing.T) {
	srv, err := New(Config{Addr: ":0"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if srv.server.ReadTimeout != 30*time.Second {
		t.Errorf("expected default read timeout 30s, got %s", srv.server.ReadTimeout)
	}
	if srv.shutdownTimeout != ShutdownTimeout {
		t.Errorf("expected shutdown timeout %s, got %s", ShutdownTimeout, srv.shutdownTimeout)
	}
	if srv.Started() {
		t.Error("new server should not be started")
	}
}

func TestServer_New_BadTLS(t *testing.T) {
	_, err := New(Config{Addr: ":0", TLS: &TLSConfig{CertFile: "missing.crt", KeyFile: "missing.key"}})
	if err == nil {
		t.Error("expected error for missing certificates")
	}
}

func TestServer_ServeHTTP(t *testing.T) {
	srv, _ := New(Config{})
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d without handler, got %d", http.StatusNotFound, w.Code)
	}

	srv.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	}))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() != "handled" {
		t.Errorf("expected body 'handled', got '%s'", w.Body.String())
	}
}

func TestServer_Run(t *testing.T) {
	srv, _ := New(Config{
		Addr: "127.0.0.1:0",
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("up"))
		}),
	})
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if !srv.Started() {
		t.Error("expected server to be started")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServer_RunTwice(t *testing.T) {
	srv, _ := New(Config{Addr: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	for !srv.Started() {
		time.Sleep(time.Millisecond)
	}
	if err := srv.Run(context.Background()); err == nil {
		t.Error("expected error starting twice")
	}
	cancel()
	<-done
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	HealthHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %s", ct)
	}
}

func TestReadyHandler(t *testing.T) {
	ok := Check{Name: "index", Fn: func(context.Context) error { return nil }}
	bad := Check{Name: "store", Fn: func(context.Context) error { return errors.New("redis down") }}

	w := httptest.NewRecorder()
	ReadyHandler(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	w = httptest.NewRecorder()
	ReadyHandler(ok, bad).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Failed map[string]string `json:"failed"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Failed["store"] != "redis down" {
		t.Errorf("expected store failure, got %v", body.Failed)
	}
	if _, ok := body.Failed["index"]; ok {
		t.Error("passing check reported as failed")
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":     {Data: []byte("<html>desk</html>")},
		"app.js":         {Data: []byte("console.log('hi')")},
		"css/style.css":  {Data: []byte("body{}")},
		"docs/index.htm": {Data: []byte("docs")},
	}
}

func TestStaticFileHandler_ServeFile(t *testing.T) {
	h := NewStaticFileHandler(testFS())

	tests := []struct {
		path  string
		code  int
		body  string
		ctype string
	}{
		{"/app.js", http.StatusOK, "console.log('hi')", "javascript"},
		{"/css/style.css", http.StatusOK, "body{}", "text/css"},
		{"/", http.StatusOK, "<html>desk</html>", "text/html"},
		{"/docs/", http.StatusOK, "docs", "text/html"},
		{"/missing.js", http.StatusNotFound, "", ""},
		{"/blog/hello", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.code {
				t.Fatalf("expected status %d, got %d", tt.code, w.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			if w.Body.String() != tt.body {
				t.Errorf("expected body '%s', got '%s'", tt.body, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.ctype) {
				t.Errorf("expected content type containing '%s', got '%s'", tt.ctype, ct)
			}
		})
	}
}

func TestStaticFileHandler_Fallback(t *testing.T) {
	h := NewStaticFileHandler(testFS())
	h.SetFallback("index.html")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/some/client/route", nil))
	if w.Code != http.StatusOK || w.Body.String() != "<html>desk</html>" {
		t.Errorf("expected fallback index, got %d '%s'", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing.png", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d for a missing asset, got %d", http.StatusNotFound, w.Code)
	}
}

func TestStaticFileHandler_ETag(t *testing.T) {
	h := NewStaticFileHandler(testFS())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	if w.Header().Get("Cache-Control") != "public, max-age=3600" {
		t.Errorf("unexpected Cache-Control %s", w.Header().Get("Cache-Control"))
	}

	req := httptest.NewRequest(http.MethodGet, "/app.js", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("expected status %d, got %d", http.StatusNotModified, w.Code)
	}

	h.EnableETag(false)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	if w.Header().Get("ETag") != "" {
		t.Error("expected no ETag when disabled")
	}
}

func TestStaticFileHandler_MethodNotAllowed(t *testing.T) {
	h := NewStaticFileHandler(testFS())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/app.js", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/", ".", false},
		{"/app.js", "app.js", false},
		{"/css//style.css", "css/style.css", false},
		{"/../etc/passwd", "", true},
		{"/a/../../b", "", true},
		{"/a\x00b", "", true},
	}

	for _, tt := range tests {
		got, err := ValidatePath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ValidatePath(%q): expected error", tt.path)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ValidatePath(%q): expected %q, got %q (%v)", tt.path, tt.want, got, err)
		}
	}
}

func TestTLSConfig_Build(t *testing.T) {
	if _, err := (&TLSConfig{}).Build(); err == nil {
		t.Error("expected error for empty config")
	}
	if _, err := (&TLSConfig{CertFile: "missing.crt", KeyFile: "missing.key"}).Build(); err == nil {
		t.Error("expected error for missing files")
	}
}
