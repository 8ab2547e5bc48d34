package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/standardbeagle/uisel/internal/bridge"
)

func newTarget(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"ok":true}`)
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("ETag", `"abc"`)
			io.WriteString(w, "<html><head><title>Shop</title></head><body><div id=\"root\">Hi</div></body></html>")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServer_InvalidTarget(t *testing.T) {
	for _, target := range []string{"", "localhost:3000", "ftp://example.com", "http://"} {
		if _, err := NewServer(Config{TargetURL: target}); err == nil {
			t.Errorf("NewServer(%q) succeeded, want error", target)
		}
	}
}

func TestServer_InjectsHTML(t *testing.T) {
	target := newTarget(t)
	s, err := NewServer(Config{TargetURL: target.URL})
	if err != nil {
		t.Fatal(err)
	}
	front := httptest.NewServer(s.Handler())
	defer front.Close()

	resp, err := http.Get(front.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), scriptTag) {
		t.Error("HTML response was not injected")
	}
	if !strings.Contains(string(body), `<div id="root">Hi</div>`) {
		t.Error("original content missing")
	}
	if resp.ContentLength != int64(len(body)) {
		t.Errorf("Content-Length = %d, body = %d", resp.ContentLength, len(body))
	}
	if resp.Header.Get("ETag") != "" {
		t.Error("ETag should be dropped from rewritten pages")
	}

	resp, err = http.Get(front.URL + "/api")
	if err != nil {
		t.Fatal(err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != `{"ok":true}` {
		t.Errorf("non-HTML body modified: %q", body)
	}

	st := s.Stats()
	if st.Requests != 2 || st.Injected != 1 {
		t.Errorf("stats = %+v, want 2 requests and 1 injection", st)
	}
}

func TestServer_UpstreamDown(t *testing.T) {
	s, err := NewServer(Config{TargetURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if s.Stats().LastError == "" {
		t.Error("expected last error to be recorded")
	}
}

func TestServer_StartStop(t *testing.T) {
	target := newTarget(t)
	s, err := NewServer(Config{TargetURL: target.URL})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Failed to start proxy: %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("Proxy should be running")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}

	resp, err := http.Get("http://" + s.Stats().ListenAddr + "/")
	if err != nil {
		t.Fatalf("request through proxy failed: %v", err)
	}
	resp.Body.Close()

	if err := s.Stop(ctx); err != nil {
		t.Errorf("Stop error: %v", err)
	}
	if s.IsRunning() {
		t.Error("Proxy should be stopped")
	}
	if err := s.Stop(ctx); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop error = %v, want ErrNotRunning", err)
	}
}

func TestServer_AutoRestart(t *testing.T) {
	target := newTarget(t)
	s, err := NewServer(Config{TargetURL: target.URL, AutoRestart: true})
	if err != nil {
		t.Fatalf("Failed to create proxy: %v", err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Failed to start proxy: %v", err)
	}
	originalAddr := s.Stats().ListenAddr

	// Simulate a crash by closing the server
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	srv.Close()

	deadline := time.Now().Add(2 * time.Second)
	for s.Stats().RestartCount == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	stats := s.Stats()
	if stats.RestartCount != 1 || !s.IsRunning() {
		t.Fatalf("Proxy should have auto-restarted. Last error: %s, Restarts: %d", stats.LastError, stats.RestartCount)
	}
	if addr := s.Stats().ListenAddr; addr != originalAddr {
		t.Errorf("restart moved the proxy from %s to %s", originalAddr, addr)
	}

	s.Stop(ctx)
}

func TestServer_BridgeThroughProxy(t *testing.T) {
	target := newTarget(t)
	hub := bridge.NewHub(bridge.Options{})
	defer hub.Close()

	s, err := NewServer(Config{TargetURL: target.URL, Bridge: hub})
	if err != nil {
		t.Fatal(err)
	}
	front := httptest.NewServer(s.Handler())
	defer front.Close()

	wsURL := "ws" + strings.TrimPrefix(front.URL, "http") + WebSocketPath
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(bridge.Inbound{Type: bridge.InHello, URL: front.URL}); err != nil {
		t.Fatal(err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var out bridge.Outbound
		if err := conn.ReadJSON(&out); err != nil {
			t.Fatalf("no config message: %v", err)
		}
		if out.Type == bridge.OutConfig {
			if out.Config == nil || out.Config.PageID == "" {
				t.Errorf("config without page id: %+v", out.Config)
			}
			break
		}
	}
	if hub.ActiveCount() != 1 {
		t.Errorf("hub pages = %d, want 1", hub.ActiveCount())
	}
}
