// Package proxy serves a dev server through a reverse proxy that injects the
// picker script into HTML pages and hosts the selection bridge.
package proxy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/uisel/internal/debug"
)

// ErrNotRunning is returned when stopping a proxy that is not running.
var ErrNotRunning = errors.New("proxy is not running")

// Config configures a Server.
type Config struct {
	// TargetURL is the dev server to forward to.
	TargetURL string

	// ListenAddr is the address to listen on. Port 0 picks a free port.
	ListenAddr string

	// Bridge serves the websocket the injected script connects to.
	Bridge http.Handler

	// AutoRestart restarts the listener if it stops unexpectedly.
	AutoRestart bool
}

// Stats describes a running proxy.
type Stats struct {
	TargetURL    string        `json:"target_url"`
	ListenAddr   string        `json:"listen_addr"`
	Running      bool          `json:"running"`
	Uptime       time.Duration `json:"uptime"`
	Requests     int64         `json:"requests"`
	Injected     int64         `json:"injected"`
	RestartCount int64         `json:"restart_count"`
	AutoRestart  bool          `json:"auto_restart"`
	LastError    string        `json:"last_error,omitempty"`
}

// Server is the injecting reverse proxy.
type Server struct {
	config  Config
	target  *url.URL
	handler http.Handler

	// ListenAddr is the bound address once started.
	ListenAddr string

	mu         sync.Mutex
	httpServer *http.Server
	startedAt  time.Time

	running      atomic.Bool
	stopping     atomic.Bool
	requests     atomic.Int64
	injected     atomic.Int64
	restartCount atomic.Int64
	lastError    atomic.Value // string
}

// NewServer creates a proxy for cfg.TargetURL.
func NewServer(cfg Config) (*Server, error) {
	target, err := url.Parse(cfg.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("invalid target URL %q: scheme must be http or https", cfg.TargetURL)
	}
	if target.Host == "" {
		return nil, fmt.Errorf("invalid target URL %q: missing host", cfg.TargetURL)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:0"
	}

	s := &Server{config: cfg, target: target}

	rp := httputil.NewSingleHostReverseProxy(target)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
		// Injection needs an uncompressed body.
		r.Header.Del("Accept-Encoding")
	}
	rp.ModifyResponse = s.modifyResponse
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.lastError.Store(err.Error())
		debug.Warn("proxy", "upstream error for %s: %v", r.URL.Path, err)
		http.Error(w, "uisel proxy: upstream unavailable: "+err.Error(), http.StatusBadGateway)
	}

	mux := http.NewServeMux()
	if cfg.Bridge != nil {
		mux.Handle(WebSocketPath, cfg.Bridge)
	}
	mux.Handle("/", rp)
	s.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		mux.ServeHTTP(w, r)
	})
	return s, nil
}

func (s *Server) modifyResponse(resp *http.Response) error {
	if !ShouldInject(resp.Header.Get("Content-Type")) {
		return nil
	}
	if enc := resp.Header.Get("Content-Encoding"); enc != "" && enc != "identity" {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read upstream body: %w", err)
	}

	body = InjectScript(body)
	s.injected.Add(1)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Set("Content-Length", strconv.Itoa(len(body)))
	// The page changed, so upstream validators no longer apply.
	resp.Header.Del("ETag")
	resp.Header.Del("Content-Security-Policy")
	return nil
}

// Handler returns the proxy handler without a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return errors.New("proxy already running")
	}
	s.stopping.Store(false)

	addr := s.config.ListenAddr
	if s.ListenAddr != "" {
		// Restarts keep the address the browser already uses.
		addr = s.ListenAddr
	}
	if err := s.listenLocked(ctx, addr); err != nil {
		return err
	}
	s.startedAt = time.Now()
	debug.Info("proxy", "proxying %s on http://%s", s.target, s.ListenAddr)
	return nil
}

func (s *Server) listenLocked(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = srv
	s.ListenAddr = ln.Addr().String()
	s.running.Store(true)

	go s.serve(srv, ln)
	return nil
}

func (s *Server) serve(srv *http.Server, ln net.Listener) {
	err := srv.Serve(ln)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != srv {
		return
	}
	s.running.Store(false)
	if s.stopping.Load() {
		return
	}

	if err != nil {
		s.lastError.Store(err.Error())
	}
	debug.Warn("proxy", "listener on %s stopped: %v", s.ListenAddr, err)
	if !s.config.AutoRestart {
		return
	}

	s.restartCount.Add(1)
	if err := s.listenLocked(context.Background(), s.ListenAddr); err != nil {
		s.lastError.Store(err.Error())
		debug.Error("proxy", "restart failed: %v", err)
	}
}

// Stop shuts the proxy down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	if srv == nil || !s.running.Load() {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.stopping.Store(true)
	s.mu.Unlock()

	err := srv.Shutdown(ctx)
	s.running.Store(false)
	return err
}

// IsRunning reports whether the proxy is serving.
func (s *Server) IsRunning() bool {
	return s.running.Load()
}

// Stats returns a snapshot of the proxy's counters.
func (s *Server) Stats() Stats {
	s.mu.Lock()
	started := s.startedAt
	addr := s.ListenAddr
	s.mu.Unlock()

	st := Stats{
		TargetURL:    s.target.String(),
		ListenAddr:   addr,
		Running:      s.running.Load(),
		Requests:     s.requests.Load(),
		Injected:     s.injected.Load(),
		RestartCount: s.restartCount.Load(),
		AutoRestart:  s.config.AutoRestart,
	}
	if st.Running && !started.IsZero() {
		st.Uptime = time.Since(started)
	}
	if v, ok := s.lastError.Load().(string); ok {
		st.LastError = v
	}
	return st
}
