// Package server shares the frame store over HTTP. The server is
// read-only: browsers get small HTML pages, scripts and other tools
// get JSON and CSV under /api and /export. Rendered list, row, export,
// and summary payloads pass through the query cache keyed by frame
// version, so repeated requests between reloads cost one render.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"gridwatch/internal/cache"
	"gridwatch/internal/config"
	"gridwatch/internal/dataset"
	griderrors "gridwatch/internal/errors"
	"gridwatch/internal/logging"
)

// Server serves the current frame store over HTTP.
type Server struct {
	store      *dataset.Store
	queryCache cache.Cache
	cfg        config.ServerConfig

	mu   sync.Mutex
	addr string
}

// New creates a server over the store. A nil queryCache disables
// response caching. Zero config fields fall back to defaults.
func New(store *dataset.Store, queryCache cache.Cache, cfg config.ServerConfig) *Server {
	if queryCache == nil {
		queryCache = cache.Null{}
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultServerAddr
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = config.DefaultPageSize
	}
	if cfg.Drain <= 0 {
		cfg.Drain = config.DefaultDrain
	}
	return &Server{store: store, queryCache: queryCache, cfg: cfg}
}

// Addr returns the bound listen address once Run has started, or the
// configured address before that. Useful when listening on port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return s.cfg.Addr
}

// Handler returns the route table. Exposed so tests can drive the
// handlers without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /frames/{name}", s.handleFramePage)
	mux.HandleFunc("GET /api/frames", s.handleFrameList)
	mux.HandleFunc("GET /api/frames/{name}", s.handleFrameRows)
	mux.HandleFunc("GET /api/frames/{name}/summary", s.handleFrameSummary)
	mux.HandleFunc("GET /export/{file}", s.handleExport)
	return logRequests(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests
// for at most the configured drain timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return griderrors.AddrInUse(s.cfg.Addr, err)
	}
	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.mu.Unlock()

	svr := &http.Server{Handler: s.Handler()}
	serveErr := make(chan error, 1)
	go func() {
		if err := svr.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	logging.Info("http server listening", "addr", s.Addr())

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Drain)
	defer cancel()
	if err := svr.Shutdown(drainCtx); err != nil {
		svr.Close()
		logging.Warn("http server drain expired", "error", err)
	}
	logging.Info("http server stopped")
	return ctx.Err()
}

// logRequests logs every request with its duration.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debug("request completed",
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"duration", time.Since(start).String())
	})
}
