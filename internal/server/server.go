// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopper-agents/internal/common/config"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/common/region"
	"shopper-agents/internal/models"
)

// RequestExecutor runs one shopping request end to end.
type RequestExecutor interface {
	Execute(ctx context.Context, req *models.SearchRequest, region string) (*models.SearchResponse, error)
}

// RegionResolver maps a caller IP to a region key.
type RegionResolver interface {
	Resolve(ctx context.Context, ip string) string
}

var _ RegionResolver = (*region.Resolver)(nil)

// Server is the HTTP boundary around the pipeline.
type Server struct {
	cfg      config.ServerConfig
	pipeline RequestExecutor
	resolver RegionResolver
	logger   logger.Logger
	httpSrv  *http.Server
}

func New(cfg config.ServerConfig, pipe RequestExecutor, resolver RegionResolver, log logger.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipe,
		resolver: resolver,
		logger:   log,
	}
	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Routes(),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

// Routes builds the handler tree. Exposed for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{"address": s.cfg.Address})
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	regionKey := req.RegionOverride
	if regionKey == "" {
		regionKey = s.resolver.Resolve(r.Context(), clientIP(r))
	}

	resp, err := s.pipeline.Execute(r.Context(), &req, regionKey)
	if err != nil {
		s.logger.WithError(err).Error("Request failed", map[string]interface{}{
			"query": req.Query,
		})
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
