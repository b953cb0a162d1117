package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/observability"
	"github.com/bnema/memochat/internal/ports"
	"github.com/bnema/memochat/internal/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxRequestBytes = 1 << 20

	outcomeOK               = "ok"
	outcomeBadRequest       = "bad_request"
	outcomeUpstreamError    = "upstream_error"
	outcomeMethodNotAllowed = "method_not_allowed"

	upstreamFailureMessage = "Failed to get a response from the AI model."
)

var errEmptyBody = errors.New("empty body")

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Server exposes a model backend over HTTP using the same request and
// response shapes the proxy backend sends.
type Server struct {
	upstream ports.ModelBackend
	mode     string
	metrics  *observability.Metrics
	logger   *zap.Logger
}

func New(upstream ports.ModelBackend, mode string, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics("memochat")
	}
	return &Server{upstream: upstream, mode: mode, metrics: metrics, logger: logger}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.MethodNotAllowed(s.handleMethodNotAllowed)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})
	r.Post("/api/proxy", s.handleProxy)

	return r
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("proxy server listening", zap.String("addr", ln.Addr().String()), zap.String("upstream", s.mode))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("proxy server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"upstream": s.mode,
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	s.metrics.ObserveProxyRequest(outcomeMethodNotAllowed)
	respondJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
}

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	ctx, turnID := telemetry.EnsureTurnID(r.Context())
	logger := s.logger.With(zap.String("turn_id", turnID))

	var req ports.ModelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.metrics.ObserveProxyRequest(outcomeBadRequest)
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}
	if err := validate(req); err != nil {
		s.metrics.ObserveProxyRequest(outcomeBadRequest)
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	start := time.Now()
	resp, err := s.upstream.Generate(ctx, req)
	s.metrics.ObserveUpstreamLatency(time.Since(start))
	if err != nil {
		kind := domain.BackendErrorKindOf(err)
		s.metrics.BackendFailed(kind)
		s.metrics.ObserveProxyRequest(outcomeUpstreamError)
		logger.Error("upstream call failed", zap.String("kind", string(kind)), zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: upstreamFailureMessage, Details: err.Error()})
		return
	}

	for _, call := range resp.FunctionCalls {
		s.metrics.ToolDispatched(call.Name)
	}
	s.metrics.ObserveProxyRequest(outcomeOK)
	logger.Debug("proxy request served", zap.Int("history", req.History.Len()), zap.Int("function_calls", len(resp.FunctionCalls)))

	if resp.FunctionCalls == nil {
		resp.FunctionCalls = []domain.FunctionCall{}
	}
	respondJSON(w, http.StatusOK, resp)
}

func validate(req ports.ModelRequest) error {
	if req.History.Len() == 0 && strings.TrimSpace(req.NewMessage) == "" && len(req.FunctionResponses) == 0 {
		return errors.New("request carries no content")
	}
	for _, part := range req.FunctionResponses {
		if part.FunctionResponse == nil {
			return errors.New("functionResponses must only hold function responses")
		}
	}
	return req.Contents().Validate()
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
