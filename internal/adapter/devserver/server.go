package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"docstage/internal/adapter/analyzer"
	"docstage/internal/adapter/chunker"
	"docstage/internal/port"
)

const (
	maxUploadBytes  = 64 << 20
	shutdownTimeout = 10 * time.Second
)

// Store is what the reference server persists artifacts in.
type Store interface {
	port.ArtifactStore

	// NextChunkID reserves n consecutive chunk ids and returns the first.
	NextChunkID(n int) (int, error)
}

// Server is a local implementation of the processing service, used for
// development and end-to-end tests of the client.
type Server struct {
	router  chi.Router
	store   Store
	chunker *chunker.Chunker
	log     *zap.Logger
	now     func() time.Time
}

func New(store Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		store:   store,
		chunker: chunker.New(analyzer.NewTokenizer()),
		log:     log,
		now:     time.Now,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Post("/load", s.handleLoad)
	r.Post("/chunk", s.handleChunk)
	r.Post("/parse", s.handleParse)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Get("/{name}", s.handleGetDocument)
		r.Delete("/{name}", s.handleDeleteDocument)
	})
	r.Route("/parsed-docs", func(r chi.Router) {
		r.Get("/", s.handleListParsed)
		r.Get("/{name}", s.handleGetParsed)
		r.Delete("/{name}", s.handleDeleteParsed)
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("processing service listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down processing service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Int("status", status), zap.String("detail", detail))
	}
	s.respondJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) timestamp() string {
	return s.now().Format("20060102_150405")
}
