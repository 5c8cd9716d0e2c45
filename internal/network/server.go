// Package network exposes a session over HTTP with JSON bodies.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/errors"
)

// maxBodyBytes caps a query request body
const maxBodyBytes = 1 << 20

// Session is the part of the engine the server drives
type Session interface {
	Execute(ctx context.Context, statement string) (*dispatch.Outcome, error)
	Tables() []string
}

// Options configures the server
type Options struct {
	Addr        string
	CORSOrigins []string
	Logger      *slog.Logger
}

type Request struct {
	Query string `json:"query"`
}

// QueryResponse is the body of a successful POST /v1/query
type QueryResponse struct {
	Columns         []string        `json:"columns"`
	Rows            [][]interface{} `json:"rows"`
	RowsAffected    *int64          `json:"rows_affected,omitempty"`
	Route           dispatch.Route  `json:"route"`
	Message         string          `json:"message,omitempty"`
	Warning         string          `json:"warning,omitempty"`
	RelationalError string          `json:"relational_error,omitempty"`
}

// ErrorResponse is the body of a failed request
type ErrorResponse struct {
	Error           string         `json:"error"`
	Kind            errors.Kind    `json:"kind,omitempty"`
	Route           dispatch.Route `json:"route,omitempty"`
	RelationalError string         `json:"relational_error,omitempty"`
}

type server struct {
	sess   Session
	logger *slog.Logger
}

// NewRouter builds the HTTP handler for sess
func NewRouter(sess Session, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s := &server{sess: sess, logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/tables", s.handleTables)
		r.Post("/query", s.handleQuery)
	})
	return r
}

// Serve listens on opts.Addr until ctx is done, then shuts down gracefully
func Serve(ctx context.Context, sess Session, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           NewRouter(sess, opts),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Running on", "addr", opts.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (s *server) handleTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tables": s.sess.Tables()})
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req Request
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Invalid request format: %v", err),
		})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "query is required"})
		return
	}

	out, err := s.sess.Execute(r.Context(), req.Query)
	if err != nil {
		resp := ErrorResponse{Error: err.Error(), Kind: errors.KindOf(err)}
		if out != nil {
			resp.Route = out.Route
			if out.RelationalErr != nil {
				resp.RelationalError = out.RelationalErr.Error()
			}
		}
		s.logger.Debug("query failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	writeJSON(w, http.StatusOK, NewQueryResponse(out))
}

// NewQueryResponse renders an outcome as a JSON body
func NewQueryResponse(out *dispatch.Outcome) QueryResponse {
	resp := QueryResponse{
		Columns: []string{},
		Rows:    [][]interface{}{},
		Route:   out.Route,
		Message: out.Message,
	}
	if out.Warning != nil {
		resp.Warning = out.Warning.Error()
	}
	if out.RelationalErr != nil {
		resp.RelationalError = out.RelationalErr.Error()
	}

	t := out.Table
	if t == nil {
		return resp
	}
	resp.Columns = t.Columns
	for _, row := range t.Rows {
		cells := t.Values(row)
		for i, v := range cells {
			cells[i] = jsonCell(v)
		}
		resp.Rows = append(resp.Rows, cells)
	}

	if len(t.Columns) == 1 && t.Columns[0] == "affected_rows" && t.Len() == 1 {
		if n, ok := t.Rows[0].Data["affected_rows"].(int64); ok {
			resp.RowsAffected = &n
		}
	}
	return resp
}

// jsonCell keeps JSON-native scalars and stringifies everything else
func jsonCell(v interface{}) interface{} {
	switch v.(type) {
	case nil, string, bool, int64, float64:
		return v
	default:
		return data.Stringify(v)
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode error", "error", err)
	}
}
