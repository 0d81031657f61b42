package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/udlcoach/internal/logging"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUploadSize bounds multipart uploads (10MB).
const DefaultMaxUploadSize = 10 << 20

// unavailableText is shown to users when a language backend fails.
const unavailableText = "The assistant is temporarily unavailable, so this message could not be processed. Your conversation is unchanged; please try again in a moment."

// Server exposes a Coach over JSON/HTTP.
type Server struct {
	Coach         ports.Coach
	Version       string
	logger        *slog.Logger
	metrics       http.Handler
	maxUploadSize int64
	now           func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxUploadSize bounds the size of uploaded documents.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadSize = n
		}
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates the HTTP handler for coach.
func NewHandler(coach ports.Coach, opts ...Option) http.Handler {
	s := &Server{
		Coach:         coach,
		logger:        logging.NewNop(),
		maxUploadSize: DefaultMaxUploadSize,
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(enableCORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.GetHealth)
		r.Post("/chat", s.Chat)
		r.Get("/sessions", s.ListSessions)
		r.Route("/session/{token}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Post("/reset", s.ResetSession)
			r.Post("/upload", s.Upload)
		})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Chat handles POST /api/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.maxUploadSize)).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		s.logger.Warn("chat: invalid request body", "err", err)
		return
	}
	if err := validate.Struct(body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return
	}

	reply, err := s.Coach.Send(r.Context(), body.SessionToken, body.Message)
	if err != nil {
		s.writeError(w, "chat", err)
		return
	}
	s.writeJSON(w, http.StatusOK, newChatResponse(reply))
}

// Upload handles POST /api/session/{token}/upload (multipart field "file").
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "A document is required in the \"file\" field"})
		s.logger.Warn("upload: missing file", "token", token, "err", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Could not read the uploaded document"})
		return
	}

	reply, err := s.Coach.Upload(r.Context(), token, header.Filename, data)
	if err != nil {
		s.writeError(w, "upload", err)
		return
	}
	s.writeJSON(w, http.StatusOK, newChatResponse(reply))
}

// ResetSession handles POST /api/session/{token}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Coach.Reset(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, "reset", err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(rec))
}

// GetSession handles GET /api/session/{token}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Coach.History(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, "history", err)
		return
	}
	s.writeJSON(w, http.StatusOK, newSessionResponse(rec))
}

// ListSessions handles GET /api/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.Coach.Sessions(r.Context())
	if err != nil {
		s.writeError(w, "sessions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionsResponse{Sessions: tokens, Count: len(tokens)})
}

// GetHealth handles GET /api/health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Version: s.Version, Timestamp: s.now()}
	tokens, err := s.Coach.Sessions(r.Context())
	if err != nil {
		s.logger.Error("health: session repository unavailable", "err", err)
		resp.Status = "degraded"
		s.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.ActiveSessions = len(tokens)
	s.writeJSON(w, http.StatusOK, resp)
}

// writeError maps the error taxonomy onto status codes. Internal details are
// logged, never returned.
func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrUnsupportedDocument):
		s.logger.Warn(op+": rejected", "err", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Session not found"})
	case errors.Is(err, domain.ErrCapabilityUnavailable):
		s.logger.Error(op+": capability unavailable", "err", err)
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "capability unavailable", Response: unavailableText})
	default:
		s.logger.Error(op+": failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
