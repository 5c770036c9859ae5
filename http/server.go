package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/fwojciec/blogstat"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxRequestBody caps the size of bulk request bodies.
const maxRequestBody = 1 << 20

// Server is the HTTP API server for blogstat.
type Server struct {
	router   chi.Router
	stats    blogstat.BlogStatsService
	profiles blogstat.ProfileResolver
	log      *slog.Logger
}

// NewServer creates and configures the HTTP server. The bulk profile routes
// are only mounted when profiles is non-nil.
func NewServer(stats blogstat.BlogStatsService, profiles blogstat.ProfileResolver, log *slog.Logger) *Server {
	s := &Server{
		stats:    stats,
		profiles: profiles,
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/blog_stats", s.handleBlogStats)

	// Bulk search reads a JSON body on GET for existing clients; POST is accepted too.
	if s.profiles != nil {
		r.Get("/linkedinUrlSearch/bulk", s.handleBulkProfileSearch)
		r.Post("/linkedinUrlSearch/bulk", s.handleBulkProfileSearch)
	}

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleBlogStats renders the blog at ?url= and returns its word count and outline.
func (s *Server) handleBlogStats(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if err := validateTargetURL(target); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.stats.BlogStats(r.Context(), target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleBulkProfileSearch resolves a batch of people to LinkedIn profiles.
func (s *Server) handleBulkProfileSearch(w http.ResponseWriter, r *http.Request) {
	var req blogstat.BulkProfileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.writeError(w, r, blogstat.Errorf(blogstat.EINVALID, "invalid request body: %v", err))
		return
	}

	resp, err := s.profiles.ResolveProfiles(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return blogstat.Errorf(blogstat.EINVALID, "url query parameter is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return blogstat.Errorf(blogstat.EINVALID, "url must be an absolute http(s) URL")
	}
	return nil
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	blogstat.EINVALID:   http.StatusBadRequest,
	blogstat.ENOTFOUND:  http.StatusNotFound,
	blogstat.ENOCONTENT: http.StatusUnprocessableEntity,
	blogstat.ENOPARENT:  http.StatusUnprocessableEntity,
	blogstat.EMALFORMED: http.StatusUnprocessableEntity,
	blogstat.ETIMEOUT:   http.StatusGatewayTimeout,
	blogstat.EUPSTREAM:  http.StatusBadGateway,
	blogstat.EINTERNAL:  http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error response. Deadline errors from the
// renderer count as timeouts; other internal errors are logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := blogstat.ErrorCode(err), blogstat.ErrorMessage(err)
	if code == blogstat.EINTERNAL && errors.Is(err, context.DeadlineExceeded) {
		code, message = blogstat.ETIMEOUT, "rendering deadline exceeded"
	}

	if code == blogstat.EINTERNAL {
		s.log.Error("http error",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
	}

	writeJSON(w, ErrorStatusCode(code), &ErrorResponse{Error: code, Message: message})
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
