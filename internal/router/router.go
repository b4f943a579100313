package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"kuenkele/timetrack/internal/handler"
)

const RequestIDHeader = "X-Request-ID"

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Projects           *handler.ProjectHandler
	Activities         *handler.ActivityHandler
	Users              *handler.UserHandler
	EnableUserCreation bool
}

func New(h Handlers, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	// User endpoints
	user := r.PathPrefix("/user").Subrouter()
	user.HandleFunc("/login", h.Users.Login).Methods(http.MethodPost)
	user.HandleFunc("/logout", h.Users.Logout).Methods(http.MethodPost)
	if h.EnableUserCreation {
		user.HandleFunc("/create", h.Users.Create).Methods(http.MethodPost)
	}
	user.Handle("/validate", h.Users.Authenticate(http.HandlerFunc(h.Users.Validate))).Methods(http.MethodGet)
	methodFallback(user, "/login", "/logout", "/validate")

	// Project endpoints
	projects := r.PathPrefix("/projects").Subrouter()
	projects.Use(h.Users.Authenticate)
	projects.HandleFunc("", h.Projects.List).Methods(http.MethodGet)
	projects.HandleFunc("/", h.Projects.List).Methods(http.MethodGet)
	projects.HandleFunc("/{name}", h.Projects.Get).Methods(http.MethodGet)
	projects.HandleFunc("/{name}", h.Projects.Add).Methods(http.MethodPost)
	projects.HandleFunc("/{name}", h.Projects.Delete).Methods(http.MethodDelete)
	projects.HandleFunc("/{name}/start", h.Projects.Start).Methods(http.MethodPost)
	projects.HandleFunc("/{name}/stop", h.Projects.Stop).Methods(http.MethodPost)
	projects.HandleFunc("/{name}/startTracking", h.Projects.Start).Methods(http.MethodPost)
	projects.HandleFunc("/{name}/stopTracking", h.Projects.Stop).Methods(http.MethodPost)
	methodFallback(projects, "", "/", "/{name}", "/{name}/start", "/{name}/stop", "/{name}/startTracking", "/{name}/stopTracking")

	// Activity endpoints
	activities := r.PathPrefix("/activities").Subrouter()
	activities.Use(h.Users.Authenticate)
	activities.HandleFunc("", h.Activities.List).Methods(http.MethodGet)
	activities.HandleFunc("/", h.Activities.List).Methods(http.MethodGet)
	activities.HandleFunc("/{id:[0-9]+}", h.Activities.Change).Methods(http.MethodPost)
	methodFallback(activities, "", "/", "/{id:[0-9]+}")

	for _, sub := range []*mux.Router{r, user, projects, activities} {
		sub.NotFoundHandler = http.HandlerFunc(handler.NotFound)
		sub.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)
	}

	return loggingMiddleware(corsMiddleware(r, allowedOrigins), logger)
}

// methodFallback answers every method not registered on paths with 405.
// It must run after the method routes of those paths, since mux forgets a
// method mismatch once a later sibling route matches the subrouter prefix.
func methodFallback(r *mux.Router, paths ...string) {
	for _, path := range paths {
		r.HandleFunc(path, handler.MethodNotAllowed)
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
		)
	})
}

// corsMiddleware echoes allowed origins back with credentials enabled so the
// browser frontend can send the session cookie.
func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")
			w.Header().Add("Vary", "Origin")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
