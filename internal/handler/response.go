package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type contextKey string

const userIDKey contextKey = "user_id"

// WithUserID stores the authenticated user in ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user, empty if none.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Anything unknown is logged
// and reported as an internal error without details.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status, category := http.StatusInternalServerError, "Internal Error"
	message := "internal error"

	switch {
	case errors.Is(err, models.ErrValidation):
		status, category, message = http.StatusBadRequest, "Invalid Input", err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		status, category, message = http.StatusUnauthorized, "Unauthorized", err.Error()
	case errors.Is(err, models.ErrNotFound):
		status, category, message = http.StatusNotFound, "Not Found", err.Error()
	case errors.Is(err, models.ErrConflict):
		status, category, message = http.StatusConflict, "Conflict", err.Error()
	default:
		logger.Error("Request failed", zap.Error(err))
	}

	writeJSON(w, status, ErrorResponse{Error: category, Message: message})
}

// NotFound answers requests that no route matches.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not Found", Message: "no route for " + r.URL.Path})
}

// MethodNotAllowed answers requests for a known path with a method it does
// not serve.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:   "Method Not Allowed",
		Message: r.Method + " is not allowed on " + r.URL.Path,
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.Errorf(models.ErrValidation, "error parsing parameters")
	}
	return nil
}
