package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

const SessionCookieName = "session"

type AuthService interface {
	CreateUser(ctx context.Context, username, password string) (*models.Session, error)
	Login(ctx context.Context, username, password string) (*models.Session, error)
	LoginWithToken(ctx context.Context, rawIDToken string) (*models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	ValidateSession(ctx context.Context, sessionID string) (string, error)
}

type UserHandler struct {
	service        AuthService
	insecureCookie bool
	logger         *zap.Logger
}

func NewUserHandler(service AuthService, insecureCookie bool, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		service:        service,
		insecureCookie: insecureCookie,
		logger:         logger,
	}
}

// Credentials is the body of login and create requests.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session, err := h.service.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, session.ID, session.ExpiresAt)
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeError(w, h.logger, err)
		return
	}

	session, err := h.service.CreateUser(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, session.ID, session.ExpiresAt)
	w.WriteHeader(http.StatusOK)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, h.logger, models.Errorf(models.ErrUnauthorized, "no session"))
		return
	}

	if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.setSessionCookie(w, "", time.Unix(0, 0))
	w.WriteHeader(http.StatusOK)
}

// Validate answers true for authenticated requests; Authenticate rejects
// everything else before it gets here.
func (h *UserHandler) Validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, true)
}

// Authenticate resolves the session cookie or, failing that, a bearer ID
// token. A verified token mints a session that is returned as cookie.
func (h *UserHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			if userID, err := h.service.ValidateSession(ctx, cookie.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(WithUserID(ctx, userID)))
				return
			}
		}

		if token := bearerToken(r); token != "" {
			session, err := h.service.LoginWithToken(ctx, token)
			if err == nil {
				h.setSessionCookie(w, session.ID, session.ExpiresAt)
				next.ServeHTTP(w, r.WithContext(WithUserID(ctx, session.UserID)))
				return
			}
			h.logger.Debug("Bearer authentication failed", zap.Error(err))
		}

		writeError(w, h.logger, models.Errorf(models.ErrUnauthorized, "authentication required"))
	})
}

func (h *UserHandler) setSessionCookie(w http.ResponseWriter, sessionID string, expiry time.Time) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		Secure:   !h.insecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
	if sessionID == "" {
		cookie.MaxAge = -1
	}
	http.SetCookie(w, cookie)
}

func bearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
