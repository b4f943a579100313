package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/handler"
	"kuenkele/timetrack/internal/models"
)

type stubProjects struct{ lastCall string }

func (s *stubProjects) List(ctx context.Context, userID string, page, perPage int, term string) (*models.PaginatedProjects, error) {
	s.lastCall = "list"
	return &models.PaginatedProjects{Projects: []*models.Project{}, Page: 1, PerPage: 20, TotalPages: 1}, nil
}

func (s *stubProjects) Get(ctx context.Context, userID, name string) (*models.Project, error) {
	s.lastCall = "get:" + name
	return &models.Project{Name: name}, nil
}

func (s *stubProjects) Add(ctx context.Context, userID, name string) (*models.Project, error) {
	s.lastCall = "add:" + name
	return &models.Project{Name: name}, nil
}

func (s *stubProjects) Delete(ctx context.Context, userID, name string) error {
	s.lastCall = "delete:" + name
	return nil
}

func (s *stubProjects) Start(ctx context.Context, userID, name string) (*models.Project, error) {
	s.lastCall = "start:" + name
	return &models.Project{Name: name}, nil
}

func (s *stubProjects) Stop(ctx context.Context, userID, name string) (*models.Project, error) {
	s.lastCall = "stop:" + name
	return &models.Project{Name: name}, nil
}

type stubActivities struct{}

func (stubActivities) Daily(ctx context.Context, userID, day string) (*models.DailyActivities, error) {
	return &models.DailyActivities{Day: day, Activities: models.Activities{}}, nil
}

func (stubActivities) Range(ctx context.Context, userID, startDay, endDay string) (models.Activities, error) {
	return models.Activities{}, nil
}

func (stubActivities) Change(ctx context.Context, userID string, change *models.Activity) (*models.Activity, error) {
	return change, nil
}

type stubAuth struct{}

func (stubAuth) CreateUser(ctx context.Context, username, password string) (*models.Session, error) {
	return &models.Session{ID: "new", UserID: username}, nil
}

func (stubAuth) Login(ctx context.Context, username, password string) (*models.Session, error) {
	return nil, models.Errorf(models.ErrUnauthorized, "invalid user/password")
}

func (stubAuth) LoginWithToken(ctx context.Context, token string) (*models.Session, error) {
	return nil, models.Errorf(models.ErrUnauthorized, "invalid token")
}

func (stubAuth) Logout(ctx context.Context, sessionID string) error { return nil }

func (stubAuth) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "valid" {
		return "alice", nil
	}
	return "", models.Errorf(models.ErrUnauthorized, "session not found")
}

func newTestRouter(projects *stubProjects, enableCreate bool) http.Handler {
	log := zap.NewNop()
	return New(Handlers{
		Projects:           handler.NewProjectHandler(projects, log),
		Activities:         handler.NewActivityHandler(stubActivities{}, log),
		Users:              handler.NewUserHandler(stubAuth{}, true, log),
		EnableUserCreation: enableCreate,
	}, []string{"http://localhost:5173"}, log)
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		authed     bool
		wantStatus int
		wantCall   string
	}{
		{"health", http.MethodGet, "/health", false, http.StatusOK, ""},
		{"projects need auth", http.MethodGet, "/projects/", false, http.StatusUnauthorized, ""},
		{"list with slash", http.MethodGet, "/projects/", true, http.StatusOK, "list"},
		{"list without slash", http.MethodGet, "/projects", true, http.StatusOK, "list"},
		{"get encoded name", http.MethodGet, "/projects/My%20Project", true, http.StatusOK, "get:My Project"},
		{"add", http.MethodPost, "/projects/New", true, http.StatusCreated, "add:New"},
		{"delete", http.MethodDelete, "/projects/Old", true, http.StatusNoContent, "delete:Old"},
		{"start", http.MethodPost, "/projects/A/start", true, http.StatusOK, "start:A"},
		{"stop", http.MethodPost, "/projects/A/stop", true, http.StatusOK, "stop:A"},
		{"start legacy action", http.MethodPost, "/projects/A/startTracking", true, http.StatusOK, "start:A"},
		{"wrong method", http.MethodPut, "/projects/A", true, http.StatusMethodNotAllowed, ""},
		{"wrong method on action", http.MethodGet, "/projects/A/start", true, http.StatusMethodNotAllowed, ""},
		{"wrong method on activity", http.MethodGet, "/activities/5", true, http.StatusMethodNotAllowed, ""},
		{"wrong method on health", http.MethodPost, "/health", false, http.StatusMethodNotAllowed, ""},
		{"unknown project action", http.MethodPost, "/projects/A/pause", true, http.StatusNotFound, ""},
		{"unknown path", http.MethodGet, "/nope", false, http.StatusNotFound, ""},
		{"daily activities", http.MethodGet, "/activities/?day=2024-03-11", true, http.StatusOK, ""},
		{"activity id must be numeric", http.MethodPost, "/activities/abc", true, http.StatusNotFound, ""},
		{"validate", http.MethodGet, "/user/validate", true, http.StatusOK, ""},
		{"validate without session", http.MethodGet, "/user/validate", false, http.StatusUnauthorized, ""},
		{"create disabled", http.MethodPost, "/user/create", false, http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects := &stubProjects{}
			r := newTestRouter(projects, false)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.authed {
				req.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: "valid"})
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
			if projects.lastCall != tt.wantCall {
				t.Errorf("call = %q, want %q", projects.lastCall, tt.wantCall)
			}
			if rec.Header().Get(RequestIDHeader) == "" {
				t.Error("missing request id header")
			}
		})
	}
}

func TestRouter_UnmatchedJSON(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound, "Not Found"},
		{"unknown user path", http.MethodPost, "/user/create", http.StatusNotFound, "Not Found"},
		{"non numeric activity", http.MethodPost, "/activities/abc", http.StatusNotFound, "Not Found"},
		{"put project", http.MethodPut, "/projects/A", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"get login", http.MethodGet, "/user/login", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"delete activities", http.MethodDelete, "/activities/", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&stubProjects{}, false)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: handler.SessionCookieName, Value: "valid"})
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			var body handler.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantError || body.Message == "" {
				t.Errorf("body = %+v, want error %q with a message", body, tt.wantError)
			}
		})
	}
}

func TestRouter_CreateEnabled(t *testing.T) {
	r := newTestRouter(&stubProjects{}, true)

	req := httptest.NewRequest(http.MethodPost, "/user/create", nil)
	req.Body = http.NoBody
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Empty body fails decoding, but the route exists.
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRouter_CORS(t *testing.T) {
	r := newTestRouter(&stubProjects{}, false)

	tests := []struct {
		name       string
		origin     string
		wantOrigin string
	}{
		{"allowed origin", "http://localhost:5173", "http://localhost:5173"},
		{"foreign origin", "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/projects/A/start", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != http.StatusNoContent {
				t.Errorf("preflight status = %d, want 204", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("credentials must be allowed for known origins")
			}
		})
	}
}

func TestRouter_RequestIDPassthrough(t *testing.T) {
	r := newTestRouter(&stubProjects{}, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}
