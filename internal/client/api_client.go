package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

const sessionCookie = "session"

// APIClient talks to the timetrack REST API. A session cookie is kept in a
// jar; an ID token, when set, is sent as a bearer token.
type APIClient struct {
	baseURL    *url.URL
	token      string
	userAgent  string
	jar        http.CookieJar
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string, timeout time.Duration, userAgent string, logger *zap.Logger) (*APIClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &APIClient{
		baseURL:   u,
		userAgent: userAgent,
		jar:       jar,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger,
	}, nil
}

// SetToken sets the ID token sent as bearer token.
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// SetSession seeds the jar with a stored session id.
func (c *APIClient) SetSession(session string) {
	if session == "" {
		return
	}
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: sessionCookie, Value: session, Path: "/"}})
}

// Session returns the current session id, empty if none.
func (c *APIClient) Session() string {
	for _, ck := range c.jar.Cookies(c.baseURL) {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}
	return ""
}

// HealthCheck checks if the backend is reachable.
func (c *APIClient) HealthCheck(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login starts a password session.
func (c *APIClient) Login(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/user/login", nil, credentials{username, password}, nil)
}

// CreateUser registers a password user and starts a session.
func (c *APIClient) CreateUser(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/user/create", nil, credentials{username, password}, nil)
}

// Logout ends the server session.
func (c *APIClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/user/logout", nil, nil, nil)
}

// Validate reports whether the stored credentials are accepted.
func (c *APIClient) Validate(ctx context.Context) (bool, error) {
	var ok bool
	err := c.do(ctx, http.MethodGet, "/user/validate", nil, nil, &ok)
	if _, isAuth := err.(*AuthError); isAuth {
		return false, nil
	}
	return ok, err
}

// ListProjects fetches one page of projects.
func (c *APIClient) ListProjects(ctx context.Context, page, perPage int, searchTerm string) (*models.PaginatedProjects, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}
	if searchTerm != "" {
		q.Set("search_term", searchTerm)
	}

	var result models.PaginatedProjects
	if err := c.do(ctx, http.MethodGet, "/projects/", q, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) GetProject(ctx context.Context, name string) (*models.Project, error) {
	return c.project(ctx, http.MethodGet, projectPath(name, ""))
}

func (c *APIClient) AddProject(ctx context.Context, name string) (*models.Project, error) {
	return c.project(ctx, http.MethodPost, projectPath(name, ""))
}

func (c *APIClient) DeleteProject(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, projectPath(name, ""), nil, nil, nil)
}

func (c *APIClient) StartProject(ctx context.Context, name string) (*models.Project, error) {
	return c.project(ctx, http.MethodPost, projectPath(name, "/start"))
}

func (c *APIClient) StopProject(ctx context.Context, name string) (*models.Project, error) {
	return c.project(ctx, http.MethodPost, projectPath(name, "/stop"))
}

func (c *APIClient) project(ctx context.Context, method, path string) (*models.Project, error) {
	var p models.Project
	if err := c.do(ctx, method, path, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func projectPath(name, suffix string) string {
	return "/projects/" + url.PathEscape(name) + suffix
}

// DailyActivities fetches one day (YYYY-MM-DD) with its aggregates.
func (c *APIClient) DailyActivities(ctx context.Context, day string) (*models.DailyActivities, error) {
	var daily models.DailyActivities
	q := url.Values{"day": {day}}
	if err := c.do(ctx, http.MethodGet, "/activities/", q, nil, &daily); err != nil {
		return nil, err
	}
	return &daily, nil
}

// Activities fetches all activities of the inclusive day range.
func (c *APIClient) Activities(ctx context.Context, startDay, endDay string) (models.Activities, error) {
	var activities models.Activities
	q := url.Values{"startDay": {startDay}, "endDay": {endDay}}
	if err := c.do(ctx, http.MethodGet, "/activities/", q, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// ActivityChange is the body of an activity update.
type ActivityChange struct {
	ProjectName string     `json:"projectName"`
	StartedAt   time.Time  `json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt"`
}

// ChangeActivity rewrites an activity and returns the stored result.
func (c *APIClient) ChangeActivity(ctx context.Context, id int64, change ActivityChange) (*models.Activity, error) {
	var a models.Activity
	path := "/activities/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPost, path, nil, change, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u, err := url.Parse(strings.TrimSuffix(c.baseURL.String(), "/") + path)
	if err != nil {
		return fmt.Errorf("invalid request path %q: %w", path, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	return newStatusError(resp.StatusCode, respBody)
}

func newStatusError(status int, body []byte) error {
	errMsg := fmt.Sprintf("backend returned status %d", status)
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
		errMsg = eb.Message
	} else if len(body) > 0 {
		errMsg = fmt.Sprintf("%s: %s", errMsg, bytes.TrimSpace(body))
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Message: errMsg, StatusCode: status}
	case http.StatusTooManyRequests:
		return &RateLimitError{Message: errMsg, StatusCode: status}
	case http.StatusBadRequest:
		return &BadRequestError{Message: errMsg, StatusCode: status}
	case http.StatusNotFound:
		return &NotFoundError{Message: errMsg, StatusCode: status}
	case http.StatusConflict:
		return &ConflictError{Message: errMsg, StatusCode: status}
	default:
		return &BackendError{Message: errMsg, StatusCode: status}
	}
}

// Error types
type AuthError struct {
	Message    string
	StatusCode int
}

func (e *AuthError) Error() string {
	return e.Message
}

type RateLimitError struct {
	Message    string
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return e.Message
}

type BadRequestError struct {
	Message    string
	StatusCode int
}

func (e *BadRequestError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message    string
	StatusCode int
}

func (e *NotFoundError) Error() string {
	return e.Message
}

type ConflictError struct {
	Message    string
	StatusCode int
}

func (e *ConflictError) Error() string {
	return e.Message
}

type BackendError struct {
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	return e.Message
}
