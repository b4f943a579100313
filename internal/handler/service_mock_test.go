package handler

import (
	"context"

	"kuenkele/timetrack/internal/models"
)

// MockProjectService is a mock implementation of ProjectService.
type MockProjectService struct {
	ListFunc   func(ctx context.Context, userID string, page, perPage int, searchTerm string) (*models.PaginatedProjects, error)
	GetFunc    func(ctx context.Context, userID, name string) (*models.Project, error)
	AddFunc    func(ctx context.Context, userID, name string) (*models.Project, error)
	DeleteFunc func(ctx context.Context, userID, name string) error
	StartFunc  func(ctx context.Context, userID, name string) (*models.Project, error)
	StopFunc   func(ctx context.Context, userID, name string) (*models.Project, error)
}

func (m *MockProjectService) List(ctx context.Context, userID string, page, perPage int, searchTerm string) (*models.PaginatedProjects, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, page, perPage, searchTerm)
	}
	return &models.PaginatedProjects{Projects: []*models.Project{}, Page: 1, PerPage: 20, TotalPages: 1}, nil
}

func (m *MockProjectService) Get(ctx context.Context, userID, name string) (*models.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, name)
	}
	return &models.Project{Name: name}, nil
}

func (m *MockProjectService) Add(ctx context.Context, userID, name string) (*models.Project, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, userID, name)
	}
	return &models.Project{Name: name}, nil
}

func (m *MockProjectService) Delete(ctx context.Context, userID, name string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, name)
	}
	return nil
}

func (m *MockProjectService) Start(ctx context.Context, userID, name string) (*models.Project, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, userID, name)
	}
	return &models.Project{Name: name}, nil
}

func (m *MockProjectService) Stop(ctx context.Context, userID, name string) (*models.Project, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, userID, name)
	}
	return &models.Project{Name: name}, nil
}

// MockActivityService is a mock implementation of ActivityService.
type MockActivityService struct {
	DailyFunc  func(ctx context.Context, userID, day string) (*models.DailyActivities, error)
	RangeFunc  func(ctx context.Context, userID, startDay, endDay string) (models.Activities, error)
	ChangeFunc func(ctx context.Context, userID string, change *models.Activity) (*models.Activity, error)
}

func (m *MockActivityService) Daily(ctx context.Context, userID, day string) (*models.DailyActivities, error) {
	if m.DailyFunc != nil {
		return m.DailyFunc(ctx, userID, day)
	}
	return &models.DailyActivities{Day: day, Activities: models.Activities{}}, nil
}

func (m *MockActivityService) Range(ctx context.Context, userID, startDay, endDay string) (models.Activities, error) {
	if m.RangeFunc != nil {
		return m.RangeFunc(ctx, userID, startDay, endDay)
	}
	return models.Activities{}, nil
}

func (m *MockActivityService) Change(ctx context.Context, userID string, change *models.Activity) (*models.Activity, error) {
	if m.ChangeFunc != nil {
		return m.ChangeFunc(ctx, userID, change)
	}
	return change, nil
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	CreateUserFunc      func(ctx context.Context, username, password string) (*models.Session, error)
	LoginFunc           func(ctx context.Context, username, password string) (*models.Session, error)
	LoginWithTokenFunc  func(ctx context.Context, rawIDToken string) (*models.Session, error)
	LogoutFunc          func(ctx context.Context, sessionID string) error
	ValidateSessionFunc func(ctx context.Context, sessionID string) (string, error)
}

func (m *MockAuthService) CreateUser(ctx context.Context, username, password string) (*models.Session, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, username, password)
	}
	return nil, models.Errorf(models.ErrNotFound, "user creation is disabled")
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return nil, models.Errorf(models.ErrUnauthorized, "invalid user/password")
}

func (m *MockAuthService) LoginWithToken(ctx context.Context, rawIDToken string) (*models.Session, error) {
	if m.LoginWithTokenFunc != nil {
		return m.LoginWithTokenFunc(ctx, rawIDToken)
	}
	return nil, models.Errorf(models.ErrUnauthorized, "invalid token")
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockAuthService) ValidateSession(ctx context.Context, sessionID string) (string, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, sessionID)
	}
	return "", models.Errorf(models.ErrUnauthorized, "session not found")
}
