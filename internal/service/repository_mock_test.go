package service

import (
	"context"
	"time"

	"kuenkele/timetrack/internal/models"
	"kuenkele/timetrack/internal/repository"
)

// MockProjectRepository is a mock implementation of ProjectRepository.
type MockProjectRepository struct {
	ListLikeFunc func(ctx context.Context, userID, term string) ([]*models.Project, error)
	GetFunc      func(ctx context.Context, userID, name string) (*models.Project, error)
	RunningFunc  func(ctx context.Context, userID string) (*models.Project, error)
	CreateFunc   func(ctx context.Context, userID, name string, now time.Time) (*models.Project, error)
	DeleteFunc   func(ctx context.Context, userID, name string) error
	StartFunc    func(ctx context.Context, userID, name string, now time.Time) (*repository.StartResult, error)
	StopFunc     func(ctx context.Context, userID, name string, now time.Time) (*models.Project, *models.Activity, error)
}

func (m *MockProjectRepository) ListLike(ctx context.Context, userID, term string) ([]*models.Project, error) {
	if m.ListLikeFunc != nil {
		return m.ListLikeFunc(ctx, userID, term)
	}
	return []*models.Project{}, nil
}

func (m *MockProjectRepository) Get(ctx context.Context, userID, name string) (*models.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, name)
	}
	return nil, models.Errorf(models.ErrNotFound, "project '%s' not found", name)
}

func (m *MockProjectRepository) Running(ctx context.Context, userID string) (*models.Project, error) {
	if m.RunningFunc != nil {
		return m.RunningFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockProjectRepository) Create(ctx context.Context, userID, name string, now time.Time) (*models.Project, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, name, now)
	}
	return &models.Project{Name: name, UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
}

func (m *MockProjectRepository) Delete(ctx context.Context, userID, name string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, name)
	}
	return nil
}

func (m *MockProjectRepository) Start(ctx context.Context, userID, name string, now time.Time) (*repository.StartResult, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, userID, name, now)
	}
	return &repository.StartResult{Project: &models.Project{Name: name, StartedAt: &now}}, nil
}

func (m *MockProjectRepository) Stop(ctx context.Context, userID, name string, now time.Time) (*models.Project, *models.Activity, error) {
	if m.StopFunc != nil {
		return m.StopFunc(ctx, userID, name, now)
	}
	return &models.Project{Name: name}, &models.Activity{ProjectName: name, StartedAt: now, EndedAt: &now}, nil
}

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	ListBetweenFunc func(ctx context.Context, userID string, from, to time.Time) (models.Activities, error)
	ChangeFunc      func(ctx context.Context, userID string, change *models.Activity, now time.Time) (*models.Activity, *models.Activity, error)
}

func (m *MockActivityRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) (models.Activities, error) {
	if m.ListBetweenFunc != nil {
		return m.ListBetweenFunc(ctx, userID, from, to)
	}
	return models.Activities{}, nil
}

func (m *MockActivityRepository) Change(ctx context.Context, userID string, change *models.Activity, now time.Time) (*models.Activity, *models.Activity, error) {
	if m.ChangeFunc != nil {
		return m.ChangeFunc(ctx, userID, change, now)
	}
	return change, change, nil
}

// MockWorktimeRepository records upserts in memory.
type MockWorktimeRepository struct {
	Upserted      []*models.Worktime
	UpsertFunc    func(ctx context.Context, w *models.Worktime) error
	ListUntilFunc func(ctx context.Context, userID, day string) ([]*models.Worktime, error)
}

func (m *MockWorktimeRepository) Upsert(ctx context.Context, w *models.Worktime) error {
	m.Upserted = append(m.Upserted, w)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, w)
	}
	return nil
}

func (m *MockWorktimeRepository) ListUntil(ctx context.Context, userID, day string) ([]*models.Worktime, error) {
	if m.ListUntilFunc != nil {
		return m.ListUntilFunc(ctx, userID, day)
	}
	return []*models.Worktime{}, nil
}

// MockUserRepository keeps users in a map.
type MockUserRepository struct {
	Users map[string]*models.User
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, ok := m.Users[user.ID]; ok {
		return models.Errorf(models.ErrConflict, "user '%s' already exists", user.ID)
	}
	m.Users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Ensure(ctx context.Context, userID string, now time.Time) error {
	if _, ok := m.Users[userID]; !ok {
		m.Users[userID] = &models.User{ID: userID, CreatedAt: now}
	}
	return nil
}

func (m *MockUserRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	u, ok := m.Users[userID]
	if !ok {
		return nil, models.Errorf(models.ErrNotFound, "user '%s' not found", userID)
	}
	return u, nil
}

// MockSessionRepository keeps sessions in a map.
type MockSessionRepository struct {
	Sessions map[string]*models.Session
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	m.Sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	s, ok := m.Sessions[sessionID]
	if !ok {
		return nil, models.Errorf(models.ErrUnauthorized, "session not found")
	}
	return s, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, sessionID string) error {
	delete(m.Sessions, sessionID)
	return nil
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for id, s := range m.Sessions {
		if s.Expired(now) {
			delete(m.Sessions, id)
			n++
		}
	}
	return n, nil
}

// countingRecorder counts recorder calls.
type countingRecorder struct {
	starts, stops    int
	logins, failures int
	durations        []int64
}

func (r *countingRecorder) TimerStarted(context.Context, string) { r.starts++ }

func (r *countingRecorder) TimerStopped(_ context.Context, _ string, d int64) {
	r.stops++
	r.durations = append(r.durations, d)
}

func (r *countingRecorder) Login(_ context.Context, _ string, success bool) {
	if success {
		r.logins++
	} else {
		r.failures++
	}
}

func (r *countingRecorder) Close(context.Context) error { return nil }
