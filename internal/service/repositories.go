package service

import (
	"context"
	"time"

	"kuenkele/timetrack/internal/models"
	"kuenkele/timetrack/internal/repository"
)

// ProjectRepository is the storage used by ProjectService.
type ProjectRepository interface {
	ListLike(ctx context.Context, userID, term string) ([]*models.Project, error)
	Get(ctx context.Context, userID, name string) (*models.Project, error)
	Running(ctx context.Context, userID string) (*models.Project, error)
	Create(ctx context.Context, userID, name string, now time.Time) (*models.Project, error)
	Delete(ctx context.Context, userID, name string) error
	Start(ctx context.Context, userID, name string, now time.Time) (*repository.StartResult, error)
	Stop(ctx context.Context, userID, name string, now time.Time) (*models.Project, *models.Activity, error)
}

// ActivityRepository is the storage used by ActivityService.
type ActivityRepository interface {
	ListBetween(ctx context.Context, userID string, from, to time.Time) (models.Activities, error)
	Change(ctx context.Context, userID string, change *models.Activity, now time.Time) (*models.Activity, *models.Activity, error)
}

// WorktimeRepository persists daily aggregates.
type WorktimeRepository interface {
	Upsert(ctx context.Context, w *models.Worktime) error
	ListUntil(ctx context.Context, userID, day string) ([]*models.Worktime, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Ensure(ctx context.Context, userID string, now time.Time) error
	Get(ctx context.Context, userID string) (*models.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

var (
	_ ProjectRepository  = (*repository.ProjectRepository)(nil)
	_ ActivityRepository = (*repository.ActivityRepository)(nil)
	_ WorktimeRepository = (*repository.WorktimeRepository)(nil)
	_ UserRepository     = (*repository.UserRepository)(nil)
	_ SessionRepository  = (*repository.SessionRepository)(nil)
)

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
