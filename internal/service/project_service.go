package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/metrics"
	"kuenkele/timetrack/internal/models"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type ProjectService struct {
	repo     ProjectRepository
	worktime *WorktimeService
	recorder metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewProjectService(repo ProjectRepository, worktime *WorktimeService, recorder metrics.Recorder, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		repo:     repo,
		worktime: worktime,
		recorder: recorder,
		logger:   logger,
		now:      now,
	}
}

// List returns one page of the user's projects whose name contains
// searchTerm. The running project is reported as ActiveProject and is not
// part of any page.
func (s *ProjectService) List(ctx context.Context, userID string, page, perPage int, searchTerm string) (*models.PaginatedProjects, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	all, err := s.repo.ListLike(ctx, userID, strings.TrimSpace(searchTerm))
	if err != nil {
		s.logger.Error("Failed to list projects", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := &models.PaginatedProjects{
		Projects: []*models.Project{},
		Page:     page,
		PerPage:  perPage,
		Total:    len(all),
	}

	remaining := make([]*models.Project, 0, len(all))
	for _, p := range all {
		if p.IsRunning() && result.ActiveProject == nil {
			result.ActiveProject = p
			continue
		}
		remaining = append(remaining, p)
	}

	result.TotalPages = (len(remaining) + perPage - 1) / perPage
	if result.TotalPages < 1 {
		result.TotalPages = 1
	}

	start := (page - 1) * perPage
	if start < len(remaining) {
		end := min(start+perPage, len(remaining))
		result.Projects = remaining[start:end]
	}

	return result, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, name string) (*models.Project, error) {
	return s.repo.Get(ctx, userID, name)
}

// Running returns the user's running project, nil when nothing runs.
func (s *ProjectService) Running(ctx context.Context, userID string) (*models.Project, error) {
	return s.repo.Running(ctx, userID)
}

func (s *ProjectService) Add(ctx context.Context, userID, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Errorf(models.ErrValidation, "project name must not be empty")
	}
	if strings.Contains(name, "/") {
		return nil, models.Errorf(models.ErrValidation, "project name must not contain '/'")
	}

	project, err := s.repo.Create(ctx, userID, name, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Project added", zap.String("user_id", userID), zap.String("project", name))
	return project, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, name string) error {
	project, err := s.repo.Get(ctx, userID, name)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, name); err != nil {
		return err
	}

	days := make([]time.Time, 0, len(project.Activities))
	for _, a := range project.Activities {
		days = append(days, a.StartedAt)
	}
	s.worktime.refreshLogged(ctx, userID, days...)

	s.logger.Info("Project deleted", zap.String("user_id", userID), zap.String("project", name))
	return nil
}

// Start runs the timer of the named project, stopping whichever project was
// running before.
func (s *ProjectService) Start(ctx context.Context, userID, name string) (*models.Project, error) {
	now := s.now()

	res, err := s.repo.Start(ctx, userID, name, now)
	if err != nil {
		return nil, err
	}

	s.recorder.TimerStarted(ctx, res.Project.Name)
	days := []time.Time{now}
	if res.Stopped != nil {
		s.recorder.TimerStopped(ctx, res.Stopped.Name, res.Closed.DurationSeconds())
		days = append(days, res.Closed.StartedAt)
		s.logger.Info("Project stopped",
			zap.String("user_id", userID),
			zap.String("project", res.Stopped.Name),
			zap.Int64("duration_seconds", res.Closed.DurationSeconds()),
		)
	}
	s.worktime.refreshLogged(ctx, userID, days...)

	s.logger.Info("Project started", zap.String("user_id", userID), zap.String("project", name))
	return res.Project, nil
}

func (s *ProjectService) Stop(ctx context.Context, userID, name string) (*models.Project, error) {
	project, closed, err := s.repo.Stop(ctx, userID, name, s.now())
	if err != nil {
		return nil, err
	}

	s.recorder.TimerStopped(ctx, project.Name, closed.DurationSeconds())
	s.worktime.refreshLogged(ctx, userID, closed.StartedAt)

	s.logger.Info("Project stopped",
		zap.String("user_id", userID),
		zap.String("project", name),
		zap.Int64("duration_seconds", closed.DurationSeconds()),
	)
	return project, nil
}
