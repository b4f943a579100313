package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

type ActivityService struct {
	activities       ActivityRepository
	worktimeRepo     WorktimeRepository
	worktime         *WorktimeService
	location         *time.Location
	dailyWorkSeconds int64
	logger           *zap.Logger
	now              func() time.Time
}

func NewActivityService(
	activities ActivityRepository,
	worktimeRepo WorktimeRepository,
	worktime *WorktimeService,
	location *time.Location,
	dailyWorkSeconds int64,
	logger *zap.Logger,
) *ActivityService {
	return &ActivityService{
		activities:       activities,
		worktimeRepo:     worktimeRepo,
		worktime:         worktime,
		location:         location,
		dailyWorkSeconds: dailyWorkSeconds,
		logger:           logger,
		now:              now,
	}
}

// Daily returns the activities of one calendar day with work, break and
// cumulative overtime.
func (s *ActivityService) Daily(ctx context.Context, userID, day string) (*models.DailyActivities, error) {
	if day == "" {
		return nil, models.Errorf(models.ErrValidation, "day must be set")
	}
	t, err := models.ParseDay(day, s.location)
	if err != nil {
		return nil, err
	}
	from, to := models.DayBounds(t, s.location)

	activities, err := s.activities.ListBetween(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("Failed to load activities", zap.String("user_id", userID), zap.String("day", day), zap.Error(err))
		return nil, err
	}

	days, err := s.worktimeRepo.ListUntil(ctx, userID, day)
	if err != nil {
		s.logger.Error("Failed to load worktime", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	daily := &models.DailyActivities{
		Day:        day,
		Activities: activities,
		Overtime:   models.Overtime(days, day, s.dailyWorkSeconds),
	}
	daily.Activities.SortChronologically()
	daily.CalculateWorktime()
	daily.CalculateBreaktime()

	return daily, nil
}

// Range returns all activities starting between startDay 00:00 and the end
// of endDay.
func (s *ActivityService) Range(ctx context.Context, userID, startDay, endDay string) (models.Activities, error) {
	start, err := models.ParseDay(startDay, s.location)
	if err != nil {
		return nil, err
	}
	end, err := models.ParseDay(endDay, s.location)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, models.Errorf(models.ErrValidation, "startDay must not be after endDay")
	}

	from, _ := models.DayBounds(start, s.location)
	_, to := models.DayBounds(end, s.location)

	activities, err := s.activities.ListBetween(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("Failed to load activities", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return activities, nil
}

// Change moves an activity in time or to another project and refreshes the
// worktime of the days it left and entered.
func (s *ActivityService) Change(ctx context.Context, userID string, change *models.Activity) (*models.Activity, error) {
	if change.ProjectName == "" {
		return nil, models.Errorf(models.ErrValidation, "projectName must be present")
	}
	if err := change.Validate(); err != nil {
		return nil, err
	}

	before, after, err := s.activities.Change(ctx, userID, change, s.now())
	if err != nil {
		return nil, err
	}

	s.worktime.refreshLogged(ctx, userID, before.StartedAt, after.StartedAt)

	s.logger.Info("Activity changed",
		zap.String("user_id", userID),
		zap.Int64("activity_id", after.ID),
		zap.String("project", after.ProjectName),
	)
	return after, nil
}
