package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/models"
)

// WorktimeService recomputes the persisted daily aggregates from the
// activities of a day.
type WorktimeService struct {
	activities ActivityRepository
	worktime   WorktimeRepository
	location   *time.Location
	logger     *zap.Logger
}

func NewWorktimeService(activities ActivityRepository, worktime WorktimeRepository, location *time.Location, logger *zap.Logger) *WorktimeService {
	return &WorktimeService{
		activities: activities,
		worktime:   worktime,
		location:   location,
		logger:     logger,
	}
}

// Refresh recomputes each distinct calendar day among days.
func (s *WorktimeService) Refresh(ctx context.Context, userID string, days ...time.Time) error {
	seen := make(map[string]bool, len(days))
	for _, t := range days {
		from, to := models.DayBounds(t, s.location)
		day := from.Format(models.DayLayout)
		if seen[day] {
			continue
		}
		seen[day] = true

		activities, err := s.activities.ListBetween(ctx, userID, from, to)
		if err != nil {
			return fmt.Errorf("failed to load activities of %s: %w", day, err)
		}

		daily := &models.DailyActivities{Day: day, Activities: activities}
		daily.CalculateWorktime()
		daily.CalculateBreaktime()

		if err := s.worktime.Upsert(ctx, &models.Worktime{
			UserID:    userID,
			Day:       day,
			Worktime:  daily.Worktime,
			Breaktime: daily.Breaktime,
		}); err != nil {
			return fmt.Errorf("failed to store worktime of %s: %w", day, err)
		}
	}
	return nil
}

// refreshLogged refreshes and only logs failures. The triggering change is
// already committed at this point.
func (s *WorktimeService) refreshLogged(ctx context.Context, userID string, days ...time.Time) {
	if err := s.Refresh(ctx, userID, days...); err != nil {
		s.logger.Error("Failed to refresh worktime",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
