package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/models"
)

type WorktimeRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewWorktimeRepository(db *database.DB, logger *zap.Logger) *WorktimeRepository {
	return &WorktimeRepository{db: db, logger: logger}
}

// Upsert stores the aggregate of one day, replacing an existing row.
func (r *WorktimeRepository) Upsert(ctx context.Context, w *models.Worktime) error {
	query := `
		INSERT INTO worktime (user_id, day, worktime, breaktime)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, day)
		DO UPDATE SET worktime = excluded.worktime, breaktime = excluded.breaktime
	`

	if _, err := r.db.ExecContext(ctx, query, w.UserID, w.Day, w.Worktime, w.Breaktime); err != nil {
		return fmt.Errorf("failed to upsert worktime: %w", err)
	}

	r.logger.Debug("Worktime updated",
		zap.String("user_id", w.UserID),
		zap.String("day", w.Day),
		zap.Int64("worktime", w.Worktime),
		zap.Int64("breaktime", w.Breaktime),
	)
	return nil
}

// ListUntil returns all recorded days of the user up to and including day,
// newest first.
func (r *WorktimeRepository) ListUntil(ctx context.Context, userID, day string) ([]*models.Worktime, error) {
	query := `
		SELECT day, worktime, breaktime
		FROM worktime
		WHERE user_id = ? AND day <= ?
		ORDER BY day DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query worktime: %w", err)
	}
	defer rows.Close()

	days := []*models.Worktime{}
	for rows.Next() {
		w := &models.Worktime{UserID: userID}
		if err := rows.Scan(&w.Day, &w.Worktime, &w.Breaktime); err != nil {
			return nil, fmt.Errorf("failed to scan worktime: %w", err)
		}
		days = append(days, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate worktime: %w", err)
	}

	return days, nil
}
