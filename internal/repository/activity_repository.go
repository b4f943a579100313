package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/models"
)

const activityColumns = `a.id, a.project_id, p.name, a.started_at, a.ended_at, a.created_at, a.updated_at`

type ActivityRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewActivityRepository(db *database.DB, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, logger: logger}
}

func scanActivity(scan func(dest ...any) error) (*models.Activity, error) {
	var a models.Activity
	if err := scan(&a.ID, &a.ProjectID, &a.ProjectName, &a.StartedAt, &a.EndedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListBetween returns the user's activities starting in [from, to), ordered
// chronologically.
func (r *ActivityRepository) ListBetween(ctx context.Context, userID string, from, to time.Time) (models.Activities, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities a
		JOIN projects p ON a.project_id = p.id
		WHERE p.user_id = ? AND a.started_at >= ? AND a.started_at < ?
		ORDER BY a.started_at ASC, a.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, dbTime(from), dbTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	activities := models.Activities{}
	for rows.Next() {
		a, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	activities.SortChronologically()
	return activities, nil
}

// Get returns one activity of the user.
func (r *ActivityRepository) Get(ctx context.Context, userID string, id int64) (*models.Activity, error) {
	return r.get(ctx, r.db, userID, id)
}

func (r *ActivityRepository) get(ctx context.Context, q database.Querier, userID string, id int64) (*models.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities a
		JOIN projects p ON a.project_id = p.id
		WHERE p.user_id = ? AND a.id = ?
	`

	a, err := scanActivity(func(dest ...any) error {
		return q.ScanRow(ctx, query, []any{userID, id}, dest...)
	})
	if isNoRows(err) {
		return nil, models.Errorf(models.ErrNotFound, "activity '%d' not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return a, nil
}

// Change rewrites an activity. It returns the activity as it was before the
// change together with the updated one.
//
// An open activity belongs to a running project: it may be moved in time but
// stays open and stays with its project. A closed activity stays closed.
func (r *ActivityRepository) Change(ctx context.Context, userID string, change *models.Activity, now time.Time) (*models.Activity, *models.Activity, error) {
	now = dbTime(now)

	var before, after *models.Activity
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		current, err := r.get(ctx, tx, userID, change.ID)
		if err != nil {
			return err
		}

		var projectID int64
		err = tx.ScanRow(ctx,
			`SELECT id FROM projects WHERE user_id = ? AND name = ?`,
			[]any{userID, change.ProjectName}, &projectID,
		)
		if isNoRows(err) {
			return projectNotFound(change.ProjectName)
		}
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}

		if current.IsOpen() {
			if change.EndedAt != nil {
				return models.Errorf(models.ErrConflict, "activity '%d' is running, stop project '%s' instead", change.ID, current.ProjectName)
			}
			if projectID != current.ProjectID {
				return models.Errorf(models.ErrConflict, "running activity '%d' cannot be moved to another project", change.ID)
			}
		} else if change.EndedAt == nil {
			return models.Errorf(models.ErrValidation, "endedAt must be present for a finished activity")
		}

		startedAt := dbTime(change.StartedAt)
		endedAt := dbTimePtr(change.EndedAt)

		if _, err := tx.ExecContext(ctx, `
			UPDATE activities
			SET project_id = ?, started_at = ?, ended_at = ?, updated_at = ?
			WHERE id = ?
		`, projectID, startedAt, endedAt, now, change.ID); err != nil {
			return fmt.Errorf("failed to change activity: %w", err)
		}

		if current.IsOpen() {
			if _, err := tx.ExecContext(ctx,
				`UPDATE projects SET started_at = ?, updated_at = ? WHERE id = ?`,
				startedAt, now, projectID,
			); err != nil {
				return fmt.Errorf("failed to move project start: %w", err)
			}
		} else {
			if _, err := tx.ExecContext(ctx,
				`UPDATE projects SET updated_at = ? WHERE id IN (?, ?)`,
				now, current.ProjectID, projectID,
			); err != nil {
				return fmt.Errorf("failed to touch projects: %w", err)
			}
		}

		before = current
		after = &models.Activity{
			ID:          change.ID,
			ProjectID:   projectID,
			ProjectName: change.ProjectName,
			StartedAt:   startedAt,
			EndedAt:     endedAt,
			CreatedAt:   current.CreatedAt,
			UpdatedAt:   now,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	r.logger.Debug("Activity changed",
		zap.Int64("id", after.ID),
		zap.String("project", after.ProjectName),
	)
	return before, after, nil
}
