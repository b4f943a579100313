package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/models"
)

const projectColumns = `id, user_id, name, started_at, created_at, updated_at`

type ProjectRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewProjectRepository(db *database.DB, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

// StartResult describes the state change of a Start call.
type StartResult struct {
	Project *models.Project
	// Stopped is the project that was running before, if any.
	Stopped *models.Project
	// Closed is the activity of Stopped that was closed.
	Closed *models.Activity
}

func scanProject(scan func(dest ...any) error) (*models.Project, error) {
	var p models.Project
	if err := scan(&p.ID, &p.UserID, &p.Name, &p.StartedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListLike returns all projects of the user whose name contains term, most
// recently updated first, with runtimes filled in.
func (r *ProjectRepository) ListLike(ctx context.Context, userID, term string) ([]*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE user_id = ? AND LOWER(name) LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, likePattern(term))
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	rows.Close()

	if err := r.loadActivities(ctx, r.db, projects); err != nil {
		return nil, err
	}

	return projects, nil
}

func (r *ProjectRepository) loadActivities(ctx context.Context, q database.Querier, projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}

	byID := make(map[int64]*models.Project, len(projects))
	args := make([]any, 0, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
		p.Activities = models.Activities{}
		args = append(args, p.ID)
	}

	query := `
		SELECT id, project_id, started_at, ended_at, created_at, updated_at
		FROM activities
		WHERE project_id IN (` + placeholders(len(args)) + `)
		ORDER BY started_at ASC, id ASC
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.StartedAt, &a.EndedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan activity: %w", err)
		}
		p := byID[a.ProjectID]
		a.ProjectName = p.Name
		p.Activities = append(p.Activities, &a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate activities: %w", err)
	}

	for _, p := range projects {
		p.RuntimeInSeconds = p.Activities.Runtime()
	}
	return nil
}

func (r *ProjectRepository) get(ctx context.Context, q database.Querier, userID, name string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? AND name = ?`

	p, err := scanProject(func(dest ...any) error {
		return q.ScanRow(ctx, query, []any{userID, name}, dest...)
	})
	if isNoRows(err) {
		return nil, projectNotFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := r.loadActivities(ctx, q, []*models.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the named project of the user with its activities.
func (r *ProjectRepository) Get(ctx context.Context, userID, name string) (*models.Project, error) {
	return r.get(ctx, r.db, userID, name)
}

func (r *ProjectRepository) running(ctx context.Context, q database.Querier, userID string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = ? AND started_at IS NOT NULL LIMIT 1`

	p, err := scanProject(func(dest ...any) error {
		return q.ScanRow(ctx, query, []any{userID}, dest...)
	})
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get running project: %w", err)
	}
	return p, nil
}

// Running returns the user's running project or nil.
func (r *ProjectRepository) Running(ctx context.Context, userID string) (*models.Project, error) {
	p, err := r.running(ctx, r.db, userID)
	if err != nil || p == nil {
		return p, err
	}
	if err := r.loadActivities(ctx, r.db, []*models.Project{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Create(ctx context.Context, userID, name string, now time.Time) (*models.Project, error) {
	now = dbTime(now)

	query := `
		INSERT INTO projects (user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`

	var id int64
	err := r.db.ScanRow(ctx, query, []any{userID, name, now, now}, &id)
	if isDuplicate(err) {
		return nil, models.Errorf(models.ErrConflict, "project '%s' already exists", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	r.logger.Debug("Project created", zap.String("user_id", userID), zap.String("name", name), zap.Int64("id", id))

	return &models.Project{
		ID:         id,
		UserID:     userID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
		Activities: models.Activities{},
	}, nil
}

// Delete removes the project and its activities.
func (r *ProjectRepository) Delete(ctx context.Context, userID, name string) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		var id int64
		err := tx.ScanRow(ctx, `SELECT id FROM projects WHERE user_id = ? AND name = ?`, []any{userID, name}, &id)
		if isNoRows(err) {
			return projectNotFound(name)
		}
		if err != nil {
			return fmt.Errorf("failed to find project: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE project_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete activities: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

// Start opens an activity for the named project and stops the previously
// running project at the same instant, in one transaction.
func (r *ProjectRepository) Start(ctx context.Context, userID, name string, now time.Time) (*StartResult, error) {
	now = dbTime(now)
	result := &StartResult{}

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		project, err := r.get(ctx, tx, userID, name)
		if err != nil {
			return err
		}
		if project.IsRunning() {
			return models.Errorf(models.ErrConflict, "project '%s' already started", name)
		}

		current, err := r.running(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != nil {
			closed, err := r.stop(ctx, tx, current, now)
			if err != nil {
				return err
			}
			result.Stopped = current
			result.Closed = closed
		}

		var activityID int64
		if err := tx.ScanRow(ctx, `
			INSERT INTO activities (project_id, started_at, created_at, updated_at)
			VALUES (?, ?, ?, ?)
			RETURNING id
		`, []any{project.ID, now, now, now}, &activityID); err != nil {
			return fmt.Errorf("failed to open activity: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET started_at = ?, updated_at = ? WHERE id = ?`,
			now, now, project.ID,
		); err != nil {
			// Another Start for this user committed first.
			if isDuplicate(err) {
				return models.Errorf(models.ErrConflict, "another project of user '%s' was started concurrently", userID)
			}
			return fmt.Errorf("failed to start project: %w", err)
		}

		project.StartedAt = &now
		project.UpdatedAt = now
		project.Activities = append(project.Activities, &models.Activity{
			ID:          activityID,
			ProjectID:   project.ID,
			ProjectName: project.Name,
			StartedAt:   now,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		result.Project = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Stop closes the open activity of the named project. It returns the stopped
// project and the closed activity.
func (r *ProjectRepository) Stop(ctx context.Context, userID, name string, now time.Time) (*models.Project, *models.Activity, error) {
	now = dbTime(now)

	var (
		project *models.Project
		closed  *models.Activity
	)
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		p, err := r.get(ctx, tx, userID, name)
		if err != nil {
			return err
		}
		if !p.IsRunning() {
			return models.Errorf(models.ErrConflict, "project '%s' not running", name)
		}

		closed, err = r.stop(ctx, tx, p, now)
		if err != nil {
			return err
		}

		for _, a := range p.Activities {
			if a.ID == closed.ID {
				a.EndedAt = closed.EndedAt
				a.UpdatedAt = now
			}
		}
		p.RuntimeInSeconds = p.Activities.Runtime()
		project = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return project, closed, nil
}

func (r *ProjectRepository) stop(ctx context.Context, tx *database.Tx, p *models.Project, now time.Time) (*models.Activity, error) {
	closed := &models.Activity{ProjectID: p.ID, ProjectName: p.Name, EndedAt: &now, UpdatedAt: now}

	err := tx.ScanRow(ctx,
		`SELECT id, started_at FROM activities WHERE project_id = ? AND ended_at IS NULL ORDER BY started_at DESC LIMIT 1`,
		[]any{p.ID}, &closed.ID, &closed.StartedAt,
	)
	switch {
	case isNoRows(err):
		r.logger.Warn("Running project without open activity",
			zap.Int64("project_id", p.ID),
			zap.String("name", p.Name),
		)
		closed = nil
	case err != nil:
		return nil, fmt.Errorf("failed to find open activity: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE activities SET ended_at = ?, updated_at = ? WHERE project_id = ? AND ended_at IS NULL`,
		now, now, p.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to close activity: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET started_at = NULL, updated_at = ? WHERE id = ?`,
		now, p.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to stop project: %w", err)
	}

	p.StartedAt = nil
	p.UpdatedAt = now

	if closed == nil {
		closed = &models.Activity{ProjectID: p.ID, ProjectName: p.Name, StartedAt: now, EndedAt: &now, UpdatedAt: now}
	}
	return closed, nil
}
