package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/models"
)

type SessionRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewSessionRepository(db *database.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	session.ExpiresAt = dbTime(session.ExpiresAt)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES (?, ?, ?)`,
		session.ID, session.UserID, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.db.ScanRow(ctx,
		`SELECT id, user_id, expires_at FROM sessions WHERE id = ?`,
		[]any{sessionID}, &s.ID, &s.UserID, &s.ExpiresAt,
	)
	if isNoRows(err) {
		return nil, models.Errorf(models.ErrUnauthorized, "session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions expired at now and returns how many.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, dbTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted sessions: %w", err)
	}
	if n > 0 {
		r.logger.Debug("Expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}
