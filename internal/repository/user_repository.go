package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/models"
)

type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.CreatedAt = dbTime(user.CreatedAt)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, password_hash, created_at) VALUES (?, ?, ?)`,
		user.ID, user.PasswordHash, user.CreatedAt,
	)
	if isDuplicate(err) {
		return models.Errorf(models.ErrConflict, "user '%s' already exists", user.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Ensure creates a password-less user if it does not exist yet. Used for
// subjects authenticated by the identity provider.
func (r *UserRepository) Ensure(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, password_hash, created_at) VALUES (?, '', ?) ON CONFLICT (id) DO NOTHING`,
		userID, dbTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	err := r.db.ScanRow(ctx,
		`SELECT id, password_hash, created_at FROM users WHERE id = ?`,
		[]any{userID}, &u.ID, &u.PasswordHash, &u.CreatedAt,
	)
	if isNoRows(err) {
		return nil, models.Errorf(models.ErrNotFound, "user '%s' not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
