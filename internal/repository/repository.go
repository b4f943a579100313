package repository

import (
	"errors"
	"strings"
	"time"

	"kuenkele/timetrack/internal/database"
	"kuenkele/timetrack/internal/models"
)

// dbTime normalises timestamps before they are written or compared. SQLite
// stores them as text, so every value must share zone and precision.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func dbTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := dbTime(*t)
	return &v
}

// likePattern builds a case-insensitive substring pattern for
// "LOWER(col) LIKE ? ESCAPE '\'".
func likePattern(term string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(escaper.Replace(term)) + "%"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func isNoRows(err error) bool {
	return errors.Is(err, database.ErrNoRows)
}

func isDuplicate(err error) bool {
	return errors.Is(err, database.ErrDuplicate)
}

func projectNotFound(name string) error {
	return models.Errorf(models.ErrNotFound, "project '%s' not found", name)
}
