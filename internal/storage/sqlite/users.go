package sqlite

import (
	"context"
	"time"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const userColumns = `id, email, display_name, photo_url, provider, password_hash,
	overall_progress, completed_milestones, ai_assistant_queries, active_streak,
	last_login_date, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.PhotoURL, u.Provider, u.PasswordHash,
		u.OverallProgress, u.CompletedMilestones, u.AIAssistantQueries, u.ActiveStreak,
		toMicros(u.LastLoginDate), toMicros(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return s.FindUserByID(ctx, u.ID)
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

// FindUserByEmail fetches a user by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// UpdateDisplayName changes the display name and returns the updated user.
func (s *Store) UpdateDisplayName(ctx context.Context, id, displayName string) (models.User, error) {
	if err := execOne(ctx, s.db, `UPDATE users SET display_name = ? WHERE id = ?`, displayName, id); err != nil {
		return models.User{}, err
	}
	return s.FindUserByID(ctx, id)
}

// RecordLogin stores the streak computed for a sign-in at the given time.
func (s *Store) RecordLogin(ctx context.Context, id string, streak int, at time.Time) error {
	return execOne(ctx, s.db, `UPDATE users SET active_streak = ?, last_login_date = ? WHERE id = ?`, streak, toMicros(at), id)
}

// UpdateProgress overwrites the progress counters.
func (s *Store) UpdateProgress(ctx context.Context, id string, overall, milestones int) error {
	return execOne(ctx, s.db, `UPDATE users SET overall_progress = ?, completed_milestones = ? WHERE id = ?`, overall, milestones, id)
}

// IncrementAssistantQueries bumps the assistant query counter by one.
func (s *Store) IncrementAssistantQueries(ctx context.Context, id string) error {
	return execOne(ctx, s.db, `UPDATE users SET ai_assistant_queries = ai_assistant_queries + 1 WHERE id = ?`, id)
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u                  models.User
		lastLogin, created int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.Provider, &u.PasswordHash,
		&u.OverallProgress, &u.CompletedMilestones, &u.AIAssistantQueries, &u.ActiveStreak,
		&lastLogin, &created); err != nil {
		return models.User{}, notFound(err)
	}
	u.LastLoginDate = fromMicros(lastLogin)
	u.CreatedAt = fromMicros(created)
	return u, nil
}
