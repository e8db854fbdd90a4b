package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const userColumns = `id, email, display_name, photo_url, provider, password_hash,
	overall_progress, completed_milestones, ai_assistant_queries, active_streak,
	last_login_date, created_at`

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (id, email, display_name, photo_url, provider, password_hash,
			overall_progress, completed_milestones, ai_assistant_queries, active_streak,
			last_login_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.DisplayName, user.PhotoURL, user.Provider, user.PasswordHash,
		user.OverallProgress, user.CompletedMilestones, user.AIAssistantQueries, user.ActiveStreak,
		user.LastLoginDate, user.CreatedAt)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// FindUserByID fetches a user by primary key.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindUserByEmail fetches a user by email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateDisplayName changes the display name and returns the updated user.
func (s *Store) UpdateDisplayName(ctx context.Context, id, displayName string) (models.User, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE users SET display_name = $2 WHERE id = $1 RETURNING `+userColumns, id, displayName)
	return scanUser(row)
}

// RecordLogin stores the streak computed for a sign-in at the given time.
func (s *Store) RecordLogin(ctx context.Context, id string, streak int, at time.Time) error {
	return s.execOne(ctx, `UPDATE users SET active_streak = $2, last_login_date = $3 WHERE id = $1`, id, streak, at)
}

// UpdateProgress overwrites the progress counters.
func (s *Store) UpdateProgress(ctx context.Context, id string, overall, milestones int) error {
	return s.execOne(ctx,
		`UPDATE users SET overall_progress = $2, completed_milestones = $3 WHERE id = $1`, id, overall, milestones)
}

// IncrementAssistantQueries bumps the assistant query counter by one.
func (s *Store) IncrementAssistantQueries(ctx context.Context, id string) error {
	return s.execOne(ctx, `UPDATE users SET ai_assistant_queries = ai_assistant_queries + 1 WHERE id = $1`, id)
}

func (s *Store) execOne(ctx context.Context, stmt string, args ...any) error {
	tag, err := s.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PhotoURL, &u.Provider, &u.PasswordHash,
		&u.OverallProgress, &u.CompletedMilestones, &u.AIAssistantQueries, &u.ActiveStreak,
		&u.LastLoginDate, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}
