package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const roadmapColumns = `id, user_id, title, description, career_path, skill_level, phases, version, created_at, updated_at`

// CreateRoadmap inserts a saved roadmap.
func (s *Store) CreateRoadmap(ctx context.Context, r models.Roadmap) (models.Roadmap, error) {
	phases, err := json.Marshal(r.Phases)
	if err != nil {
		return models.Roadmap{}, fmt.Errorf("encode phases: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO roadmaps (id, user_id, title, description, career_path, skill_level, phases, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+roadmapColumns,
		r.ID, r.UserID, r.Title, r.Description, r.CareerPath, r.SkillLevel, phases, r.Version, r.CreatedAt, r.UpdatedAt)
	created, err := scanRoadmap(row)
	if err != nil && isUniqueViolation(err) {
		return models.Roadmap{}, storage.ErrAlreadyExists
	}
	return created, err
}

// FindRoadmap fetches one roadmap by id.
func (s *Store) FindRoadmap(ctx context.Context, id string) (models.Roadmap, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+roadmapColumns+` FROM roadmaps WHERE id = $1`, id)
	return scanRoadmap(row)
}

// ListRoadmaps returns the user's roadmaps newest first.
func (s *Store) ListRoadmaps(ctx context.Context, userID string) ([]models.Roadmap, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+roadmapColumns+` FROM roadmaps WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	defer rows.Close()

	out := []models.Roadmap{}
	for rows.Next() {
		r, err := scanRoadmap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdatePhases replaces the phases when the version still matches.
func (s *Store) UpdatePhases(ctx context.Context, r models.Roadmap) (models.Roadmap, error) {
	phases, err := json.Marshal(r.Phases)
	if err != nil {
		return models.Roadmap{}, fmt.Errorf("encode phases: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE roadmaps SET phases = $3, version = version + 1, updated_at = $4
		WHERE id = $1 AND version = $2
		RETURNING `+roadmapColumns,
		r.ID, r.Version, phases, r.UpdatedAt)
	updated, err := scanRoadmap(row)
	if errors.Is(err, storage.ErrNotFound) {
		if _, findErr := s.FindRoadmap(ctx, r.ID); findErr != nil {
			return models.Roadmap{}, findErr
		}
		return models.Roadmap{}, storage.ErrConflict
	}
	return updated, err
}

// DeleteRoadmap removes a roadmap.
func (s *Store) DeleteRoadmap(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM roadmaps WHERE id = $1`, id)
}

func scanRoadmap(row pgx.Row) (models.Roadmap, error) {
	var r models.Roadmap
	var phases []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.CareerPath, &r.SkillLevel,
		&phases, &r.Version, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Roadmap{}, storage.ErrNotFound
		}
		return models.Roadmap{}, err
	}
	if err := json.Unmarshal(phases, &r.Phases); err != nil {
		return models.Roadmap{}, fmt.Errorf("decode phases: %w", err)
	}
	return r, nil
}
