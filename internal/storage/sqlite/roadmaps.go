package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO roadmaps (`+roadmapColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Title, r.Description, r.CareerPath, r.SkillLevel, string(phases), r.Version,
		toMicros(r.CreatedAt), toMicros(r.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Roadmap{}, storage.ErrAlreadyExists
		}
		return models.Roadmap{}, err
	}
	return s.FindRoadmap(ctx, r.ID)
}

// FindRoadmap fetches one roadmap by id.
func (s *Store) FindRoadmap(ctx context.Context, id string) (models.Roadmap, error) {
	return scanRoadmap(s.db.QueryRowContext(ctx, `SELECT `+roadmapColumns+` FROM roadmaps WHERE id = ?`, id))
}

// ListRoadmaps returns the user's roadmaps newest first.
func (s *Store) ListRoadmaps(ctx context.Context, userID string) ([]models.Roadmap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+roadmapColumns+` FROM roadmaps WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
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
	err = execOne(ctx, s.db, `
		UPDATE roadmaps SET phases = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		string(phases), toMicros(r.UpdatedAt), r.ID, r.Version)
	if errors.Is(err, storage.ErrNotFound) {
		if _, findErr := s.FindRoadmap(ctx, r.ID); findErr != nil {
			return models.Roadmap{}, findErr
		}
		return models.Roadmap{}, storage.ErrConflict
	}
	if err != nil {
		return models.Roadmap{}, err
	}
	return s.FindRoadmap(ctx, r.ID)
}

// DeleteRoadmap removes a roadmap.
func (s *Store) DeleteRoadmap(ctx context.Context, id string) error {
	return execOne(ctx, s.db, `DELETE FROM roadmaps WHERE id = ?`, id)
}

func scanRoadmap(row rowScanner) (models.Roadmap, error) {
	var (
		r                models.Roadmap
		phases           string
		created, updated int64
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.CareerPath, &r.SkillLevel,
		&phases, &r.Version, &created, &updated); err != nil {
		return models.Roadmap{}, notFound(err)
	}
	if err := json.Unmarshal([]byte(phases), &r.Phases); err != nil {
		return models.Roadmap{}, fmt.Errorf("decode phases: %w", err)
	}
	r.CreatedAt = fromMicros(created)
	r.UpdatedAt = fromMicros(updated)
	return r, nil
}
