package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/ai"
	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// updateAttempts bounds the optimistic-concurrency retry loop on roadmap writes.
const updateAttempts = 3

// GenerateInput is a roadmap generation or update request.
type GenerateInput struct {
	CareerPath      string
	SkillLevel      string
	ExistingRoadmap string
	UpdateRequest   string
}

// Roadmaps generates, saves and tracks progress on roadmaps.
type Roadmaps struct {
	roadmaps storage.RoadmapStore
	users    storage.UserStore
	gen      ai.RoadmapGenerator
	log      *zap.Logger
	env      env
}

// NewRoadmaps constructs the roadmap service. gen may be nil when AI is not configured.
func NewRoadmaps(roadmaps storage.RoadmapStore, users storage.UserStore, gen ai.RoadmapGenerator, log *zap.Logger) *Roadmaps {
	return &Roadmaps{roadmaps: roadmaps, users: users, gen: gen, log: log.Named("roadmaps"), env: defaultEnv()}
}

// Generate returns freshly generated phases without saving them.
func (s *Roadmaps) Generate(ctx context.Context, in GenerateInput) ([]models.Phase, error) {
	in.CareerPath = strings.TrimSpace(in.CareerPath)
	in.SkillLevel = strings.TrimSpace(in.SkillLevel)
	if err := validateTarget(in.CareerPath, in.SkillLevel); err != nil {
		return nil, err
	}
	if s.gen == nil {
		return nil, ErrAIUnavailable
	}
	phases, err := s.gen.GenerateRoadmap(ctx, ai.RoadmapRequest{
		CareerPath:      in.CareerPath,
		SkillLevel:      in.SkillLevel,
		ExistingRoadmap: strings.TrimSpace(in.ExistingRoadmap),
		UpdateRequest:   strings.TrimSpace(in.UpdateRequest),
	})
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w: %w", ErrAIFailure, err)
	}
	return phases, nil
}

// Save persists a generated roadmap with all items marked incomplete.
func (s *Roadmaps) Save(ctx context.Context, userID, careerPath, skillLevel string, phases []models.Phase) (models.Roadmap, error) {
	careerPath = strings.TrimSpace(careerPath)
	skillLevel = strings.TrimSpace(skillLevel)
	var v validator
	v.check(runeLen(careerPath) >= 3, "careerPath", "Career path is required.")
	v.check(runeLen(skillLevel) >= 1, "skillLevel", "Skill level is required.")
	v.check(len(phases) > 0, "roadmap", "Roadmap must contain at least one phase.")
	if err := v.err(); err != nil {
		return models.Roadmap{}, err
	}

	now := s.env.timestamp()
	created, err := s.roadmaps.CreateRoadmap(ctx, models.Roadmap{
		ID:          s.env.newID(),
		UserID:      userID,
		Title:       careerPath,
		Description: models.RoadmapDescription(skillLevel, careerPath),
		CareerPath:  careerPath,
		SkillLevel:  skillLevel,
		Phases:      models.ResetProgress(phases),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return models.Roadmap{}, err
	}
	s.refreshProgress(ctx, userID)
	return created, nil
}

// List returns the user's roadmaps, newest first.
func (s *Roadmaps) List(ctx context.Context, userID string) ([]models.Roadmap, error) {
	return s.roadmaps.ListRoadmaps(ctx, userID)
}

// Get returns one of the user's roadmaps. Other users' roadmaps are not found.
func (s *Roadmaps) Get(ctx context.Context, userID, id string) (models.Roadmap, error) {
	r, err := s.roadmaps.FindRoadmap(ctx, id)
	if err != nil {
		return models.Roadmap{}, err
	}
	if r.UserID != userID {
		return models.Roadmap{}, storage.ErrNotFound
	}
	return r, nil
}

// Delete removes one of the user's roadmaps.
func (s *Roadmaps) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.roadmaps.DeleteRoadmap(ctx, id); err != nil {
		return err
	}
	s.refreshProgress(ctx, userID)
	return nil
}

// Toggle flips one item's completion flag and returns the stored roadmap.
func (s *Roadmaps) Toggle(ctx context.Context, userID, id string, ref models.ItemRef) (models.Roadmap, bool, error) {
	var completed bool
	updated, err := s.update(ctx, userID, id, func(r *models.Roadmap) error {
		var err error
		completed, err = r.Toggle(ref)
		if errors.Is(err, models.ErrInvalidItemRef) {
			return invalid("item", "Roadmap item does not exist.")
		}
		return err
	})
	if err != nil {
		return models.Roadmap{}, false, err
	}
	s.refreshProgress(ctx, userID)
	return updated, completed, nil
}

// Refine regenerates a saved roadmap in place from an update request, keeping
// completion of items that survive the update.
func (s *Roadmaps) Refine(ctx context.Context, userID, id, updateRequest string) (models.Roadmap, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Roadmap{}, err
	}
	if s.gen == nil {
		return models.Roadmap{}, ErrAIUnavailable
	}
	existing, err := json.Marshal(models.ResetProgress(current.Phases))
	if err != nil {
		return models.Roadmap{}, fmt.Errorf("encode roadmap: %w", err)
	}
	phases, err := s.gen.GenerateRoadmap(ctx, ai.RoadmapRequest{
		CareerPath:      current.CareerPath,
		SkillLevel:      current.SkillLevel,
		ExistingRoadmap: string(existing),
		UpdateRequest:   strings.TrimSpace(updateRequest),
	})
	if err != nil {
		return models.Roadmap{}, fmt.Errorf("refine roadmap: %w: %w", ErrAIFailure, err)
	}

	updated, err := s.update(ctx, userID, id, func(r *models.Roadmap) error {
		r.Phases = models.CarryProgress(r.Phases, phases)
		return nil
	})
	if err != nil {
		return models.Roadmap{}, err
	}
	s.refreshProgress(ctx, userID)
	return updated, nil
}

// update applies mutate to the latest stored roadmap, retrying on version conflicts.
func (s *Roadmaps) update(ctx context.Context, userID, id string, mutate func(*models.Roadmap) error) (models.Roadmap, error) {
	var lastErr error
	for attempt := 0; attempt < updateAttempts; attempt++ {
		r, err := s.Get(ctx, userID, id)
		if err != nil {
			return models.Roadmap{}, err
		}
		r.Phases = models.ClonePhases(r.Phases)
		if err := mutate(&r); err != nil {
			return models.Roadmap{}, err
		}
		r.UpdatedAt = s.env.timestamp()

		updated, err := s.roadmaps.UpdatePhases(ctx, r)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, storage.ErrConflict) {
			return models.Roadmap{}, err
		}
		lastErr = err
		s.log.Debug("roadmap version conflict, retrying", zap.String("roadmap_id", id), zap.Int("attempt", attempt+1))
	}
	return models.Roadmap{}, lastErr
}

// refreshProgress recomputes the user's dashboard counters from their roadmaps.
func (s *Roadmaps) refreshProgress(ctx context.Context, userID string) {
	roadmaps, err := s.roadmaps.ListRoadmaps(ctx, userID)
	if err != nil {
		s.log.Warn("list roadmaps for progress failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	overall, milestones := models.Summarize(roadmaps)
	if err := s.users.UpdateProgress(ctx, userID, overall, milestones); err != nil {
		s.log.Warn("update user progress failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func validateTarget(careerPath, skillLevel string) error {
	var v validator
	v.check(runeLen(careerPath) >= 3, "careerPath", "Career path is required.")
	v.check(runeLen(skillLevel) >= 1, "skillLevel", "Skill level is required.")
	return v.err()
}
