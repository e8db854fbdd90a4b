// Package ai talks to the hosted generative model: it turns roadmap and
// assistant requests into structured prompts and decodes the JSON replies.
package ai

import (
	"context"
	"errors"

	"github.com/hongminglow/skillpath-be/internal/models"
)

// ErrGeneration marks a model reply that could not be used.
var ErrGeneration = errors.New("model returned an unusable response")

// RoadmapRequest describes a new roadmap, or an update when ExistingRoadmap is set.
type RoadmapRequest struct {
	CareerPath      string
	SkillLevel      string
	ExistingRoadmap string
	UpdateRequest   string
}

// Question is one assistant query.
type Question struct {
	Question string
	Context  string
}

// RoadmapGenerator produces roadmap phases.
type RoadmapGenerator interface {
	GenerateRoadmap(ctx context.Context, req RoadmapRequest) ([]models.Phase, error)
}

// Assistant answers technical questions.
type Assistant interface {
	Ask(ctx context.Context, q Question) (string, error)
}

// Client is the full model surface used by the service.
type Client interface {
	RoadmapGenerator
	Assistant
}
