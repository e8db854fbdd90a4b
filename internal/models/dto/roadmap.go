package dto

import "github.com/hongminglow/skillpath-be/internal/models"

// GenerateRoadmapRequest asks for a new roadmap or an update of ExistingRoadmap.
type GenerateRoadmapRequest struct {
	CareerPath      string `json:"careerPath"`
	SkillLevel      string `json:"skillLevel"`
	ExistingRoadmap string `json:"existingRoadmap,omitempty"`
	UpdateRequest   string `json:"updateRequest,omitempty"`
}

type GenerateRoadmapResponse struct {
	CareerPath string         `json:"careerPath"`
	SkillLevel string         `json:"skillLevel"`
	Roadmap    []models.Phase `json:"roadmap"`
}

type SaveRoadmapRequest struct {
	CareerPath string         `json:"careerPath"`
	SkillLevel string         `json:"skillLevel"`
	Roadmap    []models.Phase `json:"roadmap"`
}

type RefineRoadmapRequest struct {
	UpdateRequest string `json:"updateRequest"`
}

// RoadmapView decorates a saved roadmap with computed progress.
type RoadmapView struct {
	models.Roadmap
	Progress      float64   `json:"progress"`
	PhaseProgress []float64 `json:"phaseProgress"`
}

func NewRoadmapView(r models.Roadmap) RoadmapView {
	phases := make([]float64, len(r.Phases))
	for i, ph := range r.Phases {
		phases[i] = ph.Progress()
	}
	return RoadmapView{Roadmap: r, Progress: r.Progress(), PhaseProgress: phases}
}

type ToggleItemResponse struct {
	Completed bool        `json:"completed"`
	Roadmap   RoadmapView `json:"roadmap"`
}
