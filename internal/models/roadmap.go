package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Item kinds inside a phase.
const (
	KindTechnologies = "technologies"
	KindResources    = "resources"
)

// ErrInvalidItemRef is returned when a toggle points outside the roadmap.
var ErrInvalidItemRef = errors.New("invalid roadmap item reference")

// Item is a technology or learning resource inside a phase.
type Item struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	URL         string `json:"url,omitempty" bson:"url,omitempty"`
	Completed   bool   `json:"completed" bson:"completed"`
}

// Phase is one stage of a learning plan.
type Phase struct {
	Title        string `json:"title" bson:"title"`
	Duration     string `json:"duration" bson:"duration"`
	Goal         string `json:"goal" bson:"goal"`
	Technologies []Item `json:"technologies" bson:"technologies"`
	Resources    []Item `json:"resources" bson:"resources"`
}

// Roadmap is a saved, user-owned learning plan.
type Roadmap struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"userId" bson:"userId"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	CareerPath  string    `json:"careerPath" bson:"careerPath"`
	SkillLevel  string    `json:"skillLevel" bson:"skillLevel"`
	Phases      []Phase   `json:"roadmap" bson:"roadmap"`
	Version     int       `json:"version" bson:"version"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ItemRef addresses one item of a roadmap.
type ItemRef struct {
	Phase int    `json:"phase"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
}

// RoadmapDescription builds the standard description of a saved roadmap.
func RoadmapDescription(skillLevel, careerPath string) string {
	return fmt.Sprintf("A personalized roadmap for a %s %s.", skillLevel, careerPath)
}

func (p *Phase) items(kind string) ([]Item, bool) {
	switch kind {
	case KindTechnologies:
		return p.Technologies, true
	case KindResources:
		return p.Resources, true
	}
	return nil, false
}

// Counts returns the completed and total number of items in the phase.
func (p Phase) Counts() (completed, total int) {
	for _, list := range [][]Item{p.Technologies, p.Resources} {
		for _, it := range list {
			total++
			if it.Completed {
				completed++
			}
		}
	}
	return completed, total
}

// Progress is the percentage of completed items; an empty phase is 0.
func (p Phase) Progress() float64 {
	done, total := p.Counts()
	return percent(done, total)
}

// Done reports whether the phase has items and all of them are completed.
func (p Phase) Done() bool {
	done, total := p.Counts()
	return total > 0 && done == total
}

// Counts returns the completed and total number of items in the roadmap.
func (r Roadmap) Counts() (completed, total int) {
	for _, ph := range r.Phases {
		d, t := ph.Counts()
		completed += d
		total += t
	}
	return completed, total
}

// Progress is the percentage of completed items across all phases.
func (r Roadmap) Progress() float64 {
	done, total := r.Counts()
	return percent(done, total)
}

// Milestones counts the phases that are fully completed.
func (r Roadmap) Milestones() int {
	n := 0
	for _, ph := range r.Phases {
		if ph.Done() {
			n++
		}
	}
	return n
}

// Toggle flips the completion flag of the referenced item and returns its new value.
func (r *Roadmap) Toggle(ref ItemRef) (bool, error) {
	if ref.Phase < 0 || ref.Phase >= len(r.Phases) {
		return false, fmt.Errorf("%w: phase %d", ErrInvalidItemRef, ref.Phase)
	}
	list, ok := r.Phases[ref.Phase].items(ref.Kind)
	if !ok {
		return false, fmt.Errorf("%w: kind %q", ErrInvalidItemRef, ref.Kind)
	}
	if ref.Index < 0 || ref.Index >= len(list) {
		return false, fmt.Errorf("%w: item %d", ErrInvalidItemRef, ref.Index)
	}
	list[ref.Index].Completed = !list[ref.Index].Completed
	return list[ref.Index].Completed, nil
}

// ResetProgress returns a deep copy of phases with every item marked incomplete.
func ResetProgress(phases []Phase) []Phase {
	out := ClonePhases(phases)
	for i := range out {
		for j := range out[i].Technologies {
			out[i].Technologies[j].Completed = false
		}
		for j := range out[i].Resources {
			out[i].Resources[j].Completed = false
		}
	}
	return out
}

// ClonePhases deep-copies phases so callers can mutate the result freely.
func ClonePhases(phases []Phase) []Phase {
	if phases == nil {
		return nil
	}
	out := make([]Phase, len(phases))
	for i, ph := range phases {
		out[i] = ph
		out[i].Technologies = append([]Item(nil), ph.Technologies...)
		out[i].Resources = append([]Item(nil), ph.Resources...)
		if out[i].Technologies == nil {
			out[i].Technologies = []Item{}
		}
		if out[i].Resources == nil {
			out[i].Resources = []Item{}
		}
	}
	return out
}

// CarryProgress copies completion flags from prev onto next for items of the
// same kind whose titles match case-insensitively.
func CarryProgress(prev, next []Phase) []Phase {
	done := map[string]bool{}
	for _, ph := range prev {
		for _, it := range ph.Technologies {
			if it.Completed {
				done[itemKey(KindTechnologies, it.Title)] = true
			}
		}
		for _, it := range ph.Resources {
			if it.Completed {
				done[itemKey(KindResources, it.Title)] = true
			}
		}
	}
	out := ResetProgress(next)
	for i := range out {
		for j := range out[i].Technologies {
			out[i].Technologies[j].Completed = done[itemKey(KindTechnologies, out[i].Technologies[j].Title)]
		}
		for j := range out[i].Resources {
			out[i].Resources[j].Completed = done[itemKey(KindResources, out[i].Resources[j].Title)]
		}
	}
	return out
}

func itemKey(kind, title string) string {
	return kind + "\x00" + strings.ToLower(strings.TrimSpace(title))
}

// Summarize aggregates progress over a user's roadmaps. The percentage is rounded.
func Summarize(roadmaps []Roadmap) (overall, milestones int) {
	var done, total int
	for _, r := range roadmaps {
		d, t := r.Counts()
		done += d
		total += t
		milestones += r.Milestones()
	}
	return int(math.Round(percent(done, total))), milestones
}

func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}
