package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hongminglow/skillpath-be/internal/ai"
	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage/sqlite"
)

func newStore(t testing.TB) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(context.Background(), filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// clock hands out strictly increasing timestamps starting at start.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(start time.Time) *clock { return &clock{now: start} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func requireValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	require.Contains(t, verr.Fields, field)
}

type stubModel struct {
	mu       sync.Mutex
	phases   []models.Phase
	answer   string
	err      error
	requests []ai.RoadmapRequest
	asked    []ai.Question
}

func (s *stubModel) GenerateRoadmap(_ context.Context, req ai.RoadmapRequest) ([]models.Phase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return models.ClonePhases(s.phases), nil
}

func (s *stubModel) Ask(_ context.Context, q ai.Question) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.asked = append(s.asked, q)
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func frontendPhases() []models.Phase {
	return []models.Phase{
		{
			Title: "Foundations", Duration: "4 weeks", Goal: "Web basics",
			Technologies: []models.Item{{Title: "HTML", Description: "Markup"}, {Title: "CSS", Description: "Styling"}},
			Resources:    []models.Item{{Title: "MDN", Description: "Docs", URL: "https://developer.mozilla.org"}},
		},
		{
			Title: "Frameworks", Duration: "6 weeks", Goal: "Ship an app",
			Technologies: []models.Item{{Title: "React", Description: "UI library"}},
			Resources:    []models.Item{},
		},
	}
}
