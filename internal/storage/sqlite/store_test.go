package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
	"github.com/hongminglow/skillpath-be/internal/storage/storagetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "skillpath.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, id string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{
		ID:            id,
		Email:         id + "@example.com",
		DisplayName:   "User " + id,
		Provider:      models.ProviderPassword,
		PasswordHash:  "hash",
		ActiveStreak:  1,
		LastLoginDate: base,
		CreatedAt:     base,
	})
	require.NoError(t, err)
	return u
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := seedUser(t, s, "u1")
	assert.Equal(t, "u1@example.com", u.Email)
	assert.True(t, base.Equal(u.CreatedAt))

	_, err := s.CreateUser(ctx, models.User{ID: "u2", Email: "u1@example.com", LastLoginDate: base, CreatedAt: base})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	byEmail, err := s.FindUserByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)

	_, err = s.FindUserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	updated, err := s.UpdateDisplayName(ctx, "u1", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.DisplayName)

	require.NoError(t, s.RecordLogin(ctx, "u1", 3, base.Add(24*time.Hour)))
	require.NoError(t, s.UpdateProgress(ctx, "u1", 40, 2))
	require.NoError(t, s.IncrementAssistantQueries(ctx, "u1"))
	require.NoError(t, s.IncrementAssistantQueries(ctx, "u1"))

	got, err := s.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.ActiveStreak)
	assert.True(t, base.Add(24*time.Hour).Equal(got.LastLoginDate))
	assert.Equal(t, 40, got.OverallProgress)
	assert.Equal(t, 2, got.CompletedMilestones)
	assert.Equal(t, 2, got.AIAssistantQueries)

	assert.ErrorIs(t, s.UpdateProgress(ctx, "missing", 1, 1), storage.ErrNotFound)
}

func TestRoadmapVersioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUser(t, s, "u1")

	r, err := s.CreateRoadmap(ctx, models.Roadmap{
		ID: "r1", UserID: "u1", Title: "Backend Developer", CareerPath: "Backend Developer", SkillLevel: "Beginner",
		Phases:  []models.Phase{{Title: "Go", Technologies: []models.Item{{Title: "Go"}}, Resources: []models.Item{}}},
		Version: 1, CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Version)

	r.Phases[0].Technologies[0].Completed = true
	r.UpdatedAt = base.Add(time.Minute)
	updated, err := s.UpdatePhases(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.True(t, updated.Phases[0].Technologies[0].Completed)

	// r still carries version 1.
	_, err = s.UpdatePhases(ctx, r)
	assert.ErrorIs(t, err, storage.ErrConflict)

	r.ID = "missing"
	_, err = s.UpdatePhases(ctx, r)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.CreateRoadmap(ctx, models.Roadmap{ID: "r2", UserID: "u1", Title: "Later", Version: 1,
		CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	list, err := s.ListRoadmaps(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].ID)

	require.NoError(t, s.DeleteRoadmap(ctx, "r1"))
	assert.ErrorIs(t, s.DeleteRoadmap(ctx, "r1"), storage.ErrNotFound)
}

func seedPosts(t *testing.T, s *Store, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		// Pairs of posts share a timestamp so the id tie-breaker is exercised.
		_, err := s.CreatePost(context.Background(), models.Post{
			ID:        fmt.Sprintf("p%02d", i),
			UserID:    "u1",
			UserName:  "Ada",
			Content:   fmt.Sprintf("post %d", i),
			LikedBy:   []string{},
			CreatedAt: base.Add(time.Duration(i/2) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func TestListPostsKeyset(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPosts(t, s, 7)

	var (
		seen  []string
		after *models.Cursor
	)
	for {
		page, err := s.ListPosts(ctx, storage.PostQuery{Limit: 3, After: after})
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			seen = append(seen, p.ID)
		}
		after = models.CursorAfter(page[len(page)-1])
	}
	assert.Equal(t, []string{"p06", "p05", "p04", "p03", "p02", "p01", "p00"}, seen)
}

func TestToggleLikeAndComments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedPosts(t, s, 1)

	post, liked, err := s.ToggleLike(ctx, "p00", "u2")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, post.LikeCount)
	assert.Equal(t, []string{"u2"}, post.LikedBy)

	post, liked, err = s.ToggleLike(ctx, "p00", "u2")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, post.LikeCount)
	assert.Empty(t, post.LikedBy)

	_, _, err = s.ToggleLike(ctx, "missing", "u2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	for i := 0; i < 2; i++ {
		_, err := s.AddComment(ctx, models.Comment{
			ID: fmt.Sprintf("c%d", i), PostID: "p00", UserID: "u2", UserName: "Bob",
			Content: fmt.Sprintf("comment %d", i), CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}
	_, err = s.AddComment(ctx, models.Comment{ID: "cx", PostID: "missing", Content: "x", CreatedAt: base})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	comments, err := s.ListComments(ctx, "p00")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c0", comments[0].ID)

	post, err = s.FindPost(ctx, "p00")
	require.NoError(t, err)
	assert.Equal(t, 2, post.CommentCount)

	require.NoError(t, s.DeletePost(ctx, "p00"))
	comments, err = s.ListComments(ctx, "p00")
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.ErrorIs(t, s.DeletePost(ctx, "p00"), storage.ErrNotFound)
}

func TestStoreBehaviour(t *testing.T) {
	storagetest.Run(t, newTestStore(t))
}
