// Package storagetest holds behaviour checks shared by every storage.Store
// implementation. IDs are random so the checks can run against a shared database.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// Run exercises users, roadmap versioning, likes and comments against s.
func Run(t *testing.T, s storage.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("roadmaps", func(t *testing.T) { testRoadmaps(t, s) })
	t.Run("posts", func(t *testing.T) { testPosts(t, s) })
}

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newUser(t *testing.T, s storage.Store) models.User {
	t.Helper()
	id := uuid.NewString()
	u, err := s.CreateUser(context.Background(), models.User{
		ID:            id,
		Email:         id + "@example.com",
		DisplayName:   "Tester",
		Provider:      models.ProviderPassword,
		PasswordHash:  "hash",
		ActiveStreak:  1,
		LastLoginDate: base,
		CreatedAt:     base,
	})
	require.NoError(t, err)
	return u
}

func testUsers(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	_, err := s.CreateUser(ctx, models.User{ID: uuid.NewString(), Email: u.Email, LastLoginDate: base, CreatedAt: base})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	byEmail, err := s.FindUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = s.FindUserByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	renamed, err := s.UpdateDisplayName(ctx, u.ID, "Ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", renamed.DisplayName)

	require.NoError(t, s.RecordLogin(ctx, u.ID, 2, base.Add(24*time.Hour)))
	require.NoError(t, s.UpdateProgress(ctx, u.ID, 25, 1))
	require.NoError(t, s.IncrementAssistantQueries(ctx, u.ID))

	got, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ActiveStreak)
	assert.True(t, base.Add(24*time.Hour).Equal(got.LastLoginDate))
	assert.Equal(t, 25, got.OverallProgress)
	assert.Equal(t, 1, got.CompletedMilestones)
	assert.Equal(t, 1, got.AIAssistantQueries)
}

func testRoadmaps(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	r, err := s.CreateRoadmap(ctx, models.Roadmap{
		ID: uuid.NewString(), UserID: u.ID, Title: "SRE", CareerPath: "SRE", SkillLevel: "Beginner",
		Phases:  []models.Phase{{Title: "Linux", Technologies: []models.Item{{Title: "Bash"}}, Resources: []models.Item{}}},
		Version: 1, CreatedAt: base, UpdatedAt: base,
	})
	require.NoError(t, err)

	r.Phases[0].Technologies[0].Completed = true
	r.UpdatedAt = base.Add(time.Minute)
	updated, err := s.UpdatePhases(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.True(t, updated.Phases[0].Technologies[0].Completed)

	_, err = s.UpdatePhases(ctx, r)
	assert.ErrorIs(t, err, storage.ErrConflict)

	later, err := s.CreateRoadmap(ctx, models.Roadmap{ID: uuid.NewString(), UserID: u.ID, Title: "Later",
		Phases: []models.Phase{}, Version: 1, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	list, err := s.ListRoadmaps(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, later.ID, list[0].ID)

	require.NoError(t, s.DeleteRoadmap(ctx, r.ID))
	_, err = s.FindRoadmap(ctx, r.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testPosts(t *testing.T, s storage.Store) {
	ctx := context.Background()
	u := newUser(t, s)
	post, err := s.CreatePost(ctx, models.Post{
		ID: uuid.NewString(), UserID: u.ID, UserName: u.DisplayName, Content: "hello",
		LikedBy: []string{}, CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	})
	require.NoError(t, err)

	liker := uuid.NewString()
	liked, on, err := s.ToggleLike(ctx, post.ID, liker)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, 1, liked.LikeCount)
	assert.Equal(t, []string{liker}, liked.LikedBy)

	unliked, on, err := s.ToggleLike(ctx, post.ID, liker)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Zero(t, unliked.LikeCount)

	page, err := s.ListPosts(ctx, storage.PostQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, post.ID, page[0].ID, "newest post comes first")

	_, err = s.AddComment(ctx, models.Comment{
		ID: uuid.NewString(), PostID: post.ID, UserID: u.ID, UserName: u.DisplayName, Content: "first", CreatedAt: base,
	})
	require.NoError(t, err)
	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	found, err := s.FindPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.CommentCount)

	require.NoError(t, s.DeletePost(ctx, post.ID))
	comments, err = s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}
