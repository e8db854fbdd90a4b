package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

type communityFixture struct {
	community *Community
	userID    string
	otherID   string
}

func newCommunityFixture(t testing.TB) communityFixture {
	t.Helper()
	store := newStore(t)
	accounts := NewAccounts(store, zap.NewNop())
	u, err := accounts.Register(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	other, err := accounts.Register(context.Background(), "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	c := NewCommunity(store, store, zap.NewNop())
	c.env.now = newClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)).Now
	return communityFixture{community: c, userID: u.ID, otherID: other.ID}
}

func dataURL(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestCreatePost(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()

	_, err := f.community.CreatePost(ctx, f.userID, "   ", "", "")
	requireValidation(t, err, "content")

	post, err := f.community.CreatePost(ctx, f.userID, "  Finished my first roadmap phase! ", "", "image")
	require.NoError(t, err)
	assert.Equal(t, "Finished my first roadmap phase!", post.Content)
	assert.Equal(t, "Ada", post.UserName)
	assert.Empty(t, post.MediaType, "media type without media is dropped")
	assert.Zero(t, post.LikeCount)
	assert.Empty(t, post.LikedBy)
	assert.Zero(t, post.CommentCount)

	withImage, err := f.community.CreatePost(ctx, f.userID, "", dataURL("image/png", []byte("png-bytes")), "image")
	require.NoError(t, err)
	assert.Equal(t, models.MediaImage, withImage.MediaType)
}

func TestCreatePostMediaValidation(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()

	cases := []struct {
		name, url, kind, field string
	}{
		{"remote url", "https://example.com/cat.png", "image", "mediaUrl"},
		{"not base64", "data:image/png,raw", "image", "mediaUrl"},
		{"wrong mime", dataURL("text/plain", []byte("hi")), "image", "mediaUrl"},
		{"type mismatch", dataURL("video/mp4", []byte("mp4")), "image", "mediaType"},
		{"bad payload", "data:image/png;base64,***", "image", "mediaUrl"},
		{"too large", dataURL("image/png", make([]byte, MaxMediaBytes+1)), "image", "mediaUrl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.community.CreatePost(ctx, f.userID, "caption", tc.url, tc.kind)
			requireValidation(t, err, tc.field)
		})
	}

	_, err := f.community.CreatePost(ctx, f.userID, "", dataURL("video/mp4", []byte("mp4")), "VIDEO")
	require.NoError(t, err)
}

func TestFeedPagination(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()
	var want []string
	for i := 0; i < 12; i++ {
		p, err := f.community.CreatePost(ctx, f.userID, fmt.Sprintf("post %d", i), "", "")
		require.NoError(t, err)
		want = append([]string{p.ID}, want...)
	}

	var (
		got    []string
		cursor string
		sizes  []int
	)
	for {
		page, err := f.community.Feed(ctx, cursor, 0)
		require.NoError(t, err)
		sizes = append(sizes, len(page.Posts))
		for _, p := range page.Posts {
			got = append(got, p.ID)
		}
		if !page.HasMore {
			assert.Empty(t, page.NextCursor)
			break
		}
		require.NotEmpty(t, page.NextCursor)
		cursor = page.NextCursor
	}
	assert.Equal(t, []int{5, 5, 2}, sizes)
	assert.Equal(t, want, got, "pages are disjoint, newest first, and cover the feed")

	page, err := f.community.Feed(ctx, "", 500)
	require.NoError(t, err)
	assert.Len(t, page.Posts, 12)
	assert.False(t, page.HasMore)

	_, err = f.community.Feed(ctx, "not a cursor", 5)
	requireValidation(t, err, "cursor")
}

func TestFeedCapsPageSize(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()
	for i := 0; i < MaxPageSize+1; i++ {
		_, err := f.community.CreatePost(ctx, f.userID, "x", "", "")
		require.NoError(t, err)
	}
	page, err := f.community.Feed(ctx, "", MaxPageSize*2)
	require.NoError(t, err)
	assert.Len(t, page.Posts, MaxPageSize)
	assert.True(t, page.HasMore)
}

func TestEmptyFeed(t *testing.T) {
	f := newCommunityFixture(t)
	page, err := f.community.Feed(context.Background(), "", 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Posts)
	assert.Empty(t, page.Posts)
	assert.False(t, page.HasMore)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()
	post, err := f.community.CreatePost(ctx, f.userID, "mine", "", "")
	require.NoError(t, err)
	_, err = f.community.AddComment(ctx, f.otherID, post.ID, "nice")
	require.NoError(t, err)

	assert.ErrorIs(t, f.community.DeletePost(ctx, f.otherID, post.ID), ErrForbidden)
	require.NoError(t, f.community.DeletePost(ctx, f.userID, post.ID))
	assert.ErrorIs(t, f.community.DeletePost(ctx, f.userID, post.ID), storage.ErrNotFound)

	_, err = f.community.Comments(ctx, post.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestComments(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()
	post, err := f.community.CreatePost(ctx, f.userID, "question about Go", "", "")
	require.NoError(t, err)

	_, err = f.community.AddComment(ctx, f.otherID, post.ID, "  ")
	requireValidation(t, err, "content")
	_, err = f.community.AddComment(ctx, f.otherID, "missing", "hello")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	first, err := f.community.AddComment(ctx, f.otherID, post.ID, " Try the tour ")
	require.NoError(t, err)
	assert.Equal(t, "Try the tour", first.Content)
	assert.Equal(t, "Bob", first.UserName)
	_, err = f.community.AddComment(ctx, f.userID, post.ID, "thanks")
	require.NoError(t, err)

	comments, err := f.community.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)

	page, err := f.community.Feed(ctx, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Posts[0].CommentCount)
}

func TestAuthorFallsBackToAnonymous(t *testing.T) {
	f := newCommunityFixture(t)
	post, err := f.community.CreatePost(context.Background(), "ghost", "who am I", "", "")
	require.NoError(t, err)
	assert.Equal(t, anonymousAuthor, post.UserName)
}

func TestLikeCountMatchesLikedByProperty(t *testing.T) {
	f := newCommunityFixture(t)
	ctx := context.Background()
	users := []string{"u1", "u2", "u3", "u4"}

	rapid.Check(t, func(rt *rapid.T) {
		post, err := f.community.CreatePost(ctx, f.userID, "like me "+uuid.NewString(), "", "")
		if err != nil {
			rt.Fatalf("create post: %v", err)
		}
		want := map[string]bool{}
		toggles := rapid.SliceOfN(rapid.SampledFrom(users), 1, 20).Draw(rt, "toggles")
		for _, u := range toggles {
			got, liked, err := f.community.ToggleLike(ctx, u, post.ID)
			if err != nil {
				rt.Fatalf("toggle: %v", err)
			}
			want[u] = !want[u]
			if liked != want[u] {
				rt.Fatalf("user %s liked=%v, want %v", u, liked, want[u])
			}
			if got.LikeCount != len(got.LikedBy) {
				rt.Fatalf("likeCount %d != len(likedBy) %d", got.LikeCount, len(got.LikedBy))
			}
			if got.LikedByUser(u) != want[u] {
				rt.Fatalf("likedBy out of sync for %s: %v", u, got.LikedBy)
			}
		}
		expected := 0
		for _, v := range want {
			if v {
				expected++
			}
		}
		final, err := f.community.posts.FindPost(ctx, post.ID)
		if err != nil {
			rt.Fatalf("find: %v", err)
		}
		if final.LikeCount != expected {
			rt.Fatalf("likeCount %d, want %d (%s)", final.LikeCount, expected, strings.Join(toggles, ","))
		}
	})
}

func TestToggleLikeMissingPost(t *testing.T) {
	f := newCommunityFixture(t)
	_, _, err := f.community.ToggleLike(context.Background(), f.userID, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
