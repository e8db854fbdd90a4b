package service

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const (
	// DefaultPageSize is the feed page size when none is requested.
	DefaultPageSize = 5
	// MaxPageSize caps the requested feed page size.
	MaxPageSize = 50
	// MaxMediaBytes is the largest decoded media attachment accepted.
	MaxMediaBytes = 5 << 20

	anonymousAuthor = "Anonymous"
)

// Community runs the feed: posts, likes and comments.
type Community struct {
	posts storage.PostStore
	users storage.UserStore
	log   *zap.Logger
	env   env
}

// NewCommunity constructs the community service.
func NewCommunity(posts storage.PostStore, users storage.UserStore, log *zap.Logger) *Community {
	return &Community{posts: posts, users: users, log: log.Named("community"), env: defaultEnv()}
}

// CreatePost publishes a post authored by userID.
func (c *Community) CreatePost(ctx context.Context, userID, content, mediaURL, mediaType string) (models.Post, error) {
	content = strings.TrimSpace(content)
	mediaURL = strings.TrimSpace(mediaURL)
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if content == "" && mediaURL == "" {
		return models.Post{}, invalid("content", "Cannot create an empty post.")
	}
	if mediaURL != "" {
		if err := validateMedia(mediaURL, mediaType); err != nil {
			return models.Post{}, err
		}
	} else {
		mediaType = ""
	}

	name, photo := c.author(ctx, userID)
	return c.posts.CreatePost(ctx, models.Post{
		ID:           c.env.newID(),
		UserID:       userID,
		UserName:     name,
		UserPhotoURL: photo,
		Content:      content,
		MediaURL:     mediaURL,
		MediaType:    mediaType,
		LikedBy:      []string{},
		CreatedAt:    c.env.timestamp(),
	})
}

// Feed returns one page of posts after the given cursor token.
func (c *Community) Feed(ctx context.Context, cursor string, limit int) (models.FeedPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	q := storage.PostQuery{Limit: limit + 1}
	if cursor != "" {
		after, err := models.DecodeCursor(cursor)
		if err != nil {
			return models.FeedPage{}, invalid("cursor", "Invalid cursor.")
		}
		q.After = after
	}

	posts, err := c.posts.ListPosts(ctx, q)
	if err != nil {
		return models.FeedPage{}, err
	}
	page := models.FeedPage{Posts: posts}
	if len(posts) > limit {
		page.Posts = posts[:limit]
		page.HasMore = true
	}
	if page.Posts == nil {
		page.Posts = []models.Post{}
	}
	if page.HasMore {
		page.NextCursor = models.CursorAfter(page.Posts[len(page.Posts)-1]).Encode()
	}
	return page, nil
}

// DeletePost removes a post owned by userID together with its comments.
func (c *Community) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := c.posts.FindPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	return c.posts.DeletePost(ctx, postID)
}

// ToggleLike likes or unlikes a post for userID.
func (c *Community) ToggleLike(ctx context.Context, userID, postID string) (models.Post, bool, error) {
	return c.posts.ToggleLike(ctx, postID, userID)
}

// Comments lists a post's comments, oldest first.
func (c *Community) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := c.posts.FindPost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := c.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// AddComment appends a comment by userID to a post.
func (c *Community) AddComment(ctx context.Context, userID, postID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, invalid("content", "Cannot post an empty comment.")
	}
	if _, err := c.posts.FindPost(ctx, postID); err != nil {
		return models.Comment{}, err
	}
	name, photo := c.author(ctx, userID)
	return c.posts.AddComment(ctx, models.Comment{
		ID:           c.env.newID(),
		PostID:       postID,
		UserID:       userID,
		UserName:     name,
		UserPhotoURL: photo,
		Content:      content,
		CreatedAt:    c.env.timestamp(),
	})
}

// author resolves the denormalized name and photo stored on posts and comments.
func (c *Community) author(ctx context.Context, userID string) (string, string) {
	user, err := c.users.FindUserByID(ctx, userID)
	if err != nil {
		c.log.Warn("author lookup failed", zap.String("user_id", userID), zap.Error(err))
		return anonymousAuthor, ""
	}
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = anonymousAuthor
	}
	return name, user.PhotoURL
}

// validateMedia accepts base64 data URLs of an image or video no larger than MaxMediaBytes.
func validateMedia(mediaURL, mediaType string) error {
	header, payload, ok := strings.Cut(mediaURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return invalid("mediaUrl", "Media must be an uploaded image or video.")
	}
	mime := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	kind, _, _ := strings.Cut(mime, "/")
	kind = strings.ToLower(kind)
	if kind != models.MediaImage && kind != models.MediaVideo {
		return invalid("mediaUrl", "Media must be an uploaded image or video.")
	}
	if mediaType != kind {
		return invalid("mediaType", "Media type does not match the uploaded file.")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxMediaBytes+2 {
		return invalid("mediaUrl", "Media must be 5 MB or smaller.")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return invalid("mediaUrl", "Media must be an uploaded image or video.")
	}
	if len(decoded) > MaxMediaBytes {
		return invalid("mediaUrl", "Media must be 5 MB or smaller.")
	}
	return nil
}
