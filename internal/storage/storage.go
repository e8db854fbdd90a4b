package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/skillpath-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates the record changed since it was read.
var ErrConflict = errors.New("record was modified concurrently")

// UserStore captures persistence operations on users.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) (models.User, error)
	RecordLogin(ctx context.Context, id string, streak int, at time.Time) error
	UpdateProgress(ctx context.Context, id string, overall, milestones int) error
	IncrementAssistantQueries(ctx context.Context, id string) error
}

// RoadmapStore captures persistence operations on saved roadmaps.
type RoadmapStore interface {
	CreateRoadmap(ctx context.Context, roadmap models.Roadmap) (models.Roadmap, error)
	FindRoadmap(ctx context.Context, id string) (models.Roadmap, error)
	// ListRoadmaps returns the user's roadmaps, newest first.
	ListRoadmaps(ctx context.Context, userID string) ([]models.Roadmap, error)
	// UpdatePhases replaces the phases if the stored version still equals
	// roadmap.Version, returning the stored document with the bumped version.
	UpdatePhases(ctx context.Context, roadmap models.Roadmap) (models.Roadmap, error)
	DeleteRoadmap(ctx context.Context, id string) error
}

// PostQuery selects one page of the feed.
type PostQuery struct {
	Limit int
	After *models.Cursor
}

// PostStore captures persistence operations on posts and their comments.
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	FindPost(ctx context.Context, id string) (models.Post, error)
	// ListPosts returns up to q.Limit posts ordered by createdAt desc, id desc,
	// strictly after q.After when set.
	ListPosts(ctx context.Context, q PostQuery) ([]models.Post, error)
	// DeletePost removes the post and its comments.
	DeletePost(ctx context.Context, id string) error
	// ToggleLike atomically adds or removes userID from the like set.
	ToggleLike(ctx context.Context, postID, userID string) (models.Post, bool, error)
	// AddComment appends a comment and increments the post's comment count.
	AddComment(ctx context.Context, comment models.Comment) (models.Comment, error)
	// ListComments returns comments oldest first.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	UserStore
	RoadmapStore
	PostStore
	Close()
}
