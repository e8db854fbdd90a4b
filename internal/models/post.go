package models

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Media types accepted on posts.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Post is a community feed entry.
type Post struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"userId" bson:"userId"`
	UserName     string    `json:"userName" bson:"userName"`
	UserPhotoURL string    `json:"userPhotoURL" bson:"userPhotoURL"`
	Content      string    `json:"content" bson:"content"`
	MediaURL     string    `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`
	MediaType    string    `json:"mediaType,omitempty" bson:"mediaType,omitempty"`
	LikeCount    int       `json:"likeCount" bson:"likeCount"`
	LikedBy      []string  `json:"likedBy" bson:"likedBy"`
	CommentCount int       `json:"commentCount" bson:"commentCount"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// LikedByUser reports whether userID is in the like set.
func (p Post) LikedByUser(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment belongs to a post and is never edited.
type Comment struct {
	ID           string    `json:"id" bson:"_id"`
	PostID       string    `json:"postId" bson:"postId"`
	UserID       string    `json:"userId" bson:"userId"`
	UserName     string    `json:"userName" bson:"userName"`
	UserPhotoURL string    `json:"userPhotoURL" bson:"userPhotoURL"`
	Content      string    `json:"content" bson:"content"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// ErrInvalidCursor is returned for a cursor that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor marks the last post of a feed page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorAfter returns the cursor positioned after p.
func CursorAfter(p Post) *Cursor {
	return &Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	raw := strconv.FormatInt(c.CreatedAt.UnixMicro(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Encode.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	micros, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &Cursor{CreatedAt: time.UnixMicro(micros).UTC(), ID: id}, nil
}

// FeedPage is one page of the community feed.
type FeedPage struct {
	Posts      []Post `json:"posts"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}
