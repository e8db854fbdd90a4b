package dto

import "github.com/hongminglow/skillpath-be/internal/models"

type CreatePostRequest struct {
	Content   string `json:"content"`
	MediaURL  string `json:"mediaUrl,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

type CreateCommentRequest struct {
	Content string `json:"content"`
}

// PostView is a feed post as seen by the requesting user.
type PostView struct {
	models.Post
	LikedByMe bool `json:"likedByMe"`
}

type FeedResponse struct {
	Posts      []PostView `json:"posts"`
	NextCursor string     `json:"nextCursor,omitempty"`
	HasMore    bool       `json:"hasMore"`
}

func NewFeedResponse(page models.FeedPage, userID string) FeedResponse {
	views := make([]PostView, len(page.Posts))
	for i, p := range page.Posts {
		views[i] = PostView{Post: p, LikedByMe: p.LikedByUser(userID)}
	}
	return FeedResponse{Posts: views, NextCursor: page.NextCursor, HasMore: page.HasMore}
}
