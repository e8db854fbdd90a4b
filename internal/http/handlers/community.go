package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/http/respond"
	"github.com/hongminglow/skillpath-be/internal/models/dto"
	"github.com/hongminglow/skillpath-be/internal/service"
)

// CommunityHandler serves the feed, likes and comments.
type CommunityHandler struct {
	community *service.Community
	log       *zap.Logger
}

func NewCommunityHandler(community *service.Community, log *zap.Logger) *CommunityHandler {
	return &CommunityHandler{community: community, log: log.Named("community")}
}

// Register attaches community routes behind guard.
func (h *CommunityHandler) Register(mux *http.ServeMux, guard Guard) {
	mux.Handle("GET /posts", guard(http.HandlerFunc(h.handleFeed)))
	mux.Handle("POST /posts", guard(http.HandlerFunc(h.handleCreate)))
	mux.Handle("DELETE /posts/{id}", guard(http.HandlerFunc(h.handleDelete)))
	mux.Handle("POST /posts/{id}/like", guard(http.HandlerFunc(h.handleLike)))
	mux.Handle("GET /posts/{id}/comments", guard(http.HandlerFunc(h.handleComments)))
	mux.Handle("POST /posts/{id}/comments", guard(http.HandlerFunc(h.handleComment)))
}

func (h *CommunityHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respond.Validation(w, "limit must be a positive integer", map[string][]string{"limit": {"limit must be a positive integer"}})
			return
		}
		limit = n
	}
	page, err := h.community.Feed(r.Context(), q.Get("cursor"), limit)
	if err != nil {
		writeError(w, h.log, err, "Failed to load posts.")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.NewFeedResponse(page, userID))
}

func (h *CommunityHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.CreatePostRequest
	if !decodeJSON(w, r, maxPostBodyBytes, &req) {
		return
	}
	post, err := h.community.CreatePost(r.Context(), userID, req.Content, req.MediaURL, req.MediaType)
	if err != nil {
		writeError(w, h.log, err, "Failed to create post.")
		return
	}
	respond.JSON(w, http.StatusCreated, "Post created.", dto.PostView{Post: post})
}

func (h *CommunityHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.community.DeletePost(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.log, err, "Failed to delete post.")
		return
	}
	respond.JSON(w, http.StatusOK, "Post deleted.", nil)
}

func (h *CommunityHandler) handleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	post, liked, err := h.community.ToggleLike(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err, "Failed to update like.")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.LikeResponse{Liked: liked, LikeCount: post.LikeCount})
}

func (h *CommunityHandler) handleComments(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	comments, err := h.community.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, err, "Failed to load comments.")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", comments)
}

func (h *CommunityHandler) handleComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	comment, err := h.community.AddComment(r.Context(), userID, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, h.log, err, "Failed to add comment.")
		return
	}
	respond.JSON(w, http.StatusCreated, "Comment added.", comment)
}
