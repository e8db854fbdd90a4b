package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// toggleAttempts bounds the like/unlike race loop; each attempt is a
// conditional single-document update.
const toggleAttempts = 5

// CreatePost inserts a post document.
func (s *Store) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	p.LikeCount = len(p.LikedBy)
	if _, err := s.posts.InsertOne(ctx, p); err != nil {
		return models.Post{}, mapErr(err)
	}
	return p, nil
}

// FindPost fetches a post by id.
func (s *Store) FindPost(ctx context.Context, id string) (models.Post, error) {
	var p models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Post{}, mapErr(err)
	}
	return normalizePost(p), nil
}

// ListPosts returns one feed page using keyset pagination.
func (s *Store) ListPosts(ctx context.Context, q storage.PostQuery) ([]models.Post, error) {
	filter := bson.M{}
	if q.After != nil {
		filter = bson.M{"$or": bson.A{
			bson.M{"createdAt": bson.M{"$lt": q.After.CreatedAt}},
			bson.M{"createdAt": q.After.CreatedAt, "_id": bson.M{"$lt": q.After.ID}},
		}}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(q.Limit))
	cur, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	for i := range out {
		out[i] = normalizePost(out[i])
	}
	return out, nil
}

// DeletePost removes the post and its comments.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	if _, err := s.comments.DeleteMany(ctx, bson.M{"postId": id}); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

// ToggleLike removes the like when present, otherwise adds it. Both branches
// are guarded on likedBy membership so the count moves exactly once per user.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (models.Post, bool, error) {
	for i := 0; i < toggleAttempts; i++ {
		var p models.Post
		err := s.posts.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likedBy": userID},
			bson.M{"$pull": bson.M{"likedBy": userID}, "$inc": bson.M{"likeCount": -1}},
			returnAfter(),
		).Decode(&p)
		if err == nil {
			return normalizePost(p), false, nil
		}
		if mapErr(err) != storage.ErrNotFound {
			return models.Post{}, false, err
		}

		err = s.posts.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likedBy": bson.M{"$ne": userID}},
			bson.M{"$push": bson.M{"likedBy": userID}, "$inc": bson.M{"likeCount": 1}},
			returnAfter(),
		).Decode(&p)
		if err == nil {
			return normalizePost(p), true, nil
		}
		if mapErr(err) != storage.ErrNotFound {
			return models.Post{}, false, err
		}

		if _, err := s.FindPost(ctx, postID); err != nil {
			return models.Post{}, false, err
		}
	}
	return models.Post{}, false, storage.ErrConflict
}

// AddComment inserts the comment and increments the post's comment count.
func (s *Store) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	res, err := s.posts.UpdateOne(ctx, bson.M{"_id": c.PostID}, bson.M{"$inc": bson.M{"commentCount": 1}})
	if err != nil {
		return models.Comment{}, mapErr(err)
	}
	if res.MatchedCount == 0 {
		return models.Comment{}, storage.ErrNotFound
	}
	if _, err := s.comments.InsertOne(ctx, c); err != nil {
		_, _ = s.posts.UpdateOne(ctx, bson.M{"_id": c.PostID}, bson.M{"$inc": bson.M{"commentCount": -1}})
		return models.Comment{}, mapErr(err)
	}
	return c, nil
}

// ListComments returns a post's comments oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return out, nil
}

func normalizePost(p models.Post) models.Post {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	return p
}
