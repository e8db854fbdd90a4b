package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const postColumns = `id, user_id, user_name, user_photo_url, content, media_url, media_type,
	like_count, liked_by, comment_count, created_at`

// CreatePost inserts a feed post.
func (s *Store) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	likedBy := p.LikedBy
	if likedBy == nil {
		likedBy = []string{}
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, user_name, user_photo_url, content, media_url, media_type,
			like_count, liked_by, comment_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+postColumns,
		p.ID, p.UserID, p.UserName, p.UserPhotoURL, p.Content, p.MediaURL, p.MediaType,
		len(likedBy), likedBy, p.CommentCount, p.CreatedAt)
	created, err := scanPost(row)
	if err != nil && isUniqueViolation(err) {
		return models.Post{}, storage.ErrAlreadyExists
	}
	return created, err
}

// FindPost fetches a post by id.
func (s *Store) FindPost(ctx context.Context, id string) (models.Post, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	return scanPost(row)
}

// ListPosts returns one feed page using keyset pagination.
func (s *Store) ListPosts(ctx context.Context, q storage.PostQuery) ([]models.Post, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if q.After == nil {
		rows, err = s.pool.Query(ctx,
			`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC LIMIT $1`, q.Limit)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT `+postColumns+` FROM posts
			WHERE (created_at, id) < ($1, $2)
			ORDER BY created_at DESC, id DESC LIMIT $3`,
			q.After.CreatedAt, q.After.ID, q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	out := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeletePost removes a post; comments go with it through the foreign key.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.execOne(ctx, `DELETE FROM posts WHERE id = $1`, id)
}

// ToggleLike flips the user's membership in liked_by inside a row-locking transaction.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (models.Post, bool, error) {
	var (
		post  models.Post
		liked bool
	)
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var likedBy []string
		if err := tx.QueryRow(ctx, `SELECT liked_by FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&likedBy); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return storage.ErrNotFound
			}
			return err
		}
		liked = !contains(likedBy, userID)
		stmt := `UPDATE posts SET liked_by = array_remove(liked_by, $2), like_count = like_count - 1
			WHERE id = $1 RETURNING ` + postColumns
		if liked {
			stmt = `UPDATE posts SET liked_by = array_append(liked_by, $2), like_count = like_count + 1
				WHERE id = $1 RETURNING ` + postColumns
		}
		var err error
		post, err = scanPost(tx.QueryRow(ctx, stmt, postID, userID))
		return err
	})
	if err != nil {
		return models.Post{}, false, err
	}
	return post, liked, nil
}

// AddComment inserts the comment and bumps the post's comment count in one transaction.
func (s *Store) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = $1`, c.PostID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO comments (id, post_id, user_id, user_name, user_photo_url, content, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			c.ID, c.PostID, c.UserID, c.UserName, c.UserPhotoURL, c.Content, c.CreatedAt)
		return err
	})
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListComments returns a post's comments oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, post_id, user_id, user_name, user_photo_url, content, created_at
		FROM comments WHERE post_id = $1 ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.UserName, &c.UserPhotoURL, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.UserID, &p.UserName, &p.UserPhotoURL, &p.Content, &p.MediaURL, &p.MediaType,
		&p.LikeCount, &p.LikedBy, &p.CommentCount, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Post{}, storage.ErrNotFound
		}
		return models.Post{}, err
	}
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	return p, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
