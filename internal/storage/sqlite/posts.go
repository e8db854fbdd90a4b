package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const postColumns = `id, user_id, user_name, user_photo_url, content, media_url, media_type,
	like_count, comment_count, created_at`

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreatePost inserts a feed post.
func (s *Store) CreatePost(ctx context.Context, p models.Post) (models.Post, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.UserID, p.UserName, p.UserPhotoURL, p.Content, p.MediaURL, p.MediaType,
			len(p.LikedBy), p.CommentCount, toMicros(p.CreatedAt))
		if err != nil {
			return err
		}
		for _, uid := range p.LikedBy {
			if _, err := tx.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id, liked_at) VALUES (?, ?, ?)`,
				p.ID, uid, toMicros(p.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.Post{}, storage.ErrAlreadyExists
		}
		return models.Post{}, err
	}
	return s.FindPost(ctx, p.ID)
}

// FindPost fetches a post by id.
func (s *Store) FindPost(ctx context.Context, id string) (models.Post, error) {
	return findPost(ctx, s.db, id)
}

func findPost(ctx context.Context, q queryer, id string) (models.Post, error) {
	p, err := scanPost(q.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return models.Post{}, err
	}
	if p.LikedBy, err = likedBy(ctx, q, id); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListPosts returns one feed page using keyset pagination.
func (s *Store) ListPosts(ctx context.Context, q storage.PostQuery) ([]models.Post, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if q.After == nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id DESC LIMIT ?`, q.Limit)
	} else {
		at := toMicros(q.After.CreatedAt)
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+postColumns+` FROM posts
			WHERE created_at < ? OR (created_at = ? AND id < ?)
			ORDER BY created_at DESC, id DESC LIMIT ?`,
			at, at, q.After.ID, q.Limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	out := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Like sets are read after the page cursor is released; the pool has one connection.
	for i := range out {
		if out[i].LikedBy, err = likedBy(ctx, s.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DeletePost removes a post together with its likes and comments.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	return execOne(ctx, s.db, `DELETE FROM posts WHERE id = ?`, id)
}

// ToggleLike flips the user's like inside a transaction.
func (s *Store) ToggleLike(ctx context.Context, postID, userID string) (models.Post, bool, error) {
	var (
		post  models.Post
		liked bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
			return notFound(err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}
		delta := -1
		if removed == 0 {
			liked, delta = true, 1
			if _, err := tx.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id, liked_at) VALUES (?, ?, ?)`,
				postID, userID, toMicros(time.Now())); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE posts SET like_count = like_count + ? WHERE id = ?`, delta, postID); err != nil {
			return err
		}
		post, err = findPost(ctx, tx, postID)
		return err
	})
	if err != nil {
		return models.Post{}, false, err
	}
	return post, liked, nil
}

// AddComment inserts the comment and bumps the post's comment count.
func (s *Store) AddComment(ctx context.Context, c models.Comment) (models.Comment, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := execOne(ctx, tx, `UPDATE posts SET comment_count = comment_count + 1 WHERE id = ?`, c.PostID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comments (id, post_id, user_id, user_name, user_photo_url, content, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PostID, c.UserID, c.UserName, c.UserPhotoURL, c.Content, toMicros(c.CreatedAt))
		return err
	})
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// ListComments returns a post's comments oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, user_id, user_name, user_photo_url, content, created_at
		FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var (
			c       models.Comment
			created int64
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.UserName, &c.UserPhotoURL, &c.Content, &created); err != nil {
			return nil, err
		}
		c.CreatedAt = fromMicros(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

func likedBy(ctx context.Context, q queryer, postID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY liked_at ASC, user_id ASC`, postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}

func scanPost(row rowScanner) (models.Post, error) {
	var (
		p       models.Post
		created int64
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.UserName, &p.UserPhotoURL, &p.Content, &p.MediaURL, &p.MediaType,
		&p.LikeCount, &p.CommentCount, &created); err != nil {
		return models.Post{}, notFound(err)
	}
	p.CreatedAt = fromMicros(created)
	return p, nil
}
