package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/conduit/internal/model"
	"github.com/sakif/conduit/internal/repository"
)

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, body, author_id, article_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Body,
		comment.AuthorID,
		comment.ArticleID,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

// ListComments returns an article's comments with their author summaries,
// oldest first so a thread reads top to bottom.
func (db *DB) ListComments(ctx context.Context, articleID string) ([]model.CommentView, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.id, c.body, c.created_at, c.updated_at,
		        u.username, u.bio, u.image
		 FROM comments c
		 JOIN users u ON u.id = c.author_id
		 WHERE c.article_id = ?
		 ORDER BY c.created_at ASC, c.id ASC`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.CommentView{}
	for rows.Next() {
		var c model.CommentView
		if err := rows.Scan(
			&c.ID,
			&c.Body,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.Author.Username,
			&c.Author.Bio,
			&c.Author.Image,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
