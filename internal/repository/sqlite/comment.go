package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// CommentDB is the comments table.
type CommentDB struct {
	conn *sql.DB
}

var _ repository.CommentRepository = (*CommentDB)(nil)

// Create inserts a comment. The store assigns the ID and the timestamp;
// whatever the caller put in those fields is overwritten.
func (r *CommentDB) Create(ctx context.Context, c *model.Comment) error {
	c.ID = xid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = &now

	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO comments (id, content, author_name, is_admin, is_pinned, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Content, c.AuthorName, boolToInt(c.IsAdmin), boolToInt(c.IsPinned), now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

// List returns comments newest first. Pin ordering is applied by the
// service, not here.
func (r *CommentDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Comment, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	offset := max(opts.Offset, 0)

	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, content, author_name, is_admin, is_pinned, created_at
		 FROM comments
		 ORDER BY created_at IS NULL, created_at DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			c               model.Comment
			isAdmin, pinned int
			createdAt       sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Content, &c.AuthorName, &isAdmin, &pinned, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		c.IsAdmin = isAdmin != 0
		c.IsPinned = pinned != 0
		if createdAt.Valid {
			ts := createdAt.Time
			c.CreatedAt = &ts
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func (r *CommentDB) SetPinned(ctx context.Context, id string, pinned bool) error {
	result, err := r.conn.ExecContext(ctx,
		`UPDATE comments SET is_pinned = ? WHERE id = ?`, boolToInt(pinned), id)
	if err != nil {
		return fmt.Errorf("sqlite: pinning comment %s: %w", id, err)
	}
	return requireAffected(result, "comment", id)
}

func (r *CommentDB) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}
	return requireAffected(result, "comment", id)
}
