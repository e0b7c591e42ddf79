package surreal

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

type commentTable struct {
	s *Store
}

var _ repository.CommentRepository = (*commentTable)(nil)

// Create stores a comment with a server-side timestamp and copies the
// stored record back into c.
func (t *commentTable) Create(ctx context.Context, c *model.Comment) error {
	id := xid.New().String()

	rows, err := t.s.query(ctx,
		`CREATE $rid SET content = $content, userName = $userName,
			isAdmin = $isAdmin, isPinned = $isPinned, createdAt = time::now()`,
		map[string]any{
			"rid":      recordID(tableComments, id),
			"content":  c.Content,
			"userName": c.AuthorName,
			"isAdmin":  c.IsAdmin,
			"isPinned": c.IsPinned,
		},
	)
	if err != nil {
		return fmt.Errorf("surreal: creating comment: %w", err)
	}

	c.ID = id
	if len(rows) > 0 {
		stored := commentFromRow(rows[0])
		c.CreatedAt = stored.CreatedAt
	}
	return nil
}

func (t *commentTable) List(ctx context.Context, opts repository.ListOptions) ([]model.Comment, error) {
	sql := `SELECT * FROM type::table($tb) ORDER BY createdAt DESC`
	vars := map[string]any{"tb": tableComments}
	if opts.Limit > 0 {
		sql += ` LIMIT $limit START $start`
		vars["limit"] = opts.Limit
		vars["start"] = max(opts.Offset, 0)
	}

	rows, err := t.s.query(ctx, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("surreal: listing comments: %w", err)
	}

	out := make([]model.Comment, 0, len(rows))
	for _, row := range rows {
		out = append(out, commentFromRow(row))
	}
	return out, nil
}

func (t *commentTable) SetPinned(ctx context.Context, id string, pinned bool) error {
	rows, err := t.s.query(ctx, `UPDATE $rid SET isPinned = $pinned`, map[string]any{
		"rid":    recordID(tableComments, id),
		"pinned": pinned,
	})
	if err != nil {
		return fmt.Errorf("surreal: pinning comment %s: %w", id, err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}

func (t *commentTable) Delete(ctx context.Context, id string) error {
	rows, err := t.s.query(ctx, `DELETE $rid RETURN BEFORE`, map[string]any{
		"rid": recordID(tableComments, id),
	})
	if err != nil {
		return fmt.Errorf("surreal: deleting comment %s: %w", id, err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("comment", id)
	}
	return nil
}
