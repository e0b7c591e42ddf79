package surreal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

type projectTable struct {
	s *Store
}

var _ repository.ProjectRepository = (*projectTable)(nil)

func (t *projectTable) decode(rows []map[string]any) []model.Project {
	out := make([]model.Project, 0, len(rows))
	for _, row := range rows {
		p, unknown := model.NormalizeProject(flatten(row))
		if len(unknown) > 0 {
			t.s.logger.Debug("dropping unrecognized project fields",
				slog.String("id", p.ID),
				slog.Any("fields", unknown),
			)
		}
		out = append(out, p)
	}
	return out
}

func (t *projectTable) Create(ctx context.Context, p *model.Project) error {
	p.ID = xid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := t.s.query(ctx, `CREATE $rid CONTENT $doc`, map[string]any{
		"rid": recordID(tableProjects, p.ID),
		"doc": projectDocument(p),
	})
	if err != nil {
		return fmt.Errorf("surreal: creating project: %w", err)
	}
	return nil
}

func (t *projectTable) Upsert(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		return apperror.ValidationFailed("id", "project ID is required for upsert")
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := t.s.query(ctx, `UPSERT $rid CONTENT $doc`, map[string]any{
		"rid": recordID(tableProjects, p.ID),
		"doc": projectDocument(p),
	})
	if err != nil {
		return fmt.Errorf("surreal: upserting project %s: %w", p.ID, err)
	}
	return nil
}

func (t *projectTable) GetByID(ctx context.Context, id string) (*model.Project, error) {
	rows, err := t.s.query(ctx, `SELECT * FROM $rid`, map[string]any{
		"rid": recordID(tableProjects, id),
	})
	if err != nil {
		return nil, fmt.Errorf("surreal: getting project %s: %w", id, err)
	}
	projects := t.decode(rows)
	if len(projects) == 0 {
		return nil, apperror.NotFound("project", id)
	}
	return &projects[0], nil
}

func (t *projectTable) List(ctx context.Context) ([]model.Project, error) {
	rows, err := t.s.query(ctx,
		`SELECT * FROM type::table($tb) ORDER BY createdAt DESC`,
		map[string]any{"tb": tableProjects},
	)
	if err != nil {
		return nil, fmt.Errorf("surreal: listing projects: %w", err)
	}
	return t.decode(rows), nil
}

func (t *projectTable) Update(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now().UTC()

	rows, err := t.s.query(ctx, `UPDATE $rid MERGE $doc`, map[string]any{
		"rid": recordID(tableProjects, p.ID),
		"doc": projectDocument(p),
	})
	if err != nil {
		return fmt.Errorf("surreal: updating project %s: %w", p.ID, err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("project", p.ID)
	}
	return nil
}

func (t *projectTable) Delete(ctx context.Context, id string) error {
	rows, err := t.s.query(ctx, `DELETE $rid RETURN BEFORE`, map[string]any{
		"rid": recordID(tableProjects, id),
	})
	if err != nil {
		return fmt.Errorf("surreal: deleting project %s: %w", id, err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("project", id)
	}
	return nil
}
