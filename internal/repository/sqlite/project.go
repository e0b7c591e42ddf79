package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// ProjectDB is the projects table.
type ProjectDB struct {
	conn *sql.DB
}

var _ repository.ProjectRepository = (*ProjectDB)(nil)

const projectColumns = `id, title, description, image_path, tech_stack, features,
	github_url, demo_url, category, featured, created_at, updated_at`

// Create inserts a project under a new xid.
func (r *ProjectDB) Create(ctx context.Context, p *model.Project) error {
	p.ID = xid.New().String()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := r.insert(ctx, p, false); err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}
	return nil
}

// Upsert writes p under p.ID, replacing any existing row. CreatedAt is kept
// from p when set, so seeding the same dataset twice is stable.
func (r *ProjectDB) Upsert(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		return apperror.ValidationFailed("id", "project ID is required for upsert")
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := r.insert(ctx, p, true); err != nil {
		return fmt.Errorf("sqlite: upserting project %s: %w", p.ID, err)
	}
	return nil
}

func (r *ProjectDB) insert(ctx context.Context, p *model.Project, replace bool) error {
	techStack, err := encodeList(p.TechStack)
	if err != nil {
		return err
	}
	features, err := encodeList(p.Features)
	if err != nil {
		return err
	}

	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = r.conn.ExecContext(ctx,
		verb+` INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.ImagePath, techStack, features,
		p.GithubURL, p.DemoURL, p.Category, boolToInt(p.Featured),
		p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProjectDB) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return p, nil
}

// List returns every project, newest first.
func (r *ProjectDB) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

func (r *ProjectDB) Update(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now()

	techStack, err := encodeList(p.TechStack)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", p.ID, err)
	}
	features, err := encodeList(p.Features)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", p.ID, err)
	}

	result, err := r.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, image_path = ?, tech_stack = ?, features = ?,
		     github_url = ?, demo_url = ?, category = ?, featured = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.ImagePath, techStack, features,
		p.GithubURL, p.DemoURL, p.Category, boolToInt(p.Featured), p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", p.ID, err)
	}

	return requireAffected(result, "project", p.ID)
}

func (r *ProjectDB) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return requireAffected(result, "project", id)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*model.Project, error) {
	var (
		p                   model.Project
		techStack, features string
		featured            int
	)
	if err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.ImagePath, &techStack, &features,
		&p.GithubURL, &p.DemoURL, &p.Category, &featured, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.TechStack, err = decodeList(techStack); err != nil {
		return nil, err
	}
	if p.Features, err = decodeList(features); err != nil {
		return nil, err
	}
	p.Featured = featured != 0
	return &p, nil
}

// requireAffected turns a zero-row UPDATE or DELETE into NotFound.
func requireAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
