// Package repository declares the storage contracts the services depend on.
//
// Two backends implement them: repository/sqlite (single-node, the same
// database file that backs the local cache) and repository/surreal (a
// SurrealDB document store). Services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/sakif/portfolio/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// CertificateFilter narrows List. An empty Category matches everything.
type CertificateFilter struct {
	Category string
}

// ProjectRepository stores projects. List returns newest first.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	// Upsert writes a project under its existing ID, creating it if absent.
	Upsert(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}

// CertificateRepository stores certificates. List returns the most recent
// year first.
type CertificateRepository interface {
	Create(ctx context.Context, cert *model.Certificate) error
	Upsert(ctx context.Context, cert *model.Certificate) error
	GetByID(ctx context.Context, id string) (*model.Certificate, error)
	List(ctx context.Context, filter CertificateFilter) ([]model.Certificate, error)
	Update(ctx context.Context, cert *model.Certificate) error
	Delete(ctx context.Context, id string) error
}

// CommentRepository stores visitor comments. Create assigns ID and CreatedAt.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	List(ctx context.Context, opts ListOptions) ([]model.Comment, error)
	SetPinned(ctx context.Context, id string, pinned bool) error
	Delete(ctx context.Context, id string) error
}

// Store is a document store backend: the three collections plus a name
// for logs. Configured reports whether the backend has the settings it
// needs; callers skip an unconfigured store instead of calling it.
type Store interface {
	Name() string
	Configured() bool
	Projects() ProjectRepository
	Certificates() CertificateRepository
	Comments() CommentRepository
}
