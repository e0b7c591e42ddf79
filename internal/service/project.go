package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// ProjectService handles admin edits to projects. Every successful write
// is followed by a catalog refresh; the cache is rebuilt from the store
// rather than patched.
type ProjectService struct {
	store   repository.Store
	catalog *CatalogService
	logger  *slog.Logger
}

func NewProjectService(store repository.Store, catalog *CatalogService, logger *slog.Logger) *ProjectService {
	return &ProjectService{store: store, catalog: catalog, logger: logger}
}

func trimProjectFields(f model.ProjectFields) model.ProjectFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.ImagePath = strings.TrimSpace(f.ImagePath)
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.DemoURL = strings.TrimSpace(f.DemoURL)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

func (s *ProjectService) Create(ctx context.Context, f model.ProjectFields) (*model.Project, error) {
	f = trimProjectFields(f)
	f.ID = ""
	p := model.NewProject(f)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !s.store.Configured() {
		return nil, apperror.NotConfigured("document store")
	}

	if err := s.store.Projects().Create(ctx, &p); err != nil {
		s.logger.Error("failed to create project",
			slog.String("title", p.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/project: creating: %w", err)
	}

	s.logger.Info("project created", slog.String("id", p.ID))
	s.catalog.Refresh(ctx)
	return &p, nil
}

// Update replaces the editable fields of an existing project. CreatedAt is
// kept from the stored record.
func (s *ProjectService) Update(ctx context.Context, id string, f model.ProjectFields) (*model.Project, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "project ID is required")
	}
	f = trimProjectFields(f)
	f.ID = id
	p := model.NewProject(f)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !s.store.Configured() {
		return nil, apperror.NotConfigured("document store")
	}

	existing, err := s.store.Projects().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/project: loading %s: %w", id, err)
	}
	p.CreatedAt = existing.CreatedAt

	if err := s.store.Projects().Update(ctx, &p); err != nil {
		s.logger.Error("failed to update project",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/project: updating %s: %w", id, err)
	}

	s.logger.Info("project updated", slog.String("id", id))
	s.catalog.Refresh(ctx)
	return &p, nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "project ID is required")
	}
	if !s.store.Configured() {
		return apperror.NotConfigured("document store")
	}

	if err := s.store.Projects().Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete project",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/project: deleting %s: %w", id, err)
	}

	s.logger.Info("project deleted", slog.String("id", id))
	s.catalog.Refresh(ctx)
	return nil
}
