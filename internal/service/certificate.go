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

// CertificateService handles admin edits to certificates, mirroring
// ProjectService.
type CertificateService struct {
	store   repository.Store
	catalog *CatalogService
	logger  *slog.Logger
}

func NewCertificateService(store repository.Store, catalog *CatalogService, logger *slog.Logger) *CertificateService {
	return &CertificateService{store: store, catalog: catalog, logger: logger}
}

func trimCertificateFields(f model.CertificateFields) model.CertificateFields {
	f.Title = strings.TrimSpace(f.Title)
	f.Issuer = strings.TrimSpace(f.Issuer)
	f.Year = strings.TrimSpace(f.Year)
	f.Category = strings.TrimSpace(f.Category)
	f.Description = strings.TrimSpace(f.Description)
	f.ImagePath = strings.TrimSpace(f.ImagePath)
	f.CredentialURL = strings.TrimSpace(f.CredentialURL)
	return f
}

func (s *CertificateService) Create(ctx context.Context, f model.CertificateFields) (*model.Certificate, error) {
	f = trimCertificateFields(f)
	f.ID = ""
	c := model.NewCertificate(f)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !s.store.Configured() {
		return nil, apperror.NotConfigured("document store")
	}

	if err := s.store.Certificates().Create(ctx, &c); err != nil {
		s.logger.Error("failed to create certificate",
			slog.String("title", c.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/certificate: creating: %w", err)
	}

	s.logger.Info("certificate created", slog.String("id", c.ID))
	s.catalog.Refresh(ctx)
	return &c, nil
}

func (s *CertificateService) Update(ctx context.Context, id string, f model.CertificateFields) (*model.Certificate, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "certificate ID is required")
	}
	f = trimCertificateFields(f)
	f.ID = id
	c := model.NewCertificate(f)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !s.store.Configured() {
		return nil, apperror.NotConfigured("document store")
	}

	existing, err := s.store.Certificates().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/certificate: loading %s: %w", id, err)
	}
	c.CreatedAt = existing.CreatedAt

	if err := s.store.Certificates().Update(ctx, &c); err != nil {
		s.logger.Error("failed to update certificate",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/certificate: updating %s: %w", id, err)
	}

	s.logger.Info("certificate updated", slog.String("id", id))
	s.catalog.Refresh(ctx)
	return &c, nil
}

func (s *CertificateService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "certificate ID is required")
	}
	if !s.store.Configured() {
		return apperror.NotConfigured("document store")
	}

	if err := s.store.Certificates().Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete certificate",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/certificate: deleting %s: %w", id, err)
	}

	s.logger.Info("certificate deleted", slog.String("id", id))
	s.catalog.Refresh(ctx)
	return nil
}
