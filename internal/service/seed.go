package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/repository"
)

// SeedResult counts the records written by Seed.
type SeedResult struct {
	Projects     int
	Certificates int
}

// Seed copies the bundled dataset into the document store, keeping each
// record's ID so the store and the bundled copy merge into one entry.
// Running it twice overwrites the same records.
func Seed(ctx context.Context, store repository.Store, static Static, logger *slog.Logger) (SeedResult, error) {
	var res SeedResult
	if !store.Configured() {
		return res, apperror.NotConfigured("document store")
	}

	for _, p := range static.Projects() {
		if p.ID == "" {
			logger.Warn("skipping bundled project without ID", slog.String("title", p.Title))
			continue
		}
		if err := store.Projects().Upsert(ctx, &p); err != nil {
			return res, fmt.Errorf("service/seed: project %s: %w", p.ID, err)
		}
		res.Projects++
	}

	for _, c := range static.Certificates() {
		if c.ID == "" {
			logger.Warn("skipping bundled certificate without ID", slog.String("title", c.Title))
			continue
		}
		if err := store.Certificates().Upsert(ctx, &c); err != nil {
			return res, fmt.Errorf("service/seed: certificate %s: %w", c.ID, err)
		}
		res.Certificates++
	}

	logger.Info("seeded document store",
		slog.String("store", store.Name()),
		slog.Int("projects", res.Projects),
		slog.Int("certificates", res.Certificates),
	)
	return res, nil
}
