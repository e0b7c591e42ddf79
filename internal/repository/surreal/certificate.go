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

type certificateTable struct {
	s *Store
}

var _ repository.CertificateRepository = (*certificateTable)(nil)

func (t *certificateTable) decode(rows []map[string]any) []model.Certificate {
	out := make([]model.Certificate, 0, len(rows))
	for _, row := range rows {
		c, unknown := model.NormalizeCertificate(flatten(row))
		if len(unknown) > 0 {
			t.s.logger.Debug("dropping unrecognized certificate fields",
				slog.String("id", c.ID),
				slog.Any("fields", unknown),
			)
		}
		out = append(out, c)
	}
	return out
}

func (t *certificateTable) Create(ctx context.Context, c *model.Certificate) error {
	c.ID = xid.New().String()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := t.s.query(ctx, `CREATE $rid CONTENT $doc`, map[string]any{
		"rid": recordID(tableCertificates, c.ID),
		"doc": certificateDocument(c),
	})
	if err != nil {
		return fmt.Errorf("surreal: creating certificate: %w", err)
	}
	return nil
}

func (t *certificateTable) Upsert(ctx context.Context, c *model.Certificate) error {
	if c.ID == "" {
		return apperror.ValidationFailed("id", "certificate ID is required for upsert")
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := t.s.query(ctx, `UPSERT $rid CONTENT $doc`, map[string]any{
		"rid": recordID(tableCertificates, c.ID),
		"doc": certificateDocument(c),
	})
	if err != nil {
		return fmt.Errorf("surreal: upserting certificate %s: %w", c.ID, err)
	}
	return nil
}

func (t *certificateTable) GetByID(ctx context.Context, id string) (*model.Certificate, error) {
	rows, err := t.s.query(ctx, `SELECT * FROM $rid`, map[string]any{
		"rid": recordID(tableCertificates, id),
	})
	if err != nil {
		return nil, fmt.Errorf("surreal: getting certificate %s: %w", id, err)
	}
	certs := t.decode(rows)
	if len(certs) == 0 {
		return nil, apperror.NotFound("certificate", id)
	}
	return &certs[0], nil
}

// List orders by year on the server. Years are four-digit strings, so a
// string comparison sorts them numerically.
func (t *certificateTable) List(ctx context.Context, filter repository.CertificateFilter) ([]model.Certificate, error) {
	sql := `SELECT * FROM type::table($tb) ORDER BY year DESC, createdAt DESC`
	vars := map[string]any{"tb": tableCertificates}
	if filter.Category != "" {
		sql = `SELECT * FROM type::table($tb) WHERE category = $category ORDER BY year DESC, createdAt DESC`
		vars["category"] = filter.Category
	}

	rows, err := t.s.query(ctx, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("surreal: listing certificates: %w", err)
	}
	return t.decode(rows), nil
}

func (t *certificateTable) Update(ctx context.Context, c *model.Certificate) error {
	c.UpdatedAt = time.Now().UTC()

	rows, err := t.s.query(ctx, `UPDATE $rid MERGE $doc`, map[string]any{
		"rid": recordID(tableCertificates, c.ID),
		"doc": certificateDocument(c),
	})
	if err != nil {
		return fmt.Errorf("surreal: updating certificate %s: %w", c.ID, err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("certificate", c.ID)
	}
	return nil
}

func (t *certificateTable) Delete(ctx context.Context, id string) error {
	rows, err := t.s.query(ctx, `DELETE $rid RETURN BEFORE`, map[string]any{
		"rid": recordID(tableCertificates, id),
	})
	if err != nil {
		return fmt.Errorf("surreal: deleting certificate %s: %w", id, err)
	}
	if len(rows) == 0 {
		return apperror.NotFound("certificate", id)
	}
	return nil
}
