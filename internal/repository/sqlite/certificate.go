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

// CertificateDB is the certificates table.
type CertificateDB struct {
	conn *sql.DB
}

var _ repository.CertificateRepository = (*CertificateDB)(nil)

const certificateColumns = `id, title, issuer, year, category, description, image_path,
	credential_url, skills, type, created_at, updated_at`

func (r *CertificateDB) Create(ctx context.Context, c *model.Certificate) error {
	c.ID = xid.New().String()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := r.insert(ctx, c, false); err != nil {
		return fmt.Errorf("sqlite: creating certificate: %w", err)
	}
	return nil
}

func (r *CertificateDB) Upsert(ctx context.Context, c *model.Certificate) error {
	if c.ID == "" {
		return apperror.ValidationFailed("id", "certificate ID is required for upsert")
	}
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	if err := r.insert(ctx, c, true); err != nil {
		return fmt.Errorf("sqlite: upserting certificate %s: %w", c.ID, err)
	}
	return nil
}

func (r *CertificateDB) insert(ctx context.Context, c *model.Certificate, replace bool) error {
	skills, err := encodeList(c.Skills)
	if err != nil {
		return err
	}
	if c.Type == "" {
		c.Type = model.CertificateTypeAchievement
	}

	verb := "INSERT"
	if replace {
		verb = "INSERT OR REPLACE"
	}
	_, err = r.conn.ExecContext(ctx,
		verb+` INTO certificates (`+certificateColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Issuer, c.Year, c.Category, c.Description, c.ImagePath,
		c.CredentialURL, skills, c.Type, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *CertificateDB) GetByID(ctx context.Context, id string) (*model.Certificate, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT `+certificateColumns+` FROM certificates WHERE id = ?`, id)

	c, err := scanCertificate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("certificate", id)
		}
		return nil, fmt.Errorf("sqlite: getting certificate %s: %w", id, err)
	}
	return c, nil
}

// List returns certificates with the most recent year first. Years that are
// not numbers cast to 0 and sort last.
func (r *CertificateDB) List(ctx context.Context, filter repository.CertificateFilter) ([]model.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates`
	var args []any
	if filter.Category != "" {
		query += ` WHERE category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY CAST(year AS INTEGER) DESC, created_at DESC, id`

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing certificates: %w", err)
	}
	defer rows.Close()

	certs := []model.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning certificate row: %w", err)
		}
		certs = append(certs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating certificates: %w", err)
	}
	return certs, nil
}

func (r *CertificateDB) Update(ctx context.Context, c *model.Certificate) error {
	c.UpdatedAt = time.Now()

	skills, err := encodeList(c.Skills)
	if err != nil {
		return fmt.Errorf("sqlite: updating certificate %s: %w", c.ID, err)
	}

	result, err := r.conn.ExecContext(ctx,
		`UPDATE certificates
		 SET title = ?, issuer = ?, year = ?, category = ?, description = ?, image_path = ?,
		     credential_url = ?, skills = ?, type = ?, updated_at = ?
		 WHERE id = ?`,
		c.Title, c.Issuer, c.Year, c.Category, c.Description, c.ImagePath,
		c.CredentialURL, skills, c.Type, c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating certificate %s: %w", c.ID, err)
	}
	return requireAffected(result, "certificate", c.ID)
}

func (r *CertificateDB) Delete(ctx context.Context, id string) error {
	result, err := r.conn.ExecContext(ctx, `DELETE FROM certificates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting certificate %s: %w", id, err)
	}
	return requireAffected(result, "certificate", id)
}

func scanCertificate(s scanner) (*model.Certificate, error) {
	var (
		c      model.Certificate
		skills string
	)
	if err := s.Scan(
		&c.ID, &c.Title, &c.Issuer, &c.Year, &c.Category, &c.Description, &c.ImagePath,
		&c.CredentialURL, &skills, &c.Type, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if c.Skills, err = decodeList(skills); err != nil {
		return nil, err
	}
	return &c, nil
}
