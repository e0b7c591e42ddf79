package model

import (
	"errors"
	"testing"

	"github.com/sakif/portfolio/internal/apperror"
)

func TestCertificateValidate(t *testing.T) {
	valid := NewCertificate(CertificateFields{
		Title:    "Coding Camp",
		Issuer:   "DBS Foundation",
		Category: "Bootcamp",
		Year:     "2025",
	})

	tests := []struct {
		name      string
		mutate    func(c *Certificate)
		wantField string
	}{
		{"valid", func(*Certificate) {}, ""},
		{"missing title", func(c *Certificate) { c.Title = "  " }, "title"},
		{"missing issuer", func(c *Certificate) { c.Issuer = "" }, "issuer"},
		{"missing category", func(c *Certificate) { c.Category = "" }, "category"},
		{"two digit year", func(c *Certificate) { c.Year = "25" }, "year"},
		{"year with letters", func(c *Certificate) { c.Year = "20x5" }, "year"},
		{"five digit year", func(c *Certificate) { c.Year = "20255" }, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("Validate() error = %v, want validation error", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestProjectValidate(t *testing.T) {
	if err := NewProject(ProjectFields{Title: "x", Description: "y"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	if err := NewProject(ProjectFields{Description: "y"}).Validate(); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Validate() error = %v, want validation error", err)
	}
	if err := NewProject(ProjectFields{Title: "x"}).Validate(); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Validate() error = %v, want validation error", err)
	}
}
