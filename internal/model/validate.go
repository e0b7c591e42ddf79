package model

import (
	"regexp"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Validate checks the fields an admin must fill in before a project is saved.
func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return apperror.ValidationFailed("title", "project title is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return apperror.ValidationFailed("description", "project description is required")
	}
	return nil
}

// Validate checks certificate input. Year must be exactly four digits.
func (c Certificate) Validate() error {
	switch {
	case strings.TrimSpace(c.Title) == "":
		return apperror.ValidationFailed("title", "certificate title is required")
	case strings.TrimSpace(c.Issuer) == "":
		return apperror.ValidationFailed("issuer", "certificate issuer is required")
	case strings.TrimSpace(c.Category) == "":
		return apperror.ValidationFailed("category", "certificate category is required")
	case !yearPattern.MatchString(c.Year):
		return apperror.ValidationFailed("year", "year must be four digits")
	}
	return nil
}
