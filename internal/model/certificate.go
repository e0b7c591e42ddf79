package model

import (
	"strconv"
	"time"
)

// Certificate types carried by the bundled dataset.
const (
	CertificateTypePDF         = "pdf"
	CertificateTypeImage       = "image"
	CertificateTypeAchievement = "achievement"
)

// Certificate is a credential or award shown on the portfolio.
//
// ImagePath points at either an image or a PDF; Type says which.
type Certificate struct {
	ID            string    `json:"id,omitempty"`
	Title         string    `json:"title"`
	Issuer        string    `json:"issuer"`
	Year          string    `json:"year"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	ImagePath     string    `json:"imagePath"`
	CredentialURL string    `json:"credentialUrl,omitempty"`
	Skills        []string  `json:"skills"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

// CertificateFields is the input to NewCertificate.
type CertificateFields struct {
	ID            string
	Title         string
	Issuer        string
	Year          string
	Category      string
	Description   string
	ImagePath     string
	CredentialURL string
	Skills        []string
	Type          string
}

// NewCertificate builds a Certificate, defaulting Type to "achievement".
// Year is taken as given; validation happens in the admin service.
func NewCertificate(f CertificateFields) Certificate {
	typ := f.Type
	if typ == "" {
		typ = CertificateTypeAchievement
	}
	return Certificate{
		ID:            f.ID,
		Title:         f.Title,
		Issuer:        f.Issuer,
		Year:          f.Year,
		Category:      f.Category,
		Description:   f.Description,
		ImagePath:     f.ImagePath,
		CredentialURL: f.CredentialURL,
		Skills:        cloneStrings(f.Skills),
		Type:          typ,
	}
}

// YearValue returns the year as a number for sorting. Malformed years sort last.
func (c Certificate) YearValue() int {
	y, err := strconv.Atoi(c.Year)
	if err != nil {
		return 0
	}
	return y
}
