package repository

import (
	"context"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

// Disabled stands in for the document store when none is configured
// (store.driver=none). Every call fails with apperror.ErrNotConfigured.
type Disabled struct{}

var _ Store = Disabled{}

func (Disabled) Name() string                        { return "none" }
func (Disabled) Configured() bool                    { return false }
func (Disabled) Projects() ProjectRepository         { return disabledProjects{} }
func (Disabled) Certificates() CertificateRepository { return disabledCertificates{} }
func (Disabled) Comments() CommentRepository         { return disabledComments{} }

func errDisabled() error { return apperror.NotConfigured("document store") }

type disabledProjects struct{}

func (disabledProjects) Create(context.Context, *model.Project) error { return errDisabled() }
func (disabledProjects) Upsert(context.Context, *model.Project) error { return errDisabled() }
func (disabledProjects) Update(context.Context, *model.Project) error { return errDisabled() }
func (disabledProjects) Delete(context.Context, string) error         { return errDisabled() }

func (disabledProjects) GetByID(context.Context, string) (*model.Project, error) {
	return nil, errDisabled()
}

func (disabledProjects) List(context.Context) ([]model.Project, error) {
	return nil, errDisabled()
}

type disabledCertificates struct{}

func (disabledCertificates) Create(context.Context, *model.Certificate) error { return errDisabled() }
func (disabledCertificates) Upsert(context.Context, *model.Certificate) error { return errDisabled() }
func (disabledCertificates) Update(context.Context, *model.Certificate) error { return errDisabled() }
func (disabledCertificates) Delete(context.Context, string) error             { return errDisabled() }

func (disabledCertificates) GetByID(context.Context, string) (*model.Certificate, error) {
	return nil, errDisabled()
}

func (disabledCertificates) List(context.Context, CertificateFilter) ([]model.Certificate, error) {
	return nil, errDisabled()
}

type disabledComments struct{}

func (disabledComments) Create(context.Context, *model.Comment) error  { return errDisabled() }
func (disabledComments) SetPinned(context.Context, string, bool) error { return errDisabled() }
func (disabledComments) Delete(context.Context, string) error          { return errDisabled() }

func (disabledComments) List(context.Context, ListOptions) ([]model.Comment, error) {
	return nil, errDisabled()
}
