package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/service"
)

// CatalogHandler serves the public, read-only portfolio data.
//
// None of these endpoints fail because a backend is down: the catalog
// service falls back to cached and bundled records. The only early exit is
// a client that hung up mid-load (service.ErrLoadDiscarded), where there is
// nobody left to answer.
type CatalogHandler struct {
	catalog *service.CatalogService
	profile *service.ProfileService
	logger  *slog.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, profile *service.ProfileService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, profile: profile, logger: logger}
}

// HandleProjects returns every reconciled project.
//
// HTTP: GET /api/projects
func (h *CatalogHandler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.Load(r.Context())
	if err != nil {
		h.loadFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat.Projects)
}

// HandleProject returns one project.
//
// HTTP: GET /api/projects/{id}
func (h *CatalogHandler) HandleProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleCertificates returns the reconciled certificates, optionally
// narrowed to one category.
//
// HTTP: GET /api/certificates?category=web
func (h *CatalogHandler) HandleCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.catalog.Certificates(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.loadFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, certs)
}

// HandleStats returns the totals shown on the about page.
//
// HTTP: GET /api/stats
func (h *CatalogHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		h.loadFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleProfilePhoto returns the current profile photo URL.
//
// HTTP: GET /api/profile-photo
func (h *CatalogHandler) HandleProfilePhoto(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": h.profile.Photo(r.Context())})
}

// HandleHealth reports liveness. It does not touch any backend.
//
// HTTP: GET /healthz
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CatalogHandler) loadFailed(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrLoadDiscarded) {
		h.logger.Debug("client went away before the catalog loaded")
		return
	}
	// Load documents ErrLoadDiscarded as its only error; anything else is a bug.
	h.logger.Error("catalog load failed", slog.String("error", err.Error()))
	writeError(w, err)
}
