package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/service"
	"github.com/sakif/portfolio/internal/upload"
)

// multipartOverhead is the room left for form fields and part headers on
// top of the file size limit.
const multipartOverhead = 1 << 20

// AdminHandler serves the admin panel's write endpoints. Every route it
// handles sits behind auth.RequireAuth.
//
// DEPENDENCY CHAIN:
//   - projects / certificates → admin CRUD, refresh the catalog cache on success
//   - uploads                 → validate + store files (screenshots, scans, photo)
//   - profile                 → profile photo URL and the last active admin tab
type AdminHandler struct {
	projects     *service.ProjectService
	certificates *service.CertificateService
	uploads      *upload.Service
	profile      *service.ProfileService
	logger       *slog.Logger
}

func NewAdminHandler(
	projects *service.ProjectService,
	certificates *service.CertificateService,
	uploads *upload.Service,
	profile *service.ProfileService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		projects:     projects,
		certificates: certificates,
		uploads:      uploads,
		profile:      profile,
		logger:       logger,
	}
}

// projectRequest is the admin form for a project. The ID comes from the
// URL, never the body.
type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImagePath   string   `json:"imagePath"`
	TechStack   []string `json:"techStack"`
	Features    []string `json:"features"`
	GithubURL   string   `json:"githubUrl"`
	DemoURL     string   `json:"demoUrl"`
	Category    string   `json:"category"`
	Featured    bool     `json:"featured"`
}

func (p projectRequest) fields() model.ProjectFields {
	return model.ProjectFields{
		Title:       p.Title,
		Description: p.Description,
		ImagePath:   p.ImagePath,
		TechStack:   p.TechStack,
		Features:    p.Features,
		GithubURL:   p.GithubURL,
		DemoURL:     p.DemoURL,
		Category:    p.Category,
		Featured:    p.Featured,
	}
}

type certificateRequest struct {
	Title         string   `json:"title"`
	Issuer        string   `json:"issuer"`
	Year          string   `json:"year"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	ImagePath     string   `json:"imagePath"`
	CredentialURL string   `json:"credentialUrl"`
	Skills        []string `json:"skills"`
	Type          string   `json:"type"`
}

func (c certificateRequest) fields() model.CertificateFields {
	return model.CertificateFields{
		Title:         c.Title,
		Issuer:        c.Issuer,
		Year:          c.Year,
		Category:      c.Category,
		Description:   c.Description,
		ImagePath:     c.ImagePath,
		CredentialURL: c.CredentialURL,
		Skills:        c.Skills,
		Type:          c.Type,
	}
}

// === PROJECTS ===

// HTTP: POST /api/admin/projects
func (h *AdminHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.projects.Create(r.Context(), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HTTP: PUT /api/admin/projects/{id}
func (h *AdminHandler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := h.projects.Update(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HTTP: DELETE /api/admin/projects/{id}
func (h *AdminHandler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === CERTIFICATES ===

// HTTP: POST /api/admin/certificates
func (h *AdminHandler) HandleCreateCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.certificates.Create(r.Context(), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HTTP: PUT /api/admin/certificates/{id}
func (h *AdminHandler) HandleUpdateCertificate(w http.ResponseWriter, r *http.Request) {
	var req certificateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.certificates.Update(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HTTP: DELETE /api/admin/certificates/{id}
func (h *AdminHandler) HandleDeleteCertificate(w http.ResponseWriter, r *http.Request) {
	if err := h.certificates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// === UPLOADS ===

// HandleUpload stores one file from a multipart form.
//
// HTTP: POST /api/admin/upload
// FORM FIELDS: file (required), directory (optional, defaults to "uploads")
//
// The declared part Content-Type and size are validated before a single
// byte is written to storage.
func (h *AdminHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	limit := h.uploads.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, upload.TooLarge(limit))
			return
		}
		writeError(w, apperror.ValidationFailed("file", "expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperror.ValidationFailed("file", "no file provided"))
		return
	}
	defer file.Close()

	res, err := h.uploads.Upload(r.Context(), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Directory:   r.FormValue("directory"),
		Body:        file,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// === PROFILE ===

type photoRequest struct {
	URL string `json:"url"`
}

// HTTP: PUT /api/admin/profile-photo
// REQUEST BODY: {"url": "https://.../uploads/profile/1712_abc123.png"}
func (h *AdminHandler) HandleSetProfilePhoto(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.profile.SetPhoto(r.Context(), req.URL); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": h.profile.Photo(r.Context())})
}

type tabRequest struct {
	Tab string `json:"tab"`
}

// HTTP: GET /api/admin/tab
func (h *AdminHandler) HandleGetTab(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tabRequest{Tab: h.profile.ActiveTab(r.Context())})
}

// HTTP: PUT /api/admin/tab
func (h *AdminHandler) HandleSetTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.profile.SetActiveTab(r.Context(), req.Tab); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
