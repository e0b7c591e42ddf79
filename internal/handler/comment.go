package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/portfolio/internal/service"
)

// CommentHandler serves the guestbook: the public list and submit form, and
// the admin moderation endpoints.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

// HandleList returns every comment, pinned first then newest first.
// Always 200; a missing store gives an empty list.
//
// HTTP: GET /api/comments and GET /api/admin/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.comments.List(r.Context()))
}

// HandleSubmit accepts a visitor comment.
//
// HTTP: POST /api/comments
// REQUEST BODY: {"content": "...", "userName": "..."}
func (h *CommentHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.comments.Submit(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleAdminPost posts a comment as the site owner.
//
// HTTP: POST /api/admin/comments
func (h *CommentHandler) HandleAdminPost(w http.ResponseWriter, r *http.Request) {
	var in service.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	c, err := h.comments.PostAsAdmin(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// HandlePin pins or unpins a comment.
//
// HTTP: PUT /api/admin/comments/{id}/pin
// REQUEST BODY: {"pinned": true}
func (h *CommentHandler) HandlePin(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.SetPinned(r.Context(), chi.URLParam(r, "id"), req.Pinned); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete removes a comment.
//
// HTTP: DELETE /api/admin/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.comments.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
