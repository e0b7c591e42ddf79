package handler

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
	"github.com/sakif/portfolio/internal/service"
)

const (
	stateCookie = "oauth_state"

	// adminHome is where the browser lands after a GitHub login.
	adminHome = "/admin"
)

// AuthHandler signs the site owner in and out.
//
// HANDLER RESPONSIBILITIES:
//   - HandleLogin          → email + password, sets the session cookie
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → check state, exchange the code, set the session cookie
//   - HandleLogout         → clear the session cookie
//   - HandleMe             → report who is signed in
type AuthHandler struct {
	auth *service.AuthService
	// secure marks cookies HTTPS-only. Set when the site URL is https.
	secure bool
	logger *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, secure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, secure: secure, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Subject string `json:"subject"`
}

// HandleLogin checks the admin email and password.
//
// HTTP: POST /auth/login
// REQUEST BODY: {"email": "...", "password": "..."}
//
// Any failure is the same 401 "invalid email or password"; the response
// never says which half was wrong.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	sess, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setSession(w, sess.Token)
	writeJSON(w, http.StatusOK, sessionResponse{Subject: sess.Subject})
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived HttpOnly cookie and into the
// GitHub URL. The callback only proceeds when both match, which proves the
// flow was started by this browser.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewState()
	if err != nil {
		h.logger.Error("failed to generate OAuth state", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	authURL, err := h.auth.GitHubAuthURL(state)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth/github",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the GitHub login.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check), then drop the cookie
//  2. Bail out if the user denied access on GitHub
//  3. Exchange the code; only the configured GitHub login gets a session
//  4. Set the session cookie and redirect to the admin panel
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// --- Step 1: CSRF state ---
	c, err := r.Cookie(stateCookie)
	if err != nil || c.Value == "" ||
		subtle.ConstantTimeCompare([]byte(q.Get("state")), []byte(c.Value)) != 1 {
		h.logger.Warn("auth callback: state mismatch")
		writeError(w, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookie,
		Value:  "",
		Path:   "/auth/github",
		MaxAge: -1,
	})

	// --- Step 2: denied on GitHub ---
	if errParam := q.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, adminHome+"?auth=denied", http.StatusSeeOther)
		return
	}

	// --- Step 3: exchange ---
	sess, err := h.auth.GitHubCallback(r.Context(), q.Get("code"))
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	// --- Step 4: session ---
	h.setSession(w, sess.Token)
	http.Redirect(w, r, adminHome, http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// Sessions are stateless JWTs, so logging out only deletes the cookie. The
// token itself stays valid until it expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the signed-in admin's subject.
//
// HTTP: GET /api/admin/me
// Auth: Required (RequireAuth puts the subject in the context)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	subject, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Subject: subject})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, token string) {
	// HttpOnly keeps the token away from page scripts; Lax keeps it off
	// cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
