package auth

import (
	"context"
	"net/http"
)

// CookieName holds the session token.
const CookieName = "token"

type contextKey string

const subjectKey contextKey = "subject"

// RequireAuth rejects requests without a valid session cookie with 401 and
// stores the token subject in the request context otherwise.
//
//	r.Group(func(r chi.Router) {
//		r.Use(auth.RequireAuth(tokens))
//		r.Post("/api/admin/projects", ...)
//	})
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := subjectFromRequest(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), subject)))
		})
	}
}

// WithSubject returns ctx carrying subject. Handler tests use it to fake a
// signed-in admin.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext returns the signed-in admin's token subject.
func SubjectFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey).(string)
	return s, ok && s != ""
}

func subjectFromRequest(r *http.Request, tokens *TokenService) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return tokens.Validate(cookie.Value)
}
