package middleware

import (
	"context"
	"mime"
	"net/http"
	"strings"

	"github.com/mcoot/shiftclock/internal/api/apierr"
	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/services/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth requires a valid signed session token, sent as a bearer token or in
// the browser's session cookie
func Auth(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			// Browsers attach the cookie to cross-site form posts, which
			// cannot carry a JSON content type
			if fromCookie && !isSafeMethod(r.Method) && !isJSON(r) {
				apierr.WriteError(w, apierr.NewInvalidRequestError("Content-Type must be application/json"))
				return
			}

			sess, err := sessions.Load(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request and reports
// whether it came from the cookie
func extractToken(r *http.Request) (string, bool) {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), false
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value, true
	}

	return "", false
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) *model.Session {
	sess := GetSession(ctx)
	if sess == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return sess
}
