package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/shiftclock/internal/model"
	"github.com/mcoot/shiftclock/internal/services/session"
)

type contextKey string

const (
	// SessionCookieName holds the signed session token
	SessionCookieName = "session"

	sessionContextKey contextKey = "session"
)

// GetSession returns the browser session for the request. Outside the
// Session middleware it returns nil.
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionContextKey).(*model.Session)
	return sess
}

// Session loads the browser session named by the session cookie. Requests
// without a valid session get a fresh one that is only stored once
// CommitSession is called.
func Session(sessions *session.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *model.Session

			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				sess, err = sessions.Load(r.Context(), cookie.Value)
				switch {
				case err == nil:
				case errors.Is(err, model.ErrSessionNotFound),
					errors.Is(err, session.ErrExpired),
					errors.Is(err, session.ErrInvalidSignature):
					logger.Debug("discarding session cookie", slog.String("reason", err.Error()))
				default:
					logger.Error("failed to load session", slog.String("error", err.Error()))
				}
			}
			if sess == nil {
				sess = sessions.New()
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CommitSession stores the request's session and sets its cookie. Call it
// before writing the response.
func CommitSession(w http.ResponseWriter, r *http.Request, sessions *session.Service) error {
	sess := GetSession(r.Context())
	if sess == nil {
		return nil
	}
	if err := sessions.Save(r.Context(), sess); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessions.Sign(sess.Token),
		Path:     "/",
		MaxAge:   int(sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
