package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/shiftclock/internal/middleware"
)

// Logging tags each API request with an id and logs it
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	requestID := middleware.RequestID()
	logging := middleware.Logging(logger.With(slog.String("surface", "api")))
	return func(next http.Handler) http.Handler {
		return requestID(logging(next))
	}
}
