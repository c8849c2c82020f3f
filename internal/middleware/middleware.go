package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"blogCPT/internal/models"
	"blogCPT/internal/repository"
	"blogCPT/internal/session"
)

type Middleware func(http.Handler) http.Handler

// UserResolver loads the user a session points at.
type UserResolver interface {
	CurrentUser(ctx context.Context, userID int64) (*models.User, error)
}

// LoadUser resolves the session cookie into a user once per request.
// Stale cookies are cleared and the request continues anonymously.
func LoadUser(sessions *session.Manager, users UserResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.UserID(r)
			if err != nil {
				if _, cookieErr := r.Cookie(session.CookieName); cookieErr == nil {
					sessions.Logout(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.CurrentUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					sessions.Logout(w)
				} else {
					log.Error().Err(err).Int64("user_id", userID).Msg("failed to resolve session user")
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), user)))
		})
	}
}

// RequireLogin sends anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session.UserFrom(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin answers 403 through forbidden unless the user is an admin.
func RequireAdmin(forbidden http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := session.UserFrom(r.Context())
			if user == nil || !user.IsAdmin {
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs one line per request and counts requests by status.
func LoggingMiddleware(next http.Handler) http.Handler {
	requests, err := otel.Meter("blogCPT/internal/middleware").Int64Counter("http.server.requests",
		metric.WithDescription("Handled HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		log.Warn().Err(err).Msg("request counter unavailable")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		if requests != nil {
			requests.Add(r.Context(), 1, metric.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.Int("http.status_code", status),
			))
		}

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Chain wraps h so that the last middleware runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
