package server

import (
	"net/http"
	"strings"
	"time"

	"blooddonor/internal/session"

	"github.com/sirupsen/logrus"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.metrics.HTTPRequest(r.Method, rw.statusCode)
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// LoadIdentity verifies the session token when one is present and puts the
// identity in the request context. Requests without a valid session pass
// through anonymously.
func (s *Service) LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := s.sessions.Token(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ident, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			s.logger.WithError(err).Debug("dropping invalid session")
			s.sessions.End(w)
			next.ServeHTTP(w, r)
			return
		}

		if name := s.sessions.DisplayName(r); name != "" {
			ident.DisplayName = name
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": ident.Subject,
			"email":   ident.Email,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(session.WithIdentity(r.Context(), ident)))
	})
}

// RequireAuth sends anonymous requests to the login page and remembers where
// they were headed.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := session.IdentityFromContext(r.Context()); !ok {
			s.sessions.SetRedirect(w, r.URL.Path)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := session.IdentityFromContext(r.Context())
		if !ok || !ident.IsAdmin {
			s.logger.WithField("email", identEmail(ident)).Warn("non admin requested admin page")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
