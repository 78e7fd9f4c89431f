package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"blooddonor/internal/identity"
	"blooddonor/internal/session"
	"blooddonor/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	msgInvalidCredentials      = "Invalid credentials"
	msgInvalidAdminCredentials = "Invalid admin credentials"
	msgSignInUnavailable       = "Unable to sign in right now. Please try again."
)

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if ident, ok := session.IdentityFromContext(r.Context()); ok {
		s.logger.Info("user is already logged in, redirecting")
		http.Redirect(w, r, landingPath(ident), http.StatusSeeOther)
		return
	}

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login", Banner: bannerFromQuery(r)},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}
	if r.URL.Query().Get("confirmed") == "true" {
		data.Banner = types.SuccessBanner("Account confirmed. Please log in.")
	}

	s.render(w, r, http.StatusOK, "page.login", data)
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	data := &types.LoginPageData{
		BasePageData: types.BasePageData{Title: "Login"},
		Email:        email,
	}

	ident, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		entry := s.logger.WithError(err).WithField("email", email)

		switch {
		case errors.Is(err, identity.ErrNotConfirmed):
			entry.Info("sign in before confirmation")
			s.metrics.SignIn("unconfirmed")
			v := url.Values{}
			v.Set("email", email)
			http.Redirect(w, r, "/register/confirm?"+v.Encode(), http.StatusSeeOther)
			return
		case errors.Is(err, types.ErrInvalidCredentials):
			entry.Info("invalid credentials")
			s.metrics.SignIn("rejected")
			data.Banner = types.ErrorBanner(msgInvalidCredentials)
			if s.identity.IsAdmin(email) {
				data.Banner = types.ErrorBanner(msgInvalidAdminCredentials)
			}
			s.render(w, r, http.StatusUnauthorized, "page.login", data)
			return
		default:
			entry.Error("failed to sign in")
			s.metrics.SignIn("failed")
			data.Banner = types.ErrorBanner(msgSignInUnavailable)
			s.render(w, r, http.StatusBadGateway, "page.login", data)
			return
		}
	}

	err = s.sessions.Begin(w, ident)
	if err != nil {
		s.logger.WithError(err).Error("failed to start session")
		s.metrics.SignIn("failed")
		data.Banner = types.ErrorBanner(msgSignInUnavailable)
		s.render(w, r, http.StatusInternalServerError, "page.login", data)
		return
	}

	s.metrics.SignIn("success")
	s.logger.WithFields(logrus.Fields{
		"user_id": ident.Subject,
		"admin":   ident.IsAdmin,
	}).Info("user logged in")

	// an admin always lands on the admin screen
	if ident.IsAdmin {
		s.sessions.PopRedirect(w, r)
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	// Check to see if this login attempt was the result of an unauthed redirect
	if path, ok := s.sessions.PopRedirect(w, r); ok {
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Service) handlePostLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(w)
	s.redirectWithBanner(w, r, "/", types.InfoBanner("You have been logged out."))
}

func landingPath(ident *types.AuthenticatedIdentity) string {
	if ident.IsAdmin {
		return "/admin"
	}
	return "/"
}
