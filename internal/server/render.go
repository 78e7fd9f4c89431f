package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"blooddonor/internal/session"
	"blooddonor/pkg/types"
)

func (s *Service) renderTemplate(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) error {
	if setter, ok := data.(types.NavbarDataSetter); ok {
		setter.SetNavbarData(navbarFor(r))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status != http.StatusOK {
		w.WriteHeader(status)
	}

	return s.templates.ExecuteTemplate(w, templateName, data)
}

func (s *Service) render(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	err := s.renderTemplate(w, r, status, templateName, data)
	if err != nil {
		s.logger.WithError(err).WithField("template", templateName).Error("failed to render page")
		if status == http.StatusOK {
			s.internalServerError(w)
		}
	}
}

func navbarFor(r *http.Request) types.NavbarData {
	ident, ok := session.IdentityFromContext(r.Context())
	if !ok {
		return types.NavbarData{}
	}

	return types.NavbarData{
		IsAuthenticated: true,
		IsAdmin:         ident.IsAdmin,
		UserEmail:       ident.Email,
		UserName:        ident.DisplayName,
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("failed to encode json response")
	}
}

// redirectWithBanner carries a banner across a redirect in the query string.
func (s *Service) redirectWithBanner(w http.ResponseWriter, r *http.Request, path string, banner types.Banner) {
	v := url.Values{}
	v.Set("msg", banner.Text)
	v.Set("msgType", string(banner.Type))
	http.Redirect(w, r, path+"?"+v.Encode(), http.StatusSeeOther)
}

func bannerFromQuery(r *http.Request) types.Banner {
	q := r.URL.Query()
	text := q.Get("msg")
	if text == "" {
		return types.Banner{}
	}
	return types.Banner{Text: text, Type: types.ParseBannerType(q.Get("msgType"))}
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func identEmail(ident *types.AuthenticatedIdentity) string {
	if ident == nil {
		return ""
	}
	return ident.Email
}
