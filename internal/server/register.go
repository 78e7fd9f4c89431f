package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	"blooddonor/internal/identity"
	"blooddonor/internal/session"
	"blooddonor/pkg/types"
)

const msgFixFields = "Please fix the highlighted fields."

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := session.IdentityFromContext(r.Context()); ok {
		s.logger.Info("user is already logged in, redirecting to home")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
	}

	s.render(w, r, http.StatusOK, "page.register", data)
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirmPassword := r.FormValue("confirm_password")

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register"},
		Name:         name,
		Email:        email,
	}

	data.FieldErrors = validateRegisterInput(name, email, password, confirmPassword)
	if len(data.FieldErrors) > 0 {
		s.logger.WithField("field_errors", data.FieldErrors).Info("validation errors during registration")

		data.Banner = types.ErrorBanner(msgFixFields)
		s.render(w, r, http.StatusUnprocessableEntity, "page.register", data)
		return
	}

	err := s.identity.SignUp(ctx, email, password, name)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")

		var regErr *identity.RegistrationError
		if errors.As(err, &regErr) && regErr.Field != "" {
			data.FieldErrors = map[string]string{regErr.Field: regErr.Message}
			data.Banner = types.ErrorBanner(msgFixFields)
		} else if regErr != nil {
			data.Banner = types.ErrorBanner(regErr.Message)
		} else {
			data.Banner = types.ErrorBanner("Unable to create account right now. Please try again.")
		}

		s.render(w, r, http.StatusUnprocessableEntity, "page.register", data)
		return
	}

	v := url.Values{}
	v.Set("email", email)

	http.Redirect(w, r, fmt.Sprintf("/register/confirm?%s", v.Encode()), http.StatusSeeOther)
}

func (s *Service) handleGetRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{
			Title:  "Confirm Your Account",
			Banner: types.InfoBanner("We emailed you a confirmation code."),
		},
		Email: strings.TrimSpace(r.URL.Query().Get("email")),
	}

	s.render(w, r, http.StatusOK, "page.register.confirm", data)
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))

	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        email,
	}

	if email == "" || code == "" {
		data.Banner = types.ErrorBanner("Enter your email and the confirmation code.")
		s.render(w, r, http.StatusUnprocessableEntity, "page.register.confirm", data)
		return
	}

	err := s.identity.ConfirmSignUp(r.Context(), email, code)
	if err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")

		var regErr *identity.RegistrationError
		if errors.As(err, &regErr) {
			data.Banner = types.ErrorBanner(regErr.Message)
		} else {
			data.Banner = types.ErrorBanner("Unable to confirm account. Please try again.")
		}

		s.render(w, r, http.StatusUnprocessableEntity, "page.register.confirm", data)
		return
	}

	v := url.Values{}
	v.Set("confirmed", "true")
	v.Set("email", email)

	// Redirect to login after successful confirmation
	http.Redirect(w, r, "/login?"+v.Encode(), http.StatusSeeOther)
}

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func validateRegisterInput(name, email, password, confirmPassword string) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(name) == "" {
		errs["name"] = "Name is required."
	}

	email = strings.TrimSpace(email)
	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if password != confirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	hasUpper := hasUpperReg.MatchString(password)
	hasLower := hasLowerReg.MatchString(password)
	hasDigit := hasDigitReg.MatchString(password)
	hasSymbol := hasSymbolReg.MatchString(password)

	if len(password) < 8 || !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		errs["password"] = "Password must be at least 8 characters and include uppercase, lowercase, number, and symbol."
	}

	return errs
}
