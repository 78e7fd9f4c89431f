package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"blooddonor/internal/metrics"
	"blooddonor/internal/search"
	"blooddonor/internal/session"
	"blooddonor/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// Directory is the donor directory as the handlers need it.
type Directory interface {
	RegisterDonor(ctx context.Context, input types.DonorInput) (string, error)
	ListDonors(ctx context.Context) ([]*types.Donor, error)
	UpdateDonor(ctx context.Context, donorID string, patch types.DonorPatch) error
}

type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*types.AuthenticatedIdentity, error)
	SignUp(ctx context.Context, email, password, displayName string) error
	ConfirmSignUp(ctx context.Context, email, code string) error
	IsAdmin(email string) bool
}

type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*types.AuthenticatedIdentity, error)
}

type DonorFinder interface {
	Search(ctx context.Context, scope string, criteria types.SearchCriteria) (search.Result, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	directory Directory
	identity  IdentityProvider
	verifier  TokenVerifier
	finder    DonorFinder
	sessions  *session.Manager

	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	directory Directory,
	identity IdentityProvider,
	verifier TokenVerifier,
	finder DonorFinder,
	sessions *session.Manager,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) (*Service, error) {
	mux := flow.New()

	s := &Service{
		logger:    logger,
		config:    config,
		directory: directory,
		identity:  identity,
		verifier:  verifier,
		finder:    finder,
		sessions:  sessions,
		metrics:   m,
		gatherer:  gatherer,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	// unmatched paths never reach flow middleware
	s.server.Handler = s.StripTrailingSlash(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)
	r.Use(s.LoadIdentity)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	r.HandleFunc("/donors/register", s.handleGetDonorRegister, http.MethodGet)
	r.HandleFunc("/donors/register", s.handlePostDonorRegister, http.MethodPost)
	r.HandleFunc("/donors", s.handleFindDonors, http.MethodGet)
	r.HandleFunc("/api/donors/search", s.handleSearchDonors, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile", s.handlePostProfile, http.MethodPost)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireAdmin)

			r.HandleFunc("/admin", s.handleAdmin, http.MethodGet)
		})
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}), http.MethodGet)
	}

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(types.DateLayout)
		},
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"bloodTypeOptions": func(bloodTypes []types.BloodType, selected string) map[string]any {
			return map[string]any{"BloodTypes": bloodTypes, "Selected": selected}
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
