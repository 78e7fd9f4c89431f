package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"blooddonor/internal/search"
	"blooddonor/internal/session"
	"blooddonor/pkg/types"

	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct {
	RegisterDonorFunc func(ctx context.Context, input types.DonorInput) (string, error)
	ListDonorsFunc    func(ctx context.Context) ([]*types.Donor, error)
	UpdateDonorFunc   func(ctx context.Context, donorID string, patch types.DonorPatch) error
}

func (m *mockDirectory) RegisterDonor(ctx context.Context, input types.DonorInput) (string, error) {
	return m.RegisterDonorFunc(ctx, input)
}

func (m *mockDirectory) ListDonors(ctx context.Context) ([]*types.Donor, error) {
	return m.ListDonorsFunc(ctx)
}

func (m *mockDirectory) UpdateDonor(ctx context.Context, donorID string, patch types.DonorPatch) error {
	return m.UpdateDonorFunc(ctx, donorID, patch)
}

type mockIdentity struct {
	SignInFunc        func(ctx context.Context, email, password string) (*types.AuthenticatedIdentity, error)
	SignUpFunc        func(ctx context.Context, email, password, displayName string) error
	ConfirmSignUpFunc func(ctx context.Context, email, code string) error
}

func (m *mockIdentity) SignIn(ctx context.Context, email, password string) (*types.AuthenticatedIdentity, error) {
	return m.SignInFunc(ctx, email, password)
}

func (m *mockIdentity) SignUp(ctx context.Context, email, password, displayName string) error {
	return m.SignUpFunc(ctx, email, password, displayName)
}

func (m *mockIdentity) ConfirmSignUp(ctx context.Context, email, code string) error {
	return m.ConfirmSignUpFunc(ctx, email, code)
}

func (m *mockIdentity) IsAdmin(email string) bool {
	return email == "admin@gmail.com"
}

// tokenVerifier accepts tokens of the form "token:<email>".
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, raw string) (*types.AuthenticatedIdentity, error) {
	email, ok := strings.CutPrefix(raw, "token:")
	if !ok {
		return nil, errors.New("bad token")
	}
	return &types.AuthenticatedIdentity{
		Subject:     "sub-" + email,
		Email:       email,
		DisplayName: strings.Split(email, "@")[0],
		IsAdmin:     email == "admin@gmail.com",
		Token:       raw,
	}, nil
}

type mockFinder struct {
	SearchFunc func(ctx context.Context, scope string, criteria types.SearchCriteria) (search.Result, error)
}

func (m *mockFinder) Search(ctx context.Context, scope string, criteria types.SearchCriteria) (search.Result, error) {
	return m.SearchFunc(ctx, scope, criteria)
}

type testDeps struct {
	directory *mockDirectory
	identity  *mockIdentity
	finder    DonorFinder
}

type testServer struct {
	*Service
	sessions *session.Manager
}

func newTestServer(t *testing.T, deps testDeps) *testServer {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if deps.directory == nil {
		deps.directory = &mockDirectory{}
	}
	if deps.identity == nil {
		deps.identity = &mockIdentity{}
	}
	if deps.finder == nil {
		deps.finder = &mockFinder{}
	}

	sessions := session.NewManager(securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32), time.Hour, false)
	config := &types.Config{ServerPort: 0, ReadTimeoutSec: 5, WriteTimeoutSec: 5}

	svc, err := New(config, logger, deps.directory, deps.identity, tokenVerifier{}, deps.finder, sessions, nil, prometheus.NewRegistry())
	require.NoError(t, err)

	return &testServer{Service: svc, sessions: sessions}
}

func (ts *testServer) do(r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, r)
	return rec
}

// signIn attaches a session for email to r.
func (ts *testServer) signIn(t *testing.T, r *http.Request, email string) *http.Request {
	t.Helper()

	rec := httptest.NewRecorder()
	require.NoError(t, ts.sessions.Begin(rec, &types.AuthenticatedIdentity{Token: "token:" + email}))
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func postForm(path string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func sampleDonors() []*types.Donor {
	pincode := "411001"
	return []*types.Donor{
		{ID: "d1", Name: "Asha", Email: "asha@example.com", BloodType: types.BloodTypeBPositive, Address: "12 MG Road", City: "Delhi", ContactNumber: "999", DOB: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "d2", Name: "Ravi", Email: "ravi@example.com", BloodType: types.BloodTypeOPositive, Address: "FC Road", City: "Pune", Pincode: &pincode, ContactNumber: "888", HasDonatedRecently: true},
	}
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
