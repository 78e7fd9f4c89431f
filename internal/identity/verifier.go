package identity

import (
	"context"
	"errors"
	"fmt"

	"blooddonor/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// KeySetSource resolves the signing keys published by the identity provider.
// *jwk.Cache satisfies it.
type KeySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

// Verifier checks ID tokens issued by the user pool.
type Verifier struct {
	keys    KeySetSource
	jwksURL string
	issuer   string
	clientID string
	isAdmin  func(email string) bool
}

// NewVerifier checks tokens against issuer and, when clientID is set, the
// app client they were issued to.
func NewVerifier(keys KeySetSource, jwksURL, issuer, clientID string, isAdmin func(string) bool) *Verifier {
	return &Verifier{keys: keys, jwksURL: jwksURL, issuer: issuer, clientID: clientID, isAdmin: isAdmin}
}

// IssuerURL is the token issuer of a Cognito user pool.
func IssuerURL(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// JWKSURL is where a user pool publishes its keys.
func JWKSURL(issuerURL string) string {
	return fmt.Sprintf("%s/.well-known/jwks.json", issuerURL)
}

// Verify validates the signature and standard claims of an ID token and
// rebuilds the identity it describes.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*types.AuthenticatedIdentity, error) {
	set, err := v.keys.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.clientID != "" {
		opts = append(opts, jwt.WithAudience(v.clientID))
	}

	token, err := jwt.Parse([]byte(rawToken), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	// access tokens are signed by the same keys but carry no profile claims
	var use string
	if err := token.Get("token_use", &use); err != nil || use != "id" {
		return nil, fmt.Errorf("expected an ID token, got token_use %q", use)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, errors.New("no subject in JWT")
	}

	ident := &types.AuthenticatedIdentity{
		Subject: subject,
		Token:   rawToken,
	}

	// email and name are optional private claims
	_ = token.Get("email", &ident.Email)
	_ = token.Get("name", &ident.DisplayName)
	if ident.DisplayName == "" {
		ident.DisplayName = DisplayNameFromEmail(ident.Email)
	}

	if exp, ok := token.Expiration(); ok {
		ident.ExpiresAt = exp
	}

	if v.isAdmin != nil {
		ident.IsAdmin = v.isAdmin(ident.Email)
	}

	return ident, nil
}
