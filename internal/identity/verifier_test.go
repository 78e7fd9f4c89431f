package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://cognito-idp.ap-south-1.amazonaws.com/pool"
	testClientID = "app-client"
)

type staticKeys struct {
	set jwk.Set
	err error
}

func (s staticKeys) Lookup(ctx context.Context, u string) (jwk.Set, error) {
	return s.set, s.err
}

func signingKey(t *testing.T) (jwk.Key, jwk.Set) {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256()))

	pub, err := jwk.PublicKeyOf(key)
	require.NoError(t, err)

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	return key, set
}

func signToken(t *testing.T, key jwk.Key, build func(b *jwt.Builder) *jwt.Builder) string {
	t.Helper()

	tok, err := build(jwt.NewBuilder()).Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), key))
	require.NoError(t, err)

	return string(signed)
}

// idClaims sets the claims of a valid ID token for the test pool.
func idClaims(b *jwt.Builder) *jwt.Builder {
	return b.Subject("user-1").
		Issuer(testIssuer).
		Audience([]string{testClientID}).
		Expiration(time.Now().Add(time.Hour)).
		Claim("token_use", "id")
}

func TestVerify(t *testing.T) {
	key, set := signingKey(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	raw := signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-1").
			Issuer(testIssuer).
			Audience([]string{testClientID}).
			Expiration(exp).
			Claim("token_use", "id").
			Claim("email", "admin@gmail.com").
			Claim("name", "Admin")
	})

	isAdmin := func(email string) bool { return email == "admin@gmail.com" }
	v := NewVerifier(staticKeys{set: set}, JWKSURL(testIssuer), testIssuer, testClientID, isAdmin)

	ident, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "user-1", ident.Subject)
	assert.Equal(t, "admin@gmail.com", ident.Email)
	assert.Equal(t, "Admin", ident.DisplayName)
	assert.True(t, ident.IsAdmin)
	assert.Equal(t, raw, ident.Token)
	assert.True(t, exp.Equal(ident.ExpiresAt))
}

func TestVerify_NameFallsBackToEmail(t *testing.T) {
	key, set := signingKey(t)

	raw := signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
		return b.Subject("user-2").
			Expiration(time.Now().Add(time.Hour)).
			Claim("token_use", "id").
			Claim("email", "ravi@example.com")
	})

	ident, err := NewVerifier(staticKeys{set: set}, "jwks", "", "", nil).Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "ravi", ident.DisplayName)
	assert.False(t, ident.IsAdmin)
}

func TestVerify_Rejects(t *testing.T) {
	key, set := signingKey(t)
	otherKey, _ := signingKey(t)

	tests := []struct {
		name  string
		keys  staticKeys
		token string
	}{
		{
			name: "expired",
			keys: staticKeys{set: set},
			token: signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
				return idClaims(b).Expiration(time.Now().Add(-time.Hour))
			}),
		},
		{
			name: "wrong issuer",
			keys: staticKeys{set: set},
			token: signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
				return idClaims(b).Issuer("https://elsewhere")
			}),
		},
		{
			name: "unknown signing key",
			keys: staticKeys{set: set},
			token: signToken(t, otherKey, func(b *jwt.Builder) *jwt.Builder {
				return idClaims(b)
			}),
		},
		{
			name: "missing subject",
			keys: staticKeys{set: set},
			token: signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
				return b.Issuer(testIssuer).
					Audience([]string{testClientID}).
					Expiration(time.Now().Add(time.Hour)).
					Claim("token_use", "id")
			}),
		},
		{
			name: "other app client",
			keys: staticKeys{set: set},
			token: signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
				return idClaims(b).Audience([]string{"someone-else"})
			}),
		},
		{
			name: "access token",
			keys: staticKeys{set: set},
			token: signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
				return idClaims(b).Claim("token_use", "access")
			}),
		},
		{
			name: "no token_use",
			keys: staticKeys{set: set},
			token: signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
				return b.Subject("user-1").
					Issuer(testIssuer).
					Audience([]string{testClientID}).
					Expiration(time.Now().Add(time.Hour))
			}),
		},
		{
			name:  "garbage",
			keys:  staticKeys{set: set},
			token: "not-a-jwt",
		},
		{
			name:  "jwks unavailable",
			keys:  staticKeys{err: errors.New("fetch failed")},
			token: "irrelevant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.keys, JWKSURL(testIssuer), testIssuer, testClientID, nil)
			_, err := v.Verify(context.Background(), tt.token)
			require.Error(t, err)
		})
	}
}

func TestIssuerURL(t *testing.T) {
	issuer := IssuerURL("ap-south-1", "ap-south-1_abc")
	assert.Equal(t, "https://cognito-idp.ap-south-1.amazonaws.com/ap-south-1_abc", issuer)
	assert.Equal(t, issuer+"/.well-known/jwks.json", JWKSURL(issuer))
}
