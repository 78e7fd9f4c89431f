package types

import "time"

// AuthenticatedIdentity is a signed-in account as reported by the identity provider.
type AuthenticatedIdentity struct {
	Subject     string
	Email       string
	DisplayName string
	IsAdmin     bool

	// Token is the provider-issued ID token that backs the session.
	Token     string
	ExpiresAt time.Time
}
