package providers

import "context"

// Identity is the caller bound to created and joined games.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
}

type IdentityProvider interface {
	// VerifyToken resolves a bearer token to an identity.
	VerifyToken(ctx context.Context, idToken string) (*Identity, error)
}
