package providers

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
)

var _ IdentityProvider = &FirebaseIdentityProvider{}

type FirebaseIdentityProvider struct {
	// auth is the Firebase Auth client
	auth *auth.Client
}

// NewFirebaseIdentityProvider creates a new FirebaseIdentityProvider
func NewFirebaseIdentityProvider(ctx context.Context, app *firebase.App) (*FirebaseIdentityProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %v", err)
	}

	return &FirebaseIdentityProvider{
		auth: client,
	}, nil
}

// VerifyToken verifies a Firebase ID token
func (p *FirebaseIdentityProvider) VerifyToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := p.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("error verifying token: %v", err)
	}

	displayName := token.UID
	if name, ok := token.Claims["name"].(string); ok && name != "" {
		displayName = name
	}

	return &Identity{
		UID:         token.UID,
		DisplayName: displayName,
	}, nil
}
