package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	authproviders "github.com/pegwheel/pegwheel/pkg/auth/providers"
	"github.com/pegwheel/pegwheel/pkg/log"
)

type ContextKey int

const (
	// IdentityContextKey is the key used to store the caller identity
	// in the request context
	IdentityContextKey ContextKey = iota
)

// NewIdentityMiddleware resolves the request's bearer token to an
// identity and rejects callers other than the engine's owner. A missing
// Authorization header is passed through as an empty token so static
// providers can accept it.
func NewIdentityMiddleware(provider authproviders.IdentityProvider, ownerUID string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bearerToken, err := parseBearerToken(r)
			if err != nil {
				log.Error("failed to parse bearer token: %v", err)
				http.Error(w, "failed to parse bearer token", http.StatusUnauthorized)
				return
			}

			identity, err := provider.VerifyToken(r.Context(), bearerToken)
			if err != nil {
				log.Error("failed to verify token: %v", err)
				http.Error(w, "failed to verify token", http.StatusUnauthorized)
				return
			}

			if identity.UID != ownerUID {
				http.Error(w, "not the session owner", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseBearerToken parses the bearer token from the Authorization
// header. A missing header yields an empty token.
func parseBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}
	return parts[1], nil
}
