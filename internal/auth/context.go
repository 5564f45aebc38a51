package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/entitlement"
)

// Identity is the authenticated caller stored in the request context by
// either the API key gateway or the JWT session middleware.
type Identity struct {
	UserID  uuid.UUID
	Email   string
	Plan    entitlement.Plan
	IsAdmin bool
}

type ctxKey string

const identityKey ctxKey = "identity"

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity, or nil outside an
// authenticated request.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
