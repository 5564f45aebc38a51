package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/credential"
	"github.com/voxcart/voxcart/internal/entitlement"
)

// ErrMissingAPIKey is returned when the Authorization header is absent or
// is not a bearer token.
var ErrMissingAPIKey = errors.New("missing or invalid API key")

// CredentialLookup resolves a bearer key to its owning user.
type CredentialLookup interface {
	LookupOwner(ctx context.Context, apiKey string) (uuid.UUID, error)
}

// PlanResolver loads the effective plan for a user.
type PlanResolver interface {
	ResolvePlan(ctx context.Context, userID uuid.UUID) (entitlement.Plan, error)
}

// Decision is a successful authorization outcome.
type Decision struct {
	UserID uuid.UUID        `json:"user_id"`
	Plan   entitlement.Plan `json:"plan"`
}

// Gateway is the programmatic-access entry point. Each request walks the
// same short chain: bearer extraction, credential lookup, plan resolution,
// capability check. Every failure is terminal; nothing is retried.
type Gateway struct {
	creds CredentialLookup
	plans PlanResolver
}

func NewGateway(creds CredentialLookup, plans PlanResolver) *Gateway {
	return &Gateway{creds: creds, plans: plans}
}

// Authorize runs the full decision chain for a bearer token.
func (g *Gateway) Authorize(ctx context.Context, bearer string) (*Decision, error) {
	if bearer == "" {
		return nil, ErrMissingAPIKey
	}

	userID, err := g.creds.LookupOwner(ctx, bearer)
	if err != nil {
		return nil, err
	}

	plan, err := g.plans.ResolvePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := entitlement.CheckCapability(plan, entitlement.CapabilityAPIAccess); err != nil {
		return nil, err
	}

	return &Decision{UserID: userID, Plan: plan}, nil
}

// AuthorizeHandler is the POST /authorize endpoint: the decision chain
// exposed directly, for integrations that validate keys up front.
func (g *Gateway) AuthorizeHandler(w http.ResponseWriter, r *http.Request) {
	decision, err := g.Authorize(r.Context(), ExtractBearer(r))
	if err != nil {
		writeDenial(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user_id":       decision.UserID,
		"plan":          decision.Plan,
	})
}

// RequireAPIKey guards programmatic endpoints with the same decision chain
// and stows the authenticated identity in the request context.
func (g *Gateway) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision, err := g.Authorize(r.Context(), ExtractBearer(r))
		if err != nil {
			writeDenial(w, err)
			return
		}

		ctx := WithIdentity(r.Context(), &Identity{
			UserID: decision.UserID,
			Plan:   decision.Plan,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeDenial maps the error taxonomy onto HTTP statuses. Store failures
// are the only kind logged as an operational concern; client errors are
// not.
func writeDenial(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		writeError(w, http.StatusUnauthorized, "missing or invalid API key")
	case errors.Is(err, credential.ErrCredentialNotFound):
		writeError(w, http.StatusUnauthorized, "invalid API key")
	case errors.Is(err, entitlement.ErrProfileMissing):
		writeError(w, http.StatusForbidden, "user profile not found")
	case errors.Is(err, entitlement.ErrCapabilityDenied):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("authorization store failure", "error", err)
		writeError(w, http.StatusInternalServerError, "authorization unavailable")
	}
}
