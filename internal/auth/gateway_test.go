package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxcart/voxcart/internal/credential"
	"github.com/voxcart/voxcart/internal/entitlement"
)

type fakeCredentialLookup struct {
	owners map[string]uuid.UUID
	err    error
}

func (f *fakeCredentialLookup) LookupOwner(_ context.Context, apiKey string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	id, ok := f.owners[apiKey]
	if !ok {
		return uuid.Nil, credential.ErrCredentialNotFound
	}
	return id, nil
}

type fakePlanResolver struct {
	plans map[uuid.UUID]entitlement.Plan
	err   error
}

func (f *fakePlanResolver) ResolvePlan(_ context.Context, userID uuid.UUID) (entitlement.Plan, error) {
	if f.err != nil {
		return "", f.err
	}
	p, ok := f.plans[userID]
	if !ok {
		return "", entitlement.ErrProfileMissing
	}
	return p, nil
}

func authorizeRequest(t *testing.T, g *Gateway, apiKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/authorize", nil)
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	rec := httptest.NewRecorder()
	g.AuthorizeHandler(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestAuthorize_PremiumKeySucceeds(t *testing.T) {
	userID := uuid.New()
	g := NewGateway(
		&fakeCredentialLookup{owners: map[string]uuid.UUID{"vx_goodkey": userID}},
		&fakePlanResolver{plans: map[uuid.UUID]entitlement.Plan{userID: entitlement.PlanPremium}},
	)

	rec := authorizeRequest(t, g, "vx_goodkey")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Authenticated bool   `json:"authenticated"`
		UserID        string `json:"user_id"`
		Plan          string `json:"plan"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Authenticated)
	assert.Equal(t, userID.String(), body.UserID)
	assert.Equal(t, "premium", body.Plan)
}

func TestAuthorize_UnknownKey(t *testing.T) {
	g := NewGateway(
		&fakeCredentialLookup{owners: map[string]uuid.UUID{}},
		&fakePlanResolver{},
	)

	rec := authorizeRequest(t, g, "abc123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid API key", decodeError(t, rec))
}

func TestAuthorize_MissingHeader(t *testing.T) {
	g := NewGateway(&fakeCredentialLookup{}, &fakePlanResolver{})

	rec := authorizeRequest(t, g, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "missing or invalid API key", decodeError(t, rec))
}

func TestAuthorize_FreePlanDenied(t *testing.T) {
	userID := uuid.New()
	g := NewGateway(
		&fakeCredentialLookup{owners: map[string]uuid.UUID{"vx_freekey": userID}},
		&fakePlanResolver{plans: map[uuid.UUID]entitlement.Plan{userID: entitlement.PlanFree}},
	)

	rec := authorizeRequest(t, g, "vx_freekey")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "plan free does not include API access", decodeError(t, rec))
}

func TestAuthorize_ProfileMissing(t *testing.T) {
	userID := uuid.New()
	g := NewGateway(
		&fakeCredentialLookup{owners: map[string]uuid.UUID{"vx_orphan": userID}},
		&fakePlanResolver{plans: map[uuid.UUID]entitlement.Plan{}},
	)

	rec := authorizeRequest(t, g, "vx_orphan")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "user profile not found", decodeError(t, rec))
}

func TestAuthorize_StoreFailure(t *testing.T) {
	g := NewGateway(
		&fakeCredentialLookup{err: errors.New("connection reset")},
		&fakePlanResolver{},
	)

	rec := authorizeRequest(t, g, "vx_anykey")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "authorization unavailable", decodeError(t, rec))
}

func TestRequireAPIKey_StowsIdentity(t *testing.T) {
	userID := uuid.New()
	g := NewGateway(
		&fakeCredentialLookup{owners: map[string]uuid.UUID{"vx_goodkey": userID}},
		&fakePlanResolver{plans: map[uuid.UUID]entitlement.Plan{userID: entitlement.PlanAdmin}},
	)

	var got *Identity
	handler := g.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/generations", nil)
	req.Header.Set("Authorization", "Bearer vx_goodkey")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, entitlement.PlanAdmin, got.Plan)
}

func TestRequireAPIKey_DeniedRequestNeverReachesHandler(t *testing.T) {
	g := NewGateway(&fakeCredentialLookup{owners: map[string]uuid.UUID{}}, &fakePlanResolver{})

	called := false
	handler := g.RequireAPIKey(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/generations", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestExtractBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", ExtractBearer(req))

	req.Header.Set("Authorization", "Bearer vx_token")
	assert.Equal(t, "vx_token", ExtractBearer(req))

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", ExtractBearer(req))
}
