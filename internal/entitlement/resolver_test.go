package entitlement

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxcart/voxcart/internal/models"
)

type fakeProfileStore struct {
	profiles  map[uuid.UUID]*models.Profile
	updateErr error
	updates   map[uuid.UUID]string
	getErr    error
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: make(map[uuid.UUID]*models.Profile),
		updates:  make(map[uuid.UUID]string),
	}
}

func (f *fakeProfileStore) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, ErrProfileMissing
	}
	return p, nil
}

func (f *fakeProfileStore) UpdatePlan(_ context.Context, userID uuid.UUID, plan string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[userID] = plan
	if p, ok := f.profiles[userID]; ok {
		p.Plan = plan
	}
	return nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserStore) GetUser(_ context.Context, userID uuid.UUID) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func syncRepair(r *Resolver) {
	r.repair = func(userID uuid.UUID) {
		r.RepairPlan(context.Background(), userID)
	}
}

func TestResolvePlan_StoredPlan(t *testing.T) {
	userID := uuid.New()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, Plan: "premium"}
	users := &fakeUserStore{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "someone@example.com"},
	}}

	r := NewResolver(profiles, users, []string{"admin@example.com"})

	plan, err := r.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, plan)
	assert.Empty(t, profiles.updates)
}

func TestResolvePlan_ProfileMissing(t *testing.T) {
	r := NewResolver(newFakeProfileStore(), &fakeUserStore{users: map[uuid.UUID]*models.User{}}, nil)

	_, err := r.ResolvePlan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrProfileMissing)
}

func TestResolvePlan_AdminEmailOverridesStoredPlan(t *testing.T) {
	userID := uuid.New()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, Plan: "free"}
	users := &fakeUserStore{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "Admin@Example.com"},
	}}

	r := NewResolver(profiles, users, []string{"admin@example.com"})
	syncRepair(r)

	plan, err := r.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, PlanAdmin, plan)

	// stored plan repaired opportunistically
	assert.Equal(t, "admin", profiles.updates[userID])
}

func TestResolvePlan_RepairFailureDoesNotFailResolution(t *testing.T) {
	userID := uuid.New()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, Plan: "free"}
	profiles.updateErr = errors.New("write refused")
	users := &fakeUserStore{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "admin@example.com"},
	}}

	r := NewResolver(profiles, users, []string{"admin@example.com"})
	syncRepair(r)

	plan, err := r.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, PlanAdmin, plan)
}

func TestResolvePlan_AdminPlanStoredNoRepair(t *testing.T) {
	userID := uuid.New()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, Plan: "admin"}
	users := &fakeUserStore{users: map[uuid.UUID]*models.User{
		userID: {ID: userID, Email: "admin@example.com"},
	}}

	r := NewResolver(profiles, users, []string{"admin@example.com"})
	syncRepair(r)

	plan, err := r.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, PlanAdmin, plan)
	assert.Empty(t, profiles.updates)
}

func TestResolvePlan_UserLookupFailureFallsBackToStoredPlan(t *testing.T) {
	userID := uuid.New()
	profiles := newFakeProfileStore()
	profiles.profiles[userID] = &models.Profile{UserID: userID, Plan: "basic"}

	r := NewResolver(profiles, &fakeUserStore{users: map[uuid.UUID]*models.User{}}, []string{"admin@example.com"})

	plan, err := r.ResolvePlan(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, PlanBasic, plan)
}
