package adminrole

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxcart/voxcart/internal/models"
)

type fakeRoleStore struct {
	roles     map[uuid.UUID]map[string]bool
	assignErr error
	hasErr    error
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{roles: make(map[uuid.UUID]map[string]bool)}
}

func (f *fakeRoleStore) HasRole(_ context.Context, userID uuid.UUID, role string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.roles[userID][role], nil
}

func (f *fakeRoleStore) AssignRole(_ context.Context, userID uuid.UUID, role string) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	if f.roles[userID] == nil {
		f.roles[userID] = make(map[string]bool)
	}
	f.roles[userID][role] = true
	return nil
}

func (f *fakeRoleStore) RemoveRole(_ context.Context, userID uuid.UUID, role string) error {
	delete(f.roles[userID], role)
	return nil
}

func (f *fakeRoleStore) ListByRole(_ context.Context, role string) ([]models.RoleAssignment, error) {
	var out []models.RoleAssignment
	for id, rs := range f.roles {
		if rs[role] {
			out = append(out, models.RoleAssignment{UserID: id, Role: role})
		}
	}
	return out, nil
}

type fakePlanRepairer struct {
	plans     map[uuid.UUID]string
	updateErr error
}

func (f *fakePlanRepairer) UpdatePlan(_ context.Context, userID uuid.UUID, plan string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.plans == nil {
		f.plans = make(map[uuid.UUID]string)
	}
	f.plans[userID] = plan
	return nil
}

func TestIsAdmin_AllowListShortCircuits(t *testing.T) {
	roles := newFakeRoleStore()
	roles.hasErr = errors.New("store down")
	r := NewResolver(roles, &fakePlanRepairer{}, []string{"root@example.com"})

	// allow-list decision must not touch the role store at all
	ok, err := r.IsAdmin(context.Background(), uuid.New(), "ROOT@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsAdmin_FallsBackToRoleRow(t *testing.T) {
	userID := uuid.New()
	roles := newFakeRoleStore()
	require.NoError(t, roles.AssignRole(context.Background(), userID, RoleAdmin))
	r := NewResolver(roles, &fakePlanRepairer{}, nil)

	ok, err := r.IsAdmin(context.Background(), userID, "user@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsAdmin(context.Background(), uuid.New(), "other@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsAdminEmail(t *testing.T) {
	r := NewResolver(newFakeRoleStore(), &fakePlanRepairer{}, []string{"Root@Example.com"})
	assert.True(t, r.IsAdminEmail("root@example.com"))
	assert.False(t, r.IsAdminEmail("user@example.com"))
	assert.False(t, r.IsAdminEmail(""))
}

func TestReconcile_WritesRoleAndPlan(t *testing.T) {
	userID := uuid.New()
	roles := newFakeRoleStore()
	repairer := &fakePlanRepairer{}
	r := NewResolver(roles, repairer, []string{"root@example.com"})

	r.Reconcile(context.Background(), userID)

	assert.True(t, roles.roles[userID][RoleAdmin])
	assert.Equal(t, "admin", repairer.plans[userID])
}

func TestReconcile_FailuresAreSwallowed(t *testing.T) {
	userID := uuid.New()
	roles := newFakeRoleStore()
	roles.assignErr = errors.New("assign refused")
	repairer := &fakePlanRepairer{updateErr: errors.New("update refused")}
	r := NewResolver(roles, repairer, nil)

	// must not panic or surface anything
	r.Reconcile(context.Background(), userID)
}

func TestAssign_Idempotent(t *testing.T) {
	userID := uuid.New()
	roles := newFakeRoleStore()
	r := NewResolver(roles, &fakePlanRepairer{}, nil)

	require.NoError(t, r.Assign(context.Background(), userID))
	require.NoError(t, r.Assign(context.Background(), userID))

	admins, err := r.ListAdmins(context.Background())
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestRemove(t *testing.T) {
	userID := uuid.New()
	roles := newFakeRoleStore()
	r := NewResolver(roles, &fakePlanRepairer{}, nil)

	require.NoError(t, r.Assign(context.Background(), userID))
	require.NoError(t, r.Remove(context.Background(), userID))

	ok, err := r.IsAdmin(context.Background(), userID, "user@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
