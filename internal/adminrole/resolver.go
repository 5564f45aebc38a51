package adminrole

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/models"
)

// RoleAdmin is the only role currently assigned.
const RoleAdmin = "admin"

// RoleStore persists role assignments. Assign must be an idempotent upsert
// keyed on (user_id, role).
type RoleStore interface {
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
	RemoveRole(ctx context.Context, userID uuid.UUID, role string) error
	ListByRole(ctx context.Context, role string) ([]models.RoleAssignment, error)
}

// PlanRepairer heals a profile whose stored plan disagrees with an
// allow-list decision.
type PlanRepairer interface {
	UpdatePlan(ctx context.Context, userID uuid.UUID, plan string) error
}

// Resolver decides whether a user holds admin privilege. The allow-list
// email is authoritative and short-circuits; the role_assignments table is
// consulted only when the email does not decide. A user can transiently be
// "admin role, non-admin plan" or the reverse; Reconcile heals that.
type Resolver struct {
	roles       RoleStore
	profiles    PlanRepairer
	adminEmails map[string]bool
}

func NewResolver(roles RoleStore, profiles PlanRepairer, adminEmails []string) *Resolver {
	set := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		set[strings.ToLower(e)] = true
	}
	return &Resolver{roles: roles, profiles: profiles, adminEmails: set}
}

// IsAdmin is the read-only decision. It performs no writes; callers that
// get true for an allow-list email should follow up with ReconcileAsync.
func (r *Resolver) IsAdmin(ctx context.Context, userID uuid.UUID, email string) (bool, error) {
	if r.adminEmails[strings.ToLower(email)] {
		return true, nil
	}
	return r.roles.HasRole(ctx, userID, RoleAdmin)
}

// IsAdminEmail reports whether email is on the allow-list, without
// touching storage.
func (r *Resolver) IsAdminEmail(email string) bool {
	return r.adminEmails[strings.ToLower(email)]
}

// Reconcile upserts the missing role row and repairs the stored plan for a
// user already decided to be admin. Both writes are best-effort; failures
// are logged and never surfaced, because persisted state must not override
// a correct decision.
func (r *Resolver) Reconcile(ctx context.Context, userID uuid.UUID) {
	if err := r.roles.AssignRole(ctx, userID, RoleAdmin); err != nil {
		slog.Warn("admin role reconcile: assign failed", "user_id", userID, "error", err)
	}
	if err := r.profiles.UpdatePlan(ctx, userID, "admin"); err != nil {
		slog.Warn("admin role reconcile: plan repair failed", "user_id", userID, "error", err)
	}
}

// ReconcileAsync runs Reconcile in a detached goroutine with its own
// deadline, so the request that triggered it never waits on the writes.
func (r *Resolver) ReconcileAsync(userID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.Reconcile(ctx, userID)
	}()
}

// Assign grants the admin role to userID. Idempotent: assigning twice
// leaves exactly one row. Profile.plan is untouched; plan and role are
// reconciled independently.
func (r *Resolver) Assign(ctx context.Context, userID uuid.UUID) error {
	return r.roles.AssignRole(ctx, userID, RoleAdmin)
}

// Remove revokes the admin role from userID.
func (r *Resolver) Remove(ctx context.Context, userID uuid.UUID) error {
	return r.roles.RemoveRole(ctx, userID, RoleAdmin)
}

// ListAdmins returns every current admin role assignment.
func (r *Resolver) ListAdmins(ctx context.Context) ([]models.RoleAssignment, error) {
	return r.roles.ListByRole(ctx, RoleAdmin)
}
