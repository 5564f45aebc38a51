package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/models"
)

// ProfileStore is the slice of profile persistence the resolver needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdatePlan(ctx context.Context, userID uuid.UUID, plan string) error
}

// UserStore resolves a user's identity record.
type UserStore interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Resolver answers "what plan does this user have" with one carve-out: an
// email on the admin allow-list is always admin, whatever the stored
// profile says. Profile creation has historically been lossy, so the
// stored plan is repaired opportunistically when it disagrees.
type Resolver struct {
	profiles    ProfileStore
	users       UserStore
	adminEmails map[string]bool

	// repair is swapped out in tests; the default runs RepairPlan in a
	// detached goroutine so a failed write can never fail a resolution.
	repair func(userID uuid.UUID)
}

func NewResolver(profiles ProfileStore, users UserStore, adminEmails []string) *Resolver {
	set := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		set[strings.ToLower(e)] = true
	}
	r := &Resolver{
		profiles:    profiles,
		users:       users,
		adminEmails: set,
	}
	r.repair = func(userID uuid.UUID) {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			r.RepairPlan(ctx, userID)
		}()
	}
	return r
}

// IsAdminEmail reports whether the address is on the configured admin
// allow-list.
func (r *Resolver) IsAdminEmail(email string) bool {
	return r.adminEmails[strings.ToLower(email)]
}

// ResolvePlan loads the stored plan for userID. If the user's email is on
// the admin allow-list the result is PlanAdmin regardless of stored state,
// and a best-effort repair of the profile is scheduled.
func (r *Resolver) ResolvePlan(ctx context.Context, userID uuid.UUID) (Plan, error) {
	profile, err := r.profiles.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}

	user, err := r.users.GetUser(ctx, userID)
	if err == nil && r.IsAdminEmail(user.Email) {
		if Plan(profile.Plan) != PlanAdmin {
			r.repair(userID)
		}
		return PlanAdmin, nil
	}

	plan, err := ParsePlan(profile.Plan)
	if err != nil {
		return "", fmt.Errorf("profile for %s: %w", userID, err)
	}
	return plan, nil
}

// RepairPlan writes plan=admin to the stored profile. Failures are logged
// only; the decision that triggered the repair has already been made.
func (r *Resolver) RepairPlan(ctx context.Context, userID uuid.UUID) {
	if err := r.profiles.UpdatePlan(ctx, userID, string(PlanAdmin)); err != nil {
		slog.Warn("admin plan repair failed", "user_id", userID, "error", err)
	}
}
