package quota

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/models"
)

// Unlimited is the sentinel Remaining returns when the global
// unlimited-generations flag is set.
const Unlimited = -1

// CountStore persists the per-user, per-day generation counters.
type CountStore interface {
	TodayCount(ctx context.Context, userID uuid.UUID) (int, error)
	// IncrementToday bumps today's counter, creating the row if needed,
	// and returns the new count.
	IncrementToday(ctx context.Context, userID uuid.UUID) (int, error)
}

// ProfileStore is the slice of profile persistence the accountant needs.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SetRemainingGenerations(ctx context.Context, userID uuid.UUID, remaining int) error
}

// Accountant derives the remaining daily allowance from the count table.
// The profile's remaining_generations column is only a display cache kept
// fresh on writes; readers must tolerate it being stale.
//
// Two concurrent RecordGeneration calls for the same user can both read a
// stale remaining value and both proceed. There is no compare-and-set
// here; a user racing their own quota boundary overshoots by at most the
// number of in-flight generations.
type Accountant struct {
	counts   CountStore
	profiles ProfileStore
}

func NewAccountant(counts CountStore, profiles ProfileStore) *Accountant {
	return &Accountant{counts: counts, profiles: profiles}
}

// Remaining computes daily_limit minus today's count, clamped at zero.
// When settings carry the global unlimited flag the stored counts are
// irrelevant and Unlimited is returned.
func (a *Accountant) Remaining(ctx context.Context, userID uuid.UUID, settings models.AppSettings) (int, error) {
	if settings.UnlimitedGenerationsForAll {
		return Unlimited, nil
	}

	p, err := a.profiles.GetProfile(ctx, userID)
	if err != nil {
		return 0, err
	}

	count, err := a.counts.TodayCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	remaining := p.DailyLimit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// RecordGeneration increments today's counter and refreshes the display
// cache. The cache write is best-effort: a failure there leaves the
// counter correct and is only logged.
func (a *Accountant) RecordGeneration(ctx context.Context, userID uuid.UUID) error {
	newCount, err := a.counts.IncrementToday(ctx, userID)
	if err != nil {
		return err
	}

	p, err := a.profiles.GetProfile(ctx, userID)
	if err != nil {
		slog.Warn("quota display cache refresh skipped", "user_id", userID, "error", err)
		return nil
	}

	remaining := p.DailyLimit - newCount
	if remaining < 0 {
		remaining = 0
	}
	if err := a.profiles.SetRemainingGenerations(ctx, userID, remaining); err != nil {
		slog.Warn("quota display cache refresh failed", "user_id", userID, "error", err)
	}
	return nil
}
