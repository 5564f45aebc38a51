package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxcart/voxcart/internal/entitlement"
	"github.com/voxcart/voxcart/internal/models"
	"github.com/voxcart/voxcart/internal/settings"
)

// Service owns the users and profiles tables. Profiles are created lazily
// on first authentication and never hard-deleted.
type Service struct {
	db       *pgxpool.Pool
	settings *settings.Service
}

func NewService(db *pgxpool.Pool, st *settings.Service) *Service {
	return &Service{db: db, settings: st}
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		"SELECT id, email, full_name, created_at FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// EnsureUser mirrors the external identity record locally. The id is the
// stable identity from the auth provider; email may change upstream.
func (s *Service) EnsureUser(ctx context.Context, id uuid.UUID, email, fullName string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name`,
		id, email, fullName,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// GetProfile loads the entitlement record for a user. Absence is
// entitlement.ErrProfileMissing, distinct from store failure.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(ctx,
		`SELECT user_id, plan, daily_limit, remaining_generations, created_at, updated_at
		 FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Plan, &p.DailyLimit, &p.RemainingGenerations, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entitlement.ErrProfileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// GetOrCreate returns the profile for userID, creating a free-plan profile
// with the currently configured free allowance on first authentication.
func (s *Service) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.GetProfile(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, entitlement.ErrProfileMissing) {
		return nil, err
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	limit := snap.DailyLimitFor(string(entitlement.PlanFree))

	var created models.Profile
	err = s.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, plan, daily_limit, remaining_generations)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (user_id) DO UPDATE SET updated_at = profiles.updated_at
		 RETURNING user_id, plan, daily_limit, remaining_generations, created_at, updated_at`,
		userID, string(entitlement.PlanFree), limit,
	).Scan(&created.UserID, &created.Plan, &created.DailyLimit, &created.RemainingGenerations,
		&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &created, nil
}

// UpdatePlan switches a user's plan and recomputes both daily_limit and
// remaining_generations from the configured limit and today's actual count.
func (s *Service) UpdatePlan(ctx context.Context, userID uuid.UUID, plan string) error {
	if _, err := entitlement.ParsePlan(plan); err != nil {
		return err
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}
	limit := snap.DailyLimitFor(plan)

	tag, err := s.db.Exec(ctx,
		`UPDATE profiles SET
		   plan = $2,
		   daily_limit = $3,
		   remaining_generations = GREATEST($3 - COALESCE(
		     (SELECT count FROM generation_counts WHERE user_id = $1 AND date = CURRENT_DATE), 0), 0),
		   updated_at = now()
		 WHERE user_id = $1`,
		userID, plan, limit,
	)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entitlement.ErrProfileMissing
	}
	return nil
}

// SetRemainingGenerations refreshes the denormalized display counter. The
// generation_counts table stays canonical.
func (s *Service) SetRemainingGenerations(ctx context.Context, userID uuid.UUID, remaining int) error {
	_, err := s.db.Exec(ctx,
		"UPDATE profiles SET remaining_generations = $2, updated_at = now() WHERE user_id = $1",
		userID, remaining,
	)
	if err != nil {
		return fmt.Errorf("set remaining generations: %w", err)
	}
	return nil
}

// UserWithProfile is the admin listing row.
type UserWithProfile struct {
	models.User
	Plan                 string `json:"plan"`
	DailyLimit           int    `json:"daily_limit"`
	RemainingGenerations int    `json:"remaining_generations"`
}

// ListUsers returns all users with their profile state, newest first.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]UserWithProfile, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT u.id, u.email, u.full_name, u.created_at,
		        COALESCE(p.plan, 'free'), COALESCE(p.daily_limit, 0), COALESCE(p.remaining_generations, 0)
		 FROM users u LEFT JOIN profiles p ON p.user_id = u.id
		 ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []UserWithProfile
	for rows.Next() {
		var r UserWithProfile
		if err := rows.Scan(&r.ID, &r.Email, &r.FullName, &r.CreatedAt,
			&r.Plan, &r.DailyLimit, &r.RemainingGenerations); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
