package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGCountStore is the pgx-backed generation counter store, one row per
// user per calendar day.
type PGCountStore struct {
	db *pgxpool.Pool
}

func NewPGCountStore(db *pgxpool.Pool) *PGCountStore {
	return &PGCountStore{db: db}
}

func (s *PGCountStore) TodayCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"SELECT count FROM generation_counts WHERE user_id = $1 AND date = CURRENT_DATE",
		userID,
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("today count: %w", err)
	}
	return count, nil
}

func (s *PGCountStore) IncrementToday(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`INSERT INTO generation_counts (user_id, date, count)
		 VALUES ($1, CURRENT_DATE, 1)
		 ON CONFLICT (user_id, date) DO UPDATE SET count = generation_counts.count + 1
		 RETURNING count`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment count: %w", err)
	}
	return count, nil
}
