package adminrole

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxcart/voxcart/internal/models"
)

// PGRoleStore is the pgx-backed role assignment store.
type PGRoleStore struct {
	db *pgxpool.Pool
}

func NewPGRoleStore(db *pgxpool.Pool) *PGRoleStore {
	return &PGRoleStore{db: db}
}

func (s *PGRoleStore) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM role_assignments WHERE user_id = $1 AND role = $2)",
		userID, role,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}

func (s *PGRoleStore) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO role_assignments (user_id, role) VALUES ($1, $2)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

func (s *PGRoleStore) RemoveRole(ctx context.Context, userID uuid.UUID, role string) error {
	_, err := s.db.Exec(ctx,
		"DELETE FROM role_assignments WHERE user_id = $1 AND role = $2",
		userID, role,
	)
	if err != nil {
		return fmt.Errorf("remove role: %w", err)
	}
	return nil
}

func (s *PGRoleStore) ListByRole(ctx context.Context, role string) ([]models.RoleAssignment, error) {
	rows, err := s.db.Query(ctx,
		"SELECT user_id, role, created_at FROM role_assignments WHERE role = $1 ORDER BY created_at",
		role,
	)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []models.RoleAssignment
	for rows.Next() {
		var ra models.RoleAssignment
		if err := rows.Scan(&ra.UserID, &ra.Role, &ra.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}
