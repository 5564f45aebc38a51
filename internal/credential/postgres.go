package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxcart/voxcart/internal/models"
)

// PGStore is the pgx-backed credential store.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) LookupOwner(ctx context.Context, apiKey string) (uuid.UUID, error) {
	if apiKey == "" {
		return uuid.Nil, ErrCredentialNotFound
	}

	hash := HashKey(apiKey)

	var id, userID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id FROM api_credentials WHERE key_hash = $1 AND is_active = true`,
		hash,
	).Scan(&id, &userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrCredentialNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup credential: %w", err)
	}

	// Last-used is bookkeeping, never worth blocking the request.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.db.Exec(ctx, "UPDATE api_credentials SET last_used_at = $1 WHERE id = $2", time.Now(), id)
	}()

	return userID, nil
}

func (s *PGStore) Create(ctx context.Context, userID uuid.UUID, name string) (*models.APICredential, string, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate key: %w", err)
	}

	var c models.APICredential
	err = s.db.QueryRow(ctx,
		`INSERT INTO api_credentials (user_id, key_hash, key_prefix, name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, key_hash, key_prefix, name, is_active, last_used_at, created_at`,
		userID, HashKey(key), KeyPrefix(key), name,
	).Scan(&c.ID, &c.UserID, &c.KeyHash, &c.KeyPrefix, &c.Name, &c.IsActive, &c.LastUsedAt, &c.CreatedAt)
	if err != nil {
		return nil, "", fmt.Errorf("create credential: %w", err)
	}

	return &c, key, nil
}

func (s *PGStore) List(ctx context.Context, userID uuid.UUID) ([]models.APICredential, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, key_hash, key_prefix, name, is_active, last_used_at, created_at
		 FROM api_credentials WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var creds []models.APICredential
	for rows.Next() {
		var c models.APICredential
		if err := rows.Scan(&c.ID, &c.UserID, &c.KeyHash, &c.KeyPrefix, &c.Name, &c.IsActive, &c.LastUsedAt, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func (s *PGStore) Delete(ctx context.Context, userID, credentialID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		"DELETE FROM api_credentials WHERE id = $1 AND user_id = $2",
		credentialID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
