package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name,omitempty" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Profile carries the entitlement state for a user: subscription plan and
// the daily generation allowance. RemainingGenerations is a display cache;
// the generation_counts table is the source of truth.
type Profile struct {
	UserID               uuid.UUID `json:"user_id" db:"user_id"`
	Plan                 string    `json:"plan" db:"plan"`
	DailyLimit           int       `json:"daily_limit" db:"daily_limit"`
	RemainingGenerations int       `json:"remaining_generations" db:"remaining_generations"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

type RoleAssignment struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// APICredential is an API key owned by a user. Only the SHA-256 hash of the
// key is persisted; the plaintext is shown once at creation.
type APICredential struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	KeyHash    string     `json:"-" db:"key_hash"`
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"`
	Name       string     `json:"name" db:"name"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// GenerationCount is one row per user per calendar day. Count only ever
// increases within a day.
type GenerationCount struct {
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Date   time.Time `json:"date" db:"date"`
	Count  int       `json:"count" db:"count"`
}
