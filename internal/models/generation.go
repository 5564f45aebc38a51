package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	GenerationStatusPending    = "pending"
	GenerationStatusProcessing = "processing"
	GenerationStatusDone       = "done"
	GenerationStatusFailed     = "failed"
)

// GenerationJob tracks one product-text-to-audio conversion from enqueue to
// finished clip.
type GenerationJob struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	ProductText string     `json:"product_text" db:"product_text"`
	Voice       string     `json:"voice" db:"voice"`
	Tone        string     `json:"tone,omitempty" db:"tone"`
	Speed       float64    `json:"speed,omitempty" db:"speed"`
	Status      string     `json:"status" db:"status"`
	AudioURL    string     `json:"audio_url,omitempty" db:"audio_url"`
	Error       string     `json:"error,omitempty" db:"error"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
