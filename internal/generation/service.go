package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxcart/voxcart/internal/models"
	"github.com/voxcart/voxcart/internal/queue"
)

var ErrJobNotFound = errors.New("generation job not found")

// CreateRequest is the dashboard/API payload for a new generation.
type CreateRequest struct {
	ProductText string  `json:"product_text"`
	Voice       string  `json:"voice,omitempty"`
	Tone        string  `json:"tone,omitempty"`
	Speed       float64 `json:"speed,omitempty"`
}

// Service owns generation_jobs rows and hands new jobs to the queue.
type Service struct {
	db    *pgxpool.Pool
	queue *queue.Client
}

func NewService(db *pgxpool.Pool, qc *queue.Client) *Service {
	return &Service{db: db, queue: qc}
}

// Create inserts a pending job and enqueues it. The quota check happens at
// the handler; RecordGeneration happens in the worker only after audio is
// actually produced.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.GenerationJob, error) {
	if req.ProductText == "" {
		return nil, errors.New("product_text is required")
	}

	var job models.GenerationJob
	err := s.db.QueryRow(ctx,
		`INSERT INTO generation_jobs (user_id, product_text, voice, tone, speed, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, user_id, product_text, voice, tone, speed, status, audio_url, error, completed_at, created_at`,
		userID, req.ProductText, req.Voice, req.Tone, req.Speed, models.GenerationStatusPending,
	).Scan(&job.ID, &job.UserID, &job.ProductText, &job.Voice, &job.Tone, &job.Speed,
		&job.Status, &job.AudioURL, &job.Error, &job.CompletedAt, &job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create generation job: %w", err)
	}

	err = s.queue.EnqueueGenerationSynthesize(queue.GenerationSynthesizePayload{
		JobID:  job.ID.String(),
		UserID: userID.String(),
	})
	if err != nil {
		// The row stays pending; a failed enqueue surfaces to the caller
		// rather than leaving a silently dead job.
		return nil, fmt.Errorf("enqueue generation: %w", err)
	}

	return &job, nil
}

func (s *Service) Get(ctx context.Context, userID, jobID uuid.UUID) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, product_text, voice, tone, speed, status, audio_url, error, completed_at, created_at
		 FROM generation_jobs WHERE id = $1 AND user_id = $2`,
		jobID, userID,
	).Scan(&job.ID, &job.UserID, &job.ProductText, &job.Voice, &job.Tone, &job.Speed,
		&job.Status, &job.AudioURL, &job.Error, &job.CompletedAt, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generation job: %w", err)
	}
	return &job, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.GenerationJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, product_text, voice, tone, speed, status, audio_url, error, completed_at, created_at
		 FROM generation_jobs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list generation jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.GenerationJob
	for rows.Next() {
		var job models.GenerationJob
		if err := rows.Scan(&job.ID, &job.UserID, &job.ProductText, &job.Voice, &job.Tone, &job.Speed,
			&job.Status, &job.AudioURL, &job.Error, &job.CompletedAt, &job.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generation job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// GetByID loads a job without an ownership filter; worker-side only.
func (s *Service) GetByID(ctx context.Context, jobID uuid.UUID) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, product_text, voice, tone, speed, status, audio_url, error, completed_at, created_at
		 FROM generation_jobs WHERE id = $1`,
		jobID,
	).Scan(&job.ID, &job.UserID, &job.ProductText, &job.Voice, &job.Tone, &job.Speed,
		&job.Status, &job.AudioURL, &job.Error, &job.CompletedAt, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generation job: %w", err)
	}
	return &job, nil
}

func (s *Service) MarkProcessing(ctx context.Context, jobID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE generation_jobs SET status = $2 WHERE id = $1",
		jobID, models.GenerationStatusProcessing,
	)
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

func (s *Service) MarkDone(ctx context.Context, jobID uuid.UUID, audioURL string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE generation_jobs SET status = $2, audio_url = $3, completed_at = now() WHERE id = $1",
		jobID, models.GenerationStatusDone, audioURL,
	)
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

func (s *Service) MarkFailed(ctx context.Context, jobID uuid.UUID, cause string) error {
	_, err := s.db.Exec(ctx,
		"UPDATE generation_jobs SET status = $2, error = $3, completed_at = now() WHERE id = $1",
		jobID, models.GenerationStatusFailed, cause,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}
