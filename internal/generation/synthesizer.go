package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/voxcart/voxcart/internal/copywriter"
	"github.com/voxcart/voxcart/internal/quota"
	"github.com/voxcart/voxcart/internal/storage"
	"github.com/voxcart/voxcart/internal/tts"
)

// Synthesizer runs one job end to end: script, speech, upload, accounting.
// It lives in the worker process.
type Synthesizer struct {
	jobs  *Service
	copy  *copywriter.Service
	tts   tts.Provider
	store storage.Store
	quota *quota.Accountant
}

func NewSynthesizer(jobs *Service, cw *copywriter.Service, provider tts.Provider, store storage.Store, qa *quota.Accountant) *Synthesizer {
	return &Synthesizer{jobs: jobs, copy: cw, tts: provider, store: store, quota: qa}
}

// Process converts the job's product text into a hosted audio clip. The
// generation is counted only after the clip exists; failures before that
// never touch the user's quota.
func (s *Synthesizer) Process(ctx context.Context, jobID uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if err := s.jobs.MarkProcessing(ctx, jobID); err != nil {
		return err
	}

	script, err := s.copy.WriteScript(ctx, copywriter.ScriptRequest{
		ProductText: job.ProductText,
		Tone:        job.Tone,
	})
	if err != nil {
		return s.fail(ctx, jobID, fmt.Errorf("write script: %w", err))
	}

	result, err := s.tts.Synthesize(ctx, tts.SynthesisRequest{
		Input: script.Text,
		Voice: job.Voice,
		Speed: job.Speed,
	})
	if err != nil {
		return s.fail(ctx, jobID, fmt.Errorf("synthesize: %w", err))
	}

	path := fmt.Sprintf("%s/%s.mp3", job.UserID, job.ID)
	audioURL, err := s.store.UploadAudio(ctx, path, result.Audio, result.ContentType)
	if err != nil {
		return s.fail(ctx, jobID, fmt.Errorf("upload audio: %w", err))
	}

	if err := s.jobs.MarkDone(ctx, jobID, audioURL); err != nil {
		return err
	}

	if err := s.quota.RecordGeneration(ctx, job.UserID); err != nil {
		// The clip exists and is served; a lost count is a quota leak in
		// the user's favor, logged but not retried.
		slog.Warn("record generation failed", "job_id", jobID, "user_id", job.UserID, "error", err)
	}

	slog.Info("generation completed", "job_id", jobID, "provider", s.tts.Name(), "bytes", len(result.Audio))
	return nil
}

func (s *Synthesizer) fail(ctx context.Context, jobID uuid.UUID, cause error) error {
	if err := s.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		slog.Error("mark failed errored", "job_id", jobID, "error", err)
	}
	return cause
}
