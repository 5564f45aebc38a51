package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/voxcart/voxcart/internal/generation"
	"github.com/voxcart/voxcart/internal/queue"
)

type GenerationWorker struct {
	synth *generation.Synthesizer
}

func NewGenerationWorker(synth *generation.Synthesizer) *GenerationWorker {
	return &GenerationWorker{synth: synth}
}

func (w *GenerationWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.GenerationSynthesizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", payload.JobID, err)
	}

	slog.Info("processing generation", "job_id", jobID, "user_id", payload.UserID)
	return w.synth.Process(ctx, jobID)
}
