package queue

const (
	TypeGenerationSynthesize = "generation:synthesize"
)

// GenerationSynthesizePayload identifies one audio generation job to run.
type GenerationSynthesizePayload struct {
	JobID  string `json:"job_id"`
	UserID string `json:"user_id"`
}
