package copywriter

import "context"

// ScriptRequest asks for a spoken-word script derived from raw product
// text.
type ScriptRequest struct {
	ProductText string `json:"product_text"`
	Tone        string `json:"tone,omitempty"` // e.g. "warm", "energetic"
	MaxWords    int    `json:"max_words,omitempty"`
}

// Script is the generated narration text plus provenance.
type Script struct {
	Text         string `json:"text"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// Provider abstracts a chat-completion backend able to write narration
// scripts.
type Provider interface {
	WriteScript(ctx context.Context, req ScriptRequest) (*Script, error)
	Name() string
}

const systemPrompt = `You write short spoken-word scripts for e-commerce product audio.
Rewrite the product text as natural speech a narrator would read aloud.
No bullet points, no markup, no prices unless present in the input.
Keep it under the requested word budget.`
