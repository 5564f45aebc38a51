package copywriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voxcart/voxcart/internal/config"
)

// Service routes script requests to the configured providers with retry
// and optional fallback.
type Service struct {
	providers  map[string]Provider
	primary    string
	fallback   string
	maxRetries int
}

func NewService(cfg config.CopyConfig) *Service {
	s := &Service{
		providers:  make(map[string]Provider),
		primary:    "openai",
		fallback:   cfg.FallbackProvider,
		maxRetries: cfg.MaxRetries,
	}
	if cfg.OpenAIKey != "" {
		s.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.Model)
	}
	if cfg.AnthropicKey != "" {
		s.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey, "")
	}
	return s
}

func (s *Service) WriteScript(ctx context.Context, req ScriptRequest) (*Script, error) {
	if req.ProductText == "" {
		return nil, errors.New("product text is empty")
	}

	script, err := s.withRetry(ctx, s.primary, req)
	if err != nil && s.fallback != "" && s.fallback != s.primary {
		slog.Warn("copywriter primary failed, trying fallback",
			"primary", s.primary, "fallback", s.fallback, "error", err)
		return s.withRetry(ctx, s.fallback, req)
	}
	return script, err
}

func (s *Service) withRetry(ctx context.Context, providerName string, req ScriptRequest) (*Script, error) {
	p, ok := s.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("copywriter provider %q not configured", providerName)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * 500 * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			slog.Debug("retrying script generation", "provider", providerName, "attempt", attempt)
		}

		script, err := p.WriteScript(ctx, req)
		if err == nil {
			return script, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all retries exhausted for %s: %w", providerName, lastErr)
}
