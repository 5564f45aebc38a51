package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/voxcart/voxcart/internal/config"
)

// Voice is one entry from the Google Cloud TTS voice catalog.
type Voice struct {
	Name          string   `json:"name"`
	LanguageCodes []string `json:"languageCodes"`
	Gender        string   `json:"ssmlGender"`
	SampleRateHz  int      `json:"naturalSampleRateHertz"`
}

// VoiceCatalog lists available voices from the Google Cloud TTS REST API.
type VoiceCatalog struct {
	cfg        config.GoogleTTSConfig
	httpClient *http.Client
}

func NewVoiceCatalog(cfg config.GoogleTTSConfig) *VoiceCatalog {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://texttospeech.googleapis.com/v1"
	}
	return &VoiceCatalog{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListVoices returns the catalog, optionally filtered by BCP-47 language
// code (e.g. "en-US").
func (c *VoiceCatalog) ListVoices(ctx context.Context, languageCode string) ([]Voice, error) {
	u := c.cfg.BaseURL + "/voices?key=" + url.QueryEscape(c.cfg.APIKey)
	if languageCode != "" {
		u += "&languageCode=" + url.QueryEscape(languageCode)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list voices failed (status %d): %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode voices: %w", err)
	}
	return payload.Voices, nil
}
