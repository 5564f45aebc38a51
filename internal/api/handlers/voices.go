package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/voxcart/voxcart/internal/cache"
	"github.com/voxcart/voxcart/internal/tts"
)

const voicesCacheTTL = time.Hour

// VoicesHandler serves the Google Cloud TTS voice catalog, cached in Redis
// since the catalog changes rarely and the upstream call is slow.
type VoicesHandler struct {
	catalog *tts.VoiceCatalog
	cache   *cache.Cache
}

func NewVoicesHandler(catalog *tts.VoiceCatalog, c *cache.Cache) *VoicesHandler {
	return &VoicesHandler{catalog: catalog, cache: c}
}

func (h *VoicesHandler) List(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("language_code")
	cacheKey := "voices:" + lang

	if h.cache != nil {
		var cached []tts.Voice
		if err := h.cache.Get(r.Context(), cacheKey, &cached); err == nil {
			writeJSON(w, http.StatusOK, map[string]any{"voices": cached, "count": len(cached)})
			return
		}
	}

	voices, err := h.catalog.ListVoices(r.Context(), lang)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "voice catalog unavailable"})
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, voices, voicesCacheTTL); err != nil {
			slog.Warn("voices cache set failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"voices": voices, "count": len(voices)})
}
