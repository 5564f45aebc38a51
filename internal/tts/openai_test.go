package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxcart/voxcart/internal/config"
)

func TestOpenAITTS_Synthesize(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	engine := NewOpenAITTS(config.TTSConfig{OpenAIKey: "test-key", BaseURL: srv.URL})

	result, err := engine.Synthesize(context.Background(), SynthesisRequest{
		Input: "A handmade ceramic mug.",
		Voice: "nova",
		Speed: 1.1,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), result.Audio)
	assert.Equal(t, "audio/mpeg", result.ContentType)
	assert.Equal(t, "tts-1", gotBody["model"])
	assert.Equal(t, "nova", gotBody["voice"])
	assert.Equal(t, 1.1, gotBody["speed"])
}

func TestOpenAITTS_DefaultVoice(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	engine := NewOpenAITTS(config.TTSConfig{OpenAIKey: "k", BaseURL: srv.URL})

	_, err := engine.Synthesize(context.Background(), SynthesisRequest{Input: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "alloy", gotBody["voice"])
	_, hasSpeed := gotBody["speed"]
	assert.False(t, hasSpeed)
}

func TestOpenAITTS_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	engine := NewOpenAITTS(config.TTSConfig{OpenAIKey: "k", BaseURL: srv.URL})

	_, err := engine.Synthesize(context.Background(), SynthesisRequest{Input: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
