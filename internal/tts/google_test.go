package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxcart/voxcart/internal/config"
)

func TestVoiceCatalog_ListVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voices", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "en-US", r.URL.Query().Get("languageCode"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"voices":[
			{"name":"en-US-Neural2-A","languageCodes":["en-US"],"ssmlGender":"MALE","naturalSampleRateHertz":24000},
			{"name":"en-US-Neural2-C","languageCodes":["en-US"],"ssmlGender":"FEMALE","naturalSampleRateHertz":24000}
		]}`))
	}))
	defer srv.Close()

	catalog := NewVoiceCatalog(config.GoogleTTSConfig{APIKey: "test-key", BaseURL: srv.URL})

	voices, err := catalog.ListVoices(context.Background(), "en-US")
	require.NoError(t, err)
	require.Len(t, voices, 2)
	assert.Equal(t, "en-US-Neural2-A", voices[0].Name)
	assert.Equal(t, []string{"en-US"}, voices[0].LanguageCodes)
	assert.Equal(t, "MALE", voices[0].Gender)
	assert.Equal(t, 24000, voices[0].SampleRateHz)
}

func TestVoiceCatalog_NoLanguageFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("languageCode"))
		w.Write([]byte(`{"voices":[]}`))
	}))
	defer srv.Close()

	catalog := NewVoiceCatalog(config.GoogleTTSConfig{APIKey: "k", BaseURL: srv.URL})

	voices, err := catalog.ListVoices(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, voices)
}

func TestVoiceCatalog_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"API key not valid"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	catalog := NewVoiceCatalog(config.GoogleTTSConfig{APIKey: "bad", BaseURL: srv.URL})

	_, err := catalog.ListVoices(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}
