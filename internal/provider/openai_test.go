package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fluxgen-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(serverURL string) *OpenAIProvider {
	return NewOpenAIProvider(config.OpenAIConfig{
		BaseURL: serverURL + "/v1",
		Model:   "dall-e-3",
		Timeout: 5 * time.Second,
	})
}

func TestOpenAIProvider_Generate(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"created": 1700000000,
			"data":    []map[string]string{{"url": "https://x/img.png"}},
		})
	}))
	defer server.Close()

	p := newTestOpenAIProvider(server.URL)
	result, err := p.Generate(context.Background(), "sk-test", &Input{
		Prompt:      "a cat",
		AspectRatio: "1:1",
	})

	require.NoError(t, err)
	require.Len(t, result.Images, 1)
	assert.Equal(t, "https://x/img.png", result.Images[0].URL)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "a cat", gotBody["prompt"])
	assert.Equal(t, "1024x1024", gotBody["size"])
}

func TestOpenAIProvider_Generate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"message": "quota exceeded",
				"type":    "insufficient_quota",
			},
		})
	}))
	defer server.Close()

	p := newTestOpenAIProvider(server.URL)
	_, err := p.Generate(context.Background(), "sk-test", &Input{Prompt: "a cat"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "quota exceeded", apiErr.Message)
}

func TestSizeForAspectRatio(t *testing.T) {
	assert.Equal(t, "1792x1024", sizeForAspectRatio("16:9"))
	assert.Equal(t, "1024x1792", sizeForAspectRatio("9:16"))
	assert.Equal(t, "1024x1024", sizeForAspectRatio("1:1"))
}
