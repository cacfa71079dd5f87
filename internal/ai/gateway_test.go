package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/talent-eval-api/internal/models"
	appErrors "github.com/noah-isme/talent-eval-api/pkg/errors"
)

type resolverStub struct {
	settings *models.ProviderSettings
	err      error
}

func (r *resolverStub) ActiveSettings(ctx context.Context) (*models.ProviderSettings, error) {
	return r.settings, r.err
}

type vaultStub struct{}

func (vaultStub) Decrypt(ciphertext string) (string, error) { return ciphertext, nil }

type observerStub struct {
	calls     int32
	successes int32
}

func (o *observerStub) ObserveProviderCall(provider string, duration time.Duration, success bool) {
	atomic.AddInt32(&o.calls, 1)
	if success {
		atomic.AddInt32(&o.successes, 1)
	}
}

func chatCompletion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func openAISettings(baseURL string) *models.ProviderSettings {
	return &models.ProviderSettings{
		Provider:         models.ProviderOpenAI,
		Model:            "gpt-4o",
		APIKeyCiphertext: "test-key",
		BaseURL:          baseURL,
		IsActive:         true,
	}
}

func newTestGateway(settings *models.ProviderSettings, observer CallObserver) *Gateway {
	return NewGateway(&resolverStub{settings: settings}, vaultStub{}, GatewayConfig{
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
	}, nil, observer)
}

func TestGatewayGenerateInto(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion("```json\n{\"score\": 88}\n```")))
	}))
	defer server.Close()

	observer := &observerStub{}
	gw := newTestGateway(openAISettings(server.URL), observer)

	var out struct {
		Score int `json:"score"`
	}
	prov, err := gw.GenerateInto(context.Background(), "rate this candidate", 0, &out)
	require.NoError(t, err)
	require.Equal(t, 88, out.Score)
	require.Equal(t, "openai", prov.Provider)
	require.Equal(t, "gpt-4o", prov.Model)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, int32(1), atomic.LoadInt32(&observer.successes))
}

func TestGatewayRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(chatCompletion(`{"ok": true}`)))
	}))
	defer server.Close()

	observer := &observerStub{}
	gw := newTestGateway(openAISettings(server.URL), observer)

	var out struct {
		OK bool `json:"ok"`
	}
	_, err := gw.GenerateInto(context.Background(), "prompt", 0, &out)
	require.NoError(t, err)
	require.True(t, out.OK)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
	require.Equal(t, int32(3), atomic.LoadInt32(&observer.calls))
}

func TestGatewayDoesNotRetryClientErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	gw := newTestGateway(openAISettings(server.URL), nil)

	var out map[string]interface{}
	_, err := gw.GenerateInto(context.Background(), "prompt", 0, &out)
	require.True(t, appErrors.Is(err, appErrors.ErrProvider))
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGatewayNonConformingOutputIsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletion("I think the candidate is great!")))
	}))
	defer server.Close()

	gw := newTestGateway(openAISettings(server.URL), nil)

	var out struct {
		Score int `json:"score"`
	}
	_, err := gw.GenerateInto(context.Background(), "prompt", 0, &out)
	require.True(t, appErrors.Is(err, appErrors.ErrProvider))
}

func TestGatewayNoActiveProviderIsConfigurationError(t *testing.T) {
	gw := NewGateway(&resolverStub{settings: nil}, vaultStub{}, GatewayConfig{}, nil, nil)

	var out map[string]interface{}
	_, err := gw.GenerateInto(context.Background(), "prompt", 0, &out)
	require.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestGatewayMissingCredentialIsConfigurationError(t *testing.T) {
	settings := &models.ProviderSettings{Provider: models.ProviderOpenAI, Model: "gpt-4o"}
	gw := NewGateway(&resolverStub{settings: settings}, vaultStub{}, GatewayConfig{}, nil, nil)

	_, _, err := gw.GenerateText(context.Background(), "prompt", 0)
	require.True(t, appErrors.Is(err, appErrors.ErrConfiguration))
}

func TestGatewayGenerateText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatCompletion("A short summary.")))
	}))
	defer server.Close()

	gw := newTestGateway(openAISettings(server.URL), nil)

	text, prov, err := gw.GenerateText(context.Background(), "summarize", 256)
	require.NoError(t, err)
	require.Equal(t, "A short summary.", text)
	require.Equal(t, "openai", prov.Provider)
}
