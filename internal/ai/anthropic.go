package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/talent-eval-api/internal/models"
)

const (
	defaultAnthropicBase    = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	anthropicDefaultSystems = "You are a structured hiring evaluation assistant. Respond with JSON only."
)

// anthropicProvider speaks the Anthropic Messages API.
type anthropicProvider struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

func newAnthropicProvider(model, apiKey, baseURL string, httpClient *http.Client) *anthropicProvider {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultAnthropicBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	return &anthropicProvider{model: model, apiKey: apiKey, baseURL: base, client: httpClient}
}

func (p *anthropicProvider) Name() models.ProviderName { return models.ProviderAnthropic }

func (p *anthropicProvider) Model() string { return p.model }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *anthropicProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	payload := anthropicRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		System:    anthropicDefaultSystems,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &apiError{provider: p.Name(), err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", &apiError{provider: p.Name(), statusCode: resp.StatusCode, err: fmt.Errorf("unexpected status")}
	}

	var body anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Content) == 0 || strings.TrimSpace(body.Content[0].Text) == "" {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("empty response")}
	}

	return strings.TrimSpace(body.Content[0].Text), nil
}
