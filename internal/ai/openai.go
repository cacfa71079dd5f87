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

const defaultOpenAIBase = "https://api.openai.com/v1"

// openAIProvider speaks the chat-completions protocol. BaseURL overrides
// allow OpenAI-compatible back-ends.
type openAIProvider struct {
	model   string
	apiKey  string
	baseURL string
	client  *http.Client
}

func newOpenAIProvider(model, apiKey, baseURL string, httpClient *http.Client) *openAIProvider {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultOpenAIBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	return &openAIProvider{model: model, apiKey: apiKey, baseURL: base, client: httpClient}
}

func (p *openAIProvider) Name() models.ProviderName { return models.ProviderOpenAI }

func (p *openAIProvider) Model() string { return p.model }

type chatRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *openAIProvider) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	payload := chatRequest{
		Model:     p.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a structured hiring evaluation assistant. Respond with JSON only."},
			{Role: "user", Content: prompt},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("marshal payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &apiError{provider: p.Name(), err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", &apiError{provider: p.Name(), statusCode: resp.StatusCode, err: fmt.Errorf("unexpected status")}
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Choices) == 0 || body.Choices[0].Message.Content == "" {
		return "", &apiError{provider: p.Name(), err: fmt.Errorf("empty response")}
	}

	return strings.TrimSpace(body.Choices[0].Message.Content), nil
}
