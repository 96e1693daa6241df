package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/model"
)

const openaiContextWindow = 10

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIProvider speaks the OpenAI-compatible /chat/completions
// protocol, so it also covers self-hosted gateways exposing the same
// surface.
type OpenAIProvider struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	probeClient *http.Client
}

func NewOpenAIProvider(cfg config.OpenAIConfig) *OpenAIProvider {
	return &OpenAIProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		httpClient:  &http.Client{Timeout: 90 * time.Second},
		probeClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, message string, history []HistoryEntry) (string, error) {
	messages := make([]chatMessage, 0, openaiContextWindow+2)
	messages = append(messages, chatMessage{
		Role:    "system",
		Content: "You are a helpful and friendly AI assistant. Provide clear, concise, and helpful responses to user questions.",
	})
	for _, entry := range tailEntries(history, openaiContextWindow) {
		role := "assistant"
		if entry.Sender == model.SenderUser {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: entry.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	return p.complete(ctx, messages)
}

func (p *OpenAIProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	messages := []chatMessage{
		{
			Role:    "system",
			Content: "Generate a short, descriptive title (3-5 words) for a chat that starts with the following message. Only return the title, nothing else.",
		},
		{Role: "user", Content: firstMessage},
	}

	title, err := p.complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

func (p *OpenAIProvider) CheckConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	resp, err := p.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *OpenAIProvider) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := map[string]interface{}{
		"model":    p.model,
		"messages": messages,
		"stream":   false,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty llm choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
