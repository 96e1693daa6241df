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

// ollamaContextWindow is how many recent messages go into the prompt.
const ollamaContextWindow = 5

const systemPreamble = "You are a helpful and friendly AI assistant. Provide clear, concise, and helpful responses.\n\n"

// OllamaProvider talks to a local Ollama instance via its /api/generate
// endpoint with a flat role-tagged prompt.
type OllamaProvider struct {
	baseURL     string
	model       string
	httpClient  *http.Client
	probeClient *http.Client
}

func NewOllamaProvider(cfg config.OllamaConfig) *OllamaProvider {
	return &OllamaProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		probeClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) GenerateResponse(ctx context.Context, message string, history []HistoryEntry) (string, error) {
	prompt := p.buildPrompt(message, history)
	return p.generate(ctx, p.httpClient, prompt)
}

func (p *OllamaProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	prompt := fmt.Sprintf("Generate a short title (3-5 words) for this conversation: %s\nTitle:", firstMessage)
	title, err := p.generate(ctx, p.httpClient, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

func (p *OllamaProvider) CheckConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *OllamaProvider) generate(ctx context.Context, client *http.Client, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  p.model,
		"prompt": prompt,
		"stream": false,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build ollama request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ollama response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse ollama json failed: %w", err)
	}
	return parsed.Response, nil
}

// buildPrompt renders the bounded window as Human/Assistant lines under
// a fixed preamble, with a trailing cue for the model to continue.
func (p *OllamaProvider) buildPrompt(message string, history []HistoryEntry) string {
	var b strings.Builder
	b.WriteString(systemPreamble)

	for _, entry := range tailEntries(history, ollamaContextWindow) {
		role := "Assistant"
		if entry.Sender == model.SenderUser {
			role = "Human"
		}
		b.WriteString(role)
		b.WriteString(": ")
		b.WriteString(entry.Content)
		b.WriteString("\n")
	}

	b.WriteString("Human: ")
	b.WriteString(message)
	b.WriteString("\nAssistant:")
	return b.String()
}

func tailEntries(history []HistoryEntry, limit int) []HistoryEntry {
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
