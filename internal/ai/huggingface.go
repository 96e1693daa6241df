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

const hfContextWindow = 3

// HuggingFaceProvider calls the Hugging Face Inference API. A token is
// optional for public models but improves rate limits.
type HuggingFaceProvider struct {
	baseURL     string
	model       string
	token       string
	httpClient  *http.Client
	probeClient *http.Client
}

func NewHuggingFaceProvider(cfg config.HuggingFaceConfig) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		token:       cfg.Token,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		probeClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *HuggingFaceProvider) Name() string { return "huggingface" }

func (p *HuggingFaceProvider) GenerateResponse(ctx context.Context, message string, history []HistoryEntry) (string, error) {
	inputs := p.buildInputs(message, history)

	reqBody := map[string]interface{}{"inputs": inputs}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal huggingface request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.modelURL(), bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build huggingface request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read huggingface response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse huggingface json failed: %w", err)
	}
	if len(parsed) == 0 {
		return "", fmt.Errorf("empty huggingface result")
	}

	// The model echoes the whole input back; keep only the new text.
	generated := parsed[0].GeneratedText
	reply := strings.TrimSpace(strings.TrimPrefix(generated, inputs))
	return reply, nil
}

// GenerateTitle never calls out to a model; it keeps the first few
// words of the message.
func (p *HuggingFaceProvider) GenerateTitle(_ context.Context, firstMessage string) (string, error) {
	words := strings.Fields(firstMessage)
	if len(words) <= 4 {
		return strings.Join(words, " "), nil
	}
	return strings.Join(words[:4], " ") + "...", nil
}

func (p *HuggingFaceProvider) CheckConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.modelURL(), nil)
	if err != nil {
		return false
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (p *HuggingFaceProvider) modelURL() string {
	return p.baseURL + "/" + p.model
}

func (p *HuggingFaceProvider) buildInputs(message string, history []HistoryEntry) string {
	var b strings.Builder
	for _, entry := range tailEntries(history, hfContextWindow) {
		role := "Bot"
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
	b.WriteString("\nBot:")
	return b.String()
}
