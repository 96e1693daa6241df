package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/model"
)

func ollamaHistory(n int) []HistoryEntry {
	history := make([]HistoryEntry, 0, n)
	for i := 0; i < n; i++ {
		sender := model.SenderUser
		if i%2 == 1 {
			sender = model.SenderAI
		}
		history = append(history, HistoryEntry{Content: fmt.Sprintf("msg-%d", i), Sender: sender})
	}
	return history
}

func TestOllamaBuildPrompt(t *testing.T) {
	t.Parallel()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "m"})
	prompt := p.buildPrompt("current question", ollamaHistory(8))

	if !strings.HasPrefix(prompt, systemPreamble) {
		t.Error("prompt missing system preamble")
	}
	if !strings.HasSuffix(prompt, "Human: current question\nAssistant:") {
		t.Errorf("prompt missing trailing cue: %q", prompt)
	}

	// Only the 5 most recent entries survive the window.
	if strings.Contains(prompt, "msg-2") {
		t.Error("prompt contains entry outside the context window")
	}
	for i := 3; i < 8; i++ {
		if !strings.Contains(prompt, fmt.Sprintf("msg-%d", i)) {
			t.Errorf("prompt missing windowed entry msg-%d", i)
		}
	}

	if !strings.Contains(prompt, "Human: msg-4") {
		t.Error("user entry not tagged Human")
	}
	if !strings.Contains(prompt, "Assistant: msg-5") {
		t.Error("ai entry not tagged Assistant")
	}
}

func TestOllamaGenerateResponse(t *testing.T) {
	t.Parallel()

	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q, want /api/generate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "generated reply"})
	}))
	defer server.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: server.URL, Model: "deepseek-r1"})
	reply, err := p.GenerateResponse(context.Background(), "hello", nil)
	if err != nil {
		t.Fatalf("GenerateResponse error: %v", err)
	}
	if reply != "generated reply" {
		t.Errorf("reply = %q, want %q", reply, "generated reply")
	}
	if gotBody["model"] != "deepseek-r1" {
		t.Errorf("model = %v, want deepseek-r1", gotBody["model"])
	}
	if gotBody["stream"] != false {
		t.Errorf("stream = %v, want false", gotBody["stream"])
	}
}

func TestOllamaGenerateResponse_BadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: server.URL, Model: "m"})
	_, err := p.GenerateResponse(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error for 500 status")
	}
	if Classify(err) != KindBadStatus {
		t.Errorf("Classify = %v, want KindBadStatus", Classify(err))
	}
}

func TestOllamaGenerateTitle(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		prompt, _ := body["prompt"].(string)
		if !strings.Contains(prompt, "short title (3-5 words)") {
			t.Errorf("title prompt missing instruction: %q", prompt)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": " Trip Planning Help \n"})
	}))
	defer server.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: server.URL, Model: "m"})
	title, err := p.GenerateTitle(context.Background(), "help me plan a trip")
	if err != nil {
		t.Fatalf("GenerateTitle error: %v", err)
	}
	if title != "Trip Planning Help" {
		t.Errorf("title = %q, want %q", title, "Trip Planning Help")
	}
}

func TestOllamaCheckConnection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: server.URL, Model: "m"})
	if !p.CheckConnection(context.Background()) {
		t.Error("CheckConnection = false, want true")
	}

	server.Close()
	if p.CheckConnection(context.Background()) {
		t.Error("CheckConnection = true for closed server, want false")
	}
}
