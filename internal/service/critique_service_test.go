package service

import (
	"collegetrack-service/internal/models"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCritiqueParsesModelOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", auth)
		}

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("Expected system+user messages, got %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": "```json\n{\"summary\": \"Good draft.\", \"suggestions\": [\"Cut the intro.\", \"  \", \"Add a closing image.\"]}\n```",
				},
			}},
		})
	}))
	defer server.Close()

	svc := NewCritiqueService(server.URL, "test-key", "test-model")
	critique, err := svc.Critique(context.Background(), &models.Essay{
		Prompt:  "Why us?",
		Content: "Because.",
	})
	if err != nil {
		t.Fatalf("Critique failed: %v", err)
	}

	if critique.Summary != "Good draft." {
		t.Errorf("Expected summary from the model, got %q", critique.Summary)
	}
	// The blank suggestion is dropped.
	if len(critique.Suggestions) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(critique.Suggestions))
	}
	if critique.ID == "" || critique.Suggestions[0].ID == "" {
		t.Error("Critique and suggestions should get fresh IDs")
	}
	if critique.Suggestions[0].Approved {
		t.Error("New suggestions start unapproved")
	}
}

func TestCritiqueFallsBackWhenUnreachable(t *testing.T) {
	svc := NewCritiqueService("http://127.0.0.1:1", "", "test-model")

	critique, err := svc.Critique(context.Background(), &models.Essay{
		Prompt:    "Why us?",
		Content:   strings.Repeat("word ", 700),
		WordLimit: 650,
	})
	if err != nil {
		t.Fatalf("Fallback should absorb the failure: %v", err)
	}
	if critique.Summary == "" {
		t.Error("Fallback critique should carry a summary")
	}

	overLimit := false
	for _, s := range critique.Suggestions {
		if strings.Contains(s.Text, "word limit") {
			overLimit = true
		}
	}
	if !overLimit {
		t.Error("Fallback should flag the word limit overrun")
	}
}

func TestCritiqueFallsBackOnMalformedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": "I cannot produce JSON today."},
			}},
		})
	}))
	defer server.Close()

	svc := NewCritiqueService(server.URL, "", "test-model")
	critique, err := svc.Critique(context.Background(), &models.Essay{Prompt: "p", Content: "c"})
	if err != nil {
		t.Fatalf("Malformed output should fall back, not fail: %v", err)
	}
	if len(critique.Suggestions) == 0 {
		t.Error("Fallback critique should carry at least one suggestion")
	}
}
