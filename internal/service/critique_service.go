package service

import (
	"bytes"
	"collegetrack-service/internal/models"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CritiqueService generates essay reviews through an OpenAI-compatible
// chat completions endpoint. When the endpoint is unreachable or returns
// malformed output, it falls back to a rule-based critique so the request
// still succeeds.
type CritiqueService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewCritiqueService(baseURL, apiKey, model string) *CritiqueService {
	return &CritiqueService{
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

type ChatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []ChatCompletionMessage `json:"messages"`
	Stream      bool                    `json:"stream"`
	Temperature *float64                `json:"temperature,omitempty"`
	MaxTokens   *int                    `json:"max_tokens,omitempty"`
}

type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message ChatCompletionMessage `json:"message"`
	} `json:"choices"`
}

const critiqueSystemPrompt = `You are an experienced college admissions essay reviewer.
Review the essay and respond with JSON only, in this shape:
{"summary": "<two or three sentences on the essay's overall strengths and weaknesses>",
 "suggestions": ["<one concrete, actionable edit>", "..."]}
Give between two and five suggestions. Do not rewrite the essay.`

type critiqueOutput struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// Critique asks the model for a review of the draft. The returned critique
// carries fresh IDs; RequestedBy and CreatedAt are filled by the caller.
func (s *CritiqueService) Critique(ctx context.Context, essay *models.Essay) (*models.Critique, error) {
	userPrompt := fmt.Sprintf("Prompt: %s\nWord limit: %d\n\nEssay:\n%s", essay.Prompt, essay.WordLimit, essay.Content)

	response, err := s.sendChatRequest(ctx, ChatCompletionRequest{
		Model: s.model,
		Messages: []ChatCompletionMessage{
			{Role: "system", Content: critiqueSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	})
	if err != nil {
		log.Printf("LLM request failed, using fallback critique: %v", err)
		return s.fallbackCritique(essay), nil
	}
	if len(response.Choices) == 0 {
		log.Println("LLM returned no choices, using fallback critique")
		return s.fallbackCritique(essay), nil
	}

	var output critiqueOutput
	content := extractJSON(response.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &output); err != nil || output.Summary == "" {
		log.Printf("Failed to parse LLM critique, using fallback: %v", err)
		return s.fallbackCritique(essay), nil
	}

	critique := &models.Critique{
		ID:      uuid.New().String(),
		Summary: output.Summary,
	}
	for _, text := range output.Suggestions {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		critique.Suggestions = append(critique.Suggestions, models.Suggestion{
			ID:   uuid.New().String(),
			Text: text,
		})
	}
	return critique, nil
}

func (s *CritiqueService) sendChatRequest(ctx context.Context, request ChatCompletionRequest) (*ChatCompletionResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" && s.apiKey != "none" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("LLM API error (status %d): %s", resp.StatusCode, string(body))
	}

	var response ChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// fallbackCritique produces a basic structural review without the model.
func (s *CritiqueService) fallbackCritique(essay *models.Essay) *models.Critique {
	words := strings.Fields(essay.Content)

	critique := &models.Critique{
		ID:      uuid.New().String(),
		Summary: fmt.Sprintf("Automated review: the draft is %d words. The AI reviewer was unavailable, so only structural checks were run.", len(words)),
	}

	add := func(text string) {
		critique.Suggestions = append(critique.Suggestions, models.Suggestion{
			ID:   uuid.New().String(),
			Text: text,
		})
	}

	if essay.WordLimit > 0 && len(words) > essay.WordLimit {
		add(fmt.Sprintf("The draft is %d words over the %d word limit. Trim before submitting.", len(words)-essay.WordLimit, essay.WordLimit))
	}
	if essay.WordLimit > 0 && len(words) < essay.WordLimit/2 {
		add("The draft uses less than half the word limit. Consider expanding on your main example.")
	}
	if !strings.Contains(essay.Content, "\n") {
		add("The essay is a single paragraph. Break it into paragraphs with one idea each.")
	}
	if len(critique.Suggestions) == 0 {
		add("Re-request the critique later for a full AI review of content and style.")
	}

	return critique
}

// extractJSON trims markdown fences some models wrap around JSON output.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	return content
}
