package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"gemchat-backend/internal/models"
)

// fallbackModels mirrors the known-working set shown when the live model
// listing is unavailable.
var fallbackModels = []string{"gemini-pro", "gemini-1.5-pro-latest", "gemini-1.5-flash-latest"}

// GeminiService is the adapter in front of the Gemini API. A client is built
// per request because the API key can differ per request (UI override vs
// secrets vs environment). One attempt per call, no retries.
type GeminiService struct {
	slots chan struct{} // concurrency gate
}

func NewGeminiService(concurrentReqs int) *GeminiService {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}

	slots := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		slots <- struct{}{}
	}

	return &GeminiService{slots: slots}
}

// acquireSlot blocks until a concurrency slot is available
func (s *GeminiService) acquireSlot(ctx context.Context) error {
	select {
	case <-s.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini request slot")
	}
}

func (s *GeminiService) releaseSlot() {
	s.slots <- struct{}{}
}

// Generate sends the conversation to Gemini and returns the reply text.
// The chat is seeded with every turn except the final one, which must be the
// user message being answered. The config must already be valid; it is
// checked again here as the last gate before the external call.
func (s *GeminiService) Generate(ctx context.Context, turns []models.ChatTurn, cfg models.GenerationConfig) (string, error) {
	if fields := cfg.Validate(); fields != nil {
		return "", &ValidationError{Fields: fields}
	}
	if len(turns) == 0 {
		return "", &ValidationError{Fields: map[string]string{"history": "History is empty"}}
	}
	if turns[len(turns)-1].Role != models.RoleUser {
		return "", &ValidationError{Fields: map[string]string{"history": "Last turn must be a user message"}}
	}

	if err := s.acquireSlot(ctx); err != nil {
		return "", err
	}
	defer s.releaseSlot()

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return "", classifyModelError(err)
	}
	defer client.Close()

	model := client.GenerativeModel(cfg.ModelName)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)

	chat := model.StartChat()
	chat.History = toGenaiHistory(turns[:len(turns)-1])

	resp, err := chat.SendMessage(ctx, genai.Text(turns[len(turns)-1].Text))
	if err != nil {
		return "", classifyModelError(err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", &ModelError{Kind: ModelErrUnknown, Message: "model returned an empty response"}
	}

	return text, nil
}

// ListModels returns the models supporting generateContent, names stripped
// of the "models/" prefix. Any failure falls back to the static set.
func (s *GeminiService) ListModels(ctx context.Context, apiKey string) []string {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return fallback()
	}
	defer client.Close()

	var names []string
	it := client.ListModels(ctx)
	for {
		info, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fallback()
		}
		for _, method := range info.SupportedGenerationMethods {
			if method == "generateContent" {
				names = append(names, strings.TrimPrefix(info.Name, "models/"))
				break
			}
		}
	}

	if len(names) == 0 {
		return fallback()
	}
	return names
}

func fallback() []string {
	out := make([]string, len(fallbackModels))
	copy(out, fallbackModels)
	return out
}

// toGenaiHistory converts stored turns to the vendor's content format.
// Gemini names the assistant role "model".
func toGenaiHistory(turns []models.ChatTurn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := "user"
		if turn.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return history
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
