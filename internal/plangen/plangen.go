package plangen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mealsync/internal/mealplan"
)

// Generator produces a week of meal entries from a free-text request.
type Generator interface {
	GenerateWeek(ctx context.Context, request string) ([]mealplan.Entry, error)
	Close() error
}

// geminiGenerator is a thin wrapper over the Gemini API. It does one
// prompt per request and surfaces parsing failures unchanged.
type geminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator creates a Gemini-backed Generator.
func NewGeminiGenerator(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-pro")
	return &geminiGenerator{client: client, model: model}, nil
}

const weekPrompt = `You are a meal-planning assistant. Create a weekly meal plan for the
following request. Return strictly a JSON array with one object per day,
Monday through Sunday, each shaped like:
{
  "day": "Monday",
  "breakfast": "...",
  "lunch": "...",
  "dinner": "...",
  "snack": "...",
  "breakfast_ingredients": ["...", "..."],
  "lunch_ingredients": ["..."],
  "dinner_ingredients": ["..."],
  "snack_ingredients": ["..."]
}

Request:
%s
`

// GenerateWeek prompts the model and parses the returned entry list.
func (g *geminiGenerator) GenerateWeek(ctx context.Context, request string) ([]mealplan.Entry, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(fmt.Sprintf(weekPrompt, request)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("generated content is not text")
	}

	return parseEntries(string(text))
}

// Close closes the underlying Gemini client.
func (g *geminiGenerator) Close() error {
	return g.client.Close()
}

// parseEntries decodes the model output, tolerating markdown fences
// around the JSON array.
func parseEntries(raw string) ([]mealplan.Entry, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var entries []mealplan.Entry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("failed to parse generated plan: %w. Response: %s", err, raw)
	}
	if err := mealplan.ValidateEntries(entries); err != nil {
		return nil, fmt.Errorf("generated plan is invalid: %w", err)
	}
	return entries, nil
}
