package suggest

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrUnavailable is returned by generators that have no backing model.
var ErrUnavailable = errors.New("text generation is not configured")

// Generator produces a JSON document conforming to schema for prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// GeminiGenerator calls a Gemini model through the Gen AI SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini API client for model.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the Gemini generator")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", g.model, err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned no text")
	}
	return text, nil
}

// Unavailable always fails, which drives every gateway call to its fallback.
type Unavailable struct{}

func (Unavailable) GenerateJSON(context.Context, string, *genai.Schema) (string, error) {
	return "", ErrUnavailable
}
