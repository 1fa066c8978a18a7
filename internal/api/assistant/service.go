// Package assistant exposes a free-form question endpoint backed by Gemini,
// for open-ended tour questions that fall outside the slot-filling dialogue.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/genai"
)

const apiKeyEnv = "GOOGLE_GEMINI_API_KEY"

const systemInstruction = "You are a travel assistant for the city of Izmir, Turkey. " +
	"Answer questions about places, tours, food and transport in Izmir. Keep answers short and practical."

var _ Generator = (*AIClient)(nil)

// Generator produces a free-text answer for a user prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type AIClient struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

// NewAIClient builds a Gemini-backed client. A missing API key is an error so
// the caller can decide to run without the assistant instead of crashing.
func NewAIClient(ctx context.Context, model string, logger *slog.Logger) (*AIClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", apiKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		logger: logger,
		client: client,
		model:  model,
	}, nil
}

func (ai *AIClient) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return result.Text(), nil
}
