package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-pro"

type GeminiResponder struct {
	client *genai.Client
	model  string
}

func NewGeminiResponder(ctx context.Context, apiKey, model string) (*GeminiResponder, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini chat provider")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiResponder{client: client, model: model}, nil
}

func (g *GeminiResponder) Model() string { return g.model }

func (g *GeminiResponder) Respond(ctx context.Context, prompt string) (Reply, error) {
	kind, _ := Classify(prompt)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(Prompt(kind, prompt)), nil)
	if err != nil {
		return Reply{}, fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return Reply{}, errors.New("gemini returned an empty response")
	}
	return Reply{Text: text, Model: g.model}, nil
}
