// Package llm wraps the Gemini API behind a structured-completion client.
package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/keerthanaelangovan28-web/resume-ranker/internal/apperrors"
)

// Client sends prompts to Gemini and returns structured JSON responses.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini client. A blank API key is a configuration
// error; nothing is sent over the network here.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, apperrors.New(apperrors.CodeConfiguration, "gemini api key is not configured")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{client: client, model: strings.TrimSpace(model)}, nil
}

// GenerateStructured sends the prompt with a response schema attached and
// returns the model's JSON text. The service enforces the schema; callers
// still validate before trusting the payload.
func (c *Client) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr[float32](0.2),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			sb.WriteString(part.Text)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("gemini api returned empty response")
	}

	return out, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
