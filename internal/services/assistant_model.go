package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// LanguageModel is the text generation backend used by the assistant.
// image may be nil.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string, image []byte, mimeType string, jsonOutput bool) (string, error)
}

type geminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel connects to the Gemini API.
func NewGeminiModel(ctx context.Context, apiKey, model string) (LanguageModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1beta"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &geminiModel{client: client, model: model}, nil
}

func (m *geminiModel) Generate(ctx context.Context, prompt string, image []byte, mimeType string, jsonOutput bool) (string, error) {
	parts := []*genai.Part{{Text: prompt}}
	if len(image) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: image},
		})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	var cfg *genai.GenerateContentConfig
	if jsonOutput {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}

// cleanModelJSON strips Markdown fences and any chatter around the first
// JSON array in s.
func cleanModelJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	// A single object is accepted as a one-element array.
	start = strings.Index(s, "{")
	end = strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return "[" + s[start:end+1] + "]"
	}
	return s
}
