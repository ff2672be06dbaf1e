package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"silicorex/config"
)

// GeminiBackend streams completions from the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend validates the key and creates the client. A missing or
// placeholder key returns ErrConfiguration without touching the network.
func NewGeminiBackend(ctx context.Context, apiKey, model string) (*GeminiBackend, error) {
	if !config.ValidAPIKey(apiKey) {
		return nil, ErrConfiguration
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: create Gemini client: %w", ErrConfiguration, err)
	}
	return &GeminiBackend{client: client, model: model}, nil
}

// GenerateStream starts a streamed completion for prompt.
func (g *GeminiBackend) GenerateStream(ctx context.Context, prompt string) (TextStream, error) {
	model := g.client.GenerativeModel(g.model)
	return &geminiStream{it: model.GenerateContentStream(ctx, genai.Text(prompt))}, nil
}

// Close releases the client.
func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

type geminiStream struct {
	it *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Next() (string, error) {
	resp, err := s.it.Next()
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
