package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client generates text with a named model.
// Errors returned by implementations should be *ServiceError so callers can
// tell transient failures from permanent ones.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Generator produces text for a prompt without naming a model.
// *gateway.Gateway implements it on top of a Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelInfo describes a model offered by the backend
type ModelInfo struct {
	Name        string
	DisplayName string
	Methods     []string
}

// SupportsGenerate reports whether the model can serve generateContent calls
func (m ModelInfo) SupportsGenerate() bool {
	for _, method := range m.Methods {
		if method == "generateContent" {
			return true
		}
	}
	return false
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config ClientConfig
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, apiKey string, config ClientConfig) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Generate sends prompt to the named model and returns the concatenated text parts.
func (c *GeminiClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		return "", &ServiceError{Kind: KindInvalidArgument, Cause: errors.New("model name is required")}
	}

	m := c.client.GenerativeModel(model)
	m.SetTemperature(c.config.Temperature)
	if c.config.JSONMode {
		m.ResponseMIMEType = "application/json"
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &ServiceError{Model: model, Kind: Classify(err), Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", &ServiceError{Model: model, Kind: KindEmptyResponse, Cause: err}
	}
	return text, nil
}

// ListModels returns every model visible to the API key
func (c *GeminiClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var models []ModelInfo
	it := c.client.ListModels(ctx)
	for {
		m, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list models: %w", err)
		}
		models = append(models, ModelInfo{
			Name:        m.Name,
			DisplayName: m.DisplayName,
			Methods:     m.SupportedGenerationMethods,
		})
	}
	return models, nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	text := strings.Join(parts, "")
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text parts in response")
	}
	return text, nil
}
