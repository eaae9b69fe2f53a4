package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"talent-hub-backend/internal/domain"
	"talent-hub-backend/pkg/apperror"
	"talent-hub-backend/pkg/logger"

	"google.golang.org/genai"
)

// Generator returns the model's raw JSON answer for a prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.1)
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  8192,
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("no response generated")
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("no text content in response")
	}
	return text, nil
}

// Service implements domain.Extractor with a single model call and no retry loop; the operator
// retries explicitly.
type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

func (s *Service) Extract(ctx context.Context, file domain.CVFile) (*domain.CVExtraction, error) {
	text, err := TextFromFile(file)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrNoText) {
			return nil, apperror.Unprocessable("The CV text could not be read; upload a text-based PDF, DOCX or TXT", err).WithField("file")
		}
		return nil, apperror.Unprocessable("The CV file could not be parsed", err).WithField("file")
	}

	raw, err := s.gen.GenerateJSON(ctx, BuildPrompt(text))
	if err != nil {
		return nil, fmt.Errorf("%w: extraction call: %w", domain.ErrExternalService, err)
	}
	payload := []byte(CleanJSONBlock(raw))

	if err := ValidateExtractionJSON(payload); err != nil {
		logger.Log.Warn("extraction rejected by schema", "file", file.Name, "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrExternalService, err)
	}

	var out domain.CVExtraction
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: decode extraction: %w", domain.ErrExternalService, err)
	}
	logger.Log.Info("cv extracted", "file", file.Name,
		"skills", len(out.Skills), "projects", len(out.Projects), "work_experiences", len(out.WorkExperiences))
	return &out, nil
}
