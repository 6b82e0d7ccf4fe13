package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/JaimeStill/tally/pkg/schema"
)

// SDKClient produces structured output through the google.golang.org/genai SDK.
type SDKClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSDKClient creates an SDKClient targeting the Gemini API backend.
func NewSDKClient(ctx context.Context, cfg *Config, logger *slog.Logger) (*SDKClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &SDKClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("client", "genai"),
	}, nil
}

// Generate performs one GenerateContent call and returns the first candidate's first text part.
func (s *SDKClient) Generate(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.System)},
		},
		ResponseMIMEType: MimeJSON,
		ResponseSchema:   ToGenAI(req.Schema),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Context, genai.RoleUser),
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCommunication, err)
	}

	text, err := firstText(resp)
	if err != nil {
		return "", err
	}

	s.logger.DebugContext(ctx, "model responded", "bytes", len(text))
	return text, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrEmptyOutput)
	}

	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 || c.Content.Parts[0] == nil {
		return "", fmt.Errorf("%w: no content parts", ErrEmptyOutput)
	}

	text := c.Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text part", ErrEmptyOutput)
	}
	return text, nil
}

// ToGenAI converts a compiled schema to the SDK representation.
func ToGenAI(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:             genai.Type(s.Type),
		Title:            s.Title,
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrdering,
		Minimum:          s.Minimum,
		Maximum:          s.Maximum,
		Items:            ToGenAI(s.Items),
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = ToGenAI(p.Schema)
		}
	}

	return out
}
