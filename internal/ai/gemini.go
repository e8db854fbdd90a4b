package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hongminglow/skillpath-be/internal/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

var _ Client = (*Gemini)(nil)

// Gemini implements Client on top of the Google GenAI SDK.
type Gemini struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// GeminiOption customizes NewGemini.
type GeminiOption func(*genai.ClientConfig)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(url string) GeminiOption {
	return func(cfg *genai.ClientConfig) {
		cfg.HTTPOptions.BaseURL = url
	}
}

// NewGemini creates a Gemini API client.
func NewGemini(ctx context.Context, apiKey, model string, log *zap.Logger, opts ...GeminiOption) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, log: log.Named("gemini")}, nil
}

type roadmapReply struct {
	Roadmap []models.Phase `json:"roadmap"`
}

type answerReply struct {
	Answer string `json:"answer"`
}

// GenerateRoadmap asks the model for a new or updated roadmap.
func (g *Gemini) GenerateRoadmap(ctx context.Context, req RoadmapRequest) ([]models.Phase, error) {
	prompt, err := RenderRoadmapPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render roadmap prompt: %w", err)
	}
	text, err := g.generate(ctx, roadmapSystem, prompt, roadmapSchema())
	if err != nil {
		return nil, err
	}
	phases, err := DecodeRoadmap(text)
	if err != nil {
		g.log.Warn("unusable roadmap reply", zap.Error(err), zap.Int("bytes", len(text)))
		return nil, err
	}
	return phases, nil
}

// Ask answers a technical question.
func (g *Gemini) Ask(ctx context.Context, q Question) (string, error) {
	prompt, err := RenderAssistantPrompt(q)
	if err != nil {
		return "", fmt.Errorf("render assistant prompt: %w", err)
	}
	text, err := g.generate(ctx, assistantSystem, prompt, answerSchema())
	if err != nil {
		return "", err
	}
	var reply answerReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil || strings.TrimSpace(reply.Answer) == "" {
		g.log.Warn("unusable assistant reply", zap.Error(err))
		return "", ErrGeneration
	}
	return reply.Answer, nil
}

func (g *Gemini) generate(ctx context.Context, system, prompt string, schema *genai.Schema) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    schema,
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrGeneration
	}
	return text, nil
}

// DecodeRoadmap parses a model reply into phases. Missing item lists become
// empty lists; a reply without phases is an ErrGeneration.
func DecodeRoadmap(text string) ([]models.Phase, error) {
	var reply roadmapReply
	if err := json.Unmarshal([]byte(stripFence(text)), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(reply.Roadmap) == 0 {
		return nil, fmt.Errorf("%w: no phases", ErrGeneration)
	}
	return models.ResetProgress(reply.Roadmap), nil
}

// stripFence removes a Markdown code fence some models wrap JSON in.
func stripFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimPrefix(t, "json")
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}
