package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pavelanni/hinter/internal/llm/prompts"
	"github.com/pavelanni/hinter/internal/model"
)

// GeminiClient judges code through the Gemini API.
type GeminiClient struct {
	apiKey  string
	model   string
	variant prompts.PromptVariant
	timeout time.Duration
}

// NewGemini creates a Gemini judge client.
func NewGemini(apiKey, modelName, variant string, timeout time.Duration) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini API key is empty")
	}
	if err := prompts.Load(nil); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}
	return &GeminiClient{
		apiKey:  apiKey,
		model:   strings.TrimSpace(modelName),
		variant: prompts.PromptVariant(variant),
		timeout: timeout,
	}, nil
}

// JudgeCode scores code on the eight LLM-judged metrics.
func (g *GeminiClient) JudgeCode(ctx context.Context, code, problemID string) (model.LLMMetrics, error) {
	systemPrompt, err := prompts.BuildJudgeSystemPrompt(g.variant, problemID)
	if err != nil {
		return model.LLMMetrics{}, fmt.Errorf("build judge prompt: %w", err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return model.LLMMetrics{}, fmt.Errorf("gemini client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.1),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := m.GenerateContent(ctx, genai.Text(prompts.BuildJudgeUserPrompt(code)))
		if err != nil {
			lastErr = err
			slog.Warn("gemini judge call failed", "attempt", attempt, "error", err)
			if wait(ctx, attempt) != nil {
				break
			}
			continue
		}
		txt := firstText(resp)
		if txt == "" {
			return model.LLMMetrics{}, errors.New("gemini judge: empty response")
		}
		slog.Debug("gemini judge response", "raw", txt)
		return parseMetrics(txt)
	}
	return model.LLMMetrics{}, fmt.Errorf("gemini API call: %w", lastErr)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
