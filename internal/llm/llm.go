package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pavelanni/hinter/internal/llm/prompts"
	"github.com/pavelanni/hinter/internal/model"
)

const maxAttempts = 3

// retryDelay is multiplied by the attempt number between retries.
var retryDelay = 300 * time.Millisecond

// Client judges code through an OpenAI-compatible API.
type Client struct {
	api     *openai.Client
	model   string
	variant prompts.PromptVariant
	timeout time.Duration
}

// New creates a new LLM judge client. A zero timeout disables the per-call deadline.
func New(baseURL, apiKey, modelName, variant string, timeout time.Duration) (*Client, error) {
	if err := prompts.Load(nil); err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if !prompts.IsValidVariant(variant) {
		return nil, fmt.Errorf("invalid prompt variant %q", variant)
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		variant: prompts.PromptVariant(variant),
		timeout: timeout,
	}, nil
}

// Ping checks that the endpoint is reachable and accepts the credentials.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// JudgeCode scores code on the eight LLM-judged metrics.
func (c *Client) JudgeCode(ctx context.Context, code, problemID string) (model.LLMMetrics, error) {
	systemPrompt, err := prompts.BuildJudgeSystemPrompt(c.variant, problemID)
	if err != nil {
		return model.LLMMetrics{}, fmt.Errorf("build judge prompt: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompts.BuildJudgeUserPrompt(code)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			slog.Warn("LLM judge call failed", "attempt", attempt, "error", err)
			if wait(ctx, attempt) != nil {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 {
			return model.LLMMetrics{}, errors.New("LLM returned no choices")
		}

		raw := resp.Choices[0].Message.Content
		slog.Debug("LLM judge response", "raw", raw)
		return parseMetrics(raw)
	}
	return model.LLMMetrics{}, fmt.Errorf("LLM API call: %w", lastErr)
}

func wait(ctx context.Context, attempt int) error {
	if attempt == maxAttempts {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt) * retryDelay):
		return nil
	}
}

type judgeResponse struct {
	AlgorithmEfficiency  *float64 `json:"algorithm_efficiency"`
	CodeReadability      *float64 `json:"code_readability"`
	DesignPatternFit     *float64 `json:"design_pattern_fit"`
	EdgeCaseHandling     *float64 `json:"edge_case_handling"`
	CodeConciseness      *float64 `json:"code_conciseness"`
	FunctionSeparation   *float64 `json:"function_separation"`
	TestCoverageEstimate *float64 `json:"test_coverage_estimate"`
	SecurityAwareness    *float64 `json:"security_awareness"`
}

// parseMetrics decodes a judge reply. Every metric must be present;
// range clamping is left to the metrics package.
func parseMetrics(raw string) (model.LLMMetrics, error) {
	raw = stripCodeFences(raw)

	var resp judgeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return model.LLMMetrics{}, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}

	var missing []string
	get := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	m := model.LLMMetrics{
		AlgorithmEfficiency:  get("algorithm_efficiency", resp.AlgorithmEfficiency),
		CodeReadability:      get("code_readability", resp.CodeReadability),
		DesignPatternFit:     get("design_pattern_fit", resp.DesignPatternFit),
		EdgeCaseHandling:     get("edge_case_handling", resp.EdgeCaseHandling),
		CodeConciseness:      get("code_conciseness", resp.CodeConciseness),
		FunctionSeparation:   get("function_separation", resp.FunctionSeparation),
		TestCoverageEstimate: get("test_coverage_estimate", resp.TestCoverageEstimate),
		SecurityAwareness:    get("security_awareness", resp.SecurityAwareness),
	}
	if len(missing) > 0 {
		return model.LLMMetrics{}, fmt.Errorf("LLM response missing %s", strings.Join(missing, ", "))
	}
	return m, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
