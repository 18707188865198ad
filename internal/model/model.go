package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Preset is a hint strictness tier. The set is closed and totally ordered.
type Preset string

const (
	// PresetBeginner is the least restrictive tier.
	PresetBeginner Preset = "초급"
	// PresetIntermediate is the middle tier.
	PresetIntermediate Preset = "중급"
	// PresetAdvanced is the most restrictive tier.
	PresetAdvanced Preset = "고급"
)

// Presets lists every preset from least to most restrictive.
var Presets = []Preset{PresetBeginner, PresetIntermediate, PresetAdvanced}

var presetAliases = map[string]Preset{
	"beginner":     PresetBeginner,
	"intermediate": PresetIntermediate,
	"advanced":     PresetAdvanced,
}

// ParsePreset accepts the Korean preset label or its English alias.
func ParsePreset(s string) (Preset, error) {
	s = strings.TrimSpace(s)
	p := Preset(s)
	if p.Valid() {
		return p, nil
	}
	if alias, ok := presetAliases[strings.ToLower(s)]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPreset, s)
}

// Rank returns the strictness rank (0 = beginner) or -1 for an unknown preset.
func (p Preset) Rank() int {
	for i, known := range Presets {
		if p == known {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the three known presets.
func (p Preset) Valid() bool {
	return p.Rank() >= 0
}

// Purpose is the goal of a hint request.
type Purpose string

const (
	PurposeCompletion   Purpose = "completion"
	PurposeOptimization Purpose = "optimization"
	PurposeOptimal      Purpose = "optimal"
)

// StaticMetrics are the metrics measured without an LLM.
type StaticMetrics struct {
	SyntaxErrors     int     `json:"syntax_errors"`
	TestPassRate     float64 `json:"test_pass_rate"`
	ExecutionTimeMs  float64 `json:"execution_time_ms"`
	MemoryKB         float64 `json:"memory_kb"`
	CodeQualityScore float64 `json:"code_quality_score"`
	PatternMatch     float64 `json:"pattern_match"`
	PEP8Violations   int     `json:"pep8_violations"`
}

// LLMMetrics are the metrics judged by an LLM, each on a 0–5 scale.
type LLMMetrics struct {
	AlgorithmEfficiency  float64 `json:"algorithm_efficiency"`
	CodeReadability      float64 `json:"code_readability"`
	DesignPatternFit     float64 `json:"design_pattern_fit"`
	EdgeCaseHandling     float64 `json:"edge_case_handling"`
	CodeConciseness      float64 `json:"code_conciseness"`
	FunctionSeparation   float64 `json:"function_separation"`
	TestCoverageEstimate float64 `json:"test_coverage_estimate"`
	SecurityAwareness    float64 `json:"security_awareness"`
}

// MetricSnapshot is one immutable evaluation of a submission.
type MetricSnapshot struct {
	Static     StaticMetrics `json:"static_metrics"`
	LLM        LLMMetrics    `json:"llm_metrics"`
	TotalScore float64       `json:"total_score"`
}

// HasSyntaxErrors reports whether the submission failed to parse.
func (s MetricSnapshot) HasSyntaxErrors() bool {
	return s.Static.SyntaxErrors > 0
}

// TestsPassing reports whether every test passed.
func (s MetricSnapshot) TestsPassing() bool {
	return s.Static.TestPassRate >= 100
}

// RawStaticMetrics is the caller-supplied form of StaticMetrics. A nil field is absent.
type RawStaticMetrics struct {
	SyntaxErrors     *float64 `json:"syntax_errors"`
	TestPassRate     *float64 `json:"test_pass_rate"`
	ExecutionTimeMs  *float64 `json:"execution_time_ms"`
	MemoryKB         *float64 `json:"memory_kb"`
	CodeQualityScore *float64 `json:"code_quality_score"`
	PatternMatch     *float64 `json:"pattern_match"`
	PEP8Violations   *float64 `json:"pep8_violations"`
}

// RawLLMMetrics is the caller-supplied form of LLMMetrics.
type RawLLMMetrics struct {
	AlgorithmEfficiency  *float64 `json:"algorithm_efficiency"`
	CodeReadability      *float64 `json:"code_readability"`
	DesignPatternFit     *float64 `json:"design_pattern_fit"`
	EdgeCaseHandling     *float64 `json:"edge_case_handling"`
	CodeConciseness      *float64 `json:"code_conciseness"`
	FunctionSeparation   *float64 `json:"function_separation"`
	TestCoverageEstimate *float64 `json:"test_coverage_estimate"`
	SecurityAwareness    *float64 `json:"security_awareness"`
}

// RawMetrics is the MetricSnapshot-shaped input of a hint or validation request.
type RawMetrics struct {
	Static *RawStaticMetrics `json:"static_metrics"`
	LLM    *RawLLMMetrics    `json:"llm_metrics"`
}

// RawLLMFrom converts judged metrics into the raw input form.
func RawLLMFrom(m LLMMetrics) *RawLLMMetrics {
	f := func(v float64) *float64 { return &v }
	return &RawLLMMetrics{
		AlgorithmEfficiency:  f(m.AlgorithmEfficiency),
		CodeReadability:      f(m.CodeReadability),
		DesignPatternFit:     f(m.DesignPatternFit),
		EdgeCaseHandling:     f(m.EdgeCaseHandling),
		CodeConciseness:      f(m.CodeConciseness),
		FunctionSeparation:   f(m.FunctionSeparation),
		TestCoverageEstimate: f(m.TestCoverageEstimate),
		SecurityAwareness:    f(m.SecurityAwareness),
	}
}

// MetricName names a 0–5 sub-metric that can be reported as weak.
type MetricName string

const (
	MetricAlgorithmEfficiency  MetricName = "algorithm_efficiency"
	MetricCodeReadability      MetricName = "code_readability"
	MetricDesignPatternFit     MetricName = "design_pattern_fit"
	MetricEdgeCaseHandling     MetricName = "edge_case_handling"
	MetricCodeConciseness      MetricName = "code_conciseness"
	MetricFunctionSeparation   MetricName = "function_separation"
	MetricTestCoverageEstimate MetricName = "test_coverage_estimate"
	MetricSecurityAwareness    MetricName = "security_awareness"
	MetricPatternMatch         MetricName = "pattern_match"
)

// WeakMetric is a sub-metric scored below its threshold.
type WeakMetric struct {
	Metric      MetricName `json:"metric"`
	Score       float64    `json:"score"`
	Description string     `json:"description"`
}

// HistoryEntry is one hint previously issued within a preset.
type HistoryEntry struct {
	ID        string    `json:"id,omitempty"`
	HintText  string    `json:"hint_text"`
	Preset    Preset    `json:"preset"`
	HintLevel int       `json:"hint_level,omitempty"`
	CodeHash  string    `json:"code_hash,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// COHState is the Chain-of-Hints position derived for one request.
type COHState struct {
	Preset             Preset
	Depth              int
	HintLevel          int
	LevelName          string
	Style              string
	CanGetMoreDetailed bool
	Blocked            ComponentSet
	NextLevel          int // 0 when exhausted
}

// ServiceConfig holds runtime parameters set via CLI flags.
type ServiceConfig struct {
	Lang           string // default UI language (ko, en)
	BasePath       string // URL prefix for sub-path deployments
	HistoryBackend string // sqlite or redis
	JudgeProvider  string // openai, gemini or none
	PromptVariant  string // judge prompt variant (strict, standard, lenient)
}

type userIDCtxKey struct{}

// ContextWithUserID stores the caller's user ID in the request context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDCtxKey{}, userID)
}

// UserIDFromContext retrieves the caller's user ID, or "" when anonymous.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDCtxKey{}).(string)
	return id
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}
