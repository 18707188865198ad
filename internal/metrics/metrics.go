// Package metrics turns raw submission metrics into an immutable MetricSnapshot.
package metrics

import (
	"fmt"
	"math"
	"strings"

	"github.com/pavelanni/hinter/internal/config"
	"github.com/pavelanni/hinter/internal/model"
)

const llmMetricCount = 8

// Compute validates and clamps raw metrics and derives the 0–100 total score.
// Absent fields fail with ErrIncompleteMetrics; out-of-range values are clamped.
func Compute(raw model.RawMetrics, p *config.Policy) (model.MetricSnapshot, error) {
	var missing []string
	get := func(group, name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, group+"."+name)
			return 0
		}
		return *v
	}

	if raw.Static == nil {
		missing = append(missing, "static_metrics")
	}
	if raw.LLM == nil {
		missing = append(missing, "llm_metrics")
	}

	var snap model.MetricSnapshot
	if s := raw.Static; s != nil {
		snap.Static = model.StaticMetrics{
			SyntaxErrors:     clampCount(get("static_metrics", "syntax_errors", s.SyntaxErrors)),
			TestPassRate:     clamp(get("static_metrics", "test_pass_rate", s.TestPassRate), 0, 100),
			ExecutionTimeMs:  clamp(get("static_metrics", "execution_time_ms", s.ExecutionTimeMs), 0, math.MaxFloat64),
			MemoryKB:         clamp(get("static_metrics", "memory_kb", s.MemoryKB), 0, math.MaxFloat64),
			CodeQualityScore: clamp(get("static_metrics", "code_quality_score", s.CodeQualityScore), 0, 100),
			PatternMatch:     clamp(get("static_metrics", "pattern_match", s.PatternMatch), 0, 5),
			PEP8Violations:   clampCount(get("static_metrics", "pep8_violations", s.PEP8Violations)),
		}
	}
	if l := raw.LLM; l != nil {
		snap.LLM = model.LLMMetrics{
			AlgorithmEfficiency:  clamp(get("llm_metrics", "algorithm_efficiency", l.AlgorithmEfficiency), 0, 5),
			CodeReadability:      clamp(get("llm_metrics", "code_readability", l.CodeReadability), 0, 5),
			DesignPatternFit:     clamp(get("llm_metrics", "design_pattern_fit", l.DesignPatternFit), 0, 5),
			EdgeCaseHandling:     clamp(get("llm_metrics", "edge_case_handling", l.EdgeCaseHandling), 0, 5),
			CodeConciseness:      clamp(get("llm_metrics", "code_conciseness", l.CodeConciseness), 0, 5),
			FunctionSeparation:   clamp(get("llm_metrics", "function_separation", l.FunctionSeparation), 0, 5),
			TestCoverageEstimate: clamp(get("llm_metrics", "test_coverage_estimate", l.TestCoverageEstimate), 0, 5),
			SecurityAwareness:    clamp(get("llm_metrics", "security_awareness", l.SecurityAwareness), 0, 5),
		}
	}

	if len(missing) > 0 {
		return model.MetricSnapshot{}, fmt.Errorf("%w: missing %s", model.ErrIncompleteMetrics, strings.Join(missing, ", "))
	}

	snap.TotalScore = TotalScore(snap.Static, snap.LLM, p)
	return snap, nil
}

// TotalScore combines clamped metrics into a score in [0,100]. It never decreases
// when any metric moves in its "better" direction.
func TotalScore(s model.StaticMetrics, l model.LLMMetrics, p *config.Policy) float64 {
	w := p.Weights

	syntaxClean := 0.0
	if s.SyntaxErrors == 0 {
		syntaxClean = 1
	}
	staticSum := w.TestPassRate*s.TestPassRate/100 +
		w.SyntaxClean*syntaxClean +
		w.CodeQuality*s.CodeQualityScore/100 +
		w.PatternMatch*s.PatternMatch/5 +
		w.PEP8*(1/(1+float64(s.PEP8Violations)/10))
	staticNorm := staticSum / (w.TestPassRate + w.SyntaxClean + w.CodeQuality + w.PatternMatch + w.PEP8)

	llmSum := l.AlgorithmEfficiency + l.CodeReadability + l.DesignPatternFit + l.EdgeCaseHandling +
		l.CodeConciseness + l.FunctionSeparation + l.TestCoverageEstimate + l.SecurityAwareness
	llmNorm := llmSum / (llmMetricCount * 5)

	score := 100 * (w.StaticGroup*staticNorm + w.LLMGroup*llmNorm) / (w.StaticGroup + w.LLMGroup)

	if s.SyntaxErrors > 0 {
		score = math.Min(score, p.Caps.SyntaxError)
	}
	if s.TestPassRate < 100 {
		score = math.Min(score, p.Caps.FailingTests)
	}

	score = math.Round(score*10) / 10
	return clamp(score, 0, 100)
}

// IsOptimal reports whether the snapshot scores at or above the optimal cap.
func IsOptimal(snap model.MetricSnapshot, p *config.Policy) bool {
	return snap.TotalScore >= p.Caps.Optimal
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampCount(v float64) int {
	v = clamp(v, 0, math.MaxInt32)
	return int(math.Round(v))
}
