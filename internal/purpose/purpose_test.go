package purpose

import (
	"errors"
	"testing"

	"github.com/pavelanni/hinter/internal/config"
	"github.com/pavelanni/hinter/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		complete bool
		stars    int
		want     model.Purpose
	}{
		{false, 0, model.PurposeCompletion},
		{true, 0, model.PurposeCompletion},
		{false, 1, model.PurposeOptimization},
		{true, 1, model.PurposeOptimization},
		{true, 2, model.PurposeOptimization},
		{false, 2, model.PurposeOptimization},
		{true, 3, model.PurposeOptimal},
		{false, 3, model.PurposeOptimal},
	}
	for _, tt := range tests {
		got, err := Classify(tt.complete, tt.stars)
		if err != nil {
			t.Fatalf("Classify(%v, %d): %v", tt.complete, tt.stars, err)
		}
		if got != tt.want {
			t.Errorf("Classify(%v, %d) = %q, want %q", tt.complete, tt.stars, got, tt.want)
		}
	}
}

func TestClassifyInvalidStars(t *testing.T) {
	for _, stars := range []int{-1, 4, 100} {
		_, err := Classify(false, stars)
		if !errors.Is(err, model.ErrInvalidStarCount) {
			t.Errorf("Classify(_, %d) err = %v, want ErrInvalidStarCount", stars, err)
		}
	}
}

func strongSnapshot() model.MetricSnapshot {
	return model.MetricSnapshot{
		Static: model.StaticMetrics{TestPassRate: 100, PatternMatch: 5},
		LLM: model.LLMMetrics{
			AlgorithmEfficiency: 5, CodeReadability: 5, DesignPatternFit: 5, EdgeCaseHandling: 5,
			CodeConciseness: 5, FunctionSeparation: 5, TestCoverageEstimate: 5, SecurityAwareness: 5,
		},
	}
}

func TestWeakMetricsBelowThresholdOnly(t *testing.T) {
	snap := strongSnapshot()
	snap.LLM.CodeReadability = 1
	snap.LLM.AlgorithmEfficiency = 4

	got := WeakMetrics(snap, config.ThresholdsConfig{Default: 3})
	if len(got) != 1 {
		t.Fatalf("got %d weak metrics, want 1: %+v", len(got), got)
	}
	if got[0].Metric != model.MetricCodeReadability || got[0].Score != 1 {
		t.Errorf("got %+v, want code_readability with score 1", got[0])
	}
	if got[0].Description == "" {
		t.Error("weak metric should carry a description")
	}
}

func TestWeakMetricsOrdering(t *testing.T) {
	snap := strongSnapshot()
	snap.LLM.CodeReadability = 1
	snap.LLM.CodeConciseness = 2
	snap.LLM.AlgorithmEfficiency = 2
	snap.LLM.EdgeCaseHandling = 0.5
	snap.Static.PatternMatch = 2

	got := WeakMetrics(snap, config.ThresholdsConfig{Default: 3})
	want := []model.MetricName{
		model.MetricEdgeCaseHandling,    // 0.5
		model.MetricCodeReadability,     // 1
		model.MetricAlgorithmEfficiency, // 2, algorithmic first
		model.MetricPatternMatch,        // 2
		model.MetricCodeConciseness,     // 2, style last
	}
	if len(got) != len(want) {
		t.Fatalf("got %d weak metrics, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Metric != w {
			t.Errorf("position %d = %s, want %s", i, got[i].Metric, w)
		}
	}
}

func TestWeakMetricsPerMetricThreshold(t *testing.T) {
	snap := strongSnapshot()
	snap.LLM.SecurityAwareness = 4

	got := WeakMetrics(snap, config.ThresholdsConfig{
		Default:   3,
		PerMetric: map[string]float64{"security_awareness": 4.5},
	})
	if len(got) != 1 || got[0].Metric != model.MetricSecurityAwareness {
		t.Errorf("got %+v, want only security_awareness", got)
	}
}

func TestWeakMetricsNone(t *testing.T) {
	got := WeakMetrics(strongSnapshot(), config.ThresholdsConfig{Default: 3})
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil slice", got)
	}
}

func TestIsLogicComplete(t *testing.T) {
	snap := strongSnapshot()
	if !IsLogicComplete(snap) {
		t.Error("passing snapshot should be logic complete")
	}
	snap.Static.TestPassRate = 80
	if IsLogicComplete(snap) {
		t.Error("failing tests should not be logic complete")
	}
	snap.Static.TestPassRate = 100
	snap.Static.SyntaxErrors = 1
	if IsLogicComplete(snap) {
		t.Error("syntax errors should not be logic complete")
	}
}

func TestCheckStars(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3} {
		if err := CheckStars(n); err != nil {
			t.Errorf("CheckStars(%d) = %v, want nil", n, err)
		}
	}
	for _, n := range []int{-1, 4} {
		if err := CheckStars(n); !errors.Is(err, model.ErrInvalidStarCount) {
			t.Errorf("CheckStars(%d) = %v, want ErrInvalidStarCount", n, err)
		}
	}
}
