package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/pavelanni/hinter/internal/config"
	"github.com/pavelanni/hinter/internal/model"
)

func f(v float64) *float64 { return &v }

func perfectRaw() model.RawMetrics {
	return model.RawMetrics{
		Static: &model.RawStaticMetrics{
			SyntaxErrors:     f(0),
			TestPassRate:     f(100),
			ExecutionTimeMs:  f(12),
			MemoryKB:         f(2048),
			CodeQualityScore: f(100),
			PatternMatch:     f(5),
			PEP8Violations:   f(0),
		},
		LLM: model.RawLLMFrom(model.LLMMetrics{
			AlgorithmEfficiency:  5,
			CodeReadability:      5,
			DesignPatternFit:     5,
			EdgeCaseHandling:     5,
			CodeConciseness:      5,
			FunctionSeparation:   5,
			TestCoverageEstimate: 5,
			SecurityAwareness:    5,
		}),
	}
}

func TestComputePerfect(t *testing.T) {
	p := config.DefaultPolicy()
	snap, err := Compute(perfectRaw(), p)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if snap.TotalScore != 100 {
		t.Errorf("TotalScore = %v, want 100", snap.TotalScore)
	}
	if !IsOptimal(snap, p) {
		t.Error("perfect submission should be optimal")
	}
}

func TestComputeBrokenSubmissionsNeverOptimal(t *testing.T) {
	p := config.DefaultPolicy()

	t.Run("syntax error", func(t *testing.T) {
		raw := perfectRaw()
		raw.Static.SyntaxErrors = f(1)
		snap, err := Compute(raw, p)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if snap.TotalScore > p.Caps.SyntaxError {
			t.Errorf("TotalScore = %v, want <= %v", snap.TotalScore, p.Caps.SyntaxError)
		}
		if IsOptimal(snap, p) {
			t.Error("submission with syntax errors must not be optimal")
		}
	})

	t.Run("failing tests", func(t *testing.T) {
		raw := perfectRaw()
		raw.Static.TestPassRate = f(99)
		snap, err := Compute(raw, p)
		if err != nil {
			t.Fatalf("Compute: %v", err)
		}
		if snap.TotalScore > p.Caps.FailingTests {
			t.Errorf("TotalScore = %v, want <= %v", snap.TotalScore, p.Caps.FailingTests)
		}
		if IsOptimal(snap, p) {
			t.Error("submission with failing tests must not be optimal")
		}
	})
}

func TestComputeClamps(t *testing.T) {
	raw := perfectRaw()
	raw.Static.TestPassRate = f(150)
	raw.Static.SyntaxErrors = f(-3)
	raw.Static.MemoryKB = f(-1)
	raw.Static.PatternMatch = f(9)
	raw.LLM.CodeReadability = f(-2)
	raw.LLM.SecurityAwareness = f(11)

	snap, err := Compute(raw, config.DefaultPolicy())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if snap.Static.TestPassRate != 100 {
		t.Errorf("TestPassRate = %v, want 100", snap.Static.TestPassRate)
	}
	if snap.Static.SyntaxErrors != 0 {
		t.Errorf("SyntaxErrors = %v, want 0", snap.Static.SyntaxErrors)
	}
	if snap.Static.MemoryKB != 0 {
		t.Errorf("MemoryKB = %v, want 0", snap.Static.MemoryKB)
	}
	if snap.Static.PatternMatch != 5 {
		t.Errorf("PatternMatch = %v, want 5", snap.Static.PatternMatch)
	}
	if snap.LLM.CodeReadability != 0 {
		t.Errorf("CodeReadability = %v, want 0", snap.LLM.CodeReadability)
	}
	if snap.LLM.SecurityAwareness != 5 {
		t.Errorf("SecurityAwareness = %v, want 5", snap.LLM.SecurityAwareness)
	}
	if snap.TotalScore < 0 || snap.TotalScore > 100 {
		t.Errorf("TotalScore = %v out of range", snap.TotalScore)
	}
}

func TestComputeIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.RawMetrics)
		missing string
	}{
		{"no static group", func(r *model.RawMetrics) { r.Static = nil }, "static_metrics"},
		{"no llm group", func(r *model.RawMetrics) { r.LLM = nil }, "llm_metrics"},
		{"missing test pass rate", func(r *model.RawMetrics) { r.Static.TestPassRate = nil }, "static_metrics.test_pass_rate"},
		{"missing readability", func(r *model.RawMetrics) { r.LLM.CodeReadability = nil }, "llm_metrics.code_readability"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := perfectRaw()
			tt.mutate(&raw)
			_, err := Compute(raw, config.DefaultPolicy())
			if !errors.Is(err, model.ErrIncompleteMetrics) {
				t.Fatalf("err = %v, want ErrIncompleteMetrics", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q should name %q", err, tt.missing)
			}
		})
	}
}

func TestTotalScoreMonotone(t *testing.T) {
	p := config.DefaultPolicy()
	base := model.StaticMetrics{
		SyntaxErrors:     2,
		TestPassRate:     40,
		CodeQualityScore: 50,
		PatternMatch:     2,
		PEP8Violations:   8,
	}
	llm := model.LLMMetrics{
		AlgorithmEfficiency: 2, CodeReadability: 2, DesignPatternFit: 2, EdgeCaseHandling: 2,
		CodeConciseness: 2, FunctionSeparation: 2, TestCoverageEstimate: 2, SecurityAwareness: 2,
	}

	improvements := []struct {
		name  string
		apply func(*model.StaticMetrics, *model.LLMMetrics)
	}{
		{"fewer syntax errors", func(s *model.StaticMetrics, _ *model.LLMMetrics) { s.SyntaxErrors = 0 }},
		{"more tests passing", func(s *model.StaticMetrics, _ *model.LLMMetrics) { s.TestPassRate = 100 }},
		{"higher quality", func(s *model.StaticMetrics, _ *model.LLMMetrics) { s.CodeQualityScore = 90 }},
		{"better pattern match", func(s *model.StaticMetrics, _ *model.LLMMetrics) { s.PatternMatch = 4 }},
		{"fewer pep8 violations", func(s *model.StaticMetrics, _ *model.LLMMetrics) { s.PEP8Violations = 1 }},
		{"better efficiency", func(_ *model.StaticMetrics, l *model.LLMMetrics) { l.AlgorithmEfficiency = 5 }},
		{"better security", func(_ *model.StaticMetrics, l *model.LLMMetrics) { l.SecurityAwareness = 4 }},
	}

	// Apply improvements cumulatively; the score must never drop.
	s, l := base, llm
	prev := TotalScore(s, l, p)
	for _, imp := range improvements {
		imp.apply(&s, &l)
		got := TotalScore(s, l, p)
		if got < prev {
			t.Errorf("%s: score dropped from %v to %v", imp.name, prev, got)
		}
		prev = got
	}

	// Each improvement alone, from the base, must not lower the score either.
	baseScore := TotalScore(base, llm, p)
	for _, imp := range improvements {
		s, l := base, llm
		imp.apply(&s, &l)
		if got := TotalScore(s, l, p); got < baseScore {
			t.Errorf("%s alone: score dropped from %v to %v", imp.name, baseScore, got)
		}
	}
}
