package config

import (
	"errors"
	"fmt"
)

// Policy is the metric scoring policy. Weights are a tuning constant, not part of
// the hint contract; only monotonicity of the resulting score matters.
type Policy struct {
	Weights    WeightsConfig    `yaml:"weights"`
	Caps       CapsConfig       `yaml:"caps"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// WeightsConfig contains the total_score weighting.
type WeightsConfig struct {
	StaticGroup float64 `yaml:"static_group"`
	LLMGroup    float64 `yaml:"llm_group"`

	// Inside the static group
	TestPassRate float64 `yaml:"test_pass_rate"`
	SyntaxClean  float64 `yaml:"syntax_clean"`
	CodeQuality  float64 `yaml:"code_quality"`
	PatternMatch float64 `yaml:"pattern_match"`
	PEP8         float64 `yaml:"pep8"`
}

// CapsConfig contains score ceilings for broken submissions.
type CapsConfig struct {
	SyntaxError  float64 `yaml:"syntax_error"`
	FailingTests float64 `yaml:"failing_tests"`
	Optimal      float64 `yaml:"optimal"` // score at which a submission counts as optimal
}

// ThresholdsConfig contains the weak-metric thresholds on the 0–5 scale.
type ThresholdsConfig struct {
	Default   float64            `yaml:"default"`
	PerMetric map[string]float64 `yaml:"per_metric"`
}

// For returns the threshold of the named metric.
func (t ThresholdsConfig) For(metric string) float64 {
	if v, ok := t.PerMetric[metric]; ok {
		return v
	}
	return t.Default
}

// DefaultPolicy returns the built-in scoring policy.
func DefaultPolicy() *Policy {
	return &Policy{
		Weights: WeightsConfig{
			StaticGroup:  0.6,
			LLMGroup:     0.4,
			TestPassRate: 0.35,
			SyntaxClean:  0.2,
			CodeQuality:  0.2,
			PatternMatch: 0.15,
			PEP8:         0.1,
		},
		Caps: CapsConfig{
			SyntaxError:  40,
			FailingTests: 70,
			Optimal:      90,
		},
		Thresholds: ThresholdsConfig{
			Default:   3,
			PerMetric: map[string]float64{},
		},
	}
}

// Validate checks that the policy keeps the score bounded and monotone.
func (p *Policy) Validate() error {
	w := p.Weights
	for name, v := range map[string]float64{
		"static_group":   w.StaticGroup,
		"llm_group":      w.LLMGroup,
		"test_pass_rate": w.TestPassRate,
		"syntax_clean":   w.SyntaxClean,
		"code_quality":   w.CodeQuality,
		"pattern_match":  w.PatternMatch,
		"pep8":           w.PEP8,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}
	if w.StaticGroup+w.LLMGroup == 0 {
		return errors.New("group weights must not both be zero")
	}
	if w.TestPassRate+w.SyntaxClean+w.CodeQuality+w.PatternMatch+w.PEP8 == 0 {
		return errors.New("static weights must not all be zero")
	}

	c := p.Caps
	if c.Optimal <= 0 || c.Optimal > 100 {
		return fmt.Errorf("optimal cap %.1f out of range (0,100]", c.Optimal)
	}
	if c.SyntaxError >= c.Optimal || c.FailingTests >= c.Optimal {
		return errors.New("syntax_error and failing_tests caps must stay below the optimal cap")
	}
	if c.SyntaxError < 0 || c.FailingTests < 0 {
		return errors.New("caps must not be negative")
	}

	if p.Thresholds.Default < 0 || p.Thresholds.Default > 5 {
		return fmt.Errorf("default threshold %.1f out of range [0,5]", p.Thresholds.Default)
	}
	for name, v := range p.Thresholds.PerMetric {
		if v < 0 || v > 5 {
			return fmt.Errorf("threshold %s=%.1f out of range [0,5]", name, v)
		}
	}
	return nil
}
