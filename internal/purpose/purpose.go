// Package purpose classifies hint requests and finds the metrics worth targeting.
package purpose

import (
	"fmt"
	"sort"

	"github.com/pavelanni/hinter/internal/config"
	"github.com/pavelanni/hinter/internal/model"
)

// MaxStars is the highest star rating a submission can hold.
const MaxStars = 3

// Classify derives the hint purpose from the star rating. A submission without
// stars always needs completion help, whether or not its logic already works.
func Classify(isLogicComplete bool, starCount int) (model.Purpose, error) {
	if err := CheckStars(starCount); err != nil {
		return "", err
	}
	switch {
	case starCount == 0:
		return model.PurposeCompletion, nil
	case starCount < MaxStars:
		return model.PurposeOptimization, nil
	default:
		return model.PurposeOptimal, nil
	}
}

// CheckStars rejects star ratings outside [0,MaxStars].
func CheckStars(starCount int) error {
	if starCount < 0 || starCount > MaxStars {
		return fmt.Errorf("%w: %d not in [0,%d]", model.ErrInvalidStarCount, starCount, MaxStars)
	}
	return nil
}

// IsLogicComplete reports whether the submission compiles and passes every test.
func IsLogicComplete(snap model.MetricSnapshot) bool {
	return !snap.HasSyntaxErrors() && snap.TestsPassing()
}

type weakCandidate struct {
	name        model.MetricName
	description string
	score       func(model.MetricSnapshot) float64
}

// Ordered by tie-break priority: algorithmic concerns before style.
var candidates = []weakCandidate{
	{model.MetricAlgorithmEfficiency, "알고리즘 효율성: 시간·공간 복잡도를 줄일 여지가 있습니다",
		func(s model.MetricSnapshot) float64 { return s.LLM.AlgorithmEfficiency }},
	{model.MetricEdgeCaseHandling, "예외 케이스 처리: 경계값과 빈 입력을 점검하세요",
		func(s model.MetricSnapshot) float64 { return s.LLM.EdgeCaseHandling }},
	{model.MetricDesignPatternFit, "설계 적합성: 문제에 맞는 자료구조와 패턴을 고려하세요",
		func(s model.MetricSnapshot) float64 { return s.LLM.DesignPatternFit }},
	{model.MetricFunctionSeparation, "함수 분리: 역할별로 함수를 나누어 보세요",
		func(s model.MetricSnapshot) float64 { return s.LLM.FunctionSeparation }},
	{model.MetricTestCoverageEstimate, "테스트 커버리지: 검증되지 않은 경로가 있습니다",
		func(s model.MetricSnapshot) float64 { return s.LLM.TestCoverageEstimate }},
	{model.MetricSecurityAwareness, "보안 인식: 입력 검증과 안전하지 않은 호출을 확인하세요",
		func(s model.MetricSnapshot) float64 { return s.LLM.SecurityAwareness }},
	{model.MetricPatternMatch, "풀이 패턴: 기대하는 풀이 방식과 거리가 있습니다",
		func(s model.MetricSnapshot) float64 { return s.Static.PatternMatch }},
	{model.MetricCodeConciseness, "간결성: 중복되거나 불필요한 코드를 줄여 보세요",
		func(s model.MetricSnapshot) float64 { return s.LLM.CodeConciseness }},
	{model.MetricCodeReadability, "가독성: 변수명과 구조를 더 명확하게 다듬어 보세요",
		func(s model.MetricSnapshot) float64 { return s.LLM.CodeReadability }},
}

// Describe returns the description of a weak metric.
func Describe(name model.MetricName) string {
	for _, c := range candidates {
		if c.name == name {
			return c.description
		}
	}
	return string(name)
}

// WeakMetrics lists the 0–5 sub-metrics strictly below their threshold,
// weakest first, ties broken by metric priority.
func WeakMetrics(snap model.MetricSnapshot, thresholds config.ThresholdsConfig) []model.WeakMetric {
	type ranked struct {
		model.WeakMetric
		priority int
	}
	var weak []ranked
	for i, c := range candidates {
		score := c.score(snap)
		if score < thresholds.For(string(c.name)) {
			weak = append(weak, ranked{
				WeakMetric: model.WeakMetric{Metric: c.name, Score: score, Description: c.description},
				priority:   i,
			})
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		if weak[i].Score != weak[j].Score {
			return weak[i].Score < weak[j].Score
		}
		return weak[i].priority < weak[j].priority
	})

	out := make([]model.WeakMetric, 0, len(weak))
	for _, w := range weak {
		out = append(out, w.WeakMetric)
	}
	return out
}
