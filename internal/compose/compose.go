// Package compose renders the final hint text from the selected components.
package compose

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pavelanni/hinter/internal/coh"
	"github.com/pavelanni/hinter/internal/model"
)

// Input is everything the composer needs. Selected must already be filtered by the gate.
type Input struct {
	Purpose     model.Purpose
	Snapshot    model.MetricSnapshot
	WeakMetrics []model.WeakMetric
	State       model.COHState
	Selected    model.ComponentSet
}

type section struct {
	Title string
	Body  string
}

type hintData struct {
	LevelName string
	Style     string
	Sections  []section
}

var hintTmpl = template.Must(template.New("hint").Parse(
	`[{{.LevelName}} · {{.Style}}]
{{range .Sections}}
■ {{.Title}}
{{.Body}}
{{end}}`))

var summaryTmpls = template.Must(template.New("summary").Parse(`
{{define "syntax"}}코드에 문법 오류가 {{.SyntaxErrors}}개 있습니다. 로직을 고치기 전에 문법 오류부터 해결하세요.{{end}}
{{define "logic"}}문법은 올바르지만 테스트 통과율이 {{printf "%.0f" .TestPassRate}}%입니다. 다음 로직 단계에 집중해 보세요.{{end}}
{{define "complete"}}모든 테스트를 통과했습니다. 로직이 완성되었으니 제출 전에 마지막으로 점검해 보세요.{{end}}
{{define "optimization"}}현재 총점은 {{printf "%.1f" .TotalScore}}점입니다.
{{- if .Weak}} 아래 지표를 개선하면 점수를 올릴 수 있습니다.
{{- range .Weak}}
- {{.Description}} (점수 {{printf "%.1f" .Score}}/5)
{{- end}}
{{- else}} 기준 미달 지표는 없습니다. 세부 품질을 다듬어 보세요.{{end}}{{end}}
{{define "regression"}}주의: 이전에 별을 받았지만 지금 제출한 코드는 {{if .SyntaxErrors}}문법 오류가 {{.SyntaxErrors}}개 있습니다{{else}}테스트 통과율이 {{printf "%.0f" .TestPassRate}}%입니다{{end}}. 먼저 동작을 복구하세요.{{end}}
{{define "optimal"}}대안 접근 제안:
{{- if .Regressed}} 동작을 복구한 뒤{{else}} 이미 최적 점수({{printf "%.1f" .TotalScore}}점)에 도달했습니다.{{end}} 다른 자료구조나 알고리즘으로 같은 문제를 풀어 보며 시야를 넓혀 보세요.{{end}}
`))

type summaryData struct {
	SyntaxErrors int
	TestPassRate float64
	TotalScore   float64
	Weak         []model.WeakMetric
	Regressed    bool
}

var componentTitles = map[model.Component]string{
	model.ComponentSummary:        "요약",
	model.ComponentLibraries:      "추천 라이브러리",
	model.ComponentCodeExample:    "코드 예시",
	model.ComponentStepByStep:     "단계별 가이드",
	model.ComponentComplexityHint: "복잡도 힌트",
	model.ComponentEdgeCases:      "예외 케이스",
	model.ComponentImprovements:   "개선점",
}

// Component bodies by disclosure style. Detail grows from question to guide.
var componentBodies = map[model.Component]map[string]string{
	model.ComponentLibraries: {
		coh.StyleSocratic: "이 문제를 더 쉽게 만들어 줄 표준 라이브러리가 떠오르나요?",
		coh.StyleConcept:  "정렬, 해시 맵, 큐처럼 표준 라이브러리가 제공하는 자료구조로 직접 구현을 줄일 수 있습니다.",
		coh.StyleGuide:    "collections(deque, Counter, defaultdict), heapq, bisect 중 입력 처리 방식에 맞는 것을 골라 반복문을 대체하세요.",
	},
	model.ComponentCodeExample: {
		coh.StyleSocratic: "핵심 반복 구조를 세 줄 이내의 의사 코드로 적어 볼 수 있나요?",
		coh.StyleConcept:  "입력을 한 번 순회하면서 필요한 상태만 갱신하는 형태의 짧은 예시를 떠올려 보세요.",
		coh.StyleGuide:    "예시 구조:\n  for item in data:\n      state = update(state, item)\n  return state",
	},
	model.ComponentStepByStep: {
		coh.StyleSocratic: "문제를 해결하려면 어떤 순서로 무엇을 해야 할까요?",
		coh.StyleConcept:  "입력 해석, 핵심 계산, 결과 출력의 세 단계로 나누어 각각 따로 검증해 보세요.",
		coh.StyleGuide:    "1) 입력을 파싱해 자료구조에 담습니다.\n2) 핵심 계산을 함수로 분리합니다.\n3) 작은 예제로 중간 값을 출력해 확인합니다.\n4) 결과 형식을 문제와 맞춥니다.",
	},
	model.ComponentComplexityHint: {
		coh.StyleSocratic: "입력 크기가 10배가 되면 실행 시간은 어떻게 변할까요?",
		coh.StyleConcept:  "중첩 반복문은 O(n²)입니다. 정렬이나 해시를 쓰면 O(n log n) 또는 O(n)으로 줄일 수 있는지 살펴보세요.",
		coh.StyleGuide:    "반복문 안의 탐색을 해시 조회로 바꾸면 O(n²)에서 O(n)으로 줄어듭니다. 가장 안쪽 반복문부터 확인하세요.",
	},
	model.ComponentEdgeCases: {
		coh.StyleSocratic: "입력이 비어 있거나 하나뿐이라면 코드는 어떻게 동작할까요?",
		coh.StyleConcept:  "빈 입력, 최소·최대 값, 중복 값, 음수 같은 경계 조건을 점검해 보세요.",
		coh.StyleGuide:    "다음 입력으로 직접 실행해 보세요: 빈 입력, 원소 1개, 모든 값이 같은 경우, 최대 크기 입력.",
	},
	model.ComponentImprovements: {
		coh.StyleSocratic: "지금 코드에서 가장 먼저 고치고 싶은 부분은 어디인가요?",
		coh.StyleConcept:  "반복되는 코드를 함수로 묶고 변수 이름이 의도를 드러내도록 다듬어 보세요.",
		coh.StyleGuide:    "가장 긴 함수를 역할별로 나누고, 한 글자 변수명을 의미 있는 이름으로 바꾼 뒤 테스트를 다시 실행하세요.",
	},
}

// Compose renders the hint. The summary always comes first and the remaining
// components follow in fixed order regardless of how they were requested.
func Compose(in Input) (string, error) {
	summary, err := renderSummary(in)
	if err != nil {
		return "", err
	}

	data := hintData{
		LevelName: in.State.LevelName,
		Style:     in.State.Style,
		Sections:  []section{{Title: componentTitles[model.ComponentSummary], Body: summary}},
	}

	for _, c := range in.Selected.Components() {
		if c == model.ComponentSummary {
			continue
		}
		body, ok := componentBodies[c][in.State.Style]
		if !ok {
			return "", fmt.Errorf("no %s text for style %q", c, in.State.Style)
		}
		if c == model.ComponentImprovements && len(in.WeakMetrics) > 0 {
			body += "\n우선순위: " + in.WeakMetrics[0].Description
		}
		data.Sections = append(data.Sections, section{Title: componentTitles[c], Body: body})
	}

	var buf bytes.Buffer
	if err := hintTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render hint: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func renderSummary(in Input) (string, error) {
	snap := in.Snapshot
	broken := snap.HasSyntaxErrors() || !snap.TestsPassing()

	var names []string
	switch in.Purpose {
	case model.PurposeCompletion:
		switch {
		case snap.HasSyntaxErrors():
			names = []string{"syntax"}
		case !snap.TestsPassing():
			names = []string{"logic"}
		default:
			names = []string{"complete"}
		}
	case model.PurposeOptimization, model.PurposeOptimal:
		// A starred submission that no longer works keeps its purpose framing,
		// preceded by a regression notice.
		if broken {
			names = append(names, "regression")
		}
		names = append(names, string(in.Purpose))
	default:
		return "", fmt.Errorf("unknown hint purpose %q", in.Purpose)
	}

	data := summaryData{
		SyntaxErrors: snap.Static.SyntaxErrors,
		TestPassRate: snap.Static.TestPassRate,
		TotalScore:   snap.TotalScore,
		Weak:         in.WeakMetrics,
		Regressed:    broken,
	}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		var buf bytes.Buffer
		if err := summaryTmpls.ExecuteTemplate(&buf, name, data); err != nil {
			return "", fmt.Errorf("render summary: %w", err)
		}
		parts = append(parts, strings.TrimSpace(buf.String()))
	}
	return strings.Join(parts, "\n"), nil
}
