// Package hint orchestrates a hint request: it validates the input, scores the
// submission, walks the Chain-of-Hints ladder, gates the components and
// renders the final text.
package hint

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/hinter/internal/coh"
	"github.com/pavelanni/hinter/internal/compose"
	"github.com/pavelanni/hinter/internal/config"
	"github.com/pavelanni/hinter/internal/gate"
	"github.com/pavelanni/hinter/internal/i18n"
	"github.com/pavelanni/hinter/internal/metrics"
	"github.com/pavelanni/hinter/internal/model"
	"github.com/pavelanni/hinter/internal/purpose"
)

// Judge scores code on the LLM-judged metrics.
type Judge interface {
	JudgeCode(ctx context.Context, code, problemID string) (model.LLMMetrics, error)
}

// Service generates hints. It holds no per-user state and is safe for concurrent use.
type Service struct {
	policy *config.Policy
	judge  Judge
	now    func() time.Time
}

// NewService creates a hint service. judge may be nil, in which case requests
// must carry their own llm_metrics.
func NewService(policy *config.Policy, judge Judge) *Service {
	if policy == nil {
		policy = config.DefaultPolicy()
	}
	return &Service{policy: policy, judge: judge, now: time.Now}
}

// Policy returns the scoring policy in use.
func (s *Service) Policy() *config.Policy {
	return s.policy
}

// Result is the outcome of one hint request.
type Result struct {
	Data  model.HintData
	State model.COHState
	Entry model.HistoryEntry // to be appended to the session history
}

// Snapshot scores a submission. When the caller sent no llm_metrics and a
// judge is configured, the judge fills them in.
func (s *Service) Snapshot(ctx context.Context, code, problemID string, raw model.RawMetrics) (model.MetricSnapshot, error) {
	if raw.LLM == nil && s.judge != nil && code != "" {
		judged, err := s.judge.JudgeCode(ctx, code, problemID)
		if err != nil {
			return model.MetricSnapshot{}, fmt.Errorf("judge code: %w", err)
		}
		slog.Debug("llm metrics judged", "problem_id", problemID)
		raw.LLM = model.RawLLMFrom(judged)
	}
	return metrics.Compute(raw, s.policy)
}

// Generate produces the next hint for req. history is the session's prior
// hints in issue order; entries before the last preset switch are ignored.
func (s *Service) Generate(ctx context.Context, req model.HintRequest, history []model.HistoryEntry) (*Result, error) {
	preset, err := model.ParsePreset(req.Preset)
	if err != nil {
		return nil, err
	}
	if err := purpose.CheckStars(req.StarCount); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx, req.Code, req.ProblemID, req.UserMetrics)
	if err != nil {
		return nil, err
	}
	logicComplete := purpose.IsLogicComplete(snap)
	purp, err := purpose.Classify(logicComplete, req.StarCount)
	if err != nil {
		return nil, err
	}
	if req.HintPurpose != "" && model.Purpose(req.HintPurpose) != purp {
		slog.Debug("client hint purpose overridden", "client", req.HintPurpose, "computed", purp)
	}
	weak := purpose.WeakMetrics(snap, s.policy.Thresholds)

	scoped, err := coh.Scope(preset, history)
	if err != nil {
		return nil, err
	}
	st, err := coh.Advance(preset, scoped)
	if err != nil {
		return nil, err
	}

	requested := model.AllComponentSet
	if req.CustomComponents != nil {
		requested = req.CustomComponents.Set()
	}
	selected, err := gate.Filter(preset, requested)
	if err != nil {
		return nil, err
	}

	text, err := compose.Compose(compose.Input{
		Purpose:     purp,
		Snapshot:    snap,
		WeakMetrics: weak,
		State:       st,
		Selected:    selected,
	})
	if err != nil {
		return nil, &model.InternalError{Op: "compose", Msg: err.Error()}
	}

	branch, err := Branch(purp, snap, len(weak) > 0)
	if err != nil {
		return nil, &model.InternalError{Op: "branch", Msg: err.Error()}
	}

	flags := model.FlagsOf(selected)
	level := st.HintLevel
	data := model.HintData{
		Hint:                 text,
		HintPurpose:          purp,
		HintBranch:           branch,
		CurrentStarCount:     req.StarCount,
		IsLogicComplete:      logicComplete,
		HintComponents:       &flags,
		SelectedComponents:   selected.Names(),
		UnselectedComponents: model.AllComponentSet.Without(selected).Names(),
		TotalScore:           snap.TotalScore,
		Preset:               preset,
		COHStatus: &model.COHStatus{
			LevelName:          LocalizedLevelName(ctx, st.HintLevel, st.LevelName),
			HintLevel:          st.HintLevel,
			CanGetMoreDetailed: st.CanGetMoreDetailed,
			NextLevelHint:      NextLevelHint(ctx, st),
		},
		HintLevel:         &level,
		COHDepth:          st.Depth,
		BlockedComponents: st.Blocked.Names(),
		StaticMetrics:     snap.Static,
		LLMMetrics:        snap.LLM,
	}
	if purp == model.PurposeOptimization {
		data.WeakMetrics = weakViews(weak)
	}

	entry := model.HistoryEntry{
		ID:        uuid.NewString(),
		HintText:  text,
		Preset:    preset,
		HintLevel: st.HintLevel,
		CodeHash:  Fingerprint(req.Code),
		Timestamp: s.now().UTC(),
	}

	slog.Info("hint generated",
		"problem_id", req.ProblemID,
		"preset", preset,
		"purpose", purp,
		"branch", branch,
		"level", st.HintLevel,
		"depth", st.Depth,
	)
	return &Result{Data: data, State: st, Entry: entry}, nil
}

// Validate scores a submission without issuing a hint.
func (s *Service) Validate(ctx context.Context, req model.ValidateRequest) (model.ValidateData, model.MetricSnapshot, error) {
	if err := purpose.CheckStars(req.StarCount); err != nil {
		return model.ValidateData{}, model.MetricSnapshot{}, err
	}
	snap, err := s.Snapshot(ctx, req.Code, req.ProblemID, req.UserMetrics)
	if err != nil {
		return model.ValidateData{}, model.MetricSnapshot{}, err
	}
	logicComplete := purpose.IsLogicComplete(snap)
	purp, err := purpose.Classify(logicComplete, req.StarCount)
	if err != nil {
		return model.ValidateData{}, model.MetricSnapshot{}, err
	}
	return model.ValidateData{
		HintPurpose:     purp,
		IsLogicComplete: logicComplete,
		IsOptimal:       metrics.IsOptimal(snap, s.policy),
		TotalScore:      snap.TotalScore,
		WeakMetrics:     weakViews(purpose.WeakMetrics(snap, s.policy.Thresholds)),
		StaticMetrics:   snap.Static,
		LLMMetrics:      snap.LLM,
	}, snap, nil
}

func weakViews(weak []model.WeakMetric) []model.WeakMetricView {
	out := make([]model.WeakMetricView, 0, len(weak))
	for _, w := range weak {
		out = append(out, model.WeakMetricView{Metric: w.Metric, Description: w.Description, Score: w.Score})
	}
	return out
}

// LocalizedLevelName returns the level label in the request language.
func LocalizedLevelName(ctx context.Context, level int, fallback string) string {
	return i18n.TOr(ctx, fmt.Sprintf("HintLevel%d", level), fallback)
}

// NextLevelHint tells the user what another request at the same preset yields.
func NextLevelHint(ctx context.Context, st model.COHState) string {
	if !st.CanGetMoreDetailed {
		return i18n.TdOr(ctx, "NextLevelExhausted", map[string]any{"Preset": string(st.Preset)},
			fmt.Sprintf("%s 프리셋의 최대 상세도에 도달했습니다. 더 자세한 힌트가 필요하면 더 쉬운 프리셋을 선택하세요.", st.Preset))
	}
	fallbackName := coh.LevelName(st.NextLevel)
	name := LocalizedLevelName(ctx, st.NextLevel, fallbackName)
	return i18n.TdOr(ctx, "NextLevelAvailable", map[string]any{"Name": name, "Level": st.NextLevel},
		fmt.Sprintf("한 번 더 요청하면 '%s'(레벨 %d) 단계의 더 구체적인 힌트를 받을 수 있습니다.", fallbackName, st.NextLevel))
}
