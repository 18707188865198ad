// Package coh implements the Chain-of-Hints state machine. Each preset owns a short
// ladder of hint levels; every hint already issued under the preset moves one rung
// down the ladder toward more detail until the preset's ceiling is reached.
//
// The engine is stateless: history is passed in on every call.
package coh

import (
	"fmt"

	"github.com/pavelanni/hinter/internal/gate"
	"github.com/pavelanni/hinter/internal/model"
)

// Disclosure styles, from least to most detailed.
const (
	StyleSocratic = "소크라테스식 질문"
	StyleConcept  = "개념 힌트"
	StyleGuide    = "구체적 가이드"
)

type rung struct {
	level int
	name  string
}

// Levels run on a global 9..1 scale: 9 is the most Socratic, 1 the most detailed.
var ladders = map[model.Preset][]rung{
	model.PresetAdvanced: {
		{9, "고급 기본"},
		{8, "고급 COH1"},
	},
	model.PresetIntermediate: {
		{7, "중급 기본"},
		{6, "중급 COH1"},
		{5, "중급 COH2"},
	},
	model.PresetBeginner: {
		{4, "초급 기본"},
		{3, "초급 COH1"},
		{2, "초급 COH2"},
		{1, "초급 COH3"},
	},
}

// MaxDepth returns how many distinct hints the preset can issue.
func MaxDepth(p model.Preset) (int, error) {
	rungs, ok := ladders[p]
	if !ok {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidPreset, p)
	}
	return len(rungs), nil
}

// Style returns the disclosure style of a hint level.
func Style(level int) string {
	switch {
	case level >= 8:
		return StyleSocratic
	case level >= 5:
		return StyleConcept
	default:
		return StyleGuide
	}
}

// LevelName returns the label of a hint level, or "" for an unknown level.
func LevelName(level int) string {
	for _, rungs := range ladders {
		for _, r := range rungs {
			if r.level == level {
				return r.name
			}
		}
	}
	return ""
}

// Advance computes the Chain-of-Hints state for the next hint under preset p.
// Entries issued under other presets are ignored; an entry with an unknown preset
// fails with ErrInvalidHistory. Requests past the ceiling repeat the ceiling state.
func Advance(p model.Preset, history []model.HistoryEntry) (model.COHState, error) {
	if _, ok := ladders[p]; !ok {
		return model.COHState{}, fmt.Errorf("%w: %q", model.ErrInvalidPreset, p)
	}

	depth := 0
	for i, h := range history {
		if !h.Preset.Valid() {
			return model.COHState{}, fmt.Errorf("%w: entry %d has preset %q", model.ErrInvalidHistory, i, h.Preset)
		}
		if h.Preset == p {
			depth++
		}
	}
	return At(p, depth)
}

// Scope returns the trailing run of history issued under preset p. Switching
// presets restarts the chain, so entries before the last switch do not count
// even when they share p. Unknown presets fail with ErrInvalidHistory.
func Scope(p model.Preset, history []model.HistoryEntry) ([]model.HistoryEntry, error) {
	for i, h := range history {
		if !h.Preset.Valid() {
			return nil, fmt.Errorf("%w: entry %d has preset %q", model.ErrInvalidHistory, i, h.Preset)
		}
	}
	start := len(history)
	for start > 0 && history[start-1].Preset == p {
		start--
	}
	return history[start:], nil
}

// At returns the state of preset p after depth hints.
func At(p model.Preset, depth int) (model.COHState, error) {
	rungs, ok := ladders[p]
	if !ok {
		return model.COHState{}, fmt.Errorf("%w: %q", model.ErrInvalidPreset, p)
	}
	if depth < 0 {
		return model.COHState{}, &model.InternalError{Op: "coh.At", Msg: fmt.Sprintf("negative depth %d", depth)}
	}

	idx := min(depth, len(rungs)-1)
	r := rungs[idx]

	blocked, err := gate.Blocked(p)
	if err != nil {
		return model.COHState{}, err
	}

	st := model.COHState{
		Preset:             p,
		Depth:              depth,
		HintLevel:          r.level,
		LevelName:          r.name,
		Style:              Style(r.level),
		CanGetMoreDetailed: idx < len(rungs)-1,
		Blocked:            blocked,
	}
	if st.CanGetMoreDetailed {
		st.NextLevel = rungs[idx+1].level
	}

	if err := checkState(st, rungs); err != nil {
		return model.COHState{}, err
	}
	return st, nil
}

func checkState(st model.COHState, rungs []rung) error {
	top, bottom := rungs[0].level, rungs[len(rungs)-1].level
	if st.HintLevel > top || st.HintLevel < bottom {
		return &model.InternalError{
			Op:  "coh.At",
			Msg: fmt.Sprintf("level %d outside %s range %d..%d", st.HintLevel, st.Preset, top, bottom),
		}
	}
	if st.CanGetMoreDetailed && st.NextLevel >= st.HintLevel {
		return &model.InternalError{
			Op:  "coh.At",
			Msg: fmt.Sprintf("next level %d is not more detailed than %d", st.NextLevel, st.HintLevel),
		}
	}
	return nil
}

// Rung is one row of the Chain-of-Hints ladder.
type Rung struct {
	Preset    model.Preset
	Depth     int
	HintLevel int
	LevelName string
	Style     string
	Blocked   model.ComponentSet
	Last      bool
}

// Ladder lists every rung of every preset, strictest preset first.
func Ladder() []Rung {
	var out []Rung
	for i := len(model.Presets) - 1; i >= 0; i-- {
		p := model.Presets[i]
		blocked, _ := gate.Blocked(p)
		rungs := ladders[p]
		for d, r := range rungs {
			out = append(out, Rung{
				Preset:    p,
				Depth:     d,
				HintLevel: r.level,
				LevelName: r.name,
				Style:     Style(r.level),
				Blocked:   blocked,
				Last:      d == len(rungs)-1,
			})
		}
	}
	return out
}
