package coh

import (
	"errors"
	"testing"
	"time"

	"github.com/pavelanni/hinter/internal/model"
)

func historyOf(presets ...model.Preset) []model.HistoryEntry {
	var h []model.HistoryEntry
	for i, p := range presets {
		h = append(h, model.HistoryEntry{
			HintText:  "hint",
			Preset:    p,
			Timestamp: time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		})
	}
	return h
}

func repeat(p model.Preset, n int) []model.Preset {
	out := make([]model.Preset, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestLevelTable(t *testing.T) {
	tests := []struct {
		preset model.Preset
		levels []int // by depth, past the ceiling included
	}{
		{model.PresetAdvanced, []int{9, 8, 8, 8}},
		{model.PresetIntermediate, []int{7, 6, 5, 5, 5}},
		{model.PresetBeginner, []int{4, 3, 2, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.preset), func(t *testing.T) {
			maxDepth, err := MaxDepth(tt.preset)
			if err != nil {
				t.Fatalf("MaxDepth: %v", err)
			}
			for depth, want := range tt.levels {
				st, err := Advance(tt.preset, historyOf(repeat(tt.preset, depth)...))
				if err != nil {
					t.Fatalf("Advance depth %d: %v", depth, err)
				}
				if st.HintLevel != want {
					t.Errorf("depth %d: level = %d, want %d", depth, st.HintLevel, want)
				}
				if st.Depth != depth {
					t.Errorf("depth %d: reported depth %d", depth, st.Depth)
				}
				wantMore := depth < maxDepth-1
				if st.CanGetMoreDetailed != wantMore {
					t.Errorf("depth %d: can_get_more_detailed = %v, want %v", depth, st.CanGetMoreDetailed, wantMore)
				}
				if st.LevelName == "" || st.Style == "" {
					t.Errorf("depth %d: missing level name or style", depth)
				}
			}
		})
	}
}

func TestLevelNonIncreasing(t *testing.T) {
	for _, p := range model.Presets {
		prev := 10
		for depth := 0; depth < 8; depth++ {
			st, err := At(p, depth)
			if err != nil {
				t.Fatalf("At(%s, %d): %v", p, depth, err)
			}
			if st.HintLevel > prev {
				t.Errorf("%s depth %d: level %d rose above %d", p, depth, st.HintLevel, prev)
			}
			if st.CanGetMoreDetailed && st.NextLevel >= st.HintLevel {
				t.Errorf("%s depth %d: next level %d not more detailed", p, depth, st.NextLevel)
			}
			prev = st.HintLevel
		}
	}
}

func TestCeilingIdempotent(t *testing.T) {
	for _, p := range model.Presets {
		maxDepth, _ := MaxDepth(p)
		first, err := At(p, maxDepth-1)
		if err != nil {
			t.Fatalf("At: %v", err)
		}
		if first.CanGetMoreDetailed {
			t.Fatalf("%s: expected exhaustion at depth %d", p, maxDepth-1)
		}
		for extra := 0; extra < 5; extra++ {
			st, err := Advance(p, historyOf(repeat(p, maxDepth+extra)...))
			if err != nil {
				t.Fatalf("%s: Advance past ceiling must not error: %v", p, err)
			}
			if st.HintLevel != first.HintLevel || st.Blocked != first.Blocked || st.CanGetMoreDetailed {
				t.Errorf("%s extra %d: got level %d blocked %v more %v, want ceiling state",
					p, extra, st.HintLevel, st.Blocked.Names(), st.CanGetMoreDetailed)
			}
		}
	}
}

func TestAdvancedScenarios(t *testing.T) {
	st, err := Advance(model.PresetAdvanced, nil)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.HintLevel != 9 || !st.CanGetMoreDetailed || st.NextLevel != 8 {
		t.Errorf("fresh 고급: got level %d more %v next %d", st.HintLevel, st.CanGetMoreDetailed, st.NextLevel)
	}
	wantBlocked := model.NewComponentSet(model.ComponentLibraries, model.ComponentCodeExample, model.ComponentStepByStep)
	if st.Blocked != wantBlocked {
		t.Errorf("blocked = %v, want %v", st.Blocked.Names(), wantBlocked.Names())
	}

	st, err = Advance(model.PresetAdvanced, historyOf(model.PresetAdvanced))
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.HintLevel != 8 || st.CanGetMoreDetailed || st.NextLevel != 0 {
		t.Errorf("one 고급 hint: got level %d more %v next %d", st.HintLevel, st.CanGetMoreDetailed, st.NextLevel)
	}
}

func TestPresetSwitchIgnoresOtherPresets(t *testing.T) {
	h := historyOf(model.PresetIntermediate, model.PresetIntermediate)
	st, err := Advance(model.PresetBeginner, h)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.Depth != 0 || st.HintLevel != 4 {
		t.Errorf("switch to 초급: depth %d level %d, want 0 and 4", st.Depth, st.HintLevel)
	}

	st, err = Advance(model.PresetBeginner, nil)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.Depth != 0 || st.HintLevel != 4 {
		t.Errorf("empty 초급: depth %d level %d, want 0 and 4", st.Depth, st.HintLevel)
	}
}

func TestAdvanceErrors(t *testing.T) {
	if _, err := Advance("expert", nil); !errors.Is(err, model.ErrInvalidPreset) {
		t.Errorf("unknown preset err = %v, want ErrInvalidPreset", err)
	}
	h := historyOf(model.PresetAdvanced, "master")
	if _, err := Advance(model.PresetAdvanced, h); !errors.Is(err, model.ErrInvalidHistory) {
		t.Errorf("bad history err = %v, want ErrInvalidHistory", err)
	}
	_, err := At(model.PresetBeginner, -1)
	if !model.IsInternal(err) {
		t.Errorf("negative depth err = %v, want internal error", err)
	}
	if model.IsValidation(err) {
		t.Error("internal error must not be classified as validation")
	}
}

func TestLadder(t *testing.T) {
	rungs := Ladder()
	if len(rungs) != 9 {
		t.Fatalf("ladder has %d rungs, want 9", len(rungs))
	}
	for i, r := range rungs {
		if r.HintLevel != 9-i {
			t.Errorf("rung %d level = %d, want %d", i, r.HintLevel, 9-i)
		}
		if LevelName(r.HintLevel) != r.LevelName {
			t.Errorf("rung %d name mismatch", i)
		}
	}
	if !rungs[1].Last || rungs[0].Last {
		t.Error("고급 ladder should end at its second rung")
	}
}

func TestStyle(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{9, StyleSocratic}, {8, StyleSocratic},
		{7, StyleConcept}, {5, StyleConcept},
		{4, StyleGuide}, {1, StyleGuide},
	}
	for _, tt := range tests {
		if got := Style(tt.level); got != tt.want {
			t.Errorf("Style(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestScope(t *testing.T) {
	tests := []struct {
		name    string
		preset  model.Preset
		history []model.Preset
		want    int
	}{
		{"empty", model.PresetBeginner, nil, 0},
		{"all current", model.PresetIntermediate, repeat(model.PresetIntermediate, 2), 2},
		{"switched away", model.PresetBeginner, repeat(model.PresetIntermediate, 2), 0},
		{"switched back", model.PresetAdvanced,
			[]model.Preset{model.PresetAdvanced, model.PresetBeginner, model.PresetAdvanced}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scoped, err := Scope(tt.preset, historyOf(tt.history...))
			if err != nil {
				t.Fatalf("Scope: %v", err)
			}
			if len(scoped) != tt.want {
				t.Errorf("len(Scope) = %d, want %d", len(scoped), tt.want)
			}
		})
	}
}

func TestScopeRejectsUnknownPreset(t *testing.T) {
	_, err := Scope(model.PresetBeginner, historyOf(model.PresetBeginner, model.Preset("expert")))
	if !errors.Is(err, model.ErrInvalidHistory) {
		t.Errorf("err = %v, want ErrInvalidHistory", err)
	}
}

func TestSwitchToBeginnerStartsAtBase(t *testing.T) {
	h := historyOf(model.PresetIntermediate, model.PresetIntermediate)
	scoped, err := Scope(model.PresetBeginner, h)
	if err != nil {
		t.Fatalf("Scope: %v", err)
	}
	st, err := Advance(model.PresetBeginner, scoped)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if st.Depth != 0 || st.HintLevel != 4 {
		t.Errorf("got depth %d level %d, want depth 0 level 4", st.Depth, st.HintLevel)
	}
}
