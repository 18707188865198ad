package hint

import (
	"errors"
	"testing"
	"time"

	"github.com/pavelanni/hinter/internal/model"
)

func TestHistoryFromClient(t *testing.T) {
	prev := []model.PreviousHint{
		{HintText: "a", Level: "고급", Timestamp: "2026-01-02T03:04:05.000Z"},
		{HintText: "b", Level: "intermediate", Timestamp: "not a time"},
	}
	got, err := HistoryFromClient(prev)
	if err != nil {
		t.Fatalf("HistoryFromClient: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Preset != model.PresetAdvanced || got[1].Preset != model.PresetIntermediate {
		t.Errorf("presets = %s, %s", got[0].Preset, got[1].Preset)
	}
	if !got[0].Timestamp.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("timestamp = %v", got[0].Timestamp)
	}
	if !got[1].Timestamp.IsZero() {
		t.Errorf("unparsable timestamp should be zero, got %v", got[1].Timestamp)
	}
}

func TestHistoryFromClientUnknownLevel(t *testing.T) {
	_, err := HistoryFromClient([]model.PreviousHint{{HintText: "a", Level: "최상급"}})
	if !errors.Is(err, model.ErrInvalidHistory) {
		t.Errorf("err = %v, want ErrInvalidHistory", err)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("x = 1\ny = 2\n")
	if b := Fingerprint("x = 1  \r\ny = 2"); a != b {
		t.Errorf("whitespace-only change altered fingerprint: %s != %s", a, b)
	}
	if c := Fingerprint("x = 1\ny = 3"); a == c {
		t.Error("different code produced the same fingerprint")
	}
	if len(a) != 32 {
		t.Errorf("len = %d, want 32 hex chars", len(a))
	}
}
