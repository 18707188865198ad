package hint

import (
	"testing"

	"github.com/pavelanni/hinter/internal/model"
)

func snapshot(syntaxErrors int, passRate float64) model.MetricSnapshot {
	return model.MetricSnapshot{Static: model.StaticMetrics{SyntaxErrors: syntaxErrors, TestPassRate: passRate}}
}

func TestBranch(t *testing.T) {
	tests := []struct {
		name    string
		purpose model.Purpose
		snap    model.MetricSnapshot
		hasWeak bool
		want    string
	}{
		{"completion syntax error", model.PurposeCompletion, snapshot(2, 0), false, "A"},
		{"syntax wins over failing tests", model.PurposeCompletion, snapshot(1, 50), true, "A"},
		{"completion failing tests", model.PurposeCompletion, snapshot(0, 50), false, "B"},
		{"completion passing", model.PurposeCompletion, snapshot(0, 100), true, "C"},
		{"optimization broken", model.PurposeOptimization, snapshot(0, 80), true, "D"},
		{"optimal broken", model.PurposeOptimal, snapshot(3, 100), false, "D"},
		{"optimization weak", model.PurposeOptimization, snapshot(0, 100), true, "E1"},
		{"optimization polish", model.PurposeOptimization, snapshot(0, 100), false, "E2"},
		{"optimal", model.PurposeOptimal, snapshot(0, 100), true, "F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Branch(tt.purpose, tt.snap, tt.hasWeak)
			if err != nil {
				t.Fatalf("Branch: %v", err)
			}
			if got != tt.want {
				t.Errorf("Branch = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBranchUnknownPurpose(t *testing.T) {
	if _, err := Branch(model.Purpose("refactor"), snapshot(0, 100), false); err == nil {
		t.Error("expected error for unknown purpose")
	}
}
