package hint

import (
	"fmt"

	"github.com/pavelanni/hinter/internal/model"
)

// Branch labels reported to the client as hint_branch.
const (
	BranchSyntaxError         = "A"
	BranchFailingTests        = "B"
	BranchLogicComplete       = "C"
	BranchRegression          = "D"
	BranchWeakMetrics         = "E1"
	BranchPolish              = "E2"
	BranchAlternativeApproach = "F"
)

type branchKey struct {
	purpose      model.Purpose
	syntaxError  bool
	testsPassing bool
	hasWeak      bool
}

func (k branchKey) broken() bool { return k.syntaxError || !k.testsPassing }

// branchTable is evaluated top to bottom; the first matching row wins.
var branchTable = []struct {
	label string
	match func(branchKey) bool
}{
	{BranchSyntaxError, func(k branchKey) bool { return k.purpose == model.PurposeCompletion && k.syntaxError }},
	{BranchFailingTests, func(k branchKey) bool { return k.purpose == model.PurposeCompletion && !k.testsPassing }},
	{BranchLogicComplete, func(k branchKey) bool { return k.purpose == model.PurposeCompletion }},
	{BranchRegression, func(k branchKey) bool { return k.broken() }},
	{BranchWeakMetrics, func(k branchKey) bool { return k.purpose == model.PurposeOptimization && k.hasWeak }},
	{BranchPolish, func(k branchKey) bool { return k.purpose == model.PurposeOptimization }},
	{BranchAlternativeApproach, func(k branchKey) bool { return k.purpose == model.PurposeOptimal }},
}

// Branch returns the decision-table label for a classified request.
func Branch(p model.Purpose, snap model.MetricSnapshot, hasWeak bool) (string, error) {
	k := branchKey{
		purpose:      p,
		syntaxError:  snap.HasSyntaxErrors(),
		testsPassing: snap.TestsPassing(),
		hasWeak:      hasWeak,
	}
	for _, row := range branchTable {
		if row.match(k) {
			return row.label, nil
		}
	}
	return "", fmt.Errorf("no hint branch for purpose %q", p)
}
