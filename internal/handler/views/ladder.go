// Package views renders the admin HTML pages.
package views

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pavelanni/hinter/internal/coh"
	appI18n "github.com/pavelanni/hinter/internal/i18n"
	"github.com/pavelanni/hinter/internal/model"
)

// ladderRow is one rendered rung of the ladder table.
type ladderRow struct {
	Preset  model.Preset
	Href    string
	Depth   string
	Level   string
	Name    string
	Style   string
	Blocked string
	Ceiling bool
}

func t(ctx context.Context, msgID, fallback string) string {
	return appI18n.TOr(ctx, msgID, fallback)
}

func ladderHeadings(ctx context.Context) []string {
	return []string{
		t(ctx, "LadderPreset", "Preset"),
		t(ctx, "LadderDepth", "Depth"),
		t(ctx, "LadderLevel", "Level"),
		t(ctx, "LadderName", "Name"),
		t(ctx, "LadderStyle", "Style"),
		t(ctx, "LadderBlocked", "Blocked components"),
	}
}

// ladderRows links each rung to the COH preview endpoint under previewBase.
func ladderRows(ctx context.Context, rungs []coh.Rung, previewBase string) []ladderRow {
	none := t(ctx, "LadderNone", "none")
	ceiling := t(ctx, "LadderCeiling", "ceiling")

	rows := make([]ladderRow, 0, len(rungs))
	for _, r := range rungs {
		depth := fmt.Sprint(r.Depth)
		if r.Last {
			depth += " (" + ceiling + ")"
		}
		blocked := strings.Join(r.Blocked.Names(), ", ")
		if blocked == "" {
			blocked = none
		}
		rows = append(rows, ladderRow{
			Preset:  r.Preset,
			Href:    fmt.Sprintf("%s%s?depth=%d", previewBase, url.PathEscape(string(r.Preset)), r.Depth),
			Depth:   depth,
			Level:   fmt.Sprint(r.HintLevel),
			Name:    t(ctx, fmt.Sprintf("HintLevel%d", r.HintLevel), r.LevelName),
			Style:   r.Style,
			Blocked: blocked,
			Ceiling: r.Last,
		})
	}
	return rows
}
