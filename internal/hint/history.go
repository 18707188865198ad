package hint

import (
	"fmt"
	"strings"
	"time"

	"github.com/pavelanni/hinter/internal/model"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// HistoryFromClient converts the client's previous_hints into history entries.
// An entry whose level is not a known preset fails with ErrInvalidHistory.
// Unparsable timestamps are kept as the zero time; ordering comes from the slice.
func HistoryFromClient(prev []model.PreviousHint) ([]model.HistoryEntry, error) {
	out := make([]model.HistoryEntry, 0, len(prev))
	for i, h := range prev {
		p, err := model.ParsePreset(h.Level)
		if err != nil {
			return nil, fmt.Errorf("%w: previous_hints[%d] has level %q", model.ErrInvalidHistory, i, h.Level)
		}
		out = append(out, model.HistoryEntry{
			HintText:  h.HintText,
			Preset:    p,
			Timestamp: parseTimestamp(h.Timestamp),
		})
	}
	return out, nil
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
