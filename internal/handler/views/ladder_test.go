package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pavelanni/hinter/internal/coh"
)

func TestLadderPage(t *testing.T) {
	var buf bytes.Buffer
	if err := LadderPage(coh.Ladder(), "/api/coh/").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	if got := strings.Count(html, "<tr"); got != 10 {
		t.Errorf("rows = %d, want header + 9 rungs", got)
	}
	for _, want := range []string{"고급 기본", "초급 COH3", "libraries, code_example, step_by_step", "?depth=3"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if got := strings.Count(html, `class="ceiling"`); got != 3 {
		t.Errorf("ceiling rows = %d, want 3", got)
	}
}

func TestLadderRows(t *testing.T) {
	rows := ladderRows(context.Background(), coh.Ladder(), "/hints/api/coh/")
	if len(rows) != 9 {
		t.Fatalf("rows = %d, want 9", len(rows))
	}

	first, last := rows[0], rows[len(rows)-1]
	if first.Level != "9" || first.Ceiling || first.Blocked != "libraries, code_example, step_by_step" {
		t.Errorf("first row = %+v", first)
	}
	if !last.Ceiling || last.Blocked != "none" || last.Depth != "3 (ceiling)" {
		t.Errorf("last row = %+v", last)
	}
	if !strings.HasPrefix(last.Href, "/hints/api/coh/%EC%B4%88%EA%B8%89?depth=3") {
		t.Errorf("href = %q", last.Href)
	}
}
