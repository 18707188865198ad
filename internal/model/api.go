package model

import "time"

// PreviousHint is one prior hint as sent by the client.
// Level carries the preset the hint was issued under.
type PreviousHint struct {
	HintText  string `json:"hint_text"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
}

// HintRequest is the body of POST /api/hint.
type HintRequest struct {
	Code             string          `json:"code"`
	ProblemID        string          `json:"problem_id"`
	Preset           string          `json:"preset"`
	StarCount        int             `json:"star_count"`
	HintPurpose      string          `json:"hint_purpose,omitempty"` // advisory only
	CustomComponents *ComponentFlags `json:"custom_components,omitempty"`
	PreviousHints    []PreviousHint  `json:"previous_hints"`
	UserMetrics      RawMetrics      `json:"user_metrics"`
}

// Envelope wraps every JSON API response.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorData is the data payload of a failed response.
type ErrorData struct {
	Error string `json:"error"`
}

// WeakMetricView is a weak metric as rendered in a hint response.
type WeakMetricView struct {
	Metric      MetricName `json:"metric"`
	Description string     `json:"description"`
	Score       float64    `json:"score"`
}

// COHStatus describes the Chain-of-Hints position to the client.
type COHStatus struct {
	LevelName          string `json:"level_name"`
	HintLevel          int    `json:"hint_level"`
	CanGetMoreDetailed bool   `json:"can_get_more_detailed"`
	NextLevelHint      string `json:"next_level_hint"`
}

// HintData is the data payload of a successful hint response.
type HintData struct {
	Hint                 string           `json:"hint"`
	HintPurpose          Purpose          `json:"hint_purpose"`
	HintBranch           string           `json:"hint_branch"`
	CurrentStarCount     int              `json:"current_star_count"`
	IsLogicComplete      bool             `json:"is_logic_complete"`
	WeakMetrics          []WeakMetricView `json:"weak_metrics"`
	HintComponents       *ComponentFlags  `json:"hint_components"`
	SelectedComponents   []string         `json:"selected_components"`
	UnselectedComponents []string         `json:"unselected_components"`
	TotalScore           float64          `json:"total_score"`
	Preset               Preset           `json:"preset"`
	COHStatus            *COHStatus       `json:"coh_status"`
	HintLevel            *int             `json:"hint_level"`
	COHDepth             int              `json:"coh_depth"`
	BlockedComponents    []string         `json:"blocked_components"`
	StaticMetrics        StaticMetrics    `json:"static_metrics"`
	LLMMetrics           LLMMetrics       `json:"llm_metrics"`
}

// ValidateRequest is the body of POST /api/metrics/validate.
type ValidateRequest struct {
	Code        string     `json:"code"`
	ProblemID   string     `json:"problem_id"`
	StarCount   int        `json:"star_count"`
	UserMetrics RawMetrics `json:"user_metrics"`
}

// ValidateData is the data payload of a metrics validation response.
type ValidateData struct {
	SnapshotID      string           `json:"snapshot_id,omitempty"`
	HintPurpose     Purpose          `json:"hint_purpose"`
	IsLogicComplete bool             `json:"is_logic_complete"`
	IsOptimal       bool             `json:"is_optimal"`
	TotalScore      float64          `json:"total_score"`
	WeakMetrics     []WeakMetricView `json:"weak_metrics"`
	StaticMetrics   StaticMetrics    `json:"static_metrics"`
	LLMMetrics      LLMMetrics       `json:"llm_metrics"`
}

// StoredSnapshot is a persisted metrics validation run.
type StoredSnapshot struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ProblemID string         `json:"problem_id"`
	Snapshot  MetricSnapshot `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionHistory is the persisted Chain-of-Hints session of one user on one problem.
type SessionHistory struct {
	UserID    string         `json:"user_id"`
	ProblemID string         `json:"problem_id"`
	Preset    Preset         `json:"preset"`
	Hints     []HistoryEntry `json:"hints"`
}

// HistoryExport is the top-level JSON structure of `hinter export`.
type HistoryExport struct {
	ExportedAt time.Time        `json:"exported_at"`
	Sessions   []SessionHistory `json:"sessions"`
	Snapshots  []StoredSnapshot `json:"snapshots"`
}

// COHPreview is the data payload of GET /api/coh/{preset}.
type COHPreview struct {
	Preset             Preset   `json:"preset"`
	Depth              int      `json:"depth"`
	MaxDepth           int      `json:"max_depth"`
	HintLevel          int      `json:"hint_level"`
	LevelName          string   `json:"level_name"`
	Style              string   `json:"style"`
	CanGetMoreDetailed bool     `json:"can_get_more_detailed"`
	NextLevelHint      string   `json:"next_level_hint"`
	AllowedComponents  []string `json:"allowed_components"`
	BlockedComponents  []string `json:"blocked_components"`
}
