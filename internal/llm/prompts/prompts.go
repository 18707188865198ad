package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var templatesFS embed.FS

const maxCodeRunes = 20000

var (
	studentCodeRegex        = regexp.MustCompile(`(?i)</?\s*student-code\b[^>]*>`)
	systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

// PromptVariant represents a judge prompt variant.
type PromptVariant string

const (
	// PromptStrict scores like a senior reviewer.
	PromptStrict PromptVariant = "strict"
	// PromptStandard is the default judge variant.
	PromptStandard PromptVariant = "standard"
	// PromptLenient scores like a mentor for beginners.
	PromptLenient PromptVariant = "lenient"
)

var validVariants = map[PromptVariant]bool{
	PromptStrict:   true,
	PromptStandard: true,
	PromptLenient:  true,
}

var (
	loadOnce       sync.Once
	loadErr        error
	judgeTemplates map[PromptVariant]*template.Template
)

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[PromptVariant(v)]
}

// JudgeData holds template data for judge prompts.
type JudgeData struct {
	ProblemID string
}

// Load parses the judge templates. A nil fsys uses the embedded templates.
// Templates are loaded only once.
func Load(fsys fs.FS) error {
	loadOnce.Do(func() {
		if fsys == nil {
			fsys = templatesFS
		}
		judgeTemplates = make(map[PromptVariant]*template.Template)

		for _, v := range []PromptVariant{PromptStrict, PromptStandard, PromptLenient} {
			file := "templates/judge_" + string(v) + ".txt"
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				loadErr = errors.New("failed to read prompt file " + file + ": " + err.Error())
				return
			}
			tmpl, err := template.New("judge").Parse(string(content))
			if err != nil {
				loadErr = errors.New("failed to parse prompt template " + file + ": " + err.Error())
				return
			}
			judgeTemplates[v] = tmpl
		}
	})
	return loadErr
}

// BuildJudgeSystemPrompt renders the system prompt of the given variant.
func BuildJudgeSystemPrompt(variant PromptVariant, problemID string) (string, error) {
	if judgeTemplates == nil {
		return "", errors.New("templates not initialized: call Load first")
	}
	tmpl, ok := judgeTemplates[variant]
	if !ok {
		if loadErr != nil {
			return "", fmt.Errorf("templates load failed: %w", loadErr)
		}
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, JudgeData{ProblemID: strings.TrimSpace(problemID)}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildJudgeUserPrompt wraps the sanitized code for the judge.
func BuildJudgeUserPrompt(code string) string {
	return "<student-code>\n" + SanitizeCode(code) + "\n</student-code>"
}

// SanitizeCode strips prompt delimiter tags from submitted code and bounds its length.
func SanitizeCode(code string) string {
	code = studentCodeRegex.ReplaceAllString(code, "")
	code = systemInstructionsRegex.ReplaceAllString(code, "")
	code = strings.TrimSpace(code)

	if code == "" {
		return "[No code provided]"
	}

	if utf8.RuneCountInString(code) > maxCodeRunes {
		runes := []rune(code)
		code = string(runes[:maxCodeRunes]) + "\n\n[Code truncated due to length]"
	}

	return code
}
