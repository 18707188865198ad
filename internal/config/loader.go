package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envRef = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)(?::-([^}]*))?\}`)

// Loader reads the scoring policy from a YAML file.
type Loader struct{}

// NewLoader creates a new policy loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the policy at path, or from the default locations when path is empty.
// Fields missing from the file keep their DefaultPolicy values.
// Environment variables can be referenced as ${VAR} or ${VAR:-default}.
func (l *Loader) Load(path string) (*Policy, error) {
	p := DefaultPolicy()

	filePath := l.resolvePath(path)
	if filePath == "" {
		return p, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), p); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy %s: %w", filePath, err)
	}
	return p, nil
}

func (l *Loader) resolvePath(path string) string {
	if path != "" {
		return path
	}

	defaults := []string{
		"hinter-policy.yaml",
		"config/hinter-policy.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "hinter", "policy.yaml"),
	}
	for _, p := range defaults {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func expandEnvVars(input string) string {
	return envRef.ReplaceAllStringFunc(input, func(match string) string {
		sub := envRef.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		if len(sub) >= 3 {
			return sub[2]
		}
		return ""
	})
}
