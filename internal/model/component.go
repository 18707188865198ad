package model

import (
	"fmt"
	"strings"
)

// Component is one named slice of hint content.
type Component uint8

const (
	ComponentSummary Component = iota
	ComponentLibraries
	ComponentCodeExample
	ComponentStepByStep
	ComponentComplexityHint
	ComponentEdgeCases
	ComponentImprovements

	numComponents
)

var componentNames = [numComponents]string{
	"summary",
	"libraries",
	"code_example",
	"step_by_step",
	"complexity_hint",
	"edge_cases",
	"improvements",
}

// AllComponents returns every component in rendering order.
func AllComponents() []Component {
	out := make([]Component, 0, numComponents)
	for c := Component(0); c < numComponents; c++ {
		out = append(out, c)
	}
	return out
}

func (c Component) String() string {
	if c >= numComponents {
		return fmt.Sprintf("component(%d)", uint8(c))
	}
	return componentNames[c]
}

// ParseComponent maps a wire name to a component.
func ParseComponent(s string) (Component, bool) {
	s = strings.TrimSpace(s)
	for i, name := range componentNames {
		if name == s {
			return Component(i), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (c Component) MarshalText() ([]byte, error) {
	if c >= numComponents {
		return nil, fmt.Errorf("unknown component %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Component) UnmarshalText(b []byte) error {
	parsed, ok := ParseComponent(string(b))
	if !ok {
		return fmt.Errorf("unknown component %q", b)
	}
	*c = parsed
	return nil
}

// ComponentSet is a set of components stored as a bitmask.
type ComponentSet uint8

// AllComponentSet contains every component.
const AllComponentSet = ComponentSet(1<<numComponents - 1)

// NewComponentSet builds a set from the given components.
func NewComponentSet(cs ...Component) ComponentSet {
	var s ComponentSet
	for _, c := range cs {
		s = s.Add(c)
	}
	return s
}

// Has reports membership.
func (s ComponentSet) Has(c Component) bool {
	return c < numComponents && s&(1<<c) != 0
}

// Add returns s with c included.
func (s ComponentSet) Add(c Component) ComponentSet {
	if c >= numComponents {
		return s
	}
	return s | 1<<c
}

// Union returns s ∪ o.
func (s ComponentSet) Union(o ComponentSet) ComponentSet { return s | o }

// Intersect returns s ∩ o.
func (s ComponentSet) Intersect(o ComponentSet) ComponentSet { return s & o }

// Without returns s \ o.
func (s ComponentSet) Without(o ComponentSet) ComponentSet { return s &^ o }

// SubsetOf reports whether every member of s is in o.
func (s ComponentSet) SubsetOf(o ComponentSet) bool { return s&^o == 0 }

// Len returns the number of members.
func (s ComponentSet) Len() int {
	n := 0
	for _, c := range AllComponents() {
		if s.Has(c) {
			n++
		}
	}
	return n
}

// Components lists members in rendering order.
func (s ComponentSet) Components() []Component {
	var out []Component
	for _, c := range AllComponents() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Names lists member wire names in rendering order. Never nil.
func (s ComponentSet) Names() []string {
	out := []string{}
	for _, c := range s.Components() {
		out = append(out, c.String())
	}
	return out
}

// ComponentFlags is the wire form of a per-component toggle.
type ComponentFlags struct {
	Summary        bool `json:"summary"`
	Libraries      bool `json:"libraries"`
	CodeExample    bool `json:"code_example"`
	StepByStep     bool `json:"step_by_step"`
	ComplexityHint bool `json:"complexity_hint"`
	EdgeCases      bool `json:"edge_cases"`
	Improvements   bool `json:"improvements"`
}

// Set converts the flags to a ComponentSet.
func (f ComponentFlags) Set() ComponentSet {
	var s ComponentSet
	flags := []struct {
		on bool
		c  Component
	}{
		{f.Summary, ComponentSummary},
		{f.Libraries, ComponentLibraries},
		{f.CodeExample, ComponentCodeExample},
		{f.StepByStep, ComponentStepByStep},
		{f.ComplexityHint, ComponentComplexityHint},
		{f.EdgeCases, ComponentEdgeCases},
		{f.Improvements, ComponentImprovements},
	}
	for _, fl := range flags {
		if fl.on {
			s = s.Add(fl.c)
		}
	}
	return s
}

// FlagsOf converts a ComponentSet to its wire form.
func FlagsOf(s ComponentSet) ComponentFlags {
	return ComponentFlags{
		Summary:        s.Has(ComponentSummary),
		Libraries:      s.Has(ComponentLibraries),
		CodeExample:    s.Has(ComponentCodeExample),
		StepByStep:     s.Has(ComponentStepByStep),
		ComplexityHint: s.Has(ComponentComplexityHint),
		EdgeCases:      s.Has(ComponentEdgeCases),
		Improvements:   s.Has(ComponentImprovements),
	}
}
