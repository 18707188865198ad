// Package gate decides which hint components a preset may show.
package gate

import (
	"fmt"

	"github.com/pavelanni/hinter/internal/model"
)

// ladder lists, from least to most restrictive, the components each preset blocks
// on top of the previous preset. Blocked sets are cumulative, so a stricter preset
// can never unblock a component.
var ladder = []struct {
	preset model.Preset
	adds   model.ComponentSet
}{
	{model.PresetBeginner, 0},
	{model.PresetIntermediate, model.NewComponentSet(model.ComponentCodeExample, model.ComponentStepByStep)},
	{model.PresetAdvanced, model.NewComponentSet(model.ComponentLibraries)},
}

// Blocked returns the components the preset never shows.
func Blocked(p model.Preset) (model.ComponentSet, error) {
	var blocked model.ComponentSet
	for _, rung := range ladder {
		blocked = blocked.Union(rung.adds)
		if rung.preset == p {
			return blocked.Without(model.NewComponentSet(model.ComponentSummary)), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", model.ErrInvalidPreset, p)
}

// Allowed returns the components the preset may show. Summary is always allowed.
func Allowed(p model.Preset) (model.ComponentSet, error) {
	blocked, err := Blocked(p)
	if err != nil {
		return 0, err
	}
	return model.AllComponentSet.Without(blocked), nil
}

// Filter intersects the requested components with the allowed ones and
// force-includes the summary.
func Filter(p model.Preset, requested model.ComponentSet) (model.ComponentSet, error) {
	allowed, err := Allowed(p)
	if err != nil {
		return 0, err
	}
	return requested.Intersect(allowed).Add(model.ComponentSummary), nil
}
