// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package content loads progression content packs: the XP curve and the
// achievement definitions a game ships with.
package content

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/holokit/internal/achievement"
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/leveling"
	"github.com/holomush/holokit/internal/script"
)

// Pack represents a content pack YAML file.
type Pack struct {
	Name         string            `yaml:"name" json:"name" jsonschema:"pattern=^[a-z]([a-z0-9-]*[a-z0-9])?$,maxLength=64"`
	Version      string            `yaml:"version" json:"version" jsonschema:"minLength=1"`
	XPCurve      []int             `yaml:"xp_curve" json:"xp_curve" jsonschema:"description=Total XP required for each level after the first"`
	Achievements []AchievementSpec `yaml:"achievements,omitempty" json:"achievements,omitempty"`
}

// AchievementSpec is one achievement entry in a pack.
type AchievementSpec struct {
	ID     string `yaml:"id" json:"id" jsonschema:"pattern=^[a-z0-9][a-z0-9_.-]*$"`
	Kind   string `yaml:"kind" json:"kind" jsonschema:"enum=consumable,enum=pickup,enum=weapon,enum=weapon_fired,enum=weapon_reloaded,enum=script"`
	Match  string `yaml:"match,omitempty" json:"match,omitempty"`
	Times  int    `yaml:"times,omitempty" json:"times,omitempty" jsonschema:"minimum=0"`
	Event  string `yaml:"event,omitempty" json:"event,omitempty"`
	Script string `yaml:"script,omitempty" json:"script,omitempty"`
}

// maxNameLength is the maximum allowed length for pack names.
const maxNameLength = 64

// namePattern: lowercase letter first, then lowercase letters, digits or
// hyphens, not ending with a hyphen.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9-]*[a-z0-9])?$`)

// Parse validates data against the pack schema, decodes it and checks the
// semantic rules the schema cannot express.
func Parse(data []byte) (*Pack, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var p Pack
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errs.InvalidArgument("pack", "<yaml>", "invalid YAML: %v", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads and parses the pack at path.
func Load(path string) (*Pack, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.Code(errs.CodeNotFound).
			With("path", path).
			Hint("failed to read content pack").
			Wrap(err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return p, nil
}

// Validate checks pack constraints.
func (p *Pack) Validate() error {
	if p.Name == "" || !namePattern.MatchString(p.Name) {
		return errs.InvalidArgument("name", p.Name,
			"name %q must start with a-z, contain only a-z, 0-9, hyphens, and not end with a hyphen", p.Name)
	}
	if len(p.Name) > maxNameLength {
		return errs.InvalidArgument("name", p.Name, "name must be %d characters or less, got %d", maxNameLength, len(p.Name))
	}

	if _, err := semver.StrictNewVersion(p.Version); err != nil {
		return errs.InvalidArgument("version", p.Version, "version must be semantic (MAJOR.MINOR.PATCH): %v", err)
	}

	if _, err := leveling.NewCurve(p.XPCurve); err != nil {
		return err
	}

	seen := make(map[string]bool, len(p.Achievements))
	for _, spec := range p.Achievements {
		if seen[spec.ID] {
			return errs.InvalidArgument("id", spec.ID, "duplicate achievement id %q", spec.ID)
		}
		seen[spec.ID] = true

		def := spec.Definition()
		if err := def.Validate(); err != nil {
			return err
		}
		if def.Kind == achievement.KindScript {
			pred, err := script.Compile(def.ID, def.Script)
			if err != nil {
				return err
			}
			pred.Close()
		}
	}
	return nil
}

// SemVer returns the parsed pack version.
func (p *Pack) SemVer() (*semver.Version, error) {
	v, err := semver.StrictNewVersion(p.Version)
	if err != nil {
		return nil, errs.InvalidArgument("version", p.Version, "invalid version: %v", err)
	}
	return v, nil
}

// Compatible reports whether the pack version satisfies constraint, e.g.
// "^1.2".
func (p *Pack) Compatible(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, errs.InvalidArgument("constraint", constraint, "invalid version constraint: %v", err)
	}
	v, err := p.SemVer()
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}

// Curve returns the pack's validated XP curve.
func (p *Pack) Curve() (leveling.Curve, error) {
	return leveling.NewCurve(p.XPCurve)
}

// Definitions converts the pack's achievements.
func (p *Pack) Definitions() []achievement.Definition {
	defs := make([]achievement.Definition, 0, len(p.Achievements))
	for _, spec := range p.Achievements {
		defs = append(defs, spec.Definition())
	}
	return defs
}

// Definition converts the entry to an achievement definition.
func (s AchievementSpec) Definition() achievement.Definition {
	return achievement.Definition{
		ID:     s.ID,
		Kind:   achievement.Kind(s.Kind),
		Match:  s.Match,
		Times:  s.Times,
		Event:  s.Event,
		Script: s.Script,
	}
}
