// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

//go:embed effects.yaml
var defaultCatalog []byte

// SupportedVersions is the range of catalog versions this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// defaultPulseDelay applies to pulsed effects that do not set one.
const defaultPulseDelay = 5

// Polarity says whether an effect helps or hinders its host.
type Polarity string

// Polarities.
const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

// Messages are shown when an effect starts and ends. Room lines go to
// everyone else present. Templates may use the tokens understood by
// message.Act.
type Messages struct {
	SelfAdd string `yaml:"self_add,omitempty" json:"self_add,omitempty"`
	RoomAdd string `yaml:"room_add,omitempty" json:"room_add,omitempty"`
	SelfDel string `yaml:"self_del,omitempty" json:"self_del,omitempty"`
	RoomDel string `yaml:"room_del,omitempty" json:"room_del,omitempty"`
}

// Scripts are optional Lua hook bodies run after the effect's strategy.
type Scripts struct {
	Compute   string `yaml:"compute,omitempty" json:"compute,omitempty"`
	PreApply  string `yaml:"pre_apply,omitempty" json:"pre_apply,omitempty"`
	Apply     string `yaml:"apply,omitempty" json:"apply,omitempty"`
	PostApply string `yaml:"post_apply,omitempty" json:"post_apply,omitempty"`
	Pulse     string `yaml:"pulse,omitempty" json:"pulse,omitempty"`
	UnApply   string `yaml:"unapply,omitempty" json:"unapply,omitempty"`
}

// IsZero reports whether no script is set.
func (s Scripts) IsZero() bool { return s == Scripts{} }

// Definition describes one kind of effect.
type Definition struct {
	Name     string   `yaml:"name" json:"name" jsonschema:"required,pattern=^[a-z][a-z0-9-]*$"`
	Display  string   `yaml:"display,omitempty" json:"display,omitempty"`
	Polarity Polarity `yaml:"type,omitempty" json:"type,omitempty" jsonschema:"enum=positive,enum=negative,enum=neutral"`
	// Bases are broader effects this one also counts as, such as "fly".
	Bases    []string `yaml:"bases,omitempty" json:"bases,omitempty"`
	Opposite string   `yaml:"opposite,omitempty" json:"opposite,omitempty"`
	// Strategy names the built-in behavior; empty means none.
	Strategy string `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	// Stat is the stat a stat-modifying strategy changes.
	Stat string `yaml:"stat,omitempty" json:"stat,omitempty" jsonschema:"enum=strength,enum=dexterity,enum=constitution,enum=intelligence,enum=piety,enum=hp,enum=mp"`
	// Duration is the base duration some strategies compute from.
	Duration    int64 `yaml:"duration,omitempty" json:"duration,omitempty" jsonschema:"minimum=-1"`
	Pulsed      bool  `yaml:"pulsed,omitempty" json:"pulsed,omitempty"`
	PulseDelay  int64 `yaml:"pulse_delay,omitempty" json:"pulse_delay,omitempty" jsonschema:"minimum=0"`
	Spell       bool  `yaml:"spell,omitempty" json:"spell,omitempty"`
	UseStrength bool  `yaml:"use_strength,omitempty" json:"use_strength,omitempty"`
	// NoObject stops items from bestowing the effect.
	NoObject bool     `yaml:"no_object,omitempty" json:"no_object,omitempty"`
	Messages Messages `yaml:"messages,omitempty" json:"messages,omitempty"`
	Scripts  Scripts  `yaml:"scripts,omitempty" json:"scripts,omitempty"`
}

// HasBase reports whether the definition counts as base.
func (d *Definition) HasBase(base string) bool { return slices.Contains(d.Bases, base) }

// Catalog is the set of known effects.
type Catalog struct {
	Version string       `yaml:"version" json:"version" jsonschema:"required"`
	Effects []Definition `yaml:"effects" json:"effects" jsonschema:"required"`

	byName map[string]*Definition
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, oops.Code("CATALOG_READ_FAILED").With("path", path).Wrap(err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return c, nil
}

// Parse validates data against the catalog schema and decodes it.
func Parse(data []byte) (*Catalog, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, oops.Code("CATALOG_INVALID").Wrap(err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, oops.Code("CATALOG_INVALID").Wrapf(err, "decode catalog")
	}
	if err := checkVersion(c.Version); err != nil {
		return nil, err
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkVersion(v string) error {
	version, err := semver.NewVersion(v)
	if err != nil {
		return oops.Code("CATALOG_VERSION").With("version", v).Wrap(err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return oops.Code("CATALOG_VERSION").Wrap(err)
	}
	if !constraint.Check(version) {
		return oops.Code("CATALOG_VERSION").
			With("version", v).
			With("supported", SupportedVersions).
			Errorf("unsupported catalog version %s", v)
	}
	return nil
}

func (c *Catalog) index() error {
	c.byName = make(map[string]*Definition, len(c.Effects))
	for i := range c.Effects {
		d := &c.Effects[i]
		if _, dup := c.byName[d.Name]; dup {
			return oops.Code("CATALOG_INVALID").With("effect", d.Name).Errorf("duplicate effect %q", d.Name)
		}
		if d.Pulsed && d.PulseDelay == 0 {
			d.PulseDelay = defaultPulseDelay
		}
		if d.Display == "" {
			d.Display = d.Name
		}
		c.byName[d.Name] = d
	}
	for _, d := range c.byName {
		if d.Opposite != "" {
			if _, ok := c.byName[d.Opposite]; !ok {
				return oops.Code("CATALOG_INVALID").
					With("effect", d.Name).
					With("opposite", d.Opposite).
					Errorf("effect %q names unknown opposite %q", d.Name, d.Opposite)
			}
		}
	}
	return nil
}

// Lookup returns the named definition.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Names returns every effect name in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Match returns the sorted names matching a glob pattern such as
// "wall-of-*" or "resist-{fire,cold}".
func (c *Catalog) Match(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.Code("PATTERN_INVALID").With("pattern", pattern).Wrap(err)
	}
	var out []string
	for _, name := range c.Names() {
		if g.Match(name) {
			out = append(out, name)
		}
	}
	return out, nil
}
