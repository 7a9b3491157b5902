// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package effect

import (
	"fmt"
	"strings"
	"time"

	"github.com/holomush/grimhold/internal/world"
)

// DisplayName is how an effect is shown in lists.
func (r *Registry) DisplayName(e *world.Effect) string {
	def, ok := r.catalog.Lookup(e.Name)
	if !ok {
		return e.Name
	}
	if def.HasBase("drunkenness") {
		switch {
		case e.Strength < 1:
			return "Sober"
		case e.Strength < 20:
			return "Tipsy"
		case e.Strength < 66:
			return "Drunk"
		default:
			return "Inebriated"
		}
	}
	return def.Display
}

// Describe returns one line per effect on host as viewer should see it.
// Staff see strengths, extra values and appliers.
func (r *Registry) Describe(host world.Host, viewer *world.Creature) []string {
	staff := viewer != nil && viewer.IsStaff()
	var lines []string
	for _, e := range host.EffectList().All() {
		remaining := "Permanent!"
		if !e.IsPermanent() {
			remaining = (time.Duration(e.Duration) * time.Second).String()
		}
		var b strings.Builder
		fmt.Fprintf(&b, "%38s - %s", r.DisplayName(e), remaining)
		if staff || e.Name == "armor" {
			fmt.Fprintf(&b, " Strength: %d", e.Strength)
		}
		if staff {
			if e.Extra != 0 {
				fmt.Fprintf(&b, " Extra: %d", e.Extra)
			}
			if a := r.applierOf(e); !a.IsZero() {
				name := ""
				if a.Creature != nil {
					name = a.Creature.Name
				} else {
					name = a.Object.Name
				}
				fmt.Fprintf(&b, " Applier: %s", name)
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// List summarizes host's effects on one line.
func (r *Registry) List(host world.Host) string {
	all := host.EffectList().All()
	if len(all) == 0 {
		return "Effects: None."
	}
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = r.DisplayName(e)
	}
	return "Effects: " + strings.Join(names, ", ") + "."
}
