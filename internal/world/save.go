// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import "strings"

// SaveCategory identifies a saving throw.
type SaveCategory int

// Saving throw categories. Luck is derived from the other five.
const (
	SavePoison SaveCategory = iota
	SaveDeath
	SaveBreath
	SaveMental
	SaveSpell
	SaveLuck
)

// StoredSaves is the number of categories with their own stored chance.
const StoredSaves = int(SaveLuck)

// MaxSaveGains is how many times a save can improve per level.
const MaxSaveGains = 5

var saveNames = [...]string{"poison", "death", "breath", "mental", "spell", "luck"}

var saveAbbrevs = [...]string{"POI", "DEA", "BRE", "MEN", "SPL", "LCK"}

func (c SaveCategory) String() string {
	if c < 0 || int(c) >= len(saveNames) {
		return "unknown"
	}
	return saveNames[c]
}

// Abbrev returns the three letter abbreviation used in debug traces.
func (c SaveCategory) Abbrev() string {
	if c < 0 || int(c) >= len(saveAbbrevs) {
		return "???"
	}
	return saveAbbrevs[c]
}

// ParseSaveCategory accepts a full name or abbreviation, case-insensitively.
func ParseSaveCategory(s string) (SaveCategory, bool) {
	for i := range saveNames {
		if strings.EqualFold(s, saveNames[i]) || strings.EqualFold(s, saveAbbrevs[i]) {
			return SaveCategory(i), true
		}
	}
	return 0, false
}

// SaveEntry is a stored saving throw: a percentage chance and how many
// times it has improved at the current level.
type SaveEntry struct {
	Chance int
	Gained int
}

// SaveTable holds one entry per stored category.
type SaveTable [StoredSaves]SaveEntry

// Entry returns the stored entry for cat, or nil for luck.
func (t *SaveTable) Entry(cat SaveCategory) *SaveEntry {
	if cat < 0 || int(cat) >= StoredSaves {
		return nil
	}
	return &t[cat]
}

// Luck is the average of the stored chances.
func (t *SaveTable) Luck() int {
	total := 0
	for _, e := range t {
		total += e.Chance
	}
	return total / StoredSaves
}

// ResetGained clears every gained counter; called on level change.
func (t *SaveTable) ResetGained() {
	for i := range t {
		t[i].Gained = 0
	}
}
