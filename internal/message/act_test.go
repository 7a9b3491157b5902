// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/grimhold/internal/world"
)

func TestAct(t *testing.T) {
	hero := world.NewPlayer("Hero", 10, 50)
	hero.Gender = world.GenderFemale
	rat := world.NewMonster("rat", 1, 5)
	owl := world.NewMonster("owl", 1, 5)

	tests := []struct {
		name     string
		template string
		parties  Parties
		want     string
	}{
		{
			name:     "actor at sentence start",
			template: "*ACTOR* is surrounded by flames.",
			parties:  Parties{Actor: rat},
			want:     "A rat is surrounded by flames.",
		},
		{
			name:     "low actor mid sentence",
			template: "Flames surround *LOW-ACTOR*.",
			parties:  Parties{Actor: owl},
			want:     "Flames surround an owl.",
		},
		{
			name:     "pronouns",
			template: "*ACTOR* clutches *A-HISHER* throat. *A-UPHISHER* face turns blue.",
			parties:  Parties{Actor: hero},
			want:     "Hero clutches her throat. Her face turns blue.",
		},
		{
			name:     "applier possessive",
			template: "*APPLIER-POS* poison burns *LOW-TARGET*.",
			parties:  Parties{Applier: hero, Target: rat},
			want:     "Hero's poison burns a rat.",
		},
		{
			name:     "self possessive",
			template: "*ACTOR* is caught in *LOW-APPLIER-SELF-POS* web.",
			parties:  Parties{Actor: hero, Applier: hero},
			want:     "Hero is caught in her own web.",
		},
		{
			name:     "missing party",
			template: "*ACTOR* shimmers.",
			parties:  Parties{},
			want:     "Something shimmers.",
		},
		{
			name:     "no tokens",
			template: "Nothing to see here.",
			want:     "Nothing to see here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Act(tt.template, tt.parties))
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "An orc", Capitalize("an orc"))
	assert.Equal(t, "Gorbash", Capitalize("Gorbash"))
	assert.Equal(t, "", Capitalize(""))
}
