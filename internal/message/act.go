// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package message

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/holomush/grimhold/internal/world"
)

// Capitalize upper-cases the first word of s, leaving the rest untouched.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	word, rest, found := strings.Cut(s, " ")
	// Casers carry state and are not shared.
	word = cases.Title(language.English, cases.NoLower).String(word)
	if found {
		return word + " " + rest
	}
	return word
}

func possessive(s string) string {
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "s") {
		return s + "'"
	}
	return s + "'s"
}

// Parties are the creatures a template can refer to. Any may be nil.
type Parties struct {
	Actor   *world.Creature
	Target  *world.Creature
	Applier *world.Creature
}

func display(c *world.Creature) string {
	if c == nil {
		return "something"
	}
	return c.Display()
}

// Act substitutes party tokens in template:
//
//	*ACTOR* *LOW-ACTOR* *A-HESHE* *A-HIMHER* *A-HISHER* *A-UPHISHER*
//	*TARGET* *LOW-TARGET* *T-HISHER*
//	*APPLIER* *LOW-APPLIER* *APPLIER-POS* *LOW-APPLIER-POS*
//	*APPLIER-SELF-POS* *LOW-APPLIER-SELF-POS*
//
// LOW- forms keep a monster's leading article in lower case; the plain
// forms capitalize it for the start of a sentence. The SELF-POS forms read
// "his own" or "her own" when the applier is the actor.
func Act(template string, p Parties) string {
	if !strings.Contains(template, "*") {
		return template
	}

	actor := display(p.Actor)
	target := display(p.Target)
	applier := display(p.Applier)

	var aHeShe, aHimHer, aHisHer string
	if p.Actor != nil {
		aHeShe, aHimHer, aHisHer = p.Actor.HeShe(), p.Actor.HimHer(), p.Actor.HisHer()
	}
	var tHisHer string
	if p.Target != nil {
		tHisHer = p.Target.HisHer()
	}

	selfPos := possessive(applier)
	if p.Applier != nil && p.Actor != nil && p.Applier.ID == p.Actor.ID {
		selfPos = aHisHer + " own"
	}

	r := strings.NewReplacer(
		"*LOW-APPLIER-SELF-POS*", selfPos,
		"*APPLIER-SELF-POS*", Capitalize(selfPos),
		"*LOW-APPLIER-POS*", possessive(applier),
		"*APPLIER-POS*", Capitalize(possessive(applier)),
		"*LOW-APPLIER*", applier,
		"*APPLIER*", Capitalize(applier),
		"*LOW-ACTOR*", actor,
		"*ACTOR*", Capitalize(actor),
		"*LOW-TARGET*", target,
		"*TARGET*", Capitalize(target),
		"*A-UPHISHER*", Capitalize(aHisHer),
		"*A-HISHER*", aHisHer,
		"*A-HIMHER*", aHimHer,
		"*A-HESHE*", aHeShe,
		"*T-HISHER*", tHisHer,
	)
	return r.Replace(template)
}
