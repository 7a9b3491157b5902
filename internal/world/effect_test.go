// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectList_FindPrefersStrongestMatch(t *testing.T) {
	var l EffectList
	l.Insert(&Effect{Name: "fly", Strength: 5})
	l.Insert(&Effect{Name: "pegasus-wings", Bases: []string{"fly"}, Strength: 20})

	require.NotNil(t, l.Find("fly"))
	assert.Equal(t, "pegasus-wings", l.Find("fly").Name)
	assert.Equal(t, "fly", l.Get("fly").Name)
	assert.True(t, l.IsEffected("fly"))
	assert.False(t, l.IsEffected("levitate"))
}

func TestEffectList_PassVisitsEachOnceAndSkipsInsertions(t *testing.T) {
	var l EffectList
	a := &Effect{Name: "a"}
	b := &Effect{Name: "b"}
	c := &Effect{Name: "c"}
	l.Insert(a)
	l.Insert(b)
	l.Insert(c)

	var visited []string
	p := l.Begin()
	for e := p.Next(); e != nil; e = p.Next() {
		visited = append(visited, e.Name)
		switch e.Name {
		case "a":
			// Erase the current element and one that has not been visited yet.
			l.Remove(a)
			l.Remove(c)
			l.Insert(&Effect{Name: "late"})
		}
	}

	assert.Equal(t, []string{"a", "b"}, visited)
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "late", l.All()[1].Name)

	// The next pass sees the late addition.
	visited = nil
	p = l.Begin()
	for e := p.Next(); e != nil; e = p.Next() {
		visited = append(visited, e.Name)
	}
	assert.Equal(t, []string{"b", "late"}, visited)
}

func TestEffect_Flags(t *testing.T) {
	e := &Effect{Name: "armor", Duration: Permanent}
	assert.True(t, e.IsPermanent())
	assert.False(t, e.HasApplier())
	e.Applier = NewID()
	assert.True(t, e.HasApplier())
}

func TestEffectList_InsertedEffectForgetsOtherListsPasses(t *testing.T) {
	var src, dst EffectList
	e := &Effect{Name: "armor"}
	src.Insert(e)
	src.Begin().Next()
	src.Begin().Next()
	dst.Begin()

	dup := *e
	dst.Insert(&dup)

	p := dst.Begin()
	assert.Same(t, &dup, p.Next(), "the copy carried the source's pass id")
	assert.Nil(t, p.Next())
}
