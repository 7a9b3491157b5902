// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package dice

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// MaxDice bounds the number of dice and sides accepted by Parse.
const MaxDice = 1000

var diceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "D", Pattern: `[dD]`},
	{Name: "Op", Pattern: `[+-]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// notation is the parse tree for: [count] [ "d" sides ] [ ("+"|"-") modifier ]
type notation struct {
	Count *int      `parser:"@Int?"`
	Dice  *sides    `parser:"@@?"`
	Mod   *modifier `parser:"@@?"`
}

type sides struct {
	Sep   string `parser:"@D"`
	Sides int    `parser:"@Int"`
}

type modifier struct {
	Sign  string `parser:"@Op"`
	Value int    `parser:"@Int"`
}

var parser *participle.Parser[notation]

func init() {
	var err error
	parser, err = participle.Build[notation](participle.Lexer(diceLexer))
	if err != nil {
		panic(fmt.Sprintf("failed to build dice parser: %v", err))
	}
}

// Expr is a parsed dice expression. The zero value rolls 0.
type Expr struct {
	Number   int
	Sides    int
	Modifier int
}

// Parse parses dice notation: "2d6+3", "d8", "1d4-1" or a flat "7".
func Parse(s string) (Expr, error) {
	if strings.TrimSpace(s) == "" {
		return Expr{}, oops.Code("DICE_INVALID").Errorf("empty dice expression")
	}
	n, err := parser.ParseString("", s)
	if err != nil {
		return Expr{}, oops.Code("DICE_INVALID").With("expr", s).Wrapf(err, "parsing dice expression")
	}

	var e Expr
	switch {
	case n.Dice != nil:
		e.Number = 1
		if n.Count != nil {
			e.Number = *n.Count
		}
		e.Sides = n.Dice.Sides
		if e.Sides < 1 {
			return Expr{}, oops.Code("DICE_INVALID").With("expr", s).Errorf("dice must have at least one side")
		}
	case n.Count != nil:
		e.Modifier = *n.Count
	default:
		return Expr{}, oops.Code("DICE_INVALID").With("expr", s).Errorf("expected dice or a number")
	}
	if e.Number > MaxDice || e.Sides > MaxDice {
		return Expr{}, oops.Code("DICE_INVALID").With("expr", s).Errorf("expression exceeds %d dice or sides", MaxDice)
	}

	if n.Mod != nil {
		if n.Dice == nil {
			return Expr{}, oops.Code("DICE_INVALID").With("expr", s).Errorf("modifier requires dice")
		}
		if n.Mod.Sign == "-" {
			e.Modifier -= n.Mod.Value
		} else {
			e.Modifier += n.Mod.Value
		}
	}
	return e, nil
}

// MustParse is Parse that panics on error. Use for literals only.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// Roll rolls the expression.
func (e Expr) Roll(r *Roller) int {
	total := e.Modifier
	for range e.Number {
		total += r.Range(1, e.Sides)
	}
	return total
}

// Min is the lowest possible roll.
func (e Expr) Min() int { return e.Number + e.Modifier }

// Max is the highest possible roll.
func (e Expr) Max() int { return e.Number*e.Sides + e.Modifier }

// Average is the mean roll rounded down.
func (e Expr) Average() int { return (e.Min() + e.Max()) / 2 }

// IsZero reports whether the expression rolls nothing at all.
func (e Expr) IsZero() bool { return e.Number == 0 && e.Modifier == 0 }

func (e Expr) String() string {
	if e.Number == 0 {
		return fmt.Sprintf("%d", e.Modifier)
	}
	switch {
	case e.Modifier > 0:
		return fmt.Sprintf("%dd%d+%d", e.Number, e.Sides, e.Modifier)
	case e.Modifier < 0:
		return fmt.Sprintf("%dd%d%d", e.Number, e.Sides, e.Modifier)
	}
	return fmt.Sprintf("%dd%d", e.Number, e.Sides)
}

// UnmarshalText lets expressions appear as strings in YAML and config files.
func (e *Expr) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// MarshalText renders the expression in dice notation.
func (e Expr) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}
