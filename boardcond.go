package sgdl

import (
	"fmt"
	"strings"
)

// Quantifier selects how a board condition aggregates over a set of
// piles.
type Quantifier int

const (
	QuantAll Quantifier = iota
	QuantAny
)

// ParseQuantifier parses an all/any token.
func ParseQuantifier(s string) (Quantifier, error) {
	switch s {
	case "all":
		return QuantAll, nil
	case "any":
		return QuantAny, nil
	}
	return 0, fmt.Errorf("pile condition mode not recognized: %q", s)
}

func (q Quantifier) describe() string {
	if q == QuantAll {
		return "all"
	}
	return "any"
}

// resolvePiles expands pile names against the board. The DRAW name
// targets the draw pile; any other name targets every stack sharing
// it.
func resolvePiles(b BoardComponents, names []string) []Pile {
	var piles []Pile
	for _, name := range names {
		if name == DrawTag {
			if b.Draw != nil {
				piles = append(piles, b.Draw)
			}
			continue
		}
		for _, stack := range b.Piles[name] {
			piles = append(piles, stack)
		}
	}
	return piles
}

func (q Quantifier) holds(piles []Pile, pred func(Pile) bool) bool {
	if q == QuantAll {
		for _, pile := range piles {
			if !pred(pile) {
				return false
			}
		}
		return true
	}
	for _, pile := range piles {
		if pred(pile) {
			return true
		}
	}
	return false
}

func describeNames(names []string) string {
	return "{" + strings.Join(names, ", ") + "}"
}

// PileEmptyCondition requires all/any of the named piles to be empty.
type PileEmptyCondition struct {
	Names []string
	Quant Quantifier
}

func (c PileEmptyCondition) Evaluate(b BoardComponents) bool {
	return c.Quant.holds(resolvePiles(b, c.Names), Pile.Empty)
}

func (c PileEmptyCondition) Summary(b *BoardComponents) string {
	return fmt.Sprintf("%s of the piles %s should be empty", c.Quant.describe(), describeNames(c.Names)) +
		verdict[BoardComponents](c, b)
}

// PileSizeCondition compares the size of all/any of the named piles
// against a threshold.
type PileSizeCondition struct {
	Names     []string
	Quant     Quantifier
	Op        NumberOp
	Threshold int
}

func (c PileSizeCondition) Evaluate(b BoardComponents) bool {
	return c.Quant.holds(resolvePiles(b, c.Names), func(p Pile) bool {
		return c.Op.compare(p.Len(), c.Threshold)
	})
}

func (c PileSizeCondition) Summary(b *BoardComponents) string {
	return fmt.Sprintf("%s of the piles %s should have a size %s",
		c.Quant.describe(), describeNames(c.Names), c.Op.describe(c.Threshold)) +
		verdict[BoardComponents](c, b)
}
