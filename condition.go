package sgdl

import (
	"fmt"
	"strings"

	"github.com/haldis/sgdl/deck"
)

// MoveComponents bundles what a single-card move rule is judged
// against: the card being moved and the stack it would land on.
type MoveComponents struct {
	Source      *deck.Card
	Destination *Stack
}

// RunComponents bundles what a run move rule is judged against: the
// suffix of cards being moved together and the destination stack.
type RunComponents struct {
	Run         []*deck.Card
	Destination *Stack
}

// Source returns the bottom card of the run, the one that lands on
// the destination's current top.
func (rc RunComponents) Source() *deck.Card {
	return rc.Run[0]
}

// BoardComponents bundles the whole board for draw-eligibility and
// win rules.
type BoardComponents struct {
	Piles map[string][]*Stack
	Draw  Pile
}

// Condition is a rule predicate over one component shape. Summary
// renders a human-readable description of the rule; with non-nil
// components each node is annotated with its own boolean result.
type Condition[T any] interface {
	Evaluate(components T) bool
	Summary(components *T) string
}

func verdict[T any](c Condition[T], components *T) string {
	if components == nil {
		return ""
	}
	if c.Evaluate(*components) {
		return " [T]"
	}
	return " [F]"
}

// TreeOp selects how a condition tree combines its subtrees.
type TreeOp int

const (
	And TreeOp = iota
	Or
)

// Tree is an AND/OR composite over an ordered list of conditions.
// AND is false on the first false subtree, OR true on the first true
// one; ordering only affects short-circuiting, never the result.
type Tree[T any] struct {
	op       TreeOp
	subtrees []Condition[T]
}

// NewAnd builds a tree that requires every subtree to hold.
func NewAnd[T any](subtrees ...Condition[T]) *Tree[T] {
	return &Tree[T]{op: And, subtrees: subtrees}
}

// NewOr builds a tree that requires at least one subtree to hold.
func NewOr[T any](subtrees ...Condition[T]) *Tree[T] {
	return &Tree[T]{op: Or, subtrees: subtrees}
}

// Add appends a subtree. Trees are only grown during compilation and
// are immutable afterwards.
func (t *Tree[T]) Add(c Condition[T]) {
	t.subtrees = append(t.subtrees, c)
}

func (t *Tree[T]) Evaluate(components T) bool {
	if t.op == And {
		for _, sub := range t.subtrees {
			if !sub.Evaluate(components) {
				return false
			}
		}
		return true
	}
	for _, sub := range t.subtrees {
		if sub.Evaluate(components) {
			return true
		}
	}
	return false
}

func (t *Tree[T]) headline(components *T) string {
	head := "All of the following should be true:"
	if t.op == Or {
		head = "At least one of the following should be true:"
	}
	return head + verdict[T](t, components)
}

// Summary renders the tree as an indented outline; nested nodes carry
// dotted index paths ("1.2.") and, when components are supplied, a
// [T]/[F] annotation per node.
func (t *Tree[T]) Summary(components *T) string {
	var b strings.Builder
	t.writeSummary(&b, components, nil)
	return b.String()
}

func indexText(index []int) string {
	if len(index) == 0 {
		return ""
	}
	parts := make([]string, len(index))
	for i, n := range index {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Repeat("    ", len(index)) + strings.Join(parts, ".") + ". "
}

func (t *Tree[T]) writeSummary(b *strings.Builder, components *T, index []int) {
	b.WriteString(indexText(index) + t.headline(components) + "\n")
	for i, sub := range t.subtrees {
		child := append(index[:len(index):len(index)], i+1)
		if subtree, ok := sub.(*Tree[T]); ok {
			subtree.writeSummary(b, components, child)
		} else {
			b.WriteString(indexText(child) + sub.Summary(components) + "\n")
		}
	}
}
