package sgdl

import (
	"fmt"
	"strings"

	"github.com/haldis/sgdl/deck"
)

// NumberOp compares a count against a threshold.
type NumberOp int

const (
	OpEq NumberOp = iota
	OpLt
	OpLte
	OpGt
	OpGte
)

// ParseNumberOp parses a comparison operator token.
func ParseNumberOp(s string) (NumberOp, error) {
	switch s {
	case "==":
		return OpEq, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLte, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGte, nil
	}
	return 0, fmt.Errorf("comparison operator not recognized: %q", s)
}

func (op NumberOp) compare(val, threshold int) bool {
	switch op {
	case OpEq:
		return val == threshold
	case OpLt:
		return val < threshold
	case OpLte:
		return val <= threshold
	case OpGt:
		return val > threshold
	case OpGte:
		return val >= threshold
	}
	panic(fmt.Sprintf("sgdl: comparison not implemented: %d", op))
}

func (op NumberOp) describe(threshold int) string {
	switch op {
	case OpEq:
		return fmt.Sprintf("equal to %d", threshold)
	case OpLt:
		return fmt.Sprintf("less than %d", threshold)
	case OpLte:
		return fmt.Sprintf("less than or equal to %d", threshold)
	case OpGt:
		return fmt.Sprintf("greater than %d", threshold)
	case OpGte:
		return fmt.Sprintf("greater than or equal to %d", threshold)
	}
	panic(fmt.Sprintf("sgdl: comparison not implemented: %d", op))
}

// SuitPairMode is a pairwise test over adjacent suits.
type SuitPairMode int

const (
	// SuitAlternate requires every adjacent pair to differ in color.
	SuitAlternate SuitPairMode = iota
	// SuitMatch requires every adjacent pair to share a color.
	SuitMatch
)

// ParseSuitPairMode parses a suit comparison mode token.
func ParseSuitPairMode(s string) (SuitPairMode, error) {
	switch s {
	case "alternate_color":
		return SuitAlternate, nil
	case "match":
		return SuitMatch, nil
	}
	return 0, fmt.Errorf("suit comparison mode not recognized: %q", s)
}

func (m SuitPairMode) describe() string {
	if m == SuitAlternate {
		return "alternating suit colors"
	}
	return "matching suits"
}

func (m SuitPairMode) holds(suits []deck.Suit) bool {
	for i := 1; i < len(suits); i++ {
		matched := suits[i-1].Color() == suits[i].Color()
		if matched != (m == SuitMatch) {
			return false
		}
	}
	return true
}

// RankPairMode is a pairwise test over adjacent ranks. Only strictly
// consecutive-by-one sequences satisfy it; gaps and repeats fail.
type RankPairMode int

const (
	RankAscending RankPairMode = iota
	RankDescending
)

// ParseRankPairMode parses a rank comparison mode token.
func ParseRankPairMode(s string) (RankPairMode, error) {
	switch s {
	case "ascending":
		return RankAscending, nil
	case "descending":
		return RankDescending, nil
	}
	return 0, fmt.Errorf("rank comparison mode not recognized: %q", s)
}

func (m RankPairMode) describe() string {
	if m == RankAscending {
		return "[consecutive] ascending ranks"
	}
	return "[consecutive] descending ranks"
}

func (m RankPairMode) holds(ranks []int) bool {
	for i := 1; i < len(ranks); i++ {
		var ok bool
		if m == RankAscending {
			ok = ranks[i-1]+1 == ranks[i]
		} else {
			ok = ranks[i-1] == ranks[i]+1
		}
		if !ok {
			return false
		}
	}
	return true
}

func describeSuits(suits []deck.Suit) string {
	if len(suits) == 1 {
		return fmt.Sprintf("suit %s", suits[0])
	}
	parts := make([]string, len(suits))
	for i, s := range suits {
		parts[i] = s.String()
	}
	return fmt.Sprintf("one of the suits {%s}", strings.Join(parts, ", "))
}

func describeRanks(ranks []int) string {
	if len(ranks) == 1 {
		return fmt.Sprintf("rank %s", deck.RankString(ranks[0]))
	}
	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = deck.RankString(r)
	}
	return fmt.Sprintf("one of the ranks {%s}", strings.Join(parts, ", "))
}

func suitIn(suit deck.Suit, set []deck.Suit) bool {
	for _, s := range set {
		if s == suit {
			return true
		}
	}
	return false
}

func rankIn(rank int, set []int) bool {
	for _, r := range set {
		if r == rank {
			return true
		}
	}
	return false
}

// DestEmptyCondition requires the destination stack to be empty.
type DestEmptyCondition struct{}

func (c DestEmptyCondition) Evaluate(m MoveComponents) bool {
	return m.Destination.Empty()
}

func (c DestEmptyCondition) Summary(m *MoveComponents) string {
	return "destination should be empty" + verdict[MoveComponents](c, m)
}

// DestSizeCondition compares the destination stack's size against a
// threshold.
type DestSizeCondition struct {
	Op        NumberOp
	Threshold int
}

func (c DestSizeCondition) Evaluate(m MoveComponents) bool {
	return c.Op.compare(m.Destination.Len(), c.Threshold)
}

func (c DestSizeCondition) Summary(m *MoveComponents) string {
	return fmt.Sprintf("destination should have a size %s", c.Op.describe(c.Threshold)) +
		verdict[MoveComponents](c, m)
}

// SrcSuitCondition requires the moved card's suit to be in a set.
type SrcSuitCondition struct {
	Suits []deck.Suit
}

func (c SrcSuitCondition) Evaluate(m MoveComponents) bool {
	return suitIn(m.Source.Suit, c.Suits)
}

func (c SrcSuitCondition) Summary(m *MoveComponents) string {
	return fmt.Sprintf("source should have %s", describeSuits(c.Suits)) +
		verdict[MoveComponents](c, m)
}

// SrcRankCondition requires the moved card's rank to be in a set.
type SrcRankCondition struct {
	Ranks []int
}

func (c SrcRankCondition) Evaluate(m MoveComponents) bool {
	return rankIn(m.Source.Rank, c.Ranks)
}

func (c SrcRankCondition) Summary(m *MoveComponents) string {
	return fmt.Sprintf("source should have %s", describeRanks(c.Ranks)) +
		verdict[MoveComponents](c, m)
}

// DestSrcSuitCondition tests the destination's top card against the
// moved card pairwise by suit. A non-empty destination is part of the
// condition: it is false on an empty stack.
type DestSrcSuitCondition struct {
	Mode SuitPairMode
}

func (c DestSrcSuitCondition) Evaluate(m MoveComponents) bool {
	return m.Destination.Len() > 0 &&
		c.Mode.holds([]deck.Suit{m.Destination.Peek().Suit, m.Source.Suit})
}

func (c DestSrcSuitCondition) Summary(m *MoveComponents) string {
	return fmt.Sprintf("top card of destination and source card should have %s", c.Mode.describe()) +
		verdict[MoveComponents](c, m)
}

// DestSrcRankCondition tests the destination's top card against the
// moved card pairwise by rank. False on an empty destination.
type DestSrcRankCondition struct {
	Mode RankPairMode
}

func (c DestSrcRankCondition) Evaluate(m MoveComponents) bool {
	return m.Destination.Len() > 0 &&
		c.Mode.holds([]int{m.Destination.Peek().Rank, m.Source.Rank})
}

func (c DestSrcRankCondition) Summary(m *MoveComponents) string {
	return fmt.Sprintf("top card of destination and source card should make %s", c.Mode.describe()) +
		verdict[MoveComponents](c, m)
}

// RunSizeCondition compares the run's length against a threshold.
type RunSizeCondition struct {
	Op        NumberOp
	Threshold int
}

func (c RunSizeCondition) Evaluate(r RunComponents) bool {
	return c.Op.compare(len(r.Run), c.Threshold)
}

func (c RunSizeCondition) Summary(r *RunComponents) string {
	return fmt.Sprintf("run should have a size %s", c.Op.describe(c.Threshold)) +
		verdict[RunComponents](c, r)
}

// RunSuitCondition tests adjacent cards within the run by suit.
type RunSuitCondition struct {
	Mode SuitPairMode
}

func (c RunSuitCondition) Evaluate(r RunComponents) bool {
	suits := make([]deck.Suit, len(r.Run))
	for i, card := range r.Run {
		suits[i] = card.Suit
	}
	return c.Mode.holds(suits)
}

func (c RunSuitCondition) Summary(r *RunComponents) string {
	return fmt.Sprintf("cards in the run should have %s", c.Mode.describe()) +
		verdict[RunComponents](c, r)
}

// RunRankCondition tests adjacent cards within the run by rank.
type RunRankCondition struct {
	Mode RankPairMode
}

func (c RunRankCondition) Evaluate(r RunComponents) bool {
	ranks := make([]int, len(r.Run))
	for i, card := range r.Run {
		ranks[i] = card.Rank
	}
	return c.Mode.holds(ranks)
}

func (c RunRankCondition) Summary(r *RunComponents) string {
	return fmt.Sprintf("cards in the run should have %s", c.Mode.describe()) +
		verdict[RunComponents](c, r)
}

// liftedMoveCondition applies a single-card move condition to a run
// by projecting the run onto its bottom card and destination.
type liftedMoveCondition struct {
	inner Condition[MoveComponents]
}

// LiftMoveCondition adapts a single-card move condition into a run
// condition judged against the run's bottom card.
func LiftMoveCondition(c Condition[MoveComponents]) Condition[RunComponents] {
	return liftedMoveCondition{inner: c}
}

func (l liftedMoveCondition) Evaluate(r RunComponents) bool {
	return l.inner.Evaluate(MoveComponents{Source: r.Source(), Destination: r.Destination})
}

func (l liftedMoveCondition) Summary(r *RunComponents) string {
	if r == nil {
		return l.inner.Summary(nil)
	}
	m := MoveComponents{Source: r.Source(), Destination: r.Destination}
	return l.inner.Summary(&m)
}
