package sgdl

import (
	"io"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haldis/sgdl/deck"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// klondikeish builds a two-column, one-foundation board with the usual
// build-down-alternating / build-up-matching rules.
func klondikeish(t *testing.T) *Game {
	t.Helper()
	g := NewGame("mini", quietLogger())

	require.NoError(t, g.DefinePile("C", 2, FaceAll, cardsUp("H9", "S5")))
	require.NoError(t, g.DefinePile("C", 2, FaceAll, cardsUp("S2", "H6")))
	require.NoError(t, g.DefinePile("F", 0, FaceAll, []*deck.Card{}))

	buildDown := NewOr[MoveComponents](
		DestEmptyCondition{},
		NewAnd[MoveComponents](
			DestSrcSuitCondition{Mode: SuitAlternate},
			DestSrcRankCondition{Mode: RankDescending},
		),
	)
	foundationUp := NewOr[MoveComponents](
		NewAnd[MoveComponents](DestEmptyCondition{}, SrcRankCondition{Ranks: []int{1}}),
		NewAnd[MoveComponents](
			DestSrcSuitCondition{Mode: SuitMatch},
			DestSrcRankCondition{Mode: RankAscending},
		),
	)
	require.NoError(t, g.DefineMove("C", "C", buildDown))
	require.NoError(t, g.DefineMove("C", "F", foundationUp))
	require.NoError(t, g.DefineWinCondition(PileSizeCondition{
		Names: []string{"F"}, Quant: QuantAll, Op: OpEq, Threshold: 13,
	}))
	return g
}

func sortedCardStates(g *Game) []string {
	var states []string
	for _, c := range g.AllCards() {
		states = append(states, c.StateView())
	}
	sort.Strings(states)
	return states
}

func TestDefineRejectsRedefinition(t *testing.T) {
	g := NewGame("redefine", quietLogger())

	mustErr := func(err error) { t.Helper(); assert.Error(t, err) }

	require.NoError(t, g.SetDeck(deck.New(1, nil)))
	mustErr(g.SetDeck(deck.New(1, nil)))

	require.NoError(t, g.DefineDealDraw(5, []string{"C"}))
	mustErr(g.DefineDealDraw(5, []string{"C"}))
	mustErr(g.DefineRotateDraw(5, 1, Unlimited, Unlimited))

	mustErr(g.DefinePile(DrawTag, 1, FaceLast, nil))
	require.NoError(t, g.DefinePile("C", 3, FaceLast, nil))

	require.NoError(t, g.DefineMove("C", "C", DestEmptyCondition{}))
	mustErr(g.DefineMove("C", "C", DestEmptyCondition{}))
	mustErr(g.DefineMove("X", "C", DestEmptyCondition{}))
	mustErr(g.DefineMove("C", DrawTag, DestEmptyCondition{}))
	mustErr(g.DefineRunMove(DrawTag, "C", RunRankCondition{Mode: RankDescending}))

	require.NoError(t, g.DefineDrawCondition(PileEmptyCondition{Names: []string{"C"}, Quant: QuantAny}))
	mustErr(g.DefineDrawCondition(PileEmptyCondition{Names: []string{"C"}, Quant: QuantAny}))

	require.NoError(t, g.DefineWinCondition(PileEmptyCondition{Names: []string{"C"}, Quant: QuantAll}))
	mustErr(g.DefineWinCondition(PileEmptyCondition{Names: []string{"C"}, Quant: QuantAll}))
}

func TestSetDeckRejectsRedefinitionAfterDealing(t *testing.T) {
	g := NewGame("dealtout", quietLogger())
	require.NoError(t, g.SetDeck(&deck.Deck{Cards: cardsDown("S2")}))
	require.NoError(t, g.DefinePile("C", 1, FaceAll, nil))
	require.Equal(t, 0, g.deck.Len())

	assert.Error(t, g.SetDeck(deck.New(1, nil)))
}

func TestDefinePileChecksExplicitCount(t *testing.T) {
	g := NewGame("count", quietLogger())
	assert.Error(t, g.DefinePile("C", 2, FaceAll, cardsUp("S5")))
}

func TestMoveLegality(t *testing.T) {
	t.Run("legal move transfers the card", func(t *testing.T) {
		g := klondikeish(t)

		ok := g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 1}, true)
		assert.True(t, ok)
		assert.Equal(t, "5S", g.stack(StackPos{Name: "C", Index: 1}).Peek().String())
		assert.Equal(t, "9H", g.stack(StackPos{Name: "C", Index: 0}).Peek().String())
	})

	t.Run("rule evaluating false", func(t *testing.T) {
		g := klondikeish(t)
		// 6H onto 5S is not descending
		assert.False(t, g.Move(StackPos{Name: "C", Index: 1}, StackPos{Name: "C", Index: 0}, true))
	})

	t.Run("no rule registered for the pair", func(t *testing.T) {
		g := klondikeish(t)
		// F is declared but has no F->C rule
		assert.False(t, g.Move(StackPos{Name: "F", Index: 0}, StackPos{Name: "C", Index: 0}, true))
	})

	t.Run("empty source", func(t *testing.T) {
		g := NewGame("empty", quietLogger())
		require.NoError(t, g.DefinePile("C", 0, FaceAll, []*deck.Card{}))
		require.NoError(t, g.DefinePile("C", 1, FaceAll, cardsUp("S5")))
		require.NoError(t, g.DefineMove("C", "C", NewAnd[MoveComponents]()))
		assert.False(t, g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 1}, true))
	})

	t.Run("face-down source top", func(t *testing.T) {
		g := NewGame("facedown", quietLogger())
		require.NoError(t, g.DefinePile("C", 1, FaceLast, cardsDown("S5")))
		require.NoError(t, g.DefinePile("D", 1, FaceLast, cardsDown("H6")))
		require.NoError(t, g.DefineMove("C", "D", NewAnd[MoveComponents]()))
		g.stack(StackPos{Name: "C", Index: 0}).Peek().Face(false)
		assert.False(t, g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "D", Index: 0}, true))
	})

	t.Run("nonexistent pile panics", func(t *testing.T) {
		g := klondikeish(t)
		assert.Panics(t, func() {
			g.Move(StackPos{Name: "Z", Index: 0}, StackPos{Name: "C", Index: 0}, true)
		})
		assert.Panics(t, func() {
			g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 7}, true)
		})
	})
}

func TestMoveDryRunDoesNotMutate(t *testing.T) {
	g := klondikeish(t)
	before := g.StateView()

	ok := g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 1}, false)
	assert.True(t, ok)
	assert.Equal(t, before, g.StateView())
}

func TestMoveExposesSourceTop(t *testing.T) {
	g := NewGame("expose", quietLogger())
	cards := cardsDown("H9", "S5")
	require.NoError(t, g.DefinePile("C", 2, FaceLast, cards))
	require.NoError(t, g.DefinePile("D", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefineMove("C", "D", NewAnd[MoveComponents]()))

	require.True(t, g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "D", Index: 0}, true))
	newTop := g.stack(StackPos{Name: "C", Index: 0}).Peek()
	assert.Equal(t, "9H", newTop.String())
	assert.False(t, newTop.FaceDown)
}

func TestMoveRun(t *testing.T) {
	newGame := func(t *testing.T) *Game {
		g := NewGame("runs", quietLogger())
		require.NoError(t, g.DefinePile("C", 3, FaceAll, cardsUp("S9", "H5", "S4")))
		require.NoError(t, g.DefinePile("C", 1, FaceAll, cardsUp("S6")))
		rule := NewAnd[RunComponents](
			RunRankCondition{Mode: RankDescending},
			LiftMoveCondition(DestSrcRankCondition{Mode: RankDescending}),
		)
		require.NoError(t, g.DefineRunMove("C", "C", rule))
		return g
	}

	t.Run("legal run moves every card", func(t *testing.T) {
		g := newGame(t)
		src := RunPos{Stack: StackPos{Name: "C", Index: 0}, FromIndex: 1}
		require.True(t, g.MoveRun(src, StackPos{Name: "C", Index: 1}, true))

		dest := g.stack(StackPos{Name: "C", Index: 1})
		assert.Equal(t, 3, dest.Len())
		assert.Equal(t, "4S", dest.Peek().String())
		assert.Equal(t, 1, g.stack(StackPos{Name: "C", Index: 0}).Len())
	})

	t.Run("run with a gap fails", func(t *testing.T) {
		g := newGame(t)
		src := RunPos{Stack: StackPos{Name: "C", Index: 0}, FromIndex: 0}
		assert.False(t, g.MoveRun(src, StackPos{Name: "C", Index: 1}, true))
	})

	t.Run("out-of-range index fails", func(t *testing.T) {
		g := newGame(t)
		src := RunPos{Stack: StackPos{Name: "C", Index: 0}, FromIndex: 5}
		assert.False(t, g.MoveRun(src, StackPos{Name: "C", Index: 1}, true))
	})

	t.Run("face-down card in the run fails", func(t *testing.T) {
		g := newGame(t)
		g.stack(StackPos{Name: "C", Index: 0}).AllCards()[1].Face(false)
		src := RunPos{Stack: StackPos{Name: "C", Index: 0}, FromIndex: 1}
		assert.False(t, g.MoveRun(src, StackPos{Name: "C", Index: 1}, true))
	})

	t.Run("dry run does not mutate", func(t *testing.T) {
		g := newGame(t)
		before := g.StateView()
		src := RunPos{Stack: StackPos{Name: "C", Index: 0}, FromIndex: 1}
		assert.True(t, g.MoveRun(src, StackPos{Name: "C", Index: 1}, false))
		assert.Equal(t, before, g.StateView())
	})
}

func TestDrawDealsOneCardPerTargetInstance(t *testing.T) {
	g := NewGame("deal", quietLogger())
	require.NoError(t, g.SetDeck(&deck.Deck{Cards: cardsDown("S2", "S3", "S4")}))
	require.NoError(t, g.DefineDealDraw(3, []string{"C"}))
	require.NoError(t, g.DefinePile("C", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefinePile("C", 0, FaceAll, []*deck.Card{}))

	require.True(t, g.Draw(true))
	assert.Equal(t, 1, g.stack(StackPos{Name: "C", Index: 0}).Len())
	assert.Equal(t, 1, g.stack(StackPos{Name: "C", Index: 1}).Len())
	assert.False(t, g.stack(StackPos{Name: "C", Index: 0}).Peek().FaceDown)

	require.True(t, g.Draw(true))
	assert.Equal(t, 2, g.stack(StackPos{Name: "C", Index: 0}).Len())
	assert.Equal(t, 1, g.stack(StackPos{Name: "C", Index: 1}).Len()) // pile ran dry mid-fan

	assert.False(t, g.Draw(true))
}

func TestDrawConditionGates(t *testing.T) {
	g := NewGame("gated", quietLogger())
	require.NoError(t, g.SetDeck(&deck.Deck{Cards: cardsDown("S2", "S3")}))
	require.NoError(t, g.DefineDealDraw(2, []string{"C"}))
	require.NoError(t, g.DefinePile("C", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefineDrawCondition(PileSizeCondition{
		Names: []string{"C"}, Quant: QuantAll, Op: OpEq, Threshold: 0,
	}))

	before := g.StateView()
	require.True(t, g.Draw(false))
	assert.Equal(t, before, g.StateView())

	require.True(t, g.Draw(true))
	// C is no longer empty, so the gate now blocks further draws
	assert.False(t, g.Draw(true))
	assert.Equal(t, 1, g.drawPile.Len())
}

func TestDrawTriggersAutoMoves(t *testing.T) {
	g := NewGame("auto", quietLogger())
	require.NoError(t, g.SetDeck(&deck.Deck{Cards: cardsDown("S1")}))
	require.NoError(t, g.DefineDealDraw(1, []string{"C"}))
	require.NoError(t, g.DefinePile("C", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefinePile("F", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefineAutoMove("C", "F", NewAnd[MoveComponents](
		DestEmptyCondition{},
		SrcRankCondition{Ranks: []int{1}},
	)))

	require.True(t, g.Draw(true))
	assert.True(t, g.stack(StackPos{Name: "C", Index: 0}).Empty())
	assert.Equal(t, 1, g.stack(StackPos{Name: "F", Index: 0}).Len())
	assert.Equal(t, "1S", g.stack(StackPos{Name: "F", Index: 0}).Peek().String())
}

func TestAutoMovesChainToAFixedPoint(t *testing.T) {
	g := NewGame("chain", quietLogger())
	require.NoError(t, g.DefinePile("C", 2, FaceAll, cardsUp("S1", "S2")))
	require.NoError(t, g.DefinePile("D", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefinePile("F", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefineMove("C", "D", NewAnd[MoveComponents]()))
	require.NoError(t, g.DefineAutoMove("C", "F", NewAnd[MoveComponents](
		DestEmptyCondition{},
		SrcRankCondition{Ranks: []int{1}},
	)))

	// moving the ace's cover to D exposes it; the auto rule then sends
	// it to the foundation
	require.True(t, g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "D", Index: 0}, true))
	assert.True(t, g.stack(StackPos{Name: "C", Index: 0}).Empty())
	assert.Equal(t, "1S", g.stack(StackPos{Name: "F", Index: 0}).Peek().String())
}

func TestAutoMoveCycleTerminates(t *testing.T) {
	g := NewGame("cycle", quietLogger())
	require.NoError(t, g.DefinePile("A", 1, FaceAll, cardsUp("S1")))
	require.NoError(t, g.DefinePile("B", 0, FaceAll, []*deck.Card{}))
	require.NoError(t, g.DefineAutoMove("A", "B", NewAnd[MoveComponents]()))
	require.NoError(t, g.DefineAutoMove("B", "A", NewAnd[MoveComponents]()))

	g.resolveAutoMoves()
	// one full ping-pong before the revisited-state guard trips
	assert.Equal(t, 1, g.stack(StackPos{Name: "A", Index: 0}).Len()+
		g.stack(StackPos{Name: "B", Index: 0}).Len())
}

func TestCardConservation(t *testing.T) {
	g := klondikeish(t)
	before := sortedCardStates(g)
	assert.Len(t, before, 4)

	g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 1}, true)
	g.Move(StackPos{Name: "C", Index: 1}, StackPos{Name: "C", Index: 0}, true)
	for _, action := range g.PossibleActions(true) {
		g.Act(action, true)
		break
	}
	assert.Equal(t, before, sortedCardStates(g))
}

func TestIsWin(t *testing.T) {
	g := NewGame("win", quietLogger())
	require.NoError(t, g.DefinePile("F", 1, FaceAll, cardsUp("S1")))

	assert.Panics(t, func() { g.IsWin() })

	require.NoError(t, g.DefineWinCondition(PileSizeCondition{
		Names: []string{"F"}, Quant: QuantAll, Op: OpEq, Threshold: 1,
	}))
	assert.True(t, g.IsWin())

	g.stack(StackPos{Name: "F", Index: 0}).Get()
	assert.False(t, g.IsWin())
}

func TestCopyIsIndependent(t *testing.T) {
	g := klondikeish(t)
	copied := g.Copy()

	assert.Equal(t, g.StateView(), copied.StateView())
	assert.Equal(t, g.ID(), copied.ID())

	require.True(t, g.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 1}, true))
	assert.NotEqual(t, g.StateView(), copied.StateView())

	// the copy shares the rule tables and can make the same move
	assert.True(t, copied.Move(StackPos{Name: "C", Index: 0}, StackPos{Name: "C", Index: 1}, true))
	assert.Equal(t, g.StateView(), copied.StateView())
}

func TestScramblePermutesOnlyHiddenCards(t *testing.T) {
	g := NewGame("scramble", quietLogger())
	require.NoError(t, g.SetDeck(&deck.Deck{Cards: cardsDown("S2", "S3", "S4", "S5", "S6", "S7")}))
	require.NoError(t, g.DefineRotateDraw(3, 1, Unlimited, Unlimited))
	require.NoError(t, g.DefinePile("C", 3, FaceLast, nil))

	gameViewBefore := g.GameView()
	cardsBefore := sortedCardStates(g)
	topBefore := g.stack(StackPos{Name: "C", Index: 0}).Peek().String()

	g.Scramble(7)

	// hidden identities may change, visible information may not
	assert.Equal(t, gameViewBefore, g.GameView())
	assert.Equal(t, topBefore, g.stack(StackPos{Name: "C", Index: 0}).Peek().String())
	// still the same multiset of cards
	assert.Equal(t, cardsBefore, sortedCardStates(g))
}
