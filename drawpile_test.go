package sgdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealPileGetFlipsFaceUp(t *testing.T) {
	pile := NewDealPile(cardsDown("S2", "S3"), []string{"C"})

	card := pile.Get()
	assert.Equal(t, "3S", card.String())
	assert.False(t, card.FaceDown)
	assert.Equal(t, 1, pile.Len())
}

func TestDealPileViews(t *testing.T) {
	pile := NewDealPile(cardsDown("S2", "S3"), []string{"C"})
	assert.Equal(t, "Draw Pile (DEAL): 2 cards", pile.GameView())
	assert.Equal(t, "Draw Pile (DEAL): [2S], [3S]", pile.StateView())
	assert.Equal(t, DrawTag, pile.Tag())
}

func TestRotateDrawPileParamValidation(t *testing.T) {
	_, err := NewRotateDrawPile(nil, 0, Unlimited, Unlimited)
	assert.Error(t, err)

	_, err = NewRotateDrawPile(nil, 1, -1, Unlimited)
	assert.Error(t, err)

	_, err = NewRotateDrawPile(nil, 1, Unlimited, -2)
	assert.Error(t, err)

	pile, err := NewRotateDrawPile(nil, 3, Unlimited, Unlimited)
	require.NoError(t, err)
	assert.False(t, pile.CanStrandCards())

	pile, err = NewRotateDrawPile(nil, 3, 3, 1)
	require.NoError(t, err)
	assert.True(t, pile.CanStrandCards())
}

// Walks the automaton through draw, window eviction, redeal and
// exhaustion with drawCount=1, viewCount=1, maxRedeals=1 over a
// three-card backpile.
func TestRotateDrawPileAutomaton(t *testing.T) {
	backpile := cardsDown("S2", "S3", "S4") // draw order: 2S, 3S, 4S
	pile, err := NewRotateDrawPile(backpile, 1, 1, 1)
	require.NoError(t, err)

	state := func() (back, window, drawn int) {
		return len(pile.backpile), len(pile.cards), len(pile.drawn)
	}
	conserved := func() int { return len(pile.AllCards()) }

	// rotate 1: first backpile card enters the window face-up
	assert.True(t, pile.Rotate(true))
	back, window, drawn := state()
	assert.Equal(t, [3]int{2, 1, 0}, [3]int{back, window, drawn})
	assert.Equal(t, "2S", pile.Peek().String())
	assert.False(t, pile.Peek().FaceDown)

	// rotate 2: window overflows, oldest card is evicted to drawn
	assert.True(t, pile.Rotate(true))
	back, window, drawn = state()
	assert.Equal(t, [3]int{1, 1, 1}, [3]int{back, window, drawn})
	assert.Equal(t, "3S", pile.Peek().String())
	assert.Equal(t, "2S", pile.drawn[0].String())

	// rotate 3: backpile empties
	assert.True(t, pile.Rotate(true))
	back, window, drawn = state()
	assert.Equal(t, [3]int{0, 1, 2}, [3]int{back, window, drawn})
	assert.Equal(t, "4S", pile.Peek().String())

	// rotate 4: redeal reconstitutes drawn ++ window, face-down
	assert.True(t, pile.Rotate(true))
	back, window, drawn = state()
	assert.Equal(t, [3]int{3, 0, 0}, [3]int{back, window, drawn})
	assert.Equal(t, 1, pile.Redeals())
	assert.Equal(t, "[2S]", pile.backpile[0].String())
	assert.Equal(t, "[3S]", pile.backpile[1].String())
	assert.Equal(t, "[4S]", pile.backpile[2].String())

	// burn through the redealt backpile
	assert.True(t, pile.Rotate(true))
	assert.True(t, pile.Rotate(true))
	assert.True(t, pile.Rotate(true))

	// rotate 8: redeals exhausted; infeasible and no mutation
	before := pile.StateView()
	assert.False(t, pile.Rotate(true))
	assert.Equal(t, before, pile.StateView())

	assert.Equal(t, 3, conserved())
}

func TestRotateDrawPileDryRunDoesNotMutate(t *testing.T) {
	pile, err := NewRotateDrawPile(cardsDown("S2", "S3", "S4"), 2, Unlimited, Unlimited)
	require.NoError(t, err)

	before := pile.StateView()
	assert.True(t, pile.Rotate(false))
	assert.Equal(t, before, pile.StateView())
}

func TestRotateDrawPileDrawCountClamped(t *testing.T) {
	pile, err := NewRotateDrawPile(cardsDown("S2", "S3", "S4"), 5, Unlimited, Unlimited)
	require.NoError(t, err)

	assert.True(t, pile.Rotate(true))
	assert.Equal(t, 3, pile.Len())
	assert.Equal(t, 0, len(pile.backpile))
}

func TestRotateDrawPileConservation(t *testing.T) {
	pile, err := NewRotateDrawPile(cardsDown("S2", "S3", "S4", "S5", "S6"), 2, 3, Unlimited)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		pile.Rotate(true)
		assert.Equal(t, 5, len(pile.AllCards()))
	}
}

func TestRotateDrawPileCopyIsIndependent(t *testing.T) {
	pile, err := NewRotateDrawPile(cardsDown("S2", "S3", "S4"), 1, 1, 1)
	require.NoError(t, err)
	require.True(t, pile.Rotate(true))

	copied := pile.Copy()
	assert.Equal(t, pile.StateView(), copied.StateView())

	copied.Rotate(true)
	assert.NotEqual(t, pile.StateView(), copied.StateView())
	assert.Equal(t, 1, pile.Len())
}
