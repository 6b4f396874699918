package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuitColor(t *testing.T) {
	tt := []struct {
		suit Suit
		want Color
	}{
		{Spades, Black},
		{Clubs, Black},
		{Hearts, Red},
		{Diamonds, Red},
	}

	for _, tc := range tt {
		t.Run(tc.suit.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.suit.Color())
		})
	}
}

func TestRankString(t *testing.T) {
	tt := []struct {
		rank int
		want string
	}{
		{1, "1"},
		{10, "10"},
		{11, "J"},
		{12, "Q"},
		{13, "K"},
	}

	for _, tc := range tt {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, RankString(tc.rank))
		})
	}
}

func TestNewCardRejectsBadRank(t *testing.T) {
	assert.Panics(t, func() { NewCard(Spades, 0, true) })
	assert.Panics(t, func() { NewCard(Spades, 14, true) })
}

func TestCardViews(t *testing.T) {
	card := NewCard(Hearts, 13, false)
	assert.Equal(t, "KH", card.String())
	assert.Equal(t, "KH", card.GameView())
	assert.Equal(t, "KH", card.StateView())

	card.Face(false)
	assert.Equal(t, "[KH]", card.String())
	assert.Equal(t, "[?]", card.GameView())
	assert.Equal(t, "[KH]", card.StateView())

	card.Face(true)
	assert.False(t, card.FaceDown)
}

func TestCardCopyIsIndependent(t *testing.T) {
	card := NewCard(Diamonds, 7, true)
	copied := card.Copy()

	assert.Equal(t, card.Suit, copied.Suit)
	assert.Equal(t, card.Rank, copied.Rank)
	assert.Equal(t, card.FaceDown, copied.FaceDown)

	copied.Face(true)
	assert.True(t, card.FaceDown)
}
