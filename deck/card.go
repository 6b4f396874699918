package deck

import "fmt"

// Suit represents a suit in a deck of cards
type Suit int

const (
	Spades Suit = iota
	Hearts
	Clubs
	Diamonds
)

// Suits lists every suit in deck-construction order.
var Suits = []Suit{Spades, Hearts, Clubs, Diamonds}

var suitLetters = []string{"S", "H", "C", "D"}

func (s Suit) String() string {
	if s < Spades || s > Diamonds {
		return "?"
	}
	return suitLetters[s]
}

// Color represents the color of a suit
type Color int

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	if c == Black {
		return "Black"
	}
	return "Red"
}

// Color returns the color of the suit. Spades and Clubs are black,
// Hearts and Diamonds are red.
func (s Suit) Color() Color {
	if s == Spades || s == Clubs {
		return Black
	}
	return Red
}

// MinRank and MaxRank bound card ranks: 1 is the Ace, 11-13 are the
// Jack, Queen and King.
const (
	MinRank = 1
	MaxRank = 13
)

// RankString renders a rank using the court-card letters.
func RankString(rank int) string {
	switch rank {
	case 13:
		return "K"
	case 12:
		return "Q"
	case 11:
		return "J"
	}
	return fmt.Sprintf("%d", rank)
}

// Card represents a playing card. Only the face orientation ever
// changes after construction; rank and suit are fixed. Cards are
// handled by pointer so that the same logical card can be tracked
// across piles for the lifetime of a game.
type Card struct {
	Suit     Suit
	Rank     int
	FaceDown bool
}

// NewCard constructs a card. It panics if rank is outside [1, 13];
// callers parsing untrusted input must validate the rank first.
func NewCard(suit Suit, rank int, faceDown bool) *Card {
	if rank < MinRank || rank > MaxRank {
		panic(fmt.Sprintf("deck: rank out of range: %d", rank))
	}
	return &Card{Suit: suit, Rank: rank, FaceDown: faceDown}
}

// Face turns the card face-up (true) or face-down (false).
func (c *Card) Face(up bool) {
	c.FaceDown = !up
}

// Color returns the color of the card's suit.
func (c *Card) Color() Color {
	return c.Suit.Color()
}

func (c *Card) String() string {
	s := RankString(c.Rank) + c.Suit.String()
	if c.FaceDown {
		return "[" + s + "]"
	}
	return s
}

// GameView renders the card as visible to a player: face-down cards
// are opaque.
func (c *Card) GameView() string {
	if c.FaceDown {
		return "[?]"
	}
	return c.String()
}

// StateView renders the card with full information, face-down or not.
func (c *Card) StateView() string {
	return c.String()
}

// Copy returns an independent copy of the card.
func (c *Card) Copy() *Card {
	copied := *c
	return &copied
}
