package deck

import (
	"math/rand"
	"strings"
)

// Deck represents an ordered sequence of face-down cards
type Deck struct {
	Cards []*Card
}

// New creates a deck containing `times` copies of every rank of each
// given suit, all face-down. A nil suit list means all four suits.
func New(times int, suits []Suit) *Deck {
	if suits == nil {
		suits = Suits
	}
	cards := []*Card{}
	for i := 0; i < times; i++ {
		for _, suit := range suits {
			for rank := MinRank; rank <= MaxRank; rank++ {
				cards = append(cards, NewCard(suit, rank, true))
			}
		}
	}
	return &Deck{Cards: cards}
}

// Shuffle shuffles the deck deterministically from the given seed.
func (d *Deck) Shuffle(seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Deal removes and returns the first n cards, or every remaining card
// if fewer than n are left.
func (d *Deck) Deal(n int) []*Card {
	if n < 0 {
		n = 0
	}
	if n > len(d.Cards) {
		n = len(d.Cards)
	}
	dealt := d.Cards[:n]
	d.Cards = d.Cards[n:]
	return dealt
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return len(d.Cards)
}

// Copy returns a deep copy of the deck.
func (d *Deck) Copy() *Deck {
	cards := make([]*Card, len(d.Cards))
	for i, c := range d.Cards {
		cards[i] = c.Copy()
	}
	return &Deck{Cards: cards}
}

func (d *Deck) String() string {
	parts := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
