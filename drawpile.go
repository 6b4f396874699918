package sgdl

import (
	"fmt"

	"github.com/haldis/sgdl/deck"
)

// DrawTag is the reserved pile name of the draw pile.
const DrawTag = "DRAW"

// Unlimited disables the view-window cap or the redeal cap of a
// rotate draw pile.
const Unlimited = 0

// DealPile is a one-shot fan-out draw pile: each draw hands one card
// to each target pile in order until the pile runs out.
type DealPile struct {
	cards   []*deck.Card
	targets []string
}

// NewDealPile constructs a deal pile over cards, distributing to the
// named target piles.
func NewDealPile(cards []*deck.Card, targets []string) *DealPile {
	return &DealPile{cards: cards, targets: targets}
}

// Get removes and returns the next card, turned face-up for
// distribution.
func (p *DealPile) Get() *deck.Card {
	p.Peek().Face(true)
	top := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return top
}

// Peek returns the next card without removing it.
func (p *DealPile) Peek() *deck.Card {
	if p.Empty() {
		panic("sgdl: peek at empty deal pile")
	}
	return p.cards[len(p.cards)-1]
}

func (p *DealPile) Empty() bool {
	return len(p.cards) == 0
}

func (p *DealPile) Len() int {
	return len(p.cards)
}

func (p *DealPile) AllCards() []*deck.Card {
	return p.cards
}

// Targets returns the pile names the deal fans out to, in order.
func (p *DealPile) Targets() []string {
	return p.targets
}

func (p *DealPile) Tag() string {
	return DrawTag
}

func (p *DealPile) GameView() string {
	return fmt.Sprintf("Draw Pile (DEAL): %d cards", len(p.cards))
}

func (p *DealPile) StateView() string {
	return "Draw Pile (DEAL): " + cardViews(p.cards, (*deck.Card).StateView)
}

// Copy returns a deep copy of the pile. Target names are shared; they
// never change after construction.
func (p *DealPile) Copy() *DealPile {
	return NewDealPile(copyCards(p.cards), p.targets)
}

func (p *DealPile) copyPile() Pile {
	return p.Copy()
}

// RotateDrawPile is a circular draw pile split into three
// ownership-disjoint sequences: backpile (face-down, undrawn), cards
// (the visible draw window, face-up) and drawn (cards evicted from
// the window). Cards only ever move between the three, so their total
// count is invariant for the pile's lifetime.
type RotateDrawPile struct {
	backpile []*deck.Card
	cards    []*deck.Card
	drawn    []*deck.Card

	drawCount  int
	viewCount  int // Unlimited = no window cap
	maxRedeals int // Unlimited = no redeal cap
	redeals    int
}

// NewRotateDrawPile constructs a rotate draw pile with cards as its
// initial backpile. drawCount must be positive; viewCount and
// maxRedeals must be positive or Unlimited.
func NewRotateDrawPile(cards []*deck.Card, drawCount, viewCount, maxRedeals int) (*RotateDrawPile, error) {
	if drawCount <= 0 {
		return nil, fmt.Errorf("rotate draw: draw count must be positive, got %d", drawCount)
	}
	if viewCount < 0 {
		return nil, fmt.Errorf("rotate draw: view count must be positive or unlimited, got %d", viewCount)
	}
	if maxRedeals < 0 {
		return nil, fmt.Errorf("rotate draw: max redeals must be positive or unlimited, got %d", maxRedeals)
	}
	return &RotateDrawPile{
		backpile:   cards,
		drawCount:  drawCount,
		viewCount:  viewCount,
		maxRedeals: maxRedeals,
	}, nil
}

// CanStrandCards reports whether the pile's configuration can make
// cards permanently inaccessible: a capped view window evicts cards
// into drawn, and a capped redeal count can exhaust before they cycle
// back.
func (p *RotateDrawPile) CanStrandCards() bool {
	return p.viewCount != Unlimited && p.maxRedeals != Unlimited
}

// Rotate advances the draw automaton. With a non-empty backpile it
// moves up to drawCount cards into the window, evicting the oldest
// visible card whenever the window overflows its cap. With an empty
// backpile and redeals remaining, it reconstitutes the backpile from
// drawn followed by the window, all face-down. Once exhausted it
// reports false without mutating; that is a normal outcome, not an
// error. With perform false it only reports feasibility.
func (p *RotateDrawPile) Rotate(perform bool) bool {
	switch {
	case len(p.backpile) > 0:
		if !perform {
			return true
		}
		n := p.drawCount
		if n > len(p.backpile) {
			n = len(p.backpile)
		}
		for i := 0; i < n; i++ {
			card := p.backpile[0]
			p.backpile = p.backpile[1:]
			card.Face(true)
			p.cards = append(p.cards, card)
			if p.viewCount != Unlimited && len(p.cards) > p.viewCount {
				p.drawn = append(p.drawn, p.cards[0])
				p.cards = p.cards[1:]
			}
		}
	case p.maxRedeals == Unlimited || p.redeals < p.maxRedeals:
		if !perform {
			return true
		}
		p.redeals++
		backpile := make([]*deck.Card, 0, len(p.drawn)+len(p.cards))
		backpile = append(backpile, p.drawn...)
		backpile = append(backpile, p.cards...)
		for _, card := range backpile {
			card.Face(false)
		}
		p.backpile = backpile
		p.cards = nil
		p.drawn = nil
	default:
		return false
	}
	return true
}

// Get removes and returns the top card of the visible window.
func (p *RotateDrawPile) Get() *deck.Card {
	top := p.Peek()
	p.cards = p.cards[:len(p.cards)-1]
	return top
}

// Peek returns the top card of the visible window.
func (p *RotateDrawPile) Peek() *deck.Card {
	if p.Empty() {
		panic("sgdl: peek at empty draw window")
	}
	return p.cards[len(p.cards)-1]
}

// Empty reports whether the visible window is empty.
func (p *RotateDrawPile) Empty() bool {
	return len(p.cards) == 0
}

// Len returns the size of the visible window.
func (p *RotateDrawPile) Len() int {
	return len(p.cards)
}

func (p *RotateDrawPile) AllCards() []*deck.Card {
	all := make([]*deck.Card, 0, len(p.cards)+len(p.backpile)+len(p.drawn))
	all = append(all, p.cards...)
	all = append(all, p.backpile...)
	all = append(all, p.drawn...)
	return all
}

// Redeals returns how many redeals have been performed.
func (p *RotateDrawPile) Redeals() int {
	return p.redeals
}

func (p *RotateDrawPile) Tag() string {
	return DrawTag
}

func (p *RotateDrawPile) redealsView() string {
	if p.maxRedeals == Unlimited {
		return fmt.Sprintf("%d/U", p.redeals)
	}
	return fmt.Sprintf("%d/%d", p.redeals, p.maxRedeals)
}

func (p *RotateDrawPile) GameView() string {
	return fmt.Sprintf("Draw Pile (ROTATE): %d cards, %s redeals", len(p.cards), p.redealsView()) +
		"\nDraw View: " + cardViews(p.cards, (*deck.Card).StateView) + "[top]"
}

func (p *RotateDrawPile) StateView() string {
	return fmt.Sprintf("Draw Pile (ROTATE): %d cards, %s redeals", len(p.cards), p.redealsView()) +
		"\nBackPile: " + cardViews(p.backpile, (*deck.Card).StateView) + "[top]" +
		"\nDraw View: " + cardViews(p.cards, (*deck.Card).StateView) + "[top]" +
		"\nDrawn: " + cardViews(p.drawn, (*deck.Card).StateView) + "[top]"
}

// Copy returns a deep copy of the pile.
func (p *RotateDrawPile) Copy() *RotateDrawPile {
	return &RotateDrawPile{
		backpile:   copyCards(p.backpile),
		cards:      copyCards(p.cards),
		drawn:      copyCards(p.drawn),
		drawCount:  p.drawCount,
		viewCount:  p.viewCount,
		maxRedeals: p.maxRedeals,
		redeals:    p.redeals,
	}
}

func (p *RotateDrawPile) copyPile() Pile {
	return p.Copy()
}
