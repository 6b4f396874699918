// Package sgdl compiles declarative solitaire rule descriptions and
// drives the resulting games as pure state machines.
package sgdl

import (
	"fmt"
	"strings"

	"github.com/haldis/sgdl/deck"
)

// Pile is the capability shared by every pile of cards. Piles only
// provide primitive card movement; all legality checking happens in
// Game.
type Pile interface {
	// Get removes and returns the top card. It panics on an empty
	// pile; callers probe with Empty first.
	Get() *deck.Card
	// Peek returns the top card without removing it. Panics on an
	// empty pile.
	Peek() *deck.Card
	Empty() bool
	Len() int
	// AllCards returns every card the pile owns, including any not
	// currently visible.
	AllCards() []*deck.Card
	// Tag identifies the pile in views and action strings.
	Tag() string
	GameView() string
	StateView() string

	copyPile() Pile
}

func cardViews(cards []*deck.Card, view func(*deck.Card) string) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = view(c)
	}
	return strings.Join(parts, ", ")
}

func copyCards(cards []*deck.Card) []*deck.Card {
	copied := make([]*deck.Card, len(cards))
	for i, c := range cards {
		copied[i] = c.Copy()
	}
	return copied
}

// Facing selects the initial face orientation of a stack's cards,
// applied once at construction.
type Facing int

const (
	// FaceLast turns only the top card face-up.
	FaceLast Facing = iota
	// FaceAll turns every card face-up.
	FaceAll
	// FaceAlternateTop turns every other card face-up, starting from
	// the top.
	FaceAlternateTop
)

// Stack is a run-addressable LIFO pile. Whenever the previous top
// card is removed and a new top is exposed, the new top is turned
// face-up.
type Stack struct {
	name  string
	index int
	cards []*deck.Card
}

// NewStack constructs a stack over the given cards. index
// distinguishes multiple stacks sharing one name.
func NewStack(cards []*deck.Card, name string, index int) *Stack {
	return &Stack{name: name, index: index, cards: cards}
}

// ApplyFacing sets the initial face orientation of the stack.
func (s *Stack) ApplyFacing(f Facing) {
	switch f {
	case FaceAll:
		for _, c := range s.cards {
			c.Face(true)
		}
	case FaceLast:
		if !s.Empty() {
			s.Peek().Face(true)
		}
	case FaceAlternateTop:
		up := true
		for i := len(s.cards) - 1; i >= 0; i-- {
			if up {
				s.cards[i].Face(true)
			}
			up = !up
		}
	}
}

// Get removes and returns the top card, turning the newly exposed top
// face-up.
func (s *Stack) Get() *deck.Card {
	if s.Empty() {
		panic(fmt.Sprintf("sgdl: get from empty pile %s", s.Tag()))
	}
	top := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	if !s.Empty() {
		s.Peek().Face(true)
	}
	return top
}

// Peek returns the top card without removing it.
func (s *Stack) Peek() *deck.Card {
	if s.Empty() {
		panic(fmt.Sprintf("sgdl: peek at empty pile %s", s.Tag()))
	}
	return s.cards[len(s.cards)-1]
}

// PeekMany returns the suffix of cards beginning at from, without
// removing them. It panics if from is out of range.
func (s *Stack) PeekMany(from int) []*deck.Card {
	if from < 0 || from >= s.Len() {
		panic(fmt.Sprintf("sgdl: run index %d out of range on %s", from, s.Tag()))
	}
	return s.cards[from:]
}

// GetMany removes and returns the suffix of cards beginning at from,
// turning the newly exposed top face-up if any cards remain.
func (s *Stack) GetMany(from int) []*deck.Card {
	run := s.PeekMany(from)
	s.cards = s.cards[:from]
	if !s.Empty() {
		s.Peek().Face(true)
	}
	return run
}

// PopFrom removes and returns the suffix beginning at index without
// exposing the new top. Callers that need the face invariant use
// GetMany.
func (s *Stack) PopFrom(index int) []*deck.Card {
	if index < 0 || index >= s.Len() {
		panic(fmt.Sprintf("sgdl: pop index %d out of range on %s", index, s.Tag()))
	}
	popped := s.cards[index:]
	s.cards = s.cards[:index]
	return popped
}

// Add appends cards to the top of the stack, preserving each card's
// face state. Callers flip cards before adding where a rule requires
// it.
func (s *Stack) Add(cards []*deck.Card) {
	s.cards = append(s.cards, cards...)
}

func (s *Stack) Empty() bool {
	return len(s.cards) == 0
}

func (s *Stack) Len() int {
	return len(s.cards)
}

func (s *Stack) AllCards() []*deck.Card {
	return s.cards
}

// Name returns the stack's pile name without the instance index.
func (s *Stack) Name() string {
	return s.name
}

// Index returns the stack's instance index within its name.
func (s *Stack) Index() int {
	return s.index
}

func (s *Stack) Tag() string {
	return fmt.Sprintf("%s[%d]", s.name, s.index)
}

func (s *Stack) GameView() string {
	return s.Tag() + ": " + cardViews(s.cards, (*deck.Card).GameView)
}

func (s *Stack) StateView() string {
	return s.Tag() + ": " + cardViews(s.cards, (*deck.Card).StateView)
}

// Copy returns a deep copy of the stack.
func (s *Stack) Copy() *Stack {
	return NewStack(copyCards(s.cards), s.name, s.index)
}

func (s *Stack) copyPile() Pile {
	return s.Copy()
}
