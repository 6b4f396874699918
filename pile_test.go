package sgdl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	utils "github.com/haldis/sgdl/internal"

	"github.com/haldis/sgdl/deck"
)

func cardsDown(literals ...string) []*deck.Card {
	cards := make([]*deck.Card, len(literals))
	for i, l := range literals {
		card, err := parseCard(l)
		if err != nil {
			panic(err)
		}
		card.Face(false)
		cards[i] = card
	}
	return cards
}

func cardsUp(literals ...string) []*deck.Card {
	cards := cardsDown(literals...)
	for _, c := range cards {
		c.Face(true)
	}
	return cards
}

func TestStackFacing(t *testing.T) {
	facedown := func(s *Stack) []bool {
		flags := make([]bool, s.Len())
		for i, c := range s.AllCards() {
			flags[i] = c.FaceDown
		}
		return flags
	}

	tt := []struct {
		name   string
		facing Facing
		want   []bool
	}{
		{"FACE_LAST", FaceLast, []bool{true, true, true, false}},
		{"FACE_ALL", FaceAll, []bool{false, false, false, false}},
		{"FACE_ALTERNATE_TOP", FaceAlternateTop, []bool{true, false, true, false}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			stack := NewStack(cardsDown("S2", "S3", "S4", "S5"), "C", 0)
			stack.ApplyFacing(tc.facing)
			utils.AssertDeepEqual(t, facedown(stack), tc.want)
		})
	}
}

func TestStackGetExposesNewTop(t *testing.T) {
	stack := NewStack(cardsDown("S2", "S3", "S4"), "C", 0)
	stack.ApplyFacing(FaceLast)

	top := stack.Get()
	assert.Equal(t, "4S", top.String())
	assert.False(t, stack.Peek().FaceDown)
	assert.Equal(t, 2, stack.Len())
}

func TestStackGetMany(t *testing.T) {
	stack := NewStack(cardsDown("S2", "S3", "S4", "S5"), "C", 0)
	stack.ApplyFacing(FaceLast)

	run := stack.GetMany(2)
	assert.Len(t, run, 2)
	assert.Equal(t, "4S", run[0].String())
	assert.Equal(t, 2, stack.Len())
	assert.False(t, stack.Peek().FaceDown)

	// removing the whole stack leaves nothing to expose
	rest := stack.GetMany(0)
	assert.Len(t, rest, 2)
	assert.True(t, stack.Empty())
}

func TestStackPeekManyDoesNotMutate(t *testing.T) {
	stack := NewStack(cardsUp("S2", "S3", "S4"), "C", 0)

	run := stack.PeekMany(1)
	assert.Len(t, run, 2)
	assert.Equal(t, 3, stack.Len())

	assert.Panics(t, func() { stack.PeekMany(3) })
}

func TestStackPopFromKeepsFaceState(t *testing.T) {
	stack := NewStack(cardsDown("S2", "S3", "S4"), "C", 0)

	popped := stack.PopFrom(1)
	assert.Len(t, popped, 2)
	// PopFrom does not expose the new top
	assert.True(t, stack.Peek().FaceDown)
}

func TestStackAddPreservesFaceState(t *testing.T) {
	stack := NewStack(nil, "C", 0)
	down := cardsDown("S2")
	up := cardsUp("S3")

	stack.Add(down)
	stack.Add(up)

	assert.Equal(t, 2, stack.Len())
	utils.AssertTrue(t, stack.AllCards()[0].FaceDown)
	utils.AssertFalse(t, stack.AllCards()[1].FaceDown)
}

func TestStackPanicsOnEmpty(t *testing.T) {
	stack := NewStack(nil, "C", 0)
	assert.Panics(t, func() { stack.Get() })
	assert.Panics(t, func() { stack.Peek() })
}

func TestStackTagAndViews(t *testing.T) {
	stack := NewStack(cardsDown("S2", "HK"), "C", 1)
	stack.ApplyFacing(FaceLast)

	assert.Equal(t, "C[1]", stack.Tag())
	assert.Equal(t, "C[1]: [?], KH", stack.GameView())
	assert.Equal(t, "C[1]: [2S], KH", stack.StateView())
}

func TestStackCopyIsIndependent(t *testing.T) {
	stack := NewStack(cardsUp("S2", "S3"), "C", 0)
	copied := stack.Copy()

	copied.Get()
	assert.Equal(t, 2, stack.Len())

	copied.AllCards()[0].Face(false)
	assert.False(t, stack.AllCards()[0].FaceDown)
}
