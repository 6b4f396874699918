package sgdl

import (
	"fmt"
	"math/rand"

	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/haldis/sgdl/deck"
)

// PilePos addresses a pile on the board. It is a closed sum:
// DrawPos or StackPos.
type PilePos interface {
	fmt.Stringer
	pileName() string
}

// DrawPos addresses the draw pile.
type DrawPos struct{}

func (DrawPos) String() string   { return DrawTag }
func (DrawPos) pileName() string { return DrawTag }

// StackPos addresses one instance of a named stack.
type StackPos struct {
	Name  string
	Index int
}

func (p StackPos) String() string   { return fmt.Sprintf("%s[%d]", p.Name, p.Index) }
func (p StackPos) pileName() string { return p.Name }

// RunPos addresses the suffix of a stack beginning at FromIndex.
type RunPos struct {
	Stack     StackPos
	FromIndex int
}

func (p RunPos) String() string { return fmt.Sprintf("%s:%d", p.Stack, p.FromIndex) }

// ruleKey identifies a rule by source and destination pile name.
type ruleKey struct {
	src  string
	dest string
}

func (k ruleKey) String() string { return k.src + " to " + k.dest }

// ruleTable maps (source, destination) name pairs to condition trees,
// preserving registration order and rejecting duplicate keys.
type ruleTable[T any] struct {
	keys  []ruleKey
	rules map[ruleKey]Condition[T]
}

func newRuleTable[T any]() *ruleTable[T] {
	return &ruleTable[T]{rules: map[ruleKey]Condition[T]{}}
}

func (rt *ruleTable[T]) define(src, dest string, c Condition[T]) error {
	key := ruleKey{src: src, dest: dest}
	if _, ok := rt.rules[key]; ok {
		return fmt.Errorf("rule already defined for %s; use AND or OR to combine conditions", key)
	}
	rt.keys = append(rt.keys, key)
	rt.rules[key] = c
	return nil
}

func (rt *ruleTable[T]) lookup(src, dest string) Condition[T] {
	return rt.rules[ruleKey{src: src, dest: dest}]
}

// Game drives a compiled rule description as a pure state machine. It
// is constructed empty, populated once by the compiler through the
// Define methods, then mutated only through the draw/move API.
//
// Gameplay-legality failures are reported as a false result so that
// dry-run probing and action enumeration work uniformly. Referencing
// a structurally nonexistent pile is a configuration error and
// panics.
type Game struct {
	name string
	id   string

	deck     *deck.Deck
	deckSet  bool
	drawPile Pile
	piles    map[string][]*Stack
	order    []string // pile names in registration order

	moveRules *ruleTable[MoveComponents]
	runRules  *ruleTable[RunComponents]
	autoMove  *ruleTable[MoveComponents]
	autoRun   *ruleTable[RunComponents]
	drawCond  Condition[BoardComponents]
	winCond   Condition[BoardComponents]

	log       logrus.FieldLogger
	quiet     bool // suppresses the rule trace during dry-run filtering
	resolving bool // true while the auto-move fixed point is running
}

// NewGame constructs an empty game. A nil logger falls back to the
// standard logrus logger.
func NewGame(name string, log logrus.FieldLogger) *Game {
	if log == nil {
		log = logrus.StandardLogger()
	}
	id := uuid.NewV4().String()
	return &Game{
		name:      name,
		id:        id,
		deck:      &deck.Deck{},
		piles:     map[string][]*Stack{},
		moveRules: newRuleTable[MoveComponents](),
		runRules:  newRuleTable[RunComponents](),
		autoMove:  newRuleTable[MoveComponents](),
		autoRun:   newRuleTable[RunComponents](),
		log:       log.WithFields(logrus.Fields{"game": name, "gid": id}),
	}
}

// Name returns the game's display name.
func (g *Game) Name() string { return g.name }

// ID returns the game instance's unique identifier.
func (g *Game) ID() string { return g.id }

func (g *Game) tracef(format string, args ...interface{}) {
	if g.quiet {
		return
	}
	g.log.Debugf(format, args...)
}

// ---------------------------------------------------------------------------
// Construction (compiler-facing); each definition rejects redefinition
// ---------------------------------------------------------------------------

// SetDeck installs the game's deck. It may only be called once, even
// after the first deck has been dealt out.
func (g *Game) SetDeck(d *deck.Deck) error {
	if g.deckSet {
		return fmt.Errorf("deck already defined for game %s", g.name)
	}
	g.deck = d
	g.deckSet = true
	return nil
}

// DefineDealDraw installs a deal-style draw pile over count cards
// taken from the deck, fanning out to the named target piles.
func (g *Game) DefineDealDraw(count int, targets []string) error {
	if g.drawPile != nil {
		return fmt.Errorf("draw pile already defined for game %s", g.name)
	}
	g.drawPile = NewDealPile(g.deck.Deal(count), targets)
	return nil
}

// DefineRotateDraw installs a rotate-style draw pile over count cards
// taken from the deck. viewCount and maxRedeals accept Unlimited.
func (g *Game) DefineRotateDraw(count, drawCount, viewCount, maxRedeals int) error {
	if g.drawPile != nil {
		return fmt.Errorf("draw pile already defined for game %s", g.name)
	}
	pile, err := NewRotateDrawPile(g.deck.Deal(count), drawCount, viewCount, maxRedeals)
	if err != nil {
		return err
	}
	if pile.CanStrandCards() {
		g.log.Warn("rotate draw pile has a capped view window and capped redeals; cards can become inaccessible")
	}
	g.drawPile = pile
	return nil
}

// DefinePile adds one stack instance under name. With a nil card list
// the cards are dealt off the deck; an explicit list must match
// count. The facing mode is applied once, here.
func (g *Game) DefinePile(name string, count int, facing Facing, cards []*deck.Card) error {
	if name == DrawTag {
		return fmt.Errorf("pile name %s is reserved for the draw pile", DrawTag)
	}
	if cards == nil {
		cards = g.deck.Deal(count)
	} else if len(cards) != count {
		return fmt.Errorf("pile %s declares %d cards but lists %d", name, count, len(cards))
	}
	stack := NewStack(cards, name, len(g.piles[name]))
	stack.ApplyFacing(facing)
	if _, ok := g.piles[name]; !ok {
		g.order = append(g.order, name)
	}
	g.piles[name] = append(g.piles[name], stack)
	return nil
}

// checkPileName verifies that a rule endpoint refers to a declared
// pile. The draw pile is a valid source but never a valid stack
// endpoint.
func (g *Game) checkPileName(name string, stackOnly bool) error {
	if name == DrawTag {
		if stackOnly {
			return fmt.Errorf("%s is not a stack pile", DrawTag)
		}
		if g.drawPile == nil {
			return fmt.Errorf("no draw pile defined")
		}
		return nil
	}
	if _, ok := g.piles[name]; !ok {
		return fmt.Errorf("pile %s is not declared", name)
	}
	return nil
}

// DefineMove registers a manual single-card move rule from src to
// dest.
func (g *Game) DefineMove(src, dest string, c Condition[MoveComponents]) error {
	if err := g.checkPileName(src, false); err != nil {
		return fmt.Errorf("move source: %w", err)
	}
	if err := g.checkPileName(dest, true); err != nil {
		return fmt.Errorf("move destination: %w", err)
	}
	return g.moveRules.define(src, dest, c)
}

// DefineRunMove registers a manual run move rule from src to dest.
func (g *Game) DefineRunMove(src, dest string, c Condition[RunComponents]) error {
	if err := g.checkPileName(src, true); err != nil {
		return fmt.Errorf("run move source: %w", err)
	}
	if err := g.checkPileName(dest, true); err != nil {
		return fmt.Errorf("run move destination: %w", err)
	}
	return g.runRules.define(src, dest, c)
}

// DefineAutoMove registers an automatic single-card move rule.
func (g *Game) DefineAutoMove(src, dest string, c Condition[MoveComponents]) error {
	if err := g.checkPileName(src, false); err != nil {
		return fmt.Errorf("auto move source: %w", err)
	}
	if err := g.checkPileName(dest, true); err != nil {
		return fmt.Errorf("auto move destination: %w", err)
	}
	return g.autoMove.define(src, dest, c)
}

// DefineAutoRunMove registers an automatic run move rule.
func (g *Game) DefineAutoRunMove(src, dest string, c Condition[RunComponents]) error {
	if err := g.checkPileName(src, true); err != nil {
		return fmt.Errorf("auto run move source: %w", err)
	}
	if err := g.checkPileName(dest, true); err != nil {
		return fmt.Errorf("auto run move destination: %w", err)
	}
	return g.autoRun.define(src, dest, c)
}

// DefineDrawCondition gates the draw action on a board condition.
func (g *Game) DefineDrawCondition(c Condition[BoardComponents]) error {
	if g.drawPile == nil {
		return fmt.Errorf("cannot define a draw condition without a draw pile")
	}
	if g.drawCond != nil {
		return fmt.Errorf("draw condition already defined; use AND or OR to combine conditions")
	}
	g.drawCond = c
	return nil
}

// DefineWinCondition installs the whole-board win condition.
func (g *Game) DefineWinCondition(c Condition[BoardComponents]) error {
	if g.winCond != nil {
		return fmt.Errorf("win condition already defined; use AND or OR to combine conditions")
	}
	g.winCond = c
	return nil
}

// ---------------------------------------------------------------------------
// Board access
// ---------------------------------------------------------------------------

func (g *Game) boardComponents() BoardComponents {
	return BoardComponents{Piles: g.piles, Draw: g.drawPile}
}

// stack resolves a stack position, or nil if the name or index does
// not exist.
func (g *Game) stack(pos StackPos) *Stack {
	stacks := g.piles[pos.Name]
	if pos.Index < 0 || pos.Index >= len(stacks) {
		return nil
	}
	return stacks[pos.Index]
}

// pile resolves any pile position, or nil if it does not exist.
func (g *Game) pile(pos PilePos) Pile {
	switch p := pos.(type) {
	case DrawPos:
		if g.drawPile == nil {
			return nil
		}
		return g.drawPile
	case StackPos:
		if s := g.stack(p); s != nil {
			return s
		}
		return nil
	}
	panic(fmt.Sprintf("sgdl: pile position type not recognized: %T", pos))
}

// allPiles returns every pile on the board, draw pile first, then
// stacks in registration order.
func (g *Game) allPiles() []Pile {
	var piles []Pile
	if g.drawPile != nil {
		piles = append(piles, g.drawPile)
	}
	for _, name := range g.order {
		for _, stack := range g.piles[name] {
			piles = append(piles, stack)
		}
	}
	return piles
}

// AllCards returns every card on the board by identity. No operation
// ever adds to or removes from this multiset.
func (g *Game) AllCards() []*deck.Card {
	var cards []*deck.Card
	for _, pile := range g.allPiles() {
		cards = append(cards, pile.AllCards()...)
	}
	return cards
}

// ---------------------------------------------------------------------------
// Moves, draw, win
// ---------------------------------------------------------------------------

// IsWin evaluates the win condition against the current board. It
// panics if the game has no win condition.
func (g *Game) IsWin() bool {
	if g.winCond == nil {
		panic(fmt.Sprintf("sgdl: no win condition defined for game %s", g.name))
	}
	components := g.boardComponents()
	g.tracef("WIN CONDITIONS:\n%s", g.winCond.Summary(&components))
	return g.winCond.Evaluate(components)
}

// Draw advances the draw pile: a deal pile fans one card out to each
// of its targets, a rotate pile rotates its window. With perform
// false it only probes feasibility. A performed draw triggers
// automatic-move resolution.
func (g *Game) Draw(perform bool) bool {
	if g.drawCond != nil {
		components := g.boardComponents()
		g.tracef("DRAW CONDITIONS:\n%s", g.drawCond.Summary(&components))
		if !g.drawCond.Evaluate(components) {
			return false
		}
	}
	var ok bool
	switch pile := g.drawPile.(type) {
	case nil:
		return false
	case *DealPile:
		ok = g.dealDraw(pile, perform)
	case *RotateDrawPile:
		ok = pile.Rotate(perform)
	default:
		panic(fmt.Sprintf("sgdl: draw pile type not recognized: %T", g.drawPile))
	}
	if ok && perform {
		g.resolveAutoMoves()
	}
	return ok
}

// dealDraw pushes one card to each target pile in order while the
// deal pile is non-empty. An empty deal pile is infeasible.
func (g *Game) dealDraw(pile *DealPile, perform bool) bool {
	if pile.Empty() {
		return false
	}
	if !perform {
		return true
	}
	for _, name := range pile.Targets() {
		for _, target := range g.piles[name] {
			if pile.Empty() {
				break
			}
			target.Add([]*deck.Card{pile.Get()})
		}
	}
	return true
}

// Move transfers the top card from src to dest if the registered move
// rule allows it. It returns false when no rule is registered for the
// name pair, the source is empty or its top is face-down, or the rule
// evaluates false. It panics on a structurally nonexistent position.
func (g *Game) Move(src PilePos, dest StackPos, perform bool) bool {
	return g.move(src, dest, perform, false)
}

func (g *Game) move(src PilePos, dest StackPos, perform, auto bool) bool {
	srcPile := g.pile(src)
	if srcPile == nil {
		panic(fmt.Sprintf("sgdl: cannot move from nonexistent pile %s", src))
	}
	destPile := g.stack(dest)
	if destPile == nil {
		panic(fmt.Sprintf("sgdl: cannot move to nonexistent pile %s", dest))
	}
	table := g.moveRules
	if auto {
		table = g.autoMove
	}
	condition := table.lookup(src.pileName(), dest.Name)
	if condition == nil || srcPile.Empty() || srcPile.Peek().FaceDown {
		return false
	}
	components := MoveComponents{Source: srcPile.Peek(), Destination: destPile}
	g.tracef("MOVE CONDITIONS %s to %s:\n%s", src, dest, condition.Summary(&components))
	if !condition.Evaluate(components) {
		return false
	}
	if perform {
		destPile.Add([]*deck.Card{srcPile.Get()})
		g.resolveAutoMoves()
	}
	return true
}

// MoveRun transfers the suffix run at src to dest if the registered
// run rule allows it. It returns false when no rule is registered,
// the start index is out of range, any card in the run is face-down,
// or the rule evaluates false. It panics on a structurally
// nonexistent pile.
func (g *Game) MoveRun(src RunPos, dest StackPos, perform bool) bool {
	return g.moveRun(src, dest, perform, false)
}

func (g *Game) moveRun(src RunPos, dest StackPos, perform, auto bool) bool {
	srcPile := g.stack(src.Stack)
	if srcPile == nil {
		panic(fmt.Sprintf("sgdl: cannot move run from nonexistent pile %s", src.Stack))
	}
	destPile := g.stack(dest)
	if destPile == nil {
		panic(fmt.Sprintf("sgdl: cannot move run to nonexistent pile %s", dest))
	}
	table := g.runRules
	if auto {
		table = g.autoRun
	}
	condition := table.lookup(src.Stack.Name, dest.Name)
	if condition == nil || src.FromIndex < 0 || src.FromIndex >= srcPile.Len() {
		return false
	}
	run := srcPile.PeekMany(src.FromIndex)
	for _, card := range run {
		if card.FaceDown {
			return false
		}
	}
	components := RunComponents{Run: run, Destination: destPile}
	g.tracef("MOVE_STACK CONDITIONS %s to %s:\n%s", src, dest, condition.Summary(&components))
	if !condition.Evaluate(components) {
		return false
	}
	if perform {
		destPile.Add(srcPile.GetMany(src.FromIndex))
		g.resolveAutoMoves()
	}
	return true
}

// resolveAutoMoves runs the automatic-move fixed point: while any
// registered auto rule has a legal candidate, perform the first one
// (rule registration order, then source instance, then destination
// instance, then ascending run index) and re-enumerate. The loop is
// bounded by a repeated-board-state check so that mutually
// re-enabling auto rules terminate instead of cycling forever.
func (g *Game) resolveAutoMoves() {
	if g.resolving {
		return
	}
	g.resolving = true
	defer func() { g.resolving = false }()

	seen := map[string]bool{}
	for {
		var candidates []Action
		for _, key := range g.autoMove.keys {
			candidates = append(candidates, g.moveCandidates(key.src, key.dest)...)
		}
		for _, key := range g.autoRun.keys {
			candidates = append(candidates, g.runCandidates(key.src, key.dest)...)
		}
		candidates = g.filterValid(candidates, true)
		if len(candidates) == 0 {
			return
		}
		state := g.StateView()
		if seen[state] {
			g.log.Warn("auto-move resolution revisited a board state; stopping")
			return
		}
		seen[state] = true
		g.log.Infof("valid auto-action found: %s", candidates[0])
		g.act(candidates[0], true, true)
	}
}

// ---------------------------------------------------------------------------
// Copy and scramble
// ---------------------------------------------------------------------------

// Copy returns a fully independent deep copy of the board state. Rule
// tables and condition trees are shared by reference; they are
// immutable once built.
func (g *Game) Copy() *Game {
	copied := &Game{
		name:      g.name,
		id:        g.id,
		deck:      g.deck.Copy(),
		deckSet:   g.deckSet,
		piles:     map[string][]*Stack{},
		order:     append([]string{}, g.order...),
		moveRules: g.moveRules,
		runRules:  g.runRules,
		autoMove:  g.autoMove,
		autoRun:   g.autoRun,
		drawCond:  g.drawCond,
		winCond:   g.winCond,
		log:       g.log,
	}
	if g.drawPile != nil {
		copied.drawPile = g.drawPile.copyPile()
	}
	for name, stacks := range g.piles {
		copiedStacks := make([]*Stack, len(stacks))
		for i, stack := range stacks {
			copiedStacks[i] = stack.Copy()
		}
		copied.piles[name] = copiedStacks
	}
	return copied
}

// cardSlot addresses one card position inside a pile's backing slice.
type cardSlot struct {
	cards []*deck.Card
	index int
}

// Scramble randomly permutes every card that no player has
// legitimately seen: the undealt draw reserve (a rotate backpile
// before its first redeal, or a deal pile's contents) and every
// face-down card in every stack. Pile structure and face orientation
// are untouched, so an external searcher cannot exploit knowledge of
// hidden cards.
func (g *Game) Scramble(seed int64) {
	var slots []cardSlot
	switch pile := g.drawPile.(type) {
	case *RotateDrawPile:
		if pile.redeals == 0 {
			for i := range pile.backpile {
				slots = append(slots, cardSlot{cards: pile.backpile, index: i})
			}
		}
	case *DealPile:
		for i := range pile.cards {
			slots = append(slots, cardSlot{cards: pile.cards, index: i})
		}
	}
	for _, name := range g.order {
		for _, stack := range g.piles[name] {
			for i, card := range stack.cards {
				if card.FaceDown {
					slots = append(slots, cardSlot{cards: stack.cards, index: i})
				}
			}
		}
	}
	cards := make([]*deck.Card, len(slots))
	for i, slot := range slots {
		cards[i] = slot.cards[slot.index]
	}
	perm := rand.New(rand.NewSource(seed)).Perm(len(slots))
	for i, slot := range slots {
		slot.cards[slot.index] = cards[perm[i]]
	}
}

// ---------------------------------------------------------------------------
// Views
// ---------------------------------------------------------------------------

// GameView renders the board as visible to a player: face-down cards
// are opaque. This is the only information an agent with no special
// knowledge may use.
func (g *Game) GameView() string {
	view := g.name + "\n"
	for _, pile := range g.allPiles() {
		view += pile.GameView() + "\n"
	}
	return view
}

// StateView renders the board with full information, including
// face-down identities; for auditing and testing, never for
// decision-making.
func (g *Game) StateView() string {
	view := g.name + "\n"
	for _, pile := range g.allPiles() {
		view += pile.StateView() + "\n"
	}
	return view
}
