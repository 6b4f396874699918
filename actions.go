package sgdl

import (
	"fmt"
	"strconv"
	"strings"
)

// Verb identifies one of the three action kinds an external actor may
// request.
type Verb int

const (
	VerbDraw Verb = iota
	VerbMove
	VerbMoveRun
)

func (v Verb) String() string {
	switch v {
	case VerbDraw:
		return "draw"
	case VerbMove:
		return "move"
	case VerbMoveRun:
		return "move_stack"
	}
	return "?"
}

// Action is one externally addressable game operation. Its String
// form is the wire protocol shared with CLIs, GUIs and search
// players:
//
//	draw
//	move <pilePos> <stackPos>
//	move_stack <stackPos>:<fromIndex> <stackPos>
type Action struct {
	Verb      Verb
	Src       PilePos // nil for draw
	FromIndex int     // move_stack only
	Dest      StackPos
}

func (a Action) String() string {
	switch a.Verb {
	case VerbDraw:
		return "draw"
	case VerbMove:
		return fmt.Sprintf("move %s %s", a.Src, a.Dest)
	case VerbMoveRun:
		return fmt.Sprintf("move_stack %s:%d %s", a.Src, a.FromIndex, a.Dest)
	}
	return "?"
}

func parseStackPos(s string) (StackPos, error) {
	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return StackPos{}, fmt.Errorf("stack position not recognized: %q", s)
	}
	index, err := strconv.Atoi(s[open+1 : len(s)-1])
	if err != nil {
		return StackPos{}, fmt.Errorf("stack position index not recognized: %q", s)
	}
	return StackPos{Name: s[:open], Index: index}, nil
}

func parsePilePos(s string) (PilePos, error) {
	if s == DrawTag {
		return DrawPos{}, nil
	}
	return parseStackPos(s)
}

func parseRunPos(s string) (RunPos, error) {
	colon := strings.LastIndexByte(s, ':')
	if colon < 0 {
		return RunPos{}, fmt.Errorf("run position not recognized: %q", s)
	}
	stack, err := parseStackPos(s[:colon])
	if err != nil {
		return RunPos{}, err
	}
	from, err := strconv.Atoi(s[colon+1:])
	if err != nil {
		return RunPos{}, fmt.Errorf("run position index not recognized: %q", s)
	}
	return RunPos{Stack: stack, FromIndex: from}, nil
}

// ParseAction parses the wire form of an action. Unknown verbs and
// malformed positions are rejected.
func ParseAction(s string) (Action, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return Action{}, fmt.Errorf("empty action")
	}
	switch parts[0] {
	case "draw":
		if len(parts) != 1 {
			return Action{}, fmt.Errorf("draw takes no arguments: %q", s)
		}
		return Action{Verb: VerbDraw}, nil
	case "move":
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("move takes a source and a destination: %q", s)
		}
		src, err := parsePilePos(parts[1])
		if err != nil {
			return Action{}, err
		}
		dest, err := parseStackPos(parts[2])
		if err != nil {
			return Action{}, err
		}
		return Action{Verb: VerbMove, Src: src, Dest: dest}, nil
	case "move_stack":
		if len(parts) != 3 {
			return Action{}, fmt.Errorf("move_stack takes a source run and a destination: %q", s)
		}
		src, err := parseRunPos(parts[1])
		if err != nil {
			return Action{}, err
		}
		dest, err := parseStackPos(parts[2])
		if err != nil {
			return Action{}, err
		}
		return Action{Verb: VerbMoveRun, Src: src.Stack, FromIndex: src.FromIndex, Dest: dest}, nil
	}
	return Action{}, fmt.Errorf("action not recognized: %q", s)
}

// Act performs (or, with perform false, dry-runs) an action. Dry runs
// never mutate any state.
func (g *Game) Act(a Action, perform bool) bool {
	return g.act(a, perform, false)
}

// PerformAction parses and applies an action string.
func (g *Game) PerformAction(s string, perform bool) (bool, error) {
	action, err := ParseAction(s)
	if err != nil {
		return false, err
	}
	return g.Act(action, perform), nil
}

func (g *Game) act(a Action, perform, auto bool) bool {
	switch a.Verb {
	case VerbDraw:
		return g.Draw(perform)
	case VerbMove:
		return g.move(a.Src, a.Dest, perform, auto)
	case VerbMoveRun:
		stack, ok := a.Src.(StackPos)
		if !ok {
			panic(fmt.Sprintf("sgdl: move_stack from non-stack position %v", a.Src))
		}
		return g.moveRun(RunPos{Stack: stack, FromIndex: a.FromIndex}, a.Dest, perform, auto)
	}
	panic(fmt.Sprintf("sgdl: action verb not recognized: %d", a.Verb))
}

// stackPositions lists the positions of every stack instance sharing
// a name, in instance order.
func (g *Game) stackPositions(name string) []StackPos {
	stacks := g.piles[name]
	positions := make([]StackPos, len(stacks))
	for i, stack := range stacks {
		positions[i] = StackPos{Name: name, Index: stack.Index()}
	}
	return positions
}

// pilePositions lists the positions a name can address as a move
// source.
func (g *Game) pilePositions(name string) []PilePos {
	if name == DrawTag {
		if g.drawPile == nil {
			return nil
		}
		return []PilePos{DrawPos{}}
	}
	var positions []PilePos
	for _, pos := range g.stackPositions(name) {
		positions = append(positions, pos)
	}
	return positions
}

// moveCandidates enumerates every single-card move over the concrete
// pile instances of a (source, destination) name pair, excluding a
// pile moving to itself.
func (g *Game) moveCandidates(srcName, destName string) []Action {
	var actions []Action
	for _, src := range g.pilePositions(srcName) {
		for _, dest := range g.stackPositions(destName) {
			if src.String() == dest.String() {
				continue
			}
			actions = append(actions, Action{Verb: VerbMove, Src: src, Dest: dest})
		}
	}
	return actions
}

// runCandidates enumerates every run move over the concrete pile
// instances of a (source, destination) name pair. Runs start at
// indices 0..len-2 so a run is always at least two cards.
func (g *Game) runCandidates(srcName, destName string) []Action {
	var actions []Action
	for _, src := range g.stackPositions(srcName) {
		stack := g.stack(src)
		for _, dest := range g.stackPositions(destName) {
			if src == dest {
				continue
			}
			for i := 0; i < stack.Len()-1; i++ {
				actions = append(actions, Action{Verb: VerbMoveRun, Src: src, FromIndex: i, Dest: dest})
			}
		}
	}
	return actions
}

// filterValid keeps the actions whose dry run reports success,
// silencing the rule trace while probing.
func (g *Game) filterValid(actions []Action, auto bool) []Action {
	wasQuiet := g.quiet
	g.quiet = true
	defer func() { g.quiet = wasQuiet }()

	var valid []Action
	for _, action := range actions {
		if g.act(action, false, auto) {
			valid = append(valid, action)
		}
	}
	return valid
}

// PossibleActions enumerates the draw action plus the full
// instance/position cross product of manual move and run rules. With
// onlyValid true the list is filtered to the actions whose dry run
// currently succeeds.
func (g *Game) PossibleActions(onlyValid bool) []Action {
	var actions []Action
	if g.drawPile != nil {
		actions = append(actions, Action{Verb: VerbDraw})
	}
	srcNames := append(append([]string{}, g.order...), DrawTag)
	for _, src := range srcNames {
		for _, dest := range g.order {
			actions = append(actions, g.moveCandidates(src, dest)...)
			actions = append(actions, g.runCandidates(src, dest)...)
		}
	}
	if onlyValid {
		return g.filterValid(actions, false)
	}
	return actions
}
