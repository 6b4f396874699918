package sgdl

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/haldis/sgdl/deck"
)

// The rule-description source is line and section oriented. Sections
// are introduced by a marker line ($cards, $initial, $moves, $auto,
// $win), comments run from # to end of line, and AND/OR lines open a
// nested block of lines indented by one extra 4-space unit. A single
// non-nesting {a, b, c} list is kept as one token.

const blockIndent = "    "

// Compile builds a runnable game from rule-description source text.
// The seed fixes the deck shuffle, so compiling the same source with
// the same seed is fully deterministic.
func Compile(source string, seed int64) (*Game, error) {
	return CompileWithLogger(source, seed, nil)
}

// CompileFile compiles the rule description stored at path.
func CompileFile(path string, seed int64) (*Game, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(string(source), seed)
}

// CompileWithLogger compiles source text, attaching the given logger
// to the game.
func CompileWithLogger(source string, seed int64, log logrus.FieldLogger) (*Game, error) {
	lines := sourceLines(source)
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty game description")
	}
	game := NewGame(strings.TrimSpace(lines[0]), log)
	for _, section := range splitSections(lines[1:]) {
		if err := applySection(game, section, seed); err != nil {
			return nil, fmt.Errorf("section %s: %w", strings.TrimSpace(section[0]), err)
		}
	}
	return game, nil
}

// sourceLines strips comments and drops blank lines, preserving
// leading indentation on the rest.
func sourceLines(source string) []string {
	var lines []string
	for _, line := range strings.Split(source, "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitSections groups lines into sections, each beginning with a $
// marker line.
func splitSections(lines []string) [][]string {
	var sections [][]string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "$") {
			sections = append(sections, []string{line})
			continue
		}
		if len(sections) == 0 {
			continue
		}
		sections[len(sections)-1] = append(sections[len(sections)-1], line)
	}
	return sections
}

func applySection(game *Game, section []string, seed int64) error {
	title := strings.TrimSpace(section[0])
	body := section[1:]
	switch title {
	case "$cards":
		return applyDeck(game, body, seed)
	case "$initial":
		return applyInitial(game, body)
	case "$moves":
		return applyMoves(game, body, false)
	case "$auto":
		return applyMoves(game, body, true)
	case "$win":
		return applyWin(game, body)
	}
	return fmt.Errorf("section title not recognized: %q", title)
}

// splitLine tokenizes a line on whitespace, keeping one non-nesting
// {a, b, c} list as a single token.
func splitLine(line string) ([]string, error) {
	parts := []string{""}
	depth := 0
	for _, r := range line {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth < 0 || depth > 1 {
			return nil, fmt.Errorf("line contains an invalid list: %q", line)
		}
		if (r == ' ' || r == '\t') && depth == 0 {
			parts = append(parts, "")
		} else {
			parts[len(parts)-1] += string(r)
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("line contains an unclosed list: %q", line)
	}
	var tokens []string
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens, nil
}

// parseItems parses either a {a, b, c} list token or a single item.
func parseItems[T any](token string, parse func(string) (T, error)) ([]T, error) {
	if strings.HasPrefix(token, "{") && strings.HasSuffix(token, "}") {
		var items []T
		for _, part := range strings.Split(token[1:len(token)-1], ",") {
			item, err := parse(strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("empty list: %q", token)
		}
		return items, nil
	}
	item, err := parse(token)
	if err != nil {
		return nil, err
	}
	return []T{item}, nil
}

func parseName(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty pile name")
	}
	return s, nil
}

func parseNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as a number", s)
	}
	return n, nil
}

// parseSuitName parses a long suit name, as used in $cards and SRC
// Suit conditions.
func parseSuitName(s string) (deck.Suit, error) {
	switch s {
	case "SPADES":
		return deck.Spades, nil
	case "HEARTS":
		return deck.Hearts, nil
	case "CLUBS":
		return deck.Clubs, nil
	case "DIAMONDS":
		return deck.Diamonds, nil
	}
	return 0, fmt.Errorf("suit not recognized: %q", s)
}

// parseSuitLetter parses a one-letter suit, as used in card literals.
func parseSuitLetter(s string) (deck.Suit, error) {
	switch s {
	case "S":
		return deck.Spades, nil
	case "H":
		return deck.Hearts, nil
	case "C":
		return deck.Clubs, nil
	case "D":
		return deck.Diamonds, nil
	}
	return 0, fmt.Errorf("suit not recognized: %q", s)
}

// parseRank accepts 1..10 and the court letters J, Q, K.
func parseRank(s string) (int, error) {
	switch s {
	case "K":
		return 13, nil
	case "Q":
		return 12, nil
	case "J":
		return 11, nil
	}
	rank, err := strconv.Atoi(s)
	if err != nil || rank < 1 || rank > 10 {
		return 0, fmt.Errorf("rank not in range [1, 10] or J/Q/K: %q", s)
	}
	return rank, nil
}

// parseCard parses a card literal such as S5 or HK, face-up.
func parseCard(s string) (*deck.Card, error) {
	if len(s) < 2 {
		return nil, fmt.Errorf("card not recognized: %q", s)
	}
	suit, err := parseSuitLetter(s[:1])
	if err != nil {
		return nil, err
	}
	rank, err := parseRank(s[1:])
	if err != nil {
		return nil, err
	}
	return deck.NewCard(suit, rank, false), nil
}

func parseFacing(s string) (Facing, bool) {
	switch s {
	case "FACE_LAST":
		return FaceLast, true
	case "FACE_ALL":
		return FaceAll, true
	case "FACE_ALTERNATE_LAST", "FACE_ALTERNATE_TOP":
		return FaceAlternateTop, true
	}
	return 0, false
}

// parseLimit parses a rotate pile parameter: a positive number or U
// for unlimited. Only the literal U maps to the Unlimited sentinel; a
// written 0 is a structural error, not an unlimited cap.
func parseLimit(s string) (int, error) {
	if s == "U" {
		return Unlimited, nil
	}
	n, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("limit must be positive or U: %q", s)
	}
	return n, nil
}

func applyDeck(game *Game, body []string, seed int64) error {
	if len(body) != 1 {
		return fmt.Errorf("deck description should be a single line")
	}
	tokens, err := splitLine(body[0])
	if err != nil {
		return err
	}
	if len(tokens) != 3 || tokens[0] != "DECK" {
		return fmt.Errorf("deck description not recognized: %q", body[0])
	}
	times, err := parseNumber(tokens[1])
	if err != nil {
		return err
	}
	suits, err := parseItems(tokens[2], parseSuitName)
	if err != nil {
		return err
	}
	d := deck.New(times, suits)
	if err := game.SetDeck(d); err != nil {
		return err
	}
	d.Shuffle(seed)
	return nil
}

func applyInitial(game *Game, body []string) error {
	for _, line := range body {
		tokens, err := splitLine(line)
		if err != nil {
			return err
		}
		if len(tokens) >= 3 && tokens[0] == DrawTag {
			if err := applyDrawPile(game, tokens, line); err != nil {
				return err
			}
			continue
		}
		if err := applyStack(game, tokens, line); err != nil {
			return err
		}
	}
	return nil
}

func applyDrawPile(game *Game, tokens []string, line string) error {
	count, err := parseNumber(tokens[1])
	if err != nil {
		return err
	}
	switch tokens[2] {
	case "DEAL":
		if len(tokens) != 4 {
			return fmt.Errorf("deal draw pile not recognized: %q", line)
		}
		targets, err := parseItems(tokens[3], parseName)
		if err != nil {
			return err
		}
		return game.DefineDealDraw(count, targets)
	case "ROTATE":
		if len(tokens) != 6 {
			return fmt.Errorf("rotate draw pile not recognized: %q", line)
		}
		drawCount, err := parseNumber(tokens[3])
		if err != nil {
			return err
		}
		viewCount, err := parseLimit(tokens[4])
		if err != nil {
			return err
		}
		maxRedeals, err := parseLimit(tokens[5])
		if err != nil {
			return err
		}
		return game.DefineRotateDraw(count, drawCount, viewCount, maxRedeals)
	}
	return fmt.Errorf("draw pile kind not recognized: %q", line)
}

func applyStack(game *Game, tokens []string, line string) error {
	if len(tokens) < 2 || len(tokens) > 4 {
		return fmt.Errorf("pile description not recognized: %q", line)
	}
	name := tokens[0]
	count, err := parseNumber(tokens[1])
	if err != nil {
		return err
	}
	facing := FaceLast
	rest := tokens[2:]
	if len(rest) > 0 {
		if f, ok := parseFacing(rest[0]); ok {
			facing = f
			rest = rest[1:]
		}
	}
	var cards []*deck.Card
	switch len(rest) {
	case 0:
	case 1:
		cards, err = parseItems(rest[0], parseCard)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("pile description not recognized: %q", line)
	}
	return game.DefinePile(name, count, facing, cards)
}

// extractBlock consumes the contiguous run of lines indented one
// block unit deeper, stripping that unit.
func extractBlock(lines []string) (block, rest []string) {
	for _, line := range lines {
		if !strings.HasPrefix(line, blockIndent) {
			break
		}
		block = append(block, line[len(blockIndent):])
	}
	return block, lines[len(block):]
}

// extractCondition parses one condition: either a leaf line or an
// AND/OR line followed by an indented block of nested conditions.
func extractCondition[T any](lines []string, parseLeaf func(string) (Condition[T], error)) (Condition[T], []string, error) {
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("missing condition")
	}
	if lines[0] == "AND" || lines[0] == "OR" {
		tree := NewAnd[T]()
		if lines[0] == "OR" {
			tree = NewOr[T]()
		}
		block, rest := extractBlock(lines[1:])
		if len(block) == 0 {
			return nil, nil, fmt.Errorf("%s has no nested conditions", lines[0])
		}
		for len(block) > 0 {
			var sub Condition[T]
			var err error
			sub, block, err = extractCondition(block, parseLeaf)
			if err != nil {
				return nil, nil, err
			}
			tree.Add(sub)
		}
		return tree, rest, nil
	}
	leaf, err := parseLeaf(lines[0])
	if err != nil {
		return nil, nil, err
	}
	return leaf, lines[1:], nil
}

func parseMoveLeaf(line string) (Condition[MoveComponents], error) {
	tokens, err := splitLine(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) < 2 {
		return nil, fmt.Errorf("condition not recognized: %q", line)
	}
	switch tokens[0] + " " + tokens[1] {
	case "DEST Empty":
		if len(tokens) != 2 {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		return DestEmptyCondition{}, nil
	case "DEST Size":
		if len(tokens) != 4 {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		op, err := ParseNumberOp(tokens[2])
		if err != nil {
			return nil, err
		}
		threshold, err := parseNumber(tokens[3])
		if err != nil {
			return nil, err
		}
		return DestSizeCondition{Op: op, Threshold: threshold}, nil
	case "DESTSRC Suit":
		if len(tokens) != 3 {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		mode, err := ParseSuitPairMode(tokens[2])
		if err != nil {
			return nil, err
		}
		return DestSrcSuitCondition{Mode: mode}, nil
	case "DESTSRC Rank":
		if len(tokens) != 3 {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		mode, err := ParseRankPairMode(tokens[2])
		if err != nil {
			return nil, err
		}
		return DestSrcRankCondition{Mode: mode}, nil
	case "SRC Suit":
		if len(tokens) != 3 {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		suits, err := parseItems(tokens[2], parseSuitName)
		if err != nil {
			return nil, err
		}
		return SrcSuitCondition{Suits: suits}, nil
	case "SRC Rank":
		if len(tokens) != 3 {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		ranks, err := parseItems(tokens[2], parseRank)
		if err != nil {
			return nil, err
		}
		return SrcRankCondition{Ranks: ranks}, nil
	}
	return nil, fmt.Errorf("condition not recognized: %q", line)
}

func parseRunLeaf(line string) (Condition[RunComponents], error) {
	tokens, err := splitLine(line)
	if err != nil {
		return nil, err
	}
	if len(tokens) >= 2 && tokens[0] == "SRCSTACK" {
		switch tokens[1] {
		case "Size":
			if len(tokens) != 4 {
				return nil, fmt.Errorf("condition not recognized: %q", line)
			}
			op, err := ParseNumberOp(tokens[2])
			if err != nil {
				return nil, err
			}
			threshold, err := parseNumber(tokens[3])
			if err != nil {
				return nil, err
			}
			return RunSizeCondition{Op: op, Threshold: threshold}, nil
		case "Suit":
			if len(tokens) != 3 {
				return nil, fmt.Errorf("condition not recognized: %q", line)
			}
			mode, err := ParseSuitPairMode(tokens[2])
			if err != nil {
				return nil, err
			}
			return RunSuitCondition{Mode: mode}, nil
		case "Rank":
			if len(tokens) != 3 {
				return nil, fmt.Errorf("condition not recognized: %q", line)
			}
			mode, err := ParseRankPairMode(tokens[2])
			if err != nil {
				return nil, err
			}
			return RunRankCondition{Mode: mode}, nil
		}
		return nil, fmt.Errorf("condition not recognized: %q", line)
	}
	leaf, err := parseMoveLeaf(line)
	if err != nil {
		return nil, err
	}
	return LiftMoveCondition(leaf), nil
}

// parseBoardLeaf validates pile names against the game being built,
// so it closes over it.
func parseBoardLeaf(game *Game) func(string) (Condition[BoardComponents], error) {
	return func(line string) (Condition[BoardComponents], error) {
		tokens, err := splitLine(line)
		if err != nil {
			return nil, err
		}
		if len(tokens) < 4 || tokens[0] != "PILE" {
			return nil, fmt.Errorf("condition not recognized: %q", line)
		}
		quant, err := ParseQuantifier(tokens[1])
		if err != nil {
			return nil, err
		}
		names, err := parseItems(tokens[2], parseName)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if name == DrawTag {
				if game.drawPile == nil {
					return nil, fmt.Errorf("cannot define a pile condition on a nonexistent draw pile")
				}
				continue
			}
			if _, ok := game.piles[name]; !ok {
				return nil, fmt.Errorf("cannot define a pile condition on undeclared pile %s", name)
			}
		}
		switch tokens[3] {
		case "Empty":
			if len(tokens) != 4 {
				return nil, fmt.Errorf("condition not recognized: %q", line)
			}
			return PileEmptyCondition{Names: names, Quant: quant}, nil
		case "Size":
			if len(tokens) != 6 {
				return nil, fmt.Errorf("condition not recognized: %q", line)
			}
			op, err := ParseNumberOp(tokens[4])
			if err != nil {
				return nil, err
			}
			threshold, err := parseNumber(tokens[5])
			if err != nil {
				return nil, err
			}
			return PileSizeCondition{Names: names, Quant: quant, Op: op, Threshold: threshold}, nil
		}
		return nil, fmt.Errorf("pile condition not recognized: %q", line)
	}
}

func applyMoves(game *Game, body []string, auto bool) error {
	for len(body) > 0 {
		tokens, err := splitLine(body[0])
		if err != nil {
			return err
		}
		header := body[0]
		var block []string
		block, body = extractBlock(body[1:])
		switch tokens[0] {
		case "MOVE", "MOVE_STACK":
			if len(tokens) != 3 {
				return fmt.Errorf("%s takes sources and destinations: %q", tokens[0], header)
			}
			srcs, err := parseItems(tokens[1], parseName)
			if err != nil {
				return err
			}
			dests, err := parseItems(tokens[2], parseName)
			if err != nil {
				return err
			}
			if tokens[0] == "MOVE" {
				err = defineMoves(game, block, srcs, dests, auto)
			} else {
				err = defineRunMoves(game, block, srcs, dests, auto)
			}
			if err != nil {
				return err
			}
		case DrawTag:
			if len(tokens) != 1 {
				return fmt.Errorf("DRAW condition takes no arguments: %q", header)
			}
			condition, err := extractRuleCondition(block, parseBoardLeaf(game))
			if err != nil {
				return err
			}
			if err := game.DefineDrawCondition(condition); err != nil {
				return err
			}
		default:
			return fmt.Errorf("move type not recognized: %q", header)
		}
	}
	return nil
}

// extractRuleCondition parses the indented condition block of one
// rule, which must consist of exactly one condition.
func extractRuleCondition[T any](block []string, parseLeaf func(string) (Condition[T], error)) (Condition[T], error) {
	condition, rest, err := extractCondition(block, parseLeaf)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("extra lines after a rule condition: %q", rest[0])
	}
	return condition, nil
}

func defineMoves(game *Game, block []string, srcs, dests []string, auto bool) error {
	condition, err := extractRuleCondition(block, parseMoveLeaf)
	if err != nil {
		return err
	}
	for _, src := range srcs {
		for _, dest := range dests {
			if auto {
				err = game.DefineAutoMove(src, dest, condition)
			} else {
				err = game.DefineMove(src, dest, condition)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func defineRunMoves(game *Game, block []string, srcs, dests []string, auto bool) error {
	condition, err := extractRuleCondition(block, parseRunLeaf)
	if err != nil {
		return err
	}
	for _, src := range srcs {
		for _, dest := range dests {
			if auto {
				err = game.DefineAutoRunMove(src, dest, condition)
			} else {
				err = game.DefineRunMove(src, dest, condition)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func applyWin(game *Game, body []string) error {
	condition, rest, err := extractCondition(body, parseBoardLeaf(game))
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("extra lines after the win condition: %q", rest[0])
	}
	return game.DefineWinCondition(condition)
}
