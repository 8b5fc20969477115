// Package dice implements the dice-notation expression engine.
//
// Expressions mix standard arithmetic (+, -, *, parentheses) with dice
// terms in tabletop notation:
//
//	NdX     roll N dice with X sides
//	d%      percentile die (100 sides)
//	NdF     Fudge dice, each yielding -1, 0, or +1
//	NdXkY   keep the highest Y of N
//	NdXdY   drop the lowest Y of N
//	NdX!    explode on the maximum face
//	NdXeY   explode on faces >= Y
//	NdXrY   reroll a die once if its value is <= Y
//
// Input is lowercased and whitespace-stripped before parsing, so "2D6 + 3"
// and "2d6+3" are the same expression. Multiplication also accepts the
// Unicode glyphs '×' and '·'.
package dice

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Bounds enforced on every expression.
const (
	// MaxDiceCount is the largest number of dice a single term may roll.
	MaxDiceCount = 1000
	// MaxDieSides is the largest face count a single die may have.
	MaxDieSides = 10000
	// MaxLiteral is the largest numeric literal accepted anywhere in an
	// expression, including dice counts, sides, and modifier thresholds.
	MaxLiteral = 1000000
	// MaxOutcomeSpace caps count*sides for a single dice term.
	MaxOutcomeSpace = 1000000
	// MaxExplosions caps the additional rolls a single exploding die may
	// produce. The cap guarantees termination even for thresholds every
	// face satisfies, such as "3d6e1".
	MaxExplosions = 100
)

// ParseError describes a malformed or out-of-bounds expression. Pos is a
// rune offset into the normalized expression (lowercased, whitespace
// removed), or -1 when no single position applies.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
	}
	return "parse error: " + e.Msg
}

// Result captures the outcome of evaluating a dice expression.
//
// Total is the final value of the expression. Rolls lists every physical
// die face produced during evaluation, in roll order, including extra
// faces from explosions and rerolls; it is empty for pure numeric
// literals. Expression is a canonical re-rendering of the parsed input
// and Breakdown is a human-readable trace of how Total was derived.
//
// A Result is immutable once built: combining two results produces a
// fresh value and never mutates the operands.
type Result struct {
	Total      int    `json:"total"`
	Rolls      []int  `json:"rolls"`
	Expression string `json:"expression"`
	Breakdown  string `json:"breakdown"`
}

// Roller produces uniform die faces. Roll returns a value in [1, sides].
type Roller interface {
	Roll(sides int) int
}

type rngRoller struct {
	rng *rand.Rand
}

func (r rngRoller) Roll(sides int) int {
	return r.rng.IntN(sides) + 1
}

// Parse evaluates a dice expression and returns its outcome. Malformed
// input and bound violations fail with a *ParseError; there is no
// partial result. Parse is stateless across calls and safe for
// concurrent use.
func Parse(expression string) (Result, error) {
	roller := rngRoller{rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	return parseWith(expression, roller)
}

// ParseSeeded evaluates a dice expression with a seeded random source.
//
// # Determinism
//
// ParseSeeded is deterministic with respect to seed: given the same seed
// and the same expression it always produces the same Result. Dice are
// consumed left to right in expression order, each die rolling its
// initial face, then any explosion faces, then any reroll face, before
// the next die rolls.
func ParseSeeded(expression string, seed int64) (Result, error) {
	roller := rngRoller{rand.New(rand.NewPCG(uint64(seed), uint64(seed)))}
	return parseWith(expression, roller)
}

func parseWith(expression string, roller Roller) (Result, error) {
	p := &parser{input: normalize(expression), roller: roller}
	result, err := p.parseExpression()
	if err != nil {
		return Result{}, err
	}
	if p.pos < len(p.input) {
		return Result{}, p.errorf(p.pos, "unexpected character %q after expression", p.input[p.pos])
	}
	return result, nil
}

// normalize lowercases the input and strips all whitespace. Parse errors
// report rune positions into this normalized form.
func normalize(s string) []rune {
	var out []rune
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// parser holds the transient state of a single parse call: the
// normalized input, a cursor into it, and the random source. A fresh
// parser is built per call, so concurrent parses never share state.
type parser struct {
	input  []rune
	pos    int
	roller Roller
}

func (p *parser) peek() rune {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

func (p *parser) errorf(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// parseExpression handles addition and subtraction, the lowest
// precedence level. Both operators are left-associative.
func (p *parser) parseExpression() (Result, error) {
	left, err := p.parseTerm()
	if err != nil {
		return Result{}, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return Result{}, err
			}
			left = combine(left, right, "+", left.Total+right.Total)
		case '-':
			p.pos++
			right, err := p.parseTerm()
			if err != nil {
				return Result{}, err
			}
			left = combine(left, right, "-", left.Total-right.Total)
		default:
			return left, nil
		}
	}
}

// parseTerm handles multiplication, accepting '*' plus the Unicode
// synonyms '×' and '·'. The canonical rendering always uses '*'.
func (p *parser) parseTerm() (Result, error) {
	left, err := p.parseFactor()
	if err != nil {
		return Result{}, err
	}
	for {
		switch p.peek() {
		case '*', '×', '·':
			p.pos++
			right, err := p.parseFactor()
			if err != nil {
				return Result{}, err
			}
			left = multiply(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseFactor() (Result, error) {
	if p.peek() == '(' {
		open := p.pos
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return Result{}, err
		}
		if p.peek() != ')' {
			return Result{}, p.errorf(open, "missing closing parenthesis")
		}
		p.pos++
		inner.Expression = "(" + inner.Expression + ")"
		return inner, nil
	}
	return p.parseDiceOrNumber()
}

// parseDiceOrNumber parses a dice term or a numeric literal. A leading
// '-' negates the final total of this term only; it is never distributed
// through keep/drop or individual faces.
func (p *parser) parseDiceOrNumber() (Result, error) {
	start := p.pos
	negative := false
	if p.peek() == '-' {
		negative = true
		p.pos++
	}

	count, haveCount, err := p.tryNumber()
	if err != nil {
		return Result{}, err
	}

	if p.peek() != 'd' {
		if !haveCount {
			return Result{}, p.errorf(start, "expected a number or dice notation")
		}
		value := count
		if negative {
			value = -value
		}
		text := strconv.Itoa(value)
		return Result{Total: value, Expression: text, Breakdown: text}, nil
	}
	p.pos++
	if !haveCount {
		count = 1
	}

	switch p.peek() {
	case '%':
		// Percentile dice take no modifiers; anything following '%'
		// is rejected by the surrounding grammar.
		p.pos++
		return p.rollDice(start, count, 100, modifiers{}, negative, true)
	case 'f':
		p.pos++
		return p.rollFudge(start, count, negative)
	}

	sides, haveSides, err := p.tryNumber()
	if err != nil {
		return Result{}, err
	}
	if !haveSides {
		return Result{}, p.errorf(p.pos, "expected die sides, %%, or f after 'd'")
	}
	mods, err := p.parseModifiers()
	if err != nil {
		return Result{}, err
	}
	return p.rollDice(start, count, sides, mods, negative, false)
}

// modifiers is the resolved modifier set for one dice term. At most one
// of keep/drop is honored during evaluation; keep wins when both are
// present.
type modifiers struct {
	keep             int
	haveKeep         bool
	drop             int
	haveDrop         bool
	explode          bool
	explodeThreshold int
	haveExplodeAt    bool
	reroll           bool
	rerollThreshold  int
}

func (p *parser) parseModifiers() (modifiers, error) {
	var mods modifiers
	for {
		switch p.peek() {
		case 'k':
			at := p.pos
			p.pos++
			n, ok, err := p.tryNumber()
			if err != nil {
				return modifiers{}, err
			}
			if !ok {
				return modifiers{}, p.errorf(at, "keep modifier requires a count")
			}
			mods.haveKeep, mods.keep = true, n
		case 'd':
			at := p.pos
			p.pos++
			n, ok, err := p.tryNumber()
			if err != nil {
				return modifiers{}, err
			}
			if !ok {
				return modifiers{}, p.errorf(at, "drop modifier requires a count")
			}
			mods.haveDrop, mods.drop = true, n
		case '!', 'e':
			p.pos++
			mods.explode = true
			n, ok, err := p.tryNumber()
			if err != nil {
				return modifiers{}, err
			}
			if ok {
				mods.haveExplodeAt, mods.explodeThreshold = true, n
			}
		case 'r':
			at := p.pos
			p.pos++
			n, ok, err := p.tryNumber()
			if err != nil {
				return modifiers{}, err
			}
			if !ok {
				return modifiers{}, p.errorf(at, "reroll modifier requires a threshold")
			}
			mods.reroll, mods.rerollThreshold = true, n
		default:
			return mods, nil
		}
	}
}

// tryNumber consumes a run of digits if one starts at the cursor. The
// literal limit is checked during accumulation so oversized numbers fail
// before they can overflow.
func (p *parser) tryNumber() (int, bool, error) {
	start := p.pos
	value := 0
	for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		value = value*10 + int(p.input[p.pos]-'0')
		if value > MaxLiteral {
			return 0, false, p.errorf(start, "number exceeds the %d limit", MaxLiteral)
		}
		p.pos++
	}
	if p.pos == start {
		return 0, false, nil
	}
	return value, true, nil
}

// rollDice evaluates one standard or percentile dice term.
//
// Each die resolves in order: initial roll, then explosions, then at
// most one reroll of the accumulated value. Keep/drop then reduces the
// per-die values, and the sign is applied to the summed total last.
func (p *parser) rollDice(pos, count, sides int, mods modifiers, negative, percent bool) (Result, error) {
	if count < 1 || count > MaxDiceCount {
		return Result{}, p.errorf(pos, "dice count must be between 1 and %d", MaxDiceCount)
	}
	if sides < 1 || sides > MaxDieSides {
		return Result{}, p.errorf(pos, "die sides must be between 1 and %d", MaxDieSides)
	}
	if count*sides > MaxOutcomeSpace {
		return Result{}, p.errorf(pos, "%d dice with %d sides exceed the %d outcome limit", count, sides, MaxOutcomeSpace)
	}

	faces := make([]int, 0, count)
	values := make([]int, count)
	for i := 0; i < count; i++ {
		face := p.roller.Roll(sides)
		faces = append(faces, face)
		value := face

		if mods.explode {
			threshold := sides
			if mods.haveExplodeAt {
				threshold = mods.explodeThreshold
			}
			last := face
			for n := 0; last >= threshold && n < MaxExplosions; n++ {
				last = p.roller.Roll(sides)
				faces = append(faces, last)
				value += last
			}
		}
		if mods.reroll && value <= mods.rerollThreshold {
			// A single replacement roll; the reroll itself is
			// never rerolled or exploded.
			face = p.roller.Roll(sides)
			faces = append(faces, face)
			value = face
		}
		values[i] = value
	}

	kept := values
	reduced := false
	switch {
	case mods.haveKeep:
		kept = keepHighest(values, mods.keep)
		reduced = true
	case mods.haveDrop:
		kept = dropLowest(values, mods.drop)
		reduced = true
	}

	total := 0
	for _, v := range kept {
		total += v
	}
	if negative {
		total = -total
	}

	return Result{
		Total:      total,
		Rolls:      faces,
		Expression: renderExpression(count, sides, mods, negative, percent),
		Breakdown:  renderBreakdown(values, kept, reduced, total),
	}, nil
}

var fudgeGlyphs = map[int]string{-1: "[-]", 0: "[ ]", 1: "[+]"}

// rollFudge evaluates a Fudge dice term. Each die yields -1, 0, or +1
// with equal probability and the breakdown renders one glyph per die.
func (p *parser) rollFudge(pos, count int, negative bool) (Result, error) {
	if count < 1 || count > MaxDiceCount {
		return Result{}, p.errorf(pos, "dice count must be between 1 and %d", MaxDiceCount)
	}

	faces := make([]int, count)
	glyphs := make([]string, count)
	total := 0
	for i := range faces {
		face := p.roller.Roll(3) - 2
		faces[i] = face
		glyphs[i] = fudgeGlyphs[face]
		total += face
	}
	if negative {
		total = -total
	}

	expr := strconv.Itoa(count) + "dF"
	if negative {
		expr = "-" + expr
	}
	return Result{
		Total:      total,
		Rolls:      faces,
		Expression: expr,
		Breakdown:  strings.Join(glyphs, " ") + " = " + strconv.Itoa(total),
	}, nil
}

func keepHighest(values []int, keep int) []int {
	sorted := append([]int(nil), values...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	if keep > len(sorted) {
		keep = len(sorted)
	}
	return sorted[:keep]
}

func dropLowest(values []int, drop int) []int {
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	if drop > len(sorted) {
		drop = len(sorted)
	}
	return sorted[drop:]
}

// combine joins two evaluated operands with '+' or '-'. Rolls from both
// sides are concatenated left before right.
func combine(left, right Result, op string, total int) Result {
	return Result{
		Total:      total,
		Rolls:      concatRolls(left.Rolls, right.Rolls),
		Expression: left.Expression + " " + op + " " + right.Expression,
		Breakdown:  fmt.Sprintf("%s %s %s = %d", left.Breakdown, op, right.Breakdown, total),
	}
}

func multiply(left, right Result) Result {
	total := left.Total * right.Total
	return Result{
		Total:      total,
		Rolls:      concatRolls(left.Rolls, right.Rolls),
		Expression: left.Expression + " * " + right.Expression,
		Breakdown:  fmt.Sprintf("(%s) * (%s) = %d", left.Breakdown, right.Breakdown, total),
	}
}

func concatRolls(left, right []int) []int {
	if len(left) == 0 && len(right) == 0 {
		return nil
	}
	out := make([]int, 0, len(left)+len(right))
	out = append(out, left...)
	return append(out, right...)
}

func renderExpression(count, sides int, mods modifiers, negative, percent bool) string {
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	b.WriteString(strconv.Itoa(count))
	if percent {
		b.WriteString("d%")
		return b.String()
	}
	b.WriteString("d")
	b.WriteString(strconv.Itoa(sides))
	if mods.haveKeep {
		fmt.Fprintf(&b, "k%d", mods.keep)
	}
	if mods.haveDrop {
		fmt.Fprintf(&b, "d%d", mods.drop)
	}
	if mods.explode {
		if mods.haveExplodeAt {
			fmt.Fprintf(&b, "e%d", mods.explodeThreshold)
		} else {
			b.WriteByte('!')
		}
	}
	if mods.reroll {
		fmt.Fprintf(&b, "r%d", mods.rerollThreshold)
	}
	return b.String()
}

// renderBreakdown shows the per-die resolved values, the kept subset
// when keep/drop reduced them, and the signed sum.
func renderBreakdown(values, kept []int, reduced bool, total int) string {
	var b strings.Builder
	b.WriteString(bracketed(values))
	if reduced {
		b.WriteString(" → ")
		b.WriteString(bracketed(kept))
	}
	fmt.Fprintf(&b, " = %d", total)
	return b.String()
}

func bracketed(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
