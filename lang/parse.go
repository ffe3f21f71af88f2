package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/bcalc/log"
)

// reserved words may not be used as variable, function, or parameter names.
var reserved = map[string]bool{
	"define": true,
	"let":    true,
	"return": true,
	"if":     true,
	"else":   true,
}

// IsReserved reports whether name is a keyword of the language.
func IsReserved(name string) bool { return reserved[name] }

// Keywords returns the reserved words of the language.
func Keywords() []string { return []string{"define", "else", "if", "let", "return"} }

// Parse parses one top-level construct from the beginning of src and returns
// it along with the unconsumed remainder of src.
//
// If src ends before the construct is complete, the error matches
// [ErrIncomplete]; the caller may append more input and parse again. Any
// other mismatch is reported as [ErrParse].
func Parse(ctx context.Context, src string, opts ...Option) (Expr, string, error) {
	c := makeConfig(opts...)
	p := newParser(src, Position{Line: 1, Column: 1}, c)

	p.logger.TraceContext(ctx, "parse start", slog.Int("source_length", len(src)))

	p.skip()

	e, err := p.parseTop()
	if err == nil && p.openComment {
		err = p.fail("*/")
	}

	if err != nil {
		p.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, src, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("kind", e.Kind().String()),
		slog.Int("consumed", p.pos),
	)

	return e, src[p.pos:], nil
}

// ParseAll parses every top-level construct in src. Constructs are
// separated by ";", whitespace, or a comment; no separator is needed after a
// construct ending in "}".
func ParseAll(ctx context.Context, src string, opts ...Option) ([]Expr, error) {
	c := makeConfig(opts...)
	p := newParser(src, Position{Line: 1, Column: 1}, c)

	var exprs []Expr

	for {
		p.skipSeparators()

		if p.openComment {
			return nil, p.fail("*/")
		}

		if p.eof() {
			break
		}

		if len(exprs) > 0 && !separated(p.input[:p.pos]) {
			return nil, p.fail("separator")
		}

		e, err := p.parseTop()
		if err != nil {
			p.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

			return nil, err
		}

		exprs = append(exprs, e)
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_length", len(src)),
		slog.Int("construct_count", len(exprs)),
	)

	return exprs, nil
}

// parser holds the parser state.
type parser struct {
	input       string
	pos         int // byte index into input
	base        int // byte offset of input[0] in the enclosing source
	line        int
	col         int
	nesting     int
	maxNesting  int
	openComment bool // a block comment was still open at end of input
	logger      log.Logger
}

func newParser(src string, origin Position, c config) *parser {
	return &parser{
		input:      src,
		base:       origin.Offset,
		line:       origin.Line,
		col:        origin.Column,
		maxNesting: c.maxNesting,
		logger:     c.logger,
	}
}

// parseTop parses: Define | Let | If | Return | Math.
func (p *parser) parseTop() (Expr, error) {
	p.skip()

	if p.keyword("define") {
		return p.parseDefine()
	}

	switch {
	case p.keyword("let"):
		return p.parseLet()

	case p.keyword("if"):
		return p.parseIf()

	case p.keyword("return"):
		e, err := p.parseMath()
		if err != nil {
			return nil, err
		}

		return &Return{Value: e}, nil
	}

	return p.parseMath()
}

// parseDefine parses: 'define' Name '(' [Name (',' Name)*] ')' Block.
func (p *parser) parseDefine() (Expr, error) {
	name, err := p.parseBindingName()
	if err != nil {
		return nil, err
	}

	p.skip()

	if !p.expect('(') {
		return nil, p.fail("(")
	}

	var params []string

	p.skip()

	if !p.expect(')') {
		for {
			param, err := p.parseBindingName()
			if err != nil {
				return nil, err
			}

			params = append(params, param)

			p.skip()

			if p.expect(',') {
				continue
			}

			if p.expect(')') {
				break
			}

			return nil, p.fail("',' or ')'")
		}
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &Define{Name: name, Params: params, Body: body}, nil
}

// parseLet parses: 'let' Name '=' Math.
func (p *parser) parseLet() (Expr, error) {
	name, err := p.parseBindingName()
	if err != nil {
		return nil, err
	}

	p.skip()

	if !p.expect('=') {
		return nil, p.fail("=")
	}

	value, err := p.parseMath()
	if err != nil {
		return nil, err
	}

	return &Let{Name: name, Value: value}, nil
}

// parseIf parses: 'if' Guard Block ('else' 'if' Guard Block)* 'else' Block.
func (p *parser) parseIf() (Expr, error) {
	var n If

	for {
		br, err := p.parseGuard()
		if err != nil {
			return nil, err
		}

		if br.Body, err = p.parseBlock(); err != nil {
			return nil, err
		}

		n.Branches = append(n.Branches, br)

		p.skip()

		if !p.keyword("else") {
			return nil, p.failWord("else")
		}

		p.skip()

		if p.keyword("if") {
			continue
		}

		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		n.Else = body

		return &n, nil
	}
}

// parseGuard parses: '(' Math '==' Math ')'.
func (p *parser) parseGuard() (Branch, error) {
	var br Branch

	p.skip()

	if !p.expect('(') {
		return br, p.fail("(")
	}

	if err := p.enter(); err != nil {
		return br, err
	}
	defer p.leave()

	var err error

	if br.Left, err = p.parseMath(); err != nil {
		return br, err
	}

	p.skip()

	if !p.expectString("==") {
		return br, p.failWord("==")
	}

	if br.Right, err = p.parseMath(); err != nil {
		return br, err
	}

	p.skip()

	if !p.expect(')') {
		return br, p.fail(")")
	}

	return br, nil
}

// parseBlock parses: '{' (Top ';')* '}'.
// The ';' may be omitted after a construct that itself ends with '}'.
func (p *parser) parseBlock() ([]Expr, error) {
	p.skip()

	if !p.expect('{') {
		return nil, p.fail("{")
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var body []Expr

	for {
		p.skip()

		if p.expect('}') {
			return body, nil
		}

		e, err := p.parseTop()
		if err != nil {
			return nil, err
		}

		body = append(body, e)

		p.skip()

		if p.expect(';') {
			continue
		}

		switch e.(type) {
		case *Define, *If:
			continue
		}

		return nil, p.fail("';'")
	}
}

// parseMath parses: Term (('+' | '-') Term)*.
func (p *parser) parseMath() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		p.skip()

		var op Op

		switch {
		case p.expect('+'):
			op = OpAdd
		case p.expect('-'):
			op = OpSub
		default:
			return left, nil
		}

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: op, Left: left, Right: right}
	}
}

// parseTerm parses: Factor (('*' | '/') Factor)*.
func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		// Comments are consumed here, so a remaining '/' is division.
		p.skip()

		var op Op

		switch {
		case p.expect('*'):
			op = OpMul
		case p.expect('/'):
			op = OpDiv
		default:
			return left, nil
		}

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}

		left = &Binary{Op: op, Left: left, Right: right}
	}
}

// parseFactor parses: Operand ('^' Factor)?, grouping to the right.
func (p *parser) parseFactor() (Expr, error) {
	base, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	p.skip()

	if !p.expect('^') {
		return base, nil
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	exp, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	return &Binary{Op: OpPow, Left: base, Right: exp}, nil
}

// parseOperand parses: Call | Var | Number | '(' Math ')'.
func (p *parser) parseOperand() (Expr, error) {
	p.skip()

	ch := p.peek()

	switch {
	case isLetter(ch):
		pos := p.position()
		name := p.parseName()

		if reserved[name] {
			if p.eof() {
				// More letters may follow.
				return nil, p.fail("operand")
			}

			return nil, ErrParse.WithPosition(pos).
				Withf("unexpected keyword %q", name).
				With(slog.String("name", name))
		}

		p.skip()

		if p.peek() == '(' {
			return p.parseCall(name)
		}

		return &Var{Name: name}, nil

	case isDigit(ch):
		return p.parseNumber()

	case ch == '(':
		p.advance()

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		e, err := p.parseMath()
		if err != nil {
			return nil, err
		}

		p.skip()

		if !p.expect(')') {
			return nil, p.fail(")")
		}

		return e, nil
	}

	return nil, p.fail("operand")
}

// parseCall parses: '(' [Math (',' Math)*] ')' following a function name.
func (p *parser) parseCall(name string) (Expr, error) {
	p.advance() // skip '('

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	call := &Call{Name: name}

	p.skip()

	if p.expect(')') {
		return call, nil
	}

	for {
		arg, err := p.parseMath()
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, arg)

		p.skip()

		if p.expect(',') {
			continue
		}

		if p.expect(')') {
			return call, nil
		}

		return nil, p.fail("',' or ')'")
	}
}

// parseNumber parses: Digit+ ('.' Digit+)? ([eE] [+-]? Digit+)?.
func (p *parser) parseNumber() (Expr, error) {
	start := p.pos

	p.digits()

	if p.expect('.') {
		if !isDigit(p.peek()) {
			return nil, p.fail("digit")
		}

		p.digits()
	}

	if p.peek() == 'e' || p.peek() == 'E' {
		p.advance()

		if p.peek() == '+' || p.peek() == '-' {
			p.advance()
		}

		if !isDigit(p.peek()) {
			return nil, p.fail("digit")
		}

		p.digits()
	}

	text := p.input[start:p.pos]

	// Out-of-range literals keep the rounded value (±Inf or 0).
	v, _ := strconv.ParseFloat(text, 64)

	return &Number{Value: v}, nil
}

// parseBindingName parses a name that is about to be bound by let, define, or
// a parameter list.
func (p *parser) parseBindingName() (string, error) {
	p.skip()

	pos := p.position()

	if !isLetter(p.peek()) {
		return "", p.fail("name")
	}

	name := p.parseName()

	if reserved[name] && !p.eof() {
		return "", ErrParse.WithPosition(pos).
			Withf("%q is a reserved word", name).
			With(slog.String("name", name))
	}

	if reserved[name] {
		return "", p.fail("name")
	}

	return name, nil
}

func (p *parser) parseName() string {
	start := p.pos

	for isLetter(p.peek()) {
		p.advance()
	}

	return p.input[start:p.pos]
}

func (p *parser) digits() {
	for isDigit(p.peek()) {
		p.advance()
	}
}

// keyword consumes word if it appears at the current position followed by a
// non-letter (or the end of input).
func (p *parser) keyword(word string) bool {
	if !strings.HasPrefix(p.input[p.pos:], word) {
		return false
	}

	if next := p.pos + len(word); next < len(p.input) {
		if r, _ := utf8.DecodeRuneInString(p.input[next:]); isLetter(r) {
			return false
		}
	}

	p.pos += len(word)
	p.col += len(word)

	return true
}

func (p *parser) enter() error {
	p.nesting++

	if p.maxNesting > 0 && p.nesting > p.maxNesting {
		return ErrMaxDepthExceeded.WithPosition(p.position()).
			Withf("nesting exceeds %d levels", p.maxNesting).
			With(slog.Int("limit", p.maxNesting))
	}

	return nil
}

func (p *parser) leave() { p.nesting-- }

// fail reports that expected was not found at the current position. Running
// out of input is reported as ErrIncomplete so that callers holding more input
// can retry.
func (p *parser) fail(expected string) error {
	if p.eof() {
		return ErrIncomplete.WithPosition(p.position()).
			Withf("expected %s", expected).
			With(slog.String("expected", expected))
	}

	found := string(p.peek())

	return ErrParse.WithPosition(p.position()).
		Withf("expected %s, found %q", expected, found).
		With(slog.String("expected", expected), slog.String("found", found))
}

// failWord is like fail, but also reports ErrIncomplete when the remaining
// input is a truncated prefix of word.
func (p *parser) failWord(word string) error {
	if rest := p.input[p.pos:]; strings.HasPrefix(word, rest) {
		for !p.eof() {
			p.advance()
		}
	}

	return p.fail(word)
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return p.input[p.pos:]
	}

	return p.input[p.pos : p.pos+n]
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if !p.eof() && p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) expectString(s string) bool {
	if p.peekN(len(s)) != s {
		return false
	}

	for range len(s) {
		p.advance()
	}

	return true
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.base + p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

// skip consumes whitespace and comments.
func (p *parser) skip() {
	for {
		for !p.eof() && unicode.IsSpace(p.peek()) {
			p.advance()
		}

		switch {
		case p.eof():
			return

		case p.peek() == '#', p.peekN(2) == "//":
			p.skipLineComment()

		case p.peekN(2) == "/*":
			p.skipBlockComment()

		default:
			return
		}
	}
}

// separated reports whether text ends in a separator, so that a construct
// may begin right after it.
func separated(text string) bool {
	r, _ := utf8.DecodeLastRuneInString(text)

	// A trailing '/' can only close a block comment.
	return unicode.IsSpace(r) || r == ';' || r == '}' || r == '/'
}

// skipSeparators consumes whitespace, comments, and ';' between top-level
// constructs.
func (p *parser) skipSeparators() {
	for {
		p.skip()

		if !p.expect(';') {
			return
		}
	}
}

func (p *parser) skipLineComment() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}

	if !p.eof() {
		p.advance() // skip '\n'
	}
}

func (p *parser) skipBlockComment() {
	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peekN(2) == "*/" {
			p.advance() // skip '*'
			p.advance() // skip '/'

			return
		}

		p.advance()
	}

	p.openComment = true
}

// Character classification

func isLetter(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
