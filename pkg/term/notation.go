package term

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MetavariableSuffix marks a metavariable in the text notation: P__ is the
// metavariable P.
const MetavariableSuffix = "__"

// ParseError reports a malformed term in the text notation.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Input, e.Offset, e.Msg)
}

type token struct {
	text   string
	offset int
}

func tokenize(s string) []token {
	var tokens []token
	start := -1
	flush := func(end int) {
		if start >= 0 {
			tokens = append(tokens, token{text: s[start:end], offset: start})
			start = -1
		}
	}
	for i, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case r == '(' || r == ')' || r == ',':
			flush(i)
			tokens = append(tokens, token{text: string(r), offset: i})
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))
	return tokens
}

type parser struct {
	input  string
	tokens []token
	pos    int
}

func (p *parser) errorf(offset int, format string, args ...any) error {
	return &ParseError{Input: p.input, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{offset: len(p.input)}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) term() (*Term, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, p.errorf(tok.offset, "unexpected end of input")
	}
	p.pos++
	switch tok.text {
	case ")", ",":
		return nil, p.errorf(tok.offset, "unexpected %q", tok.text)
	case "(":
		return p.application(tok)
	}
	return leaf(tok.text), nil
}

func leaf(text string) *Term {
	if len(text) > len(MetavariableSuffix) && strings.HasSuffix(text, MetavariableSuffix) {
		return NewMetavariable(strings.TrimSuffix(text, MetavariableSuffix))
	}
	if len(text) > 1 && text[0] == '#' {
		if k, err := strconv.Atoi(text[1:]); err == nil && k >= 0 {
			return NewIndex(k)
		}
	}
	return NewSymbol(text)
}

func (p *parser) application(open token) (*Term, error) {
	var items []*Term
	for {
		tok, ok := p.peek()
		if !ok {
			return nil, p.errorf(open.offset, "unclosed parenthesis")
		}
		switch tok.text {
		case ")":
			p.pos++
			return NewApplication(items...), nil
		case ",":
			p.pos++
			return p.binding(tok, items)
		}
		item, err := p.term()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// binding finishes (op x y , body) or (x , body) after the comma.
func (p *parser) binding(comma token, items []*Term) (*Term, error) {
	if len(items) == 0 {
		return nil, p.errorf(comma.offset, "binding without bound variables")
	}
	vars := items
	var op *Term
	if len(items) > 1 {
		op, vars = items[0], items[1:]
	}
	names := make([]string, len(vars))
	for i, v := range vars {
		if !v.IsSymbol() {
			return nil, p.errorf(comma.offset, "bound variable %s is not a symbol", v)
		}
		names[i] = v.text
	}
	body, err := p.term()
	if err != nil {
		return nil, err
	}
	closing, ok := p.peek()
	if !ok || closing.text != ")" {
		return nil, p.errorf(closing.offset, "expected ) after binding body")
	}
	p.pos++
	if op == nil {
		return bindAll(names, body), nil
	}
	return Quantify(op, names, body), nil
}

// Parse reads a single term written in the s-expression notation.
func Parse(s string) (*Term, error) {
	p := &parser{input: s, tokens: tokenize(s)}
	t, err := p.term()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorf(tok.offset, "unexpected trailing %q", tok.text)
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// literals known to be valid.
func MustParse(s string) *Term {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	switch t.kind {
	case KindMetavariable:
		b.WriteString(t.text)
		b.WriteString(MetavariableSuffix)
	case KindIndex:
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(t.index))
	case KindApplication:
		t.writeApplication(b)
	default:
		b.WriteString(t.text)
	}
}

func (t *Term) writeApplication(b *strings.Builder) {
	b.WriteByte('(')
	defer b.WriteByte(')')
	if IsBinding(t) {
		b.WriteString(t.children[0].text)
		b.WriteString(" , ")
		t.children[1].write(b)
		return
	}
	if len(t.children) == 2 && IsBinding(t.children[1]) && !t.children[0].IsBinder() {
		t.children[0].write(b)
		body := t.children[1]
		for IsBinding(body) {
			b.WriteByte(' ')
			b.WriteString(body.children[0].text)
			body = body.children[1]
		}
		b.WriteString(" , ")
		body.write(b)
		return
	}
	for i, c := range t.children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.write(b)
	}
}
