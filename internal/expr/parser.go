package expr

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// SyntaxError reports the first problem found while parsing.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: %s: %s", e.Pos, e.Msg)
}

type parser struct {
	s   scanner.Scanner
	tok rune
	err *SyntaxError
}

// Parse parses a single expression.
func Parse(src string) (Node, error) {
	p := &parser{}

	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.GoTokens &^ scanner.ScanChars
	p.s.Error = func(s *scanner.Scanner, msg string) {
		p.fail(s.Position, msg)
	}

	p.next()
	n := p.expr()

	if p.err == nil && p.tok != scanner.EOF {
		p.unexpected("after expression")
	}
	if p.err != nil {
		return nil, p.err
	}

	return n, nil
}

func (p *parser) next() {
	p.tok = p.s.Scan()
}

func (p *parser) pos() Pos {
	return Pos{Line: p.s.Position.Line, Column: p.s.Position.Column}
}

func (p *parser) fail(at scanner.Position, msg string) {
	// keep the first error only
	if p.err != nil {
		return
	}

	if !at.IsValid() {
		at = p.s.Pos()
	}
	pos := Pos{Line: at.Line, Column: at.Column}

	p.err = &SyntaxError{Pos: pos, Msg: msg}
}

func (p *parser) unexpected(context string) {
	what := "end of input"
	if p.tok != scanner.EOF {
		what = strconv.Quote(p.s.TokenText())
	}

	p.fail(p.s.Position, fmt.Sprintf("unexpected %s %s", what, context))
}

func (p *parser) expr() Node {
	if p.err != nil {
		return nil
	}

	at := p.pos()

	switch p.tok {
	case scanner.Ident:
		name := p.s.TokenText()
		p.next()

		if p.tok != '(' {
			return &Ident{At: at, Name: name}
		}
		p.next()

		return &Call{At: at, Name: name, Args: p.list(')')}

	case scanner.String, scanner.RawString:
		text := p.s.TokenText()
		p.next()

		value, err := strconv.Unquote(text)
		if err != nil {
			p.fail(scanner.Position{Line: at.Line, Column: at.Column}, fmt.Sprintf("invalid string %s", text))
			return nil
		}

		return &String{At: at, Value: value}

	case scanner.Int, scanner.Float:
		return p.number(at, "")

	case '-':
		p.next()
		if p.tok != scanner.Int && p.tok != scanner.Float {
			p.unexpected(`after "-"`)
			return nil
		}
		return p.number(at, "-")

	case '[':
		p.next()
		return &List{At: at, Items: p.list(']')}

	default:
		p.unexpected("at start of expression")
		return nil
	}
}

func (p *parser) number(at Pos, sign string) Node {
	raw := sign + p.s.TokenText()
	p.next()

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// hexadecimal, octal and binary integers
		i, ierr := strconv.ParseInt(raw, 0, 64)
		if ierr != nil {
			p.fail(scanner.Position{Line: at.Line, Column: at.Column}, fmt.Sprintf("invalid number %s", raw))
			return nil
		}
		value = float64(i)
	}

	return &Number{At: at, Raw: raw, Value: value}
}

// list parses comma separated expressions up to and including end.
// A trailing comma is allowed.
func (p *parser) list(end rune) []Node {
	nodes := []Node{}

	for p.err == nil {
		if p.tok == end {
			p.next()
			return nodes
		}

		nodes = append(nodes, p.expr())
		if p.err != nil {
			break
		}

		switch p.tok {
		case ',':
			p.next()
		case end:
		default:
			p.unexpected(fmt.Sprintf("in list, expected \",\" or %q", string(end)))
		}
	}

	return nil
}
